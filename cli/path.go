package cli

import (
	"github.com/ardnew/numscript/cli/cmd"
	"github.com/ardnew/numscript/pkg"
)

// configFile is the base name of the YAML configuration file. A JSON file
// with the same stem is also read.
const (
	configFile     = "config.yaml"
	configFileJSON = "config.json"
)

// configFilePath returns the path of the YAML configuration file.
func configFilePath() string { return pkg.ConfigPath(configFile) }

// scriptsDir returns the user's script directory, searched after the
// directories listed in the path environment variable.
func scriptsDir() string { return pkg.ConfigPath(cmd.ScriptsIdentifier) }

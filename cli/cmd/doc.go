// Package cmd implements the numscript subcommands: run, fmt, tokens,
// parse, check, repl, and init.
//
// Scripts are named on the command line as file paths, as names resolved
// against the script search path (see [SearchPath]), or as "-" for standard
// input. Every command shares the [Engine] flags that select the numeric
// backend and evaluation limits.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"

	// ScriptsIdentifier is the kong variable identifier containing the path
	// to the user's script directory.
	ScriptsIdentifier = "scripts"
)

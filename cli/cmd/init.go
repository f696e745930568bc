package cmd

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/numscript/log"
	"github.com/ardnew/numscript/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalContext(ctx, i.buildConfig(ktx),
		yaml.Indent(defaultConfigIndent))
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	err = os.WriteFile(confPath, data, 0o600)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// engineFlags names the [Engine] flags, which are persisted alongside the
// global flags even though they belong to subcommands.
var engineFlags = []string{
	"backend", "strict", "precision", "seed", "timeout", "max-depth",
}

// buildConfig collects the current value of every persistent flag in
// declaration order.
func (i *Init) buildConfig(ktx *kong.Context) yaml.MapSlice {
	var entries yaml.MapSlice

	prefixIgnore := []string{"help", "version", profile.Tag}
	parsed := ktx.Flags()

	for _, flag := range allFlags(ktx.Model.Node) {
		persistent := slices.Contains(ktx.Model.Flags, flag) ||
			slices.Contains(engineFlags, flag.Name)

		if !persistent || flag.Hidden ||
			slices.ContainsFunc(prefixIgnore, func(s string) bool {
				return strings.HasPrefix(flag.Name, s)
			}) {
			continue
		}

		if slices.ContainsFunc(entries, func(item yaml.MapItem) bool {
			return item.Key == flag.Name
		}) {
			continue
		}

		var val any
		if slices.Contains(parsed, flag) {
			val = flagValue(ktx, flag)
		} else if flag.Default != "" {
			val = flag.Default
		}

		if val != nil {
			entries = append(entries, yaml.MapItem{Key: flag.Name, Value: val})
		}
	}

	return entries
}

// allFlags returns the flags of node and all of its descendants.
func allFlags(node *kong.Node) []*kong.Flag {
	flags := slices.Clone(node.Flags)

	for _, child := range node.Children {
		flags = append(flags, allFlags(child)...)
	}

	return flags
}

// flagValue returns the YAML value for a flag, or nil if unset or empty.
func flagValue(ktx *kong.Context, flag *kong.Flag) any {
	val := ktx.FlagValue(flag)
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case string:
		if v == "" {
			return nil
		}

		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case bool, int, int64, uint, uint64, float64:
		return v

	default:
		// Durations and text marshalers are written as the text kong parses.
		if s, ok := v.(interface{ String() string }); ok {
			return s.String()
		}

		return v
	}
}

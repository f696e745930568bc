package cli

import (
	"context"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/numscript/cli/cmd"
	"github.com/ardnew/numscript/pkg"
)

// CLI is the top-level command-line interface for numscript.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Run    cmd.Run    `cmd:"" default:"withargs" help:"Run scripts and print each statement's result"`
	Repl   cmd.Repl   `cmd:""                    help:"Start an interactive session"`
	Check  cmd.Check  `cmd:""                    help:"Run a script and test expectations over its result"`
	Fmt    cmd.Fmt    `cmd:""                    help:"Format scripts"`
	Tokens cmd.Tokens `cmd:""                    help:"Print the tokens of a script"`
	Parse  cmd.Parse  `cmd:""                    help:"Print the statements of a script"`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the numscript CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := pkg.MkdirAll(); err != nil {
		return err
	}

	vars := kong.Vars{
		"version":             pkg.Version(),
		cmd.ConfigIdentifier:  configFilePath(),
		cmd.CacheIdentifier:   pkg.CacheDir(),
		cmd.ScriptsIdentifier: scriptsDir(),
	}.
		CloneWith(cmd.EngineVars()).
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so the logger is configured before parsing,
	// regardless of flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.DefaultEnvars(strings.ToUpper(pkg.Prefix())),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, pkg.ConfigPath(configFileJSON)),
		kong.Configuration(loadYAML, configFilePath()),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	// Apply the remaining logger flags, such as TimeLayout and Caller.
	cli.Log.start(ctx)

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

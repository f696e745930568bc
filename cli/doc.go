// Package cli contains the command line interface for numscript.
//
// # Usage
//
//	numscript [flags] [script ...]
//	numscript run --backend=fraction sum.ns
//	numscript repl
//	numscript check --expect='last == "6"' sum.ns
//	numscript fmt --write sum.ns
//	numscript tokens --grouped sum.ns
//	numscript parse --output=yaml sum.ns
//	numscript init
//
// Run is the default command. Script arguments that are not paths are looked
// up in the directories listed by NUMSCRIPT_PATH and then in the scripts
// directory under the configuration directory.
//
// # Configuration
//
// Flag defaults are read from config.yaml and config.json in the
// configuration directory (~/.config/numscript by default). Every flag may
// also be set with an environment variable named NUMSCRIPT_ followed by the
// flag name in upper case, such as NUMSCRIPT_BACKEND. Command-line flags take
// precedence over both.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o numscript .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/numscript/pprof)
package cli

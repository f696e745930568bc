// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("run complete", slog.Int("records", 3))
//	logger.Error("compile failed", slog.Any("error", err))
//
// The zero [Logger] discards everything, so library types can embed one
// and log unconditionally.
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// # Levels
//
// Besides the four slog levels the package defines [LevelTrace] below
// [LevelDebug], used for per-statement evaluation detail. Messages below the
// configured level are discarded.
//
// # Output Formats
//
// Two output formats are supported: [FormatText] (default) and
// [FormatJSON]. With [WithPretty] (the default) both are styled with
// lipgloss for terminals; styling degrades to plain text when the output is
// not a terminal. Values implementing [slog.LogValuer] are resolved, and
// groups nest as dotted keys in text and as objects in JSON.
//
// # Default Logger
//
// The package-level functions ([Info], [Debug], and so on) write to a
// default logger that [Config] and [SetDefault] replace.
package log

//go:build pprof

package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

// Modes returns the supported profiling modes.
var Modes = sync.OnceValue(
	func() []string {
		return slices.Sorted(maps.Keys(mode))
	},
)

var mode = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// option appends a github.com/pkg/profile option when it applies.
type option func(p Profiler, opts []func(*profile.Profile)) []func(*profile.Profile)

var options = []option{
	func(p Profiler, opts []func(*profile.Profile)) []func(*profile.Profile) {
		return append(opts, mode[p.Mode])
	},
	func(p Profiler, opts []func(*profile.Profile)) []func(*profile.Profile) {
		if p.Path != "" {
			opts = append(opts, profile.ProfilePath(p.Path))
		}

		return opts
	},
	func(p Profiler, opts []func(*profile.Profile)) []func(*profile.Profile) {
		if p.Quiet {
			opts = append(opts, profile.Quiet)
		}

		return opts
	},
	func(_ Profiler, opts []func(*profile.Profile)) []func(*profile.Profile) {
		return append(opts, profile.NoShutdownHook)
	},
}

func start(p Profiler) Controller {
	var opts []func(*profile.Profile)
	for _, opt := range options {
		opts = opt(p, opts)
	}

	return profile.Start(opts...)
}

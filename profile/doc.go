// Package profile provides optional runtime profiling for numscript.
//
// Profiling wraps [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag:
//
//	go build -tags pprof -o numscript .
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op
// controller, so callers never need their own build constraints.
//
// # Modes
//
//   - allocs, heap, mem: memory profiles
//   - block, mutex: contention profiles
//   - clock, cpu: CPU and wall-clock profiles
//   - goroutine, thread: goroutine and thread creation profiles
//   - trace: execution trace
//
// Profiles are written into [Profiler.Path] and analyzed with
//
//	go tool pprof -http=: numscript /path/to/cpu.pprof
//
// Profiling a long recursion is the usual reason to reach for this:
//
//	numscript --pprof-mode=cpu run fib.ns
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

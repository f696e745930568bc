package profile

import "slices"

// Profiler describes one profiling session.
type Profiler struct {
	// Mode is one of [Modes]. An empty or unknown mode disables profiling.
	Mode string
	// Path is the output directory. Empty means the working directory.
	Path string
	// Quiet suppresses the messages printed when profiling starts and stops.
	Quiet bool
}

// Controller stops a running profiler. Stop is safe to call more than once.
type Controller interface{ Stop() }

// Enabled reports whether p would start a profiler in this build.
func (p Profiler) Enabled() bool {
	return p.Mode != "" && slices.Contains(Modes(), p.Mode)
}

// Start begins profiling and returns the controller that ends it. If the
// binary was built without the pprof tag or p is not [Profiler.Enabled],
// Start returns a no-op controller.
func (p Profiler) Start() Controller {
	if !p.Enabled() {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}

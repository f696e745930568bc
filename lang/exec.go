package lang

import (
	"context"
	"iter"

	"github.com/ardnew/numscript/number"
)

// Execution is a program run that suspends whenever the script asks for
// input, so a host can collect the answer without blocking the evaluator.
//
//	e := runner.Start(ctx, prog)
//	defer e.Stop()
//	for req, ok := e.Step(); ok; req, ok = e.Resume(answer(req)) {
//	}
//	res, err := e.Result()
type Execution struct {
	runner  *Runner
	next    func() (*InputRequest, bool)
	stop    func()
	pending *InputRequest
	result  *Result
	err     error
	done    bool
}

// Start begins executing prog in a fresh root scope. Nothing runs until the
// first call to [Execution.Step].
func (r *Runner) Start(ctx context.Context, prog *Program) *Execution {
	r.reset()

	return r.start(ctx, prog)
}

func (r *Runner) start(ctx context.Context, prog *Program) *Execution {
	e := &Execution{runner: r}
	r.stopErr = nil

	seq := func(yield func(*InputRequest) bool) {
		r.yield = yield
		defer func() { r.yield = nil }()

		e.result, e.err = r.run(ctx, prog)
		e.done = true
	}

	e.next, e.stop = iter.Pull(seq)

	return e
}

// Step runs until the script requests input or finishes. It returns the
// pending request and true, or nil and false once the run is over.
func (e *Execution) Step() (*InputRequest, bool) {
	req, ok := e.next()
	e.pending = req

	return req, ok
}

// Pending returns the request the execution is suspended on, if any.
func (e *Execution) Pending() *InputRequest { return e.pending }

// Resume answers the pending request with text and continues like Step.
func (e *Execution) Resume(text string) (*InputRequest, bool) {
	e.runner.answer = text

	return e.Step()
}

// Stop abandons a suspended execution. The pending input call fails with
// [ErrStopped]. Stop is idempotent.
func (e *Execution) Stop() {
	e.stop()
	e.pending = nil
}

// Done reports whether the run has finished.
func (e *Execution) Done() bool { return e.done }

// Result returns the outcome of a finished run. It is nil and [ErrStopped]
// while the run is still suspended.
func (e *Execution) Result() (*Result, error) {
	if !e.done {
		return nil, ErrStopped
	}

	return e.result, e.err
}

// Session runs successive programs against one persistent root scope, so
// later programs see the variables and functions of earlier ones.
type Session struct {
	runner *Runner
	opts   []Option
}

// NewSession returns a session evaluating with backend.
func NewSession(backend number.Backend, opts ...Option) *Session {
	return &Session{
		runner: NewRunner(backend, opts...),
		opts:   opts,
	}
}

// Backend returns the session's numeric backend.
func (s *Session) Backend() number.Backend { return s.runner.backend }

// Compile compiles source with the session's options.
func (s *Session) Compile(ctx context.Context, source string) (*Program, error) {
	return Compile(ctx, source, s.opts...)
}

// Eval compiles and runs source in the session scope.
func (s *Session) Eval(ctx context.Context, source string) (*Result, error) {
	prog, err := s.Compile(ctx, source)
	if err != nil {
		return nil, err
	}

	return s.runner.drive(ctx, s.runner.start(ctx, prog))
}

// Start begins executing prog in the session scope.
func (s *Session) Start(ctx context.Context, prog *Program) *Execution {
	return s.runner.start(ctx, prog)
}

// Reset discards every binding made in the session.
func (s *Session) Reset() { s.runner.reset() }

// Names returns every name bound in the session, including built-ins.
func (s *Session) Names() []string {
	return s.runner.scopes.names(s.runner.root)
}

// Lookup returns the variable bound to name.
func (s *Session) Lookup(name string) (*Variable, bool) {
	v, _ := s.runner.scopes.lookup(s.runner.root, name)

	return v, v != nil
}

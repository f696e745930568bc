package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrEditDeclined = errors.New("decline edit")
	ErrNoBackend    = errors.New("no numeric backend available")
	ErrPreload      = errors.New("preload")
)

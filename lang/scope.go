package lang

//go:generate go tool stringer --linecomment --type VarKind --output scope_string.go

import (
	"github.com/ardnew/numscript/number"
)

// VarKind tags the variant held by a [Variable].
type VarKind int

const (
	VarNumber   VarKind = iota // number
	VarBuiltin                 // builtin
	VarFunction                // function
	VarInput                   // input
)

// Variable is a binding in a scope.
type Variable struct {
	Kind     VarKind
	Constant bool

	Value   number.Value // VarNumber
	Builtin number.Func  // VarBuiltin

	// VarFunction
	Name   string
	Params []string
	Body   *Body
	Scope  scopeID // defining scope, for lexical lookup from the body
}

// Arity returns the number of arguments a callable variable accepts, or
// [number.Variadic].
func (v *Variable) Arity() number.Arity {
	switch v.Kind {
	case VarBuiltin:
		return v.Builtin.Arity
	case VarFunction:
		return number.Arity(len(v.Params))
	default:
		return 0
	}
}

// ParamNames returns the parameter names of a callable variable.
func (v *Variable) ParamNames() []string {
	switch v.Kind {
	case VarBuiltin:
		return v.Builtin.Params
	case VarFunction:
		return v.Params
	default:
		return nil
	}
}

// scopeID addresses a frame in the scope arena.
type scopeID int

const noScope scopeID = -1

type scopeFrame struct {
	parent scopeID
	vars   map[string]*Variable
}

// arena holds scopes in LIFO order. A frame is only ever released after every
// frame pushed above it, so a function's defining scope outlives its calls.
type arena struct {
	frames []scopeFrame
}

func (a *arena) push(parent scopeID) scopeID {
	a.frames = append(a.frames, scopeFrame{
		parent: parent,
		vars:   make(map[string]*Variable),
	})

	return scopeID(len(a.frames) - 1)
}

// release drops id and every frame above it.
func (a *arena) release(id scopeID) {
	if int(id) < len(a.frames) {
		clear(a.frames[id:])
		a.frames = a.frames[:id]
	}
}

// lookup walks the parent chain from id and returns the variable bound to
// name and the scope holding it.
func (a *arena) lookup(id scopeID, name string) (*Variable, scopeID) {
	for id != noScope {
		f := &a.frames[id]
		if v, ok := f.vars[name]; ok {
			return v, id
		}

		id = f.parent
	}

	return nil, noScope
}

func (a *arena) define(id scopeID, name string, v *Variable) {
	a.frames[id].vars[name] = v
}

// names returns every name visible from id.
func (a *arena) names(id scopeID) []string {
	seen := make(map[string]bool)

	for id != noScope {
		for name := range a.frames[id].vars {
			seen[name] = true
		}

		id = a.frames[id].parent
	}

	return sortedKeys(seen)
}

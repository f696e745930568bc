package lang

import (
	"errors"
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrUnfinishedBracket     = NewError("unfinished bracket")
	ErrUnexpectedSymbol      = NewError("unexpected symbol")
	ErrUnexpectedOperator    = NewError("unexpected operator")
	ErrUnexpectedElse        = NewError("else without a preceding if")
	ErrExpectedParam         = NewError("expected a variable name for the function parameter")
	ErrExpectedComma         = NewError("expected a comma between the parameters of the function")
	ErrExpectedName          = NewError("expected a variable name")
	ErrExpectedAssign        = NewError("expected '=' after the variable name")
	ErrExpectedRepeat        = NewError("expected 'times' or 'until' after repeat")
	ErrMissingBlock          = NewError("expected a block in curly braces")
	ErrMissingCondition      = NewError("missing condition")
	ErrMissingAmount         = NewError("missing repeat amount")
	ErrEmptyExpression       = NewError("empty expression")
	ErrExpectedOperand       = NewError("expected an expression after the operator")
	ErrInvalidNumber         = NewError("invalid number")
	ErrUndefinedVariable     = NewError("undefined variable")
	ErrFunctionAsVariable    = NewError("cannot use a function as a variable")
	ErrUndefinedFunction     = NewError("undefined function")
	ErrVariableAsFunction    = NewError("cannot use a numeric variable as a function")
	ErrUnexpectedComma       = NewError("unexpected comma")
	ErrUnexpectedEndOfArg    = NewError("unexpected end of the call argument")
	ErrArity                 = NewError("wrong number of arguments")
	ErrBuiltinArgument       = NewError("expected the number arguments for the built-in function")
	ErrExit                  = NewError("exited the program")
	ErrStrictName            = NewError("in strict mode, variable names can't have more than one character")
	ErrConstant              = NewError("cannot redeclare constants")
	ErrConstantRedeclaration = NewError("cannot redeclare a variable as a constant")
	ErrThrow                 = NewError("thrown")
	ErrArithmetic            = NewError("arithmetic error")
	ErrRepeatCount           = NewError("invalid repeat amount")
	ErrBreakOutsideLoop      = NewError("break outside of a loop")
	ErrMaxDepthExceeded      = NewError("maximum call depth exceeded")
	ErrNoInput               = NewError("input requested but no input source is available")
	ErrInvalidInput          = NewError("input is not a number")
	ErrStopped               = NewError("execution stopped")
	ErrCanceled              = NewError("execution canceled")
	ErrReadInput             = NewError("failed to read input")
	ErrCommentPlacement      = NewError("cannot format a comment inside a statement")
)

// Error represents an error with an optional source location and structured
// logging attributes. It implements both error and slog.LogValuer interfaces.
//
// Every Error derived from a sentinel (via At, Wrap, With, or Describe)
// matches that sentinel with errors.Is.
type Error struct {
	msg    string
	err    error       // Wrapped error (for errors.Unwrap)
	attrs  []slog.Attr // Attributes for structured logging
	kind   *Error      // Sentinel this error derives from
	offset int
	length int
	placed bool
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Message returns the user-facing description of the error.
func (e *Error) Message() string { return e.Error() }

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.kind == nil {
		return false
	}

	return e.kind == t.kind
}

// Located reports whether the error is anchored to a source range.
func (e *Error) Located() bool { return e.placed }

// Offset returns the byte offset into the source the error refers to.
func (e *Error) Offset() int { return e.offset }

// Length returns the byte length of the source range the error refers to.
func (e *Error) Length() int { return e.length }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.placed {
		attrs = append(attrs,
			slog.Int("offset", e.offset),
			slog.Int("length", e.length))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

func (e *Error) clone() *Error {
	c := *e

	return &c
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

// Describe replaces the message while keeping the sentinel identity.
func (e *Error) Describe(msg string) *Error {
	c := e.clone()
	c.msg = msg

	return c
}

// At anchors the error to the source range [offset, offset+length).
func (e *Error) At(offset, length int) *Error {
	c := e.clone()
	c.offset, c.length, c.placed = offset, max(length, 1), true

	return c
}

// AtToken anchors the error to the source range covered by tok.
func (e *Error) AtToken(tok Token) *Error {
	return e.At(tok.Index, tok.End-tok.Index)
}

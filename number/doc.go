// Package number defines the arithmetic contract that numscript evaluates
// against, together with its four implementations.
//
// A [Backend] is a capability set: it parses numeric literals into its own
// [Value] representation, applies the binary operators of the language
// through [Backend.Basic], and publishes the constants and built-in functions
// that seed a program's root scope. The evaluator never branches on which
// backend is active.
//
// # Backends
//
//   - bignumber: arbitrary-precision numbers on [github.com/shopspring/decimal].
//     Division rounds to the configured number of decimal places.
//   - fraction: exact rationals on [math/big.Rat].
//   - decimal: arbitrary-precision decimals on [github.com/cockroachdb/apd/v3]
//     with a configured number of significant digits, plus the transcendental
//     and hyperbolic function family.
//   - complex: complex128 on [math/cmplx], adding the constant i.
//
// Relational and equality operators produce the backend's own one and zero
// values; there is no separate boolean type. Zero is false, anything else is
// true.
//
// Every backend instance owns its own factorial cache and random source, so
// independent runs never share state.
package number

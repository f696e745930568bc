// Package lang implements numscript, a small line-oriented language for
// numeric scripting whose arithmetic is delegated to a pluggable
// [number.Backend].
//
// # Pipeline
//
// Source text flows through four stages:
//
//  1. [Tokenize] splits the text into symbols, operators, numbers and words.
//  2. [Group] nests parentheses and braces and fuses calls.
//  3. [Parse] recognizes statements.
//  4. [Runner] executes the statements against a backend.
//
// [Compile] runs the first three stages and caches the resulting [Program]
// by source content.
//
// # Syntax
//
//	# comments run to the end of the line
//	let r = 2               # declare in the current scope
//	const g = 9.81          # constants cannot be reassigned
//	r = r + 1               # reassign (declares if unbound)
//	r++                     # shorthand for r = r + 1
//	r *= 3                  # shorthand for r = r * (3)
//	area(x) = π x^2         # functions; adjacent values multiply
//	area(r)                 # inline expression, recorded as output
//	f(n) = if n <= 1 { 1 } else { n * f(n - 1) }
//	5!                      # postfix factorial
//	if r > 10 { print big } else if r > 5 { print medium } else { print small }
//	repeat 3 times { r-- }
//	repeat 5 times with i { s += i }
//	repeat until r < 1 { r = r / 2 }
//	loop { if input() == 0 { break } }
//	x = { let t = 3; t * t } # curly expressions evaluate to their last value
//	long = 1 + \
//	       2                # a backslash continues the statement
//
// Operators bind, from loosest to tightest: comparisons (> < >= <= == !=),
// then + and -, then * / %, then ^ (right-associative). Comparisons yield the
// backend's one or zero; zero is false.
//
// # Strict mode
//
// With [WithStrict], every variable name is a single character and longer
// words in expressions are read as products of single-character names, so
// "xy" means x*y.
//
// # Errors
//
// Every failure is an [Error] that matches one of the package sentinels
// with [errors.Is] and, when it concerns a source range, reports it through
// [Error.Offset] and [Error.Length].
package lang

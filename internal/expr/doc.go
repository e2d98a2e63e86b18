// Package expr parses and evaluates user formulas over the variable x and
// the parameter alpha.
//
// The accepted grammar is deliberately small: numbers, the names x and
// alpha, the constants pi and e, the operators + - * / ^ (also **), and a
// fixed table of named functions. Anything else is rejected before
// evaluation, so user text never executes as code.
//
// An [Expression] is evaluated two ways:
//
//   - numerically, pointwise or over a slice of samples ([Expression.Eval],
//     [Expression.EvalSlice]);
//   - symbolically, by lowering to an exact rational function P(x)/Q(x)
//     with big.Rat coefficients ([Expression.Rational]) for root solving.
//
// alpha is passed on every call; an Expression holds no parameter binding.
package expr

// Package solve finds the roots of f(x, alpha) = 0 under a time budget.
package solve

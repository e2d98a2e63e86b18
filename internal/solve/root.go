package solve

import "math/cmplx"

// Root is one solution of f(x) = 0. Im is exactly zero for roots the
// solver proved real. Form holds an exact textual form when one exists.
type Root struct {
	Re, Im float64
	Exact  bool
	Form   string
}

func (r Root) Complex() complex128 { return complex(r.Re, r.Im) }

func (r Root) IsReal() bool { return r.Im == 0 }

func (r Root) Abs() float64 { return cmplx.Abs(r.Complex()) }

// RootSet is the ordered result of a solve. Order is the solver's own.
type RootSet []Root

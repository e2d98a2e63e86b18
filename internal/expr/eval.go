package expr

import "math"

type evalFunc func(x, alpha float64) (float64, error)

func compile(n Node) (evalFunc, error) {
	switch v := n.(type) {
	case *Num:
		val := v.Value
		return func(float64, float64) (float64, error) { return val, nil }, nil
	case *Const:
		val, ok := constants[v.Name]
		if !ok {
			return nil, undefined(v.Name)
		}
		return func(float64, float64) (float64, error) { return val, nil }, nil
	case *Var:
		switch v.Name {
		case VarX:
			return func(x, _ float64) (float64, error) { return x, nil }, nil
		case VarAlpha:
			return func(_, alpha float64) (float64, error) { return alpha, nil }, nil
		}
		return nil, undefined(v.Name)
	case *Unary:
		inner, err := compile(v.X)
		if err != nil {
			return nil, err
		}
		return func(x, alpha float64) (float64, error) {
			r, err := inner(x, alpha)
			return -r, err
		}, nil
	case *Binary:
		return compileBinary(v)
	case *Call:
		return compileCall(v)
	}
	return nil, &ParseError{Pos: 0, Msg: "unsupported node"}
}

func compileBinary(b *Binary) (evalFunc, error) {
	l, err := compile(b.L)
	if err != nil {
		return nil, err
	}
	r, err := compile(b.R)
	if err != nil {
		return nil, err
	}
	op := b.Op
	return func(x, alpha float64) (float64, error) {
		a, err := l(x, alpha)
		if err != nil {
			return 0, err
		}
		c, err := r(x, alpha)
		if err != nil {
			return 0, err
		}
		var res float64
		switch op {
		case '+':
			res = a + c
		case '-':
			res = a - c
		case '*':
			res = a * c
		case '/':
			if c == 0 {
				return 0, &EvaluationError{X: x, Msg: "division by zero", Wrapped: ErrDomain}
			}
			res = a / c
		case '^':
			res = math.Pow(a, c)
		}
		return checked(res, x, string(op), a, c)
	}, nil
}

func compileCall(c *Call) (evalFunc, error) {
	fn := functions[c.Func]
	args := make([]evalFunc, len(c.Args))
	for i, a := range c.Args {
		f, err := compile(a)
		if err != nil {
			return nil, err
		}
		args[i] = f
	}
	name := c.Func
	if fn.arity == 1 {
		arg := args[0]
		return func(x, alpha float64) (float64, error) {
			a, err := arg(x, alpha)
			if err != nil {
				return 0, err
			}
			if (name == "log" || name == "ln" || name == "log10") && a == 0 {
				return 0, &EvaluationError{X: x, Msg: name + " of zero", Wrapped: ErrDomain}
			}
			return checked(fn.f1(a), x, name, a)
		}, nil
	}
	return func(x, alpha float64) (float64, error) {
		a, err := args[0](x, alpha)
		if err != nil {
			return 0, err
		}
		b, err := args[1](x, alpha)
		if err != nil {
			return 0, err
		}
		return checked(fn.f2(a, b), x, name, a, b)
	}, nil
}

// checked turns a NaN produced from non-NaN operands into a domain error.
func checked(res, x float64, op string, operands ...float64) (float64, error) {
	if !math.IsNaN(res) {
		return res, nil
	}
	for _, o := range operands {
		if math.IsNaN(o) {
			return res, nil
		}
	}
	return 0, &EvaluationError{X: x, Msg: "math domain error in " + op, Wrapped: ErrDomain}
}

// Eval evaluates the expression at a single point.
func (e *Expression) Eval(x, alpha float64) (float64, error) {
	return e.eval(x, alpha)
}

// EvalSlice evaluates the expression at every sample. On the first failure
// it returns the error and no partial result.
func (e *Expression) EvalSlice(xs []float64, alpha float64) ([]float64, error) {
	out := make([]float64, len(xs))
	for i, x := range xs {
		v, err := e.eval(x, alpha)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Func returns a plain function of x with alpha fixed. Evaluation errors
// map to NaN.
func (e *Expression) Func(alpha float64) func(float64) float64 {
	return func(x float64) float64 {
		v, err := e.eval(x, alpha)
		if err != nil {
			return math.NaN()
		}
		return v
	}
}

// Linspace returns n evenly spaced samples over [start, end].
func Linspace(start, end float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (end - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = end
	return out
}

package expr

import (
	"errors"
	"math"
	"testing"
)

func TestParse_Precedence(t *testing.T) {
	tests := []struct {
		src   string
		x     float64
		alpha float64
		want  float64
	}{
		{"1 + 2 * 3", 0, 0, 7},
		{"(1 + 2) * 3", 0, 0, 9},
		{"2 ^ 3 ^ 2", 0, 0, 512},
		{"2 ** 3", 0, 0, 8},
		{"-x^2", 3, 0, -9},
		{"(-x)^2", 3, 0, 9},
		{"x^-1", 4, 0, 0.25},
		{"alpha*x - 1", 2, 0.5, 0},
		{"10 / 4 / 5", 0, 0, 0.5},
		{"sin(pi/2) + cos(0)", 0, 0, 2},
		{"pow(x, 2) + sqrt(16)", 3, 0, 13},
		{"exp(0) + log(e) + ln(1) + log10(100)", 0, 0, 4},
		{"abs(-2.5e1)", 0, 0, 25},
		{"+x", 7, 0, 7},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			got, err := e.Eval(tt.x, tt.alpha)
			if err != nil {
				t.Fatalf("eval failed: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		src     string
		wantErr error
	}{
		{"", ErrParse},
		{"x +", ErrParse},
		{"2x", ErrParse},
		{"(x + 1", ErrParse},
		{"x $ 2", ErrParse},
		{"sin", ErrParse},
		{"sin(x, 2)", ErrParse},
		{"1.2.3", ErrParse},
		{"y + 1", ErrUndefinedName},
		{"__import__(x)", ErrUndefinedName},
		{"beta * x", ErrUndefinedName},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Parse(tt.src)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.src, err, tt.wantErr)
			}
		})
	}
}

func TestParseError_Position(t *testing.T) {
	_, err := Parse("x + )")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Pos != 4 {
		t.Errorf("expected position 4, got %d", pe.Pos)
	}
}

func TestEvalSlice_DomainError(t *testing.T) {
	e := MustParse("sqrt(x)")
	out, err := e.EvalSlice([]float64{4, 1, -1, 9}, 0)
	if !errors.Is(err, ErrDomain) {
		t.Fatalf("expected ErrDomain, got %v", err)
	}
	if out != nil {
		t.Errorf("expected no partial result, got %v", out)
	}

	var ee *EvaluationError
	if !errors.As(err, &ee) || ee.X != -1 {
		t.Errorf("expected evaluation error at x=-1, got %v", err)
	}
}

func TestEvalSlice_DivisionByZero(t *testing.T) {
	e := MustParse("1/x")
	if _, err := e.EvalSlice([]float64{-1, 0, 1}, 0); !errors.Is(err, ErrDomain) {
		t.Errorf("expected ErrDomain, got %v", err)
	}
}

func TestEvalSlice_Shape(t *testing.T) {
	e := MustParse("x^2 + alpha")
	xs := Linspace(-2, 2, 5)
	ys, err := e.EvalSlice(xs, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{5, 2, 1, 2, 5}
	for i := range want {
		if ys[i] != want[i] {
			t.Errorf("ys[%d] = %v, want %v", i, ys[i], want[i])
		}
	}
}

func TestAlphaIsNotRetained(t *testing.T) {
	e := MustParse("alpha")
	a, _ := e.Eval(0, 1)
	b, _ := e.Eval(0, 2)
	if a != 1 || b != 2 {
		t.Errorf("expected 1 then 2, got %v then %v", a, b)
	}
}

func TestLinspace(t *testing.T) {
	xs := Linspace(-20, 20, 400)
	if len(xs) != 400 || xs[0] != -20 || xs[399] != 20 {
		t.Errorf("unexpected linspace endpoints: %v .. %v (%d)", xs[0], xs[len(xs)-1], len(xs))
	}
	if Linspace(0, 1, 0) != nil {
		t.Error("expected nil for n=0")
	}
}

func TestString_RoundTrip(t *testing.T) {
	for _, src := range []string{"-x^2", "(-x)^2", "(x + 1) * (x - 1)", "x - (1 - x)", "sin(alpha * x)"} {
		e := MustParse(src)
		again, err := Parse(e.String())
		if err != nil {
			t.Fatalf("reparse %q: %v", e.String(), err)
		}
		for _, x := range []float64{-1.5, 0.25, 2} {
			a, _ := e.Eval(x, 0.7)
			b, _ := again.Eval(x, 0.7)
			if math.Abs(a-b) > 1e-12 {
				t.Errorf("%q vs %q differ at %v", src, e.String(), x)
			}
		}
	}
}

func TestDependsOn(t *testing.T) {
	e := MustParse("sin(alpha) + 2")
	if e.DependsOn(VarX) {
		t.Error("expected no dependence on x")
	}
	if !e.DependsOn(VarAlpha) {
		t.Error("expected dependence on alpha")
	}
}

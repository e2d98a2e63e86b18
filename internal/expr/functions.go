package expr

import "math"

type function struct {
	arity int
	f1    func(float64) float64
	f2    func(a, b float64) float64
}

var functions = map[string]function{
	"sin":   {arity: 1, f1: math.Sin},
	"cos":   {arity: 1, f1: math.Cos},
	"tan":   {arity: 1, f1: math.Tan},
	"asin":  {arity: 1, f1: math.Asin},
	"acos":  {arity: 1, f1: math.Acos},
	"atan":  {arity: 1, f1: math.Atan},
	"sinh":  {arity: 1, f1: math.Sinh},
	"cosh":  {arity: 1, f1: math.Cosh},
	"tanh":  {arity: 1, f1: math.Tanh},
	"exp":   {arity: 1, f1: math.Exp},
	"log":   {arity: 1, f1: math.Log},
	"ln":    {arity: 1, f1: math.Log},
	"log10": {arity: 1, f1: math.Log10},
	"sqrt":  {arity: 1, f1: math.Sqrt},
	"abs":   {arity: 1, f1: math.Abs},
	"pow":   {arity: 2, f2: math.Pow},
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// Functions lists the accepted function names.
func Functions() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	return names
}

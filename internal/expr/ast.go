package expr

import (
	"strconv"
	"strings"
)

// Node is an element of the expression tree.
type Node interface {
	String() string
	node()
}

// Num is a numeric literal. Text keeps the literal as written so the
// symbolic path can recover its exact decimal value.
type Num struct {
	Value float64
	Text  string
}

// Var is a reference to x or alpha.
type Var struct {
	Name string
}

// Const is a named constant (pi, e).
type Const struct {
	Name string
}

type Unary struct {
	Op byte
	X  Node
}

type Binary struct {
	Op   byte
	L, R Node
}

type Call struct {
	Func string
	Args []Node
}

func (*Num) node()    {}
func (*Var) node()    {}
func (*Const) node()  {}
func (*Unary) node()  {}
func (*Binary) node() {}
func (*Call) node()   {}

func (n *Num) String() string {
	if n.Text != "" {
		return n.Text
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (v *Var) String() string   { return v.Name }
func (c *Const) String() string { return c.Name }

func (u *Unary) String() string {
	return string(u.Op) + wrap(u.X, precUnary)
}

func (b *Binary) String() string {
	p := precedence(b.Op)
	if b.Op == '^' {
		// right associative
		return wrap(b.L, p+1) + "^" + wrap(b.R, p)
	}
	return wrap(b.L, p) + " " + string(b.Op) + " " + wrap(b.R, p+1)
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Func + "(" + strings.Join(args, ", ") + ")"
}

const (
	precAdd = iota + 1
	precMul
	precUnary
	precPow
)

func precedence(op byte) int {
	switch op {
	case '+', '-':
		return precAdd
	case '*', '/':
		return precMul
	case '^':
		return precPow
	}
	return precPow + 1
}

func wrap(n Node, min int) string {
	var p int
	switch v := n.(type) {
	case *Binary:
		p = precedence(v.Op)
	case *Unary:
		p = precUnary
	default:
		return n.String()
	}
	if p < min {
		return "(" + n.String() + ")"
	}
	return n.String()
}

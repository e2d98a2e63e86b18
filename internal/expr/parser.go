package expr

import (
	"fmt"
	"strings"
)

// Names that may appear free in an expression.
const (
	VarX     = "x"
	VarAlpha = "alpha"
)

// Expression is an immutable parsed formula.
type Expression struct {
	text string
	root Node
	eval evalFunc
}

// Parse parses text into an Expression. Syntax errors are reported as
// *ParseError; references to names outside the grammar as *EvaluationError.
func Parse(text string) (*Expression, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Text: text, Pos: 0, Msg: "empty expression"}
	}
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{src: text, toks: toks}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %q", t.text)
	}
	fn, err := compile(root)
	if err != nil {
		return nil, err
	}
	return &Expression{text: text, root: root, eval: fn}, nil
}

// MustParse is like Parse but panics on error. Intended for fixed formulas.
func MustParse(text string) *Expression {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Expression) Text() string   { return e.text }
func (e *Expression) Root() Node     { return e.root }
func (e *Expression) String() string { return e.root.String() }

// DependsOn reports whether name occurs in the expression.
func (e *Expression) DependsOn(name string) bool {
	return dependsOn(e.root, name)
}

func dependsOn(n Node, name string) bool {
	switch v := n.(type) {
	case *Var:
		return v.Name == name
	case *Unary:
		return dependsOn(v.X, name)
	case *Binary:
		return dependsOn(v.L, name) || dependsOn(v.R, name)
	case *Call:
		for _, a := range v.Args {
			if dependsOn(a, name) {
				return true
			}
		}
	}
	return false
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &ParseError{Text: p.src, Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

// expr := term (('+'|'-') term)*
func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.op != '+' && t.op != '-') {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: t.op, L: left, R: right}
	}
}

// term := unary (('*'|'/') unary)*
func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.op != '*' && t.op != '/') {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: t.op, L: left, R: right}
	}
}

// unary := ('+'|'-') unary | power
func (p *parser) parseUnary() (Node, error) {
	t := p.peek()
	if t.kind == tokOp && (t.op == '+' || t.op == '-') {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if t.op == '+' {
			return x, nil
		}
		return &Unary{Op: '-', X: x}, nil
	}
	return p.parsePower()
}

// power := primary ('^' unary)?
func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if t.kind == tokOp && t.op == '^' {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Binary{Op: '^', L: base, R: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return &Num{Value: t.num, Text: t.text}, nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, p.errorf(c, "expected ')'")
		}
		return inner, nil
	case tokIdent:
		return p.parseIdent(t)
	case tokEOF:
		return nil, p.errorf(t, "unexpected end of expression")
	}
	return nil, p.errorf(t, "unexpected %q", t.text)
}

func (p *parser) parseIdent(t token) (Node, error) {
	name := t.text
	if p.peek().kind == tokLParen {
		fn, ok := functions[name]
		if !ok {
			return nil, undefined(name)
		}
		p.next()
		var args []Node
		if p.peek().kind != tokRParen {
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.peek().kind != tokComma {
					break
				}
				p.next()
			}
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, p.errorf(c, "expected ')' after arguments to %s", name)
		}
		if len(args) != fn.arity {
			return nil, p.errorf(t, "%s takes %d argument(s), got %d", name, fn.arity, len(args))
		}
		return &Call{Func: name, Args: args}, nil
	}

	switch name {
	case VarX, VarAlpha:
		return &Var{Name: name}, nil
	}
	if _, ok := constants[name]; ok {
		return &Const{Name: name}, nil
	}
	if _, ok := functions[name]; ok {
		return nil, p.errorf(t, "function %s must be called with arguments", name)
	}
	return nil, undefined(name)
}

package catalog

import (
	"fmt"
	"strconv"
)

// Expr is a compiled formula expression. Evaluation lives with the
// metric evaluator; the catalog only parses and validates.
type Expr interface{ expr() }

// NumExpr is a numeric literal.
type NumExpr struct{ Value float64 }

// RefExpr references another structure's value by name.
type RefExpr struct{ Name string }

// BinExpr combines two subexpressions with +, -, * or /.
type BinExpr struct {
	Op    byte
	Left  Expr
	Right Expr
}

func (NumExpr) expr() {}
func (RefExpr) expr() {}
func (BinExpr) expr() {}

// Refs returns every structure name the expression mentions, in
// left-to-right order, without duplicates.
func Refs(e Expr) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(Expr)
	walk = func(e Expr) {
		switch e := e.(type) {
		case RefExpr:
			if !seen[e.Name] {
				seen[e.Name] = true
				out = append(out, e.Name)
			}
		case BinExpr:
			walk(e.Left)
			walk(e.Right)
		}
	}
	walk(e)
	return out
}

// ParseFormula compiles formula text: identifiers, numeric literals,
// + - * / with conventional precedence, and parentheses.
func ParseFormula(src string) (Expr, error) {
	p := &formulaParser{src: src}
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected character %q", p.src[p.pos])
	}
	return e, nil
}

type formulaParser struct {
	src string
	pos int
}

func (p *formulaParser) errorf(format string, args ...any) error {
	return &InvalidFormulaError{Formula: p.src, Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *formulaParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *formulaParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// parseSum := parseProduct (('+' | '-') parseProduct)*
func (p *formulaParser) parseSum() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = BinExpr{Op: op, Left: left, Right: right}
	}
}

// parseProduct := parseAtom (('*' | '/') parseAtom)*
func (p *formulaParser) parseProduct() (Expr, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = BinExpr{Op: op, Left: left, Right: right}
	}
}

func (p *formulaParser) parseAtom() (Expr, error) {
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		e, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, p.errorf("expected closing parenthesis")
		}
		p.pos++
		return e, nil
	case c >= '0' && c <= '9':
		start := p.pos
		for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
			p.pos++
		}
		v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
		if err != nil {
			return nil, p.errorf("invalid number %q", p.src[start:p.pos])
		}
		return NumExpr{Value: v}, nil
	case isIdentStart(c):
		start := p.pos
		for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
			p.pos++
		}
		return RefExpr{Name: p.src[start:p.pos]}, nil
	case c == 0:
		return nil, p.errorf("unexpected end of formula")
	default:
		return nil, p.errorf("unexpected character %q", c)
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

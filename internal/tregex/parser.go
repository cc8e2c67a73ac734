package tregex

import (
	"fmt"

	"github.com/tanloong/neosca/internal/tree"
)

// compiler turns a token stream into a pattern AST.
type compiler struct {
	src    string
	tokens []token
	pos    int
	nextID int
	heads  tree.HeadRules
}

func (c *compiler) peek() token { return c.tokens[c.pos] }

func (c *compiler) next() token {
	t := c.tokens[c.pos]
	if t.typ != tokenEOF {
		c.pos++
	}
	return t
}

func (c *compiler) errorf(format string, args ...any) error {
	return &PatternSyntaxError{Pattern: c.src, Offset: c.peek().pos, Msg: fmt.Sprintf(format, args...)}
}

func (c *compiler) newPattern(desc nodeDesc, rel relExpr) *pattern {
	p := &pattern{desc: desc, rel: rel, id: c.nextID}
	c.nextID++
	return p
}

// parsePattern := nodeDesc relDisj?
func (c *compiler) parsePattern() (*pattern, error) {
	desc, err := c.parseNodeDesc()
	if err != nil {
		return nil, err
	}
	var rel relExpr
	if startsRelItem(c.peek().typ) || c.peek().typ == tokenOr {
		rel, err = c.parseRelDisj()
		if err != nil {
			return nil, err
		}
	}
	return c.newPattern(desc, rel), nil
}

func (c *compiler) parseNodeDesc() (nodeDesc, error) {
	var desc nodeDesc
	if c.peek().typ == tokenNot {
		c.next()
		desc.negated = true
	}
	switch t := c.next(); t.typ {
	case tokenLabels:
		desc.labels = t.labels
	case tokenAny:
		desc.any = true
	default:
		return desc, c.errorf("expected node description, found %s", t)
	}
	return desc, nil
}

// parseRelDisj := relConj ('|' relConj)*
func (c *compiler) parseRelDisj() (relExpr, error) {
	first, err := c.parseRelConj()
	if err != nil {
		return nil, err
	}
	items := []relExpr{first}
	for c.peek().typ == tokenOr {
		c.next()
		item, err := c.parseRelConj()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return relOr{items: items}, nil
}

// parseRelConj := relItem ('&'? relItem)*
func (c *compiler) parseRelConj() (relExpr, error) {
	first, err := c.parseRelItem()
	if err != nil {
		return nil, err
	}
	items := []relExpr{first}
	for {
		if c.peek().typ == tokenAnd {
			c.next()
		}
		if !startsRelItem(c.peek().typ) {
			break
		}
		item, err := c.parseRelItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return relAnd{items: items}, nil
}

// parseRelItem := '!'? (REL target | '[' relDisj ']')
func (c *compiler) parseRelItem() (relExpr, error) {
	negated := false
	if c.peek().typ == tokenNot {
		c.next()
		negated = true
	}
	switch t := c.peek(); t.typ {
	case tokenLBracket:
		c.next()
		inner, err := c.parseRelDisj()
		if err != nil {
			return nil, err
		}
		if end := c.next(); end.typ != tokenRBracket {
			return nil, c.errorf("expected ] to close group, found %s", end)
		}
		if negated {
			return relNot{inner: inner}, nil
		}
		return inner, nil
	case tokenRel:
		c.next()
		op, ok := relOpFor(t.rel)
		if !ok {
			return nil, &PatternSyntaxError{Pattern: c.src, Offset: t.pos, Msg: fmt.Sprintf("unknown relation %q", t.rel)}
		}
		target, err := c.parseRelTarget()
		if err != nil {
			return nil, err
		}
		return relTest{op: op, negated: negated, target: target}, nil
	default:
		return nil, c.errorf("expected relation or [, found %s", t)
	}
}

// parseRelTarget := '(' pattern ')' | nodeDesc
func (c *compiler) parseRelTarget() (*pattern, error) {
	if c.peek().typ == tokenLParen {
		c.next()
		sub, err := c.parsePattern()
		if err != nil {
			return nil, err
		}
		if end := c.next(); end.typ != tokenRParen {
			return nil, c.errorf("expected ) to close subpattern, found %s", end)
		}
		return sub, nil
	}
	desc, err := c.parseNodeDesc()
	if err != nil {
		return nil, err
	}
	return c.newPattern(desc, nil), nil
}

func startsRelItem(t tokenType) bool {
	return t == tokenRel || t == tokenNot || t == tokenLBracket
}

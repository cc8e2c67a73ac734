// Package tregex compiles structural tree patterns into typed predicates
// and matches them against constituency trees.
//
// The pattern language is the Tregex subset the structure catalog uses:
//
//	NP                    label match
//	MD|VBZ|VBP|VBD        label alternation
//	__                    any node
//	!X                    negated description
//	A < B                 A is the parent of a B
//	A > B                 A is a child of a B
//	A << B   A >> B       dominates / is dominated by
//	A <, B                B is A's leftmost child
//	A <# B                B is A's head child
//	A $+ B   A $- B       B is A's immediate right / left sister
//	A $++ B  A $-- B      B is a later / earlier sister of A
//	A !< B                relation negation
//	A < B < C             conjunction (also written A < B & < C)
//	A [< B | < C]         grouped alternation of relations
//	A < (B < C)           parenthesized subpattern as relation target
package tregex

import (
	"fmt"

	"github.com/tanloong/neosca/internal/tree"
)

// PatternSyntaxError reports malformed pattern text along with the
// offending position.
type PatternSyntaxError struct {
	Pattern string
	Offset  int
	Msg     string
}

func (e *PatternSyntaxError) Error() string {
	return fmt.Sprintf("pattern syntax error at offset %d near %q: %s", e.Offset, excerpt(e.Pattern, e.Offset), e.Msg)
}

func excerpt(s string, offset int) string {
	if offset > len(s) {
		offset = len(s)
	}
	end := offset + 12
	if end > len(s) {
		end = len(s)
	}
	return s[offset:end]
}

// nodeDesc matches a single node by its text (label, or word for leaves).
type nodeDesc struct {
	any     bool
	negated bool
	labels  []string
}

func (d nodeDesc) satisfies(n *tree.Node) bool {
	if d.any {
		return !d.negated
	}
	text := n.Text()
	for _, l := range d.labels {
		if text == l {
			return !d.negated
		}
	}
	return d.negated
}

// pattern is a node description plus an optional relation constraint.
// Each pattern gets a dense id at compile time for per-tree memoization.
type pattern struct {
	desc nodeDesc
	rel  relExpr
	id   int
}

type relExpr interface{ relExpr() }

// relAnd holds when every item holds.
type relAnd struct{ items []relExpr }

// relOr holds when at least one item holds.
type relOr struct{ items []relExpr }

// relNot inverts a grouped constraint.
type relNot struct{ inner relExpr }

// relTest holds when some candidate under op satisfies target
// (no candidate does, when negated).
type relTest struct {
	op      relOp
	negated bool
	target  *pattern
}

func (relAnd) relExpr()  {}
func (relOr) relExpr()   {}
func (relNot) relExpr()  {}
func (relTest) relExpr() {}

// Compiled is an immutable compiled pattern, safe for concurrent use.
type Compiled struct {
	src         string
	root        *pattern
	heads       tree.HeadRules
	numPatterns int
}

// String returns the source text the pattern was compiled from.
func (c *Compiled) String() string { return c.src }

// Option adjusts compilation.
type Option func(*compiler)

// WithHeadRules sets the head-finding table the <# relation consults.
// The default is the Collins Penn Treebank table.
func WithHeadRules(rules tree.HeadRules) Option {
	return func(c *compiler) { c.heads = rules }
}

// Compile parses a pattern string into a reusable predicate.
func Compile(src string, opts ...Option) (*Compiled, error) {
	c := &compiler{src: src, heads: tree.CollinsRules()}
	for _, opt := range opts {
		opt(c)
	}
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	c.tokens = tokens
	root, err := c.parsePattern()
	if err != nil {
		return nil, err
	}
	if c.peek().typ != tokenEOF {
		return nil, c.errorf("unexpected %s after pattern", c.peek())
	}
	return &Compiled{src: src, root: root, heads: c.heads, numPatterns: c.nextID}, nil
}

// MustCompile is Compile for patterns known to be valid, such as the
// built-in catalog. It panics on error.
func MustCompile(src string, opts ...Option) *Compiled {
	c, err := Compile(src, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

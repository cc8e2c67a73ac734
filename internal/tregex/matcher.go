package tregex

import "github.com/tanloong/neosca/internal/tree"

// Matches evaluates the pattern at every node of the tree rooted at root
// and returns the matching nodes in pre-order. Matching is pure (the tree
// is never mutated) and deterministic: the same tree and pattern always
// produce the same ordered result. A node appears at most once however
// many relation branches succeed for it.
func (c *Compiled) Matches(root *tree.Node) []*tree.Node {
	m := &matcher{c: c, memo: make(map[memoKey]bool)}
	var out []*tree.Node
	root.Walk(func(n *tree.Node) bool {
		if m.matchAt(c.root, n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// MatchCount returns the number of matching nodes without materializing
// the match set.
func (c *Compiled) MatchCount(root *tree.Node) int {
	m := &matcher{c: c, memo: make(map[memoKey]bool)}
	count := 0
	root.Walk(func(n *tree.Node) bool {
		if m.matchAt(c.root, n) {
			count++
		}
		return true
	})
	return count
}

// matcher carries the per-tree evaluation cache. Subpatterns are often
// re-checked against the same node from several relation sites; the memo
// makes each (pattern, node) pair cost one evaluation.
type matcher struct {
	c    *Compiled
	memo map[memoKey]bool
}

type memoKey struct {
	pat  int
	node int
}

func (m *matcher) matchAt(p *pattern, n *tree.Node) bool {
	key := memoKey{pat: p.id, node: n.Order()}
	if v, ok := m.memo[key]; ok {
		return v
	}
	result := p.desc.satisfies(n) && (p.rel == nil || m.evalRel(p.rel, n))
	m.memo[key] = result
	return result
}

func (m *matcher) evalRel(e relExpr, n *tree.Node) bool {
	switch e := e.(type) {
	case relAnd:
		for _, item := range e.items {
			if !m.evalRel(item, n) {
				return false
			}
		}
		return true
	case relOr:
		for _, item := range e.items {
			if m.evalRel(item, n) {
				return true
			}
		}
		return false
	case relNot:
		return !m.evalRel(e.inner, n)
	case relTest:
		found := false
		candidates(e.op, n, m.c.heads, func(cand *tree.Node) bool {
			if m.matchAt(e.target, cand) {
				found = true
				return false
			}
			return true
		})
		return found != e.negated
	}
	return false
}

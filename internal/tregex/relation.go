package tregex

import "github.com/tanloong/neosca/internal/tree"

// relOp enumerates the structural relations between a candidate node and
// the nodes its relation target is checked against.
type relOp int

const (
	opParentOf       relOp = iota // <   candidates: children
	opChildOf                     // >   candidates: parent
	opDominates                   // <<  candidates: proper descendants
	opDominatedBy                 // >>  candidates: proper ancestors
	opLeftmostChild               // <,  candidates: first child
	opHeadedBy                    // <#  candidates: head child
	opImmRightSister              // $+  candidates: sister immediately to the right
	opImmLeftSister               // $-  candidates: sister immediately to the left
	opRightSisters                // $++ candidates: all later sisters
	opLeftSisters                 // $-- candidates: all earlier sisters
)

func relOpFor(symbol string) (relOp, bool) {
	switch symbol {
	case "<":
		return opParentOf, true
	case ">":
		return opChildOf, true
	case "<<":
		return opDominates, true
	case ">>":
		return opDominatedBy, true
	case "<,":
		return opLeftmostChild, true
	case "<#":
		return opHeadedBy, true
	case "$+":
		return opImmRightSister, true
	case "$-":
		return opImmLeftSister, true
	case "$++":
		return opRightSisters, true
	case "$--":
		return opLeftSisters, true
	}
	return 0, false
}

// candidates yields each node related to n under op, stopping early when
// yield returns false. Iteration order is deterministic: structure order
// for children and descendants, nearest-first for ancestors and sisters.
func candidates(op relOp, n *tree.Node, heads tree.HeadRules, yield func(*tree.Node) bool) {
	switch op {
	case opParentOf:
		for _, c := range n.Children {
			if !yield(c) {
				return
			}
		}
	case opChildOf:
		if n.Parent != nil {
			yield(n.Parent)
		}
	case opDominates:
		// Pre-order over proper descendants, iterative.
		stack := make([]*tree.Node, 0, len(n.Children))
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(cur) {
				return
			}
			for i := len(cur.Children) - 1; i >= 0; i-- {
				stack = append(stack, cur.Children[i])
			}
		}
	case opDominatedBy:
		for p := n.Parent; p != nil; p = p.Parent {
			if !yield(p) {
				return
			}
		}
	case opLeftmostChild:
		if len(n.Children) > 0 {
			yield(n.Children[0])
		}
	case opHeadedBy:
		if head := heads.HeadChild(n); head != nil {
			yield(head)
		}
	case opImmRightSister:
		if sis := sisterAt(n, 1); sis != nil {
			yield(sis)
		}
	case opImmLeftSister:
		if sis := sisterAt(n, -1); sis != nil {
			yield(sis)
		}
	case opRightSisters:
		if n.Parent == nil {
			return
		}
		sibs := n.Parent.Children
		for i := n.Index() + 1; i < len(sibs); i++ {
			if !yield(sibs[i]) {
				return
			}
		}
	case opLeftSisters:
		if n.Parent == nil {
			return
		}
		sibs := n.Parent.Children
		for i := n.Index() - 1; i >= 0; i-- {
			if !yield(sibs[i]) {
				return
			}
		}
	}
}

func sisterAt(n *tree.Node, offset int) *tree.Node {
	if n.Parent == nil {
		return nil
	}
	i := n.Index() + offset
	sibs := n.Parent.Children
	if i < 0 || i >= len(sibs) {
		return nil
	}
	return sibs[i]
}

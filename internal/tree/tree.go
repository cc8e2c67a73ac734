// Package tree models constituency parse trees read from bracketed strings
// and exposes the structural relations the pattern matcher is built on.
package tree

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Node is a single constituent. Internal nodes carry a phrase or POS label;
// leaf nodes carry the terminal word. A node produced from "(a)" (label, no
// children, no word) is treated as a leaf whose text is its label.
type Node struct {
	Label    string
	Word     string
	Children []*Node
	Parent   *Node

	// Pre-order position within its tree, assigned at build time.
	// Used for deterministic match ordering and cache keys.
	order int
}

// MalformedTreeError reports a bracketed string that does not describe a tree.
type MalformedTreeError struct {
	Msg    string
	Offset int // byte offset into the input
}

func (e *MalformedTreeError) Error() string {
	return fmt.Sprintf("malformed tree at offset %d: %s", e.Offset, e.Msg)
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Text is the string a pattern's label match is checked against:
// the terminal word for word leaves, the label otherwise.
func (n *Node) Text() string {
	if n.Word != "" {
		return n.Word
	}
	return n.Label
}

// Order returns the node's pre-order index within its tree.
func (n *Node) Order() int { return n.order }

// Index returns n's position among its siblings, or -1 for a root.
func (n *Node) Index() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// Walk visits n and every descendant in pre-order (top-down, left-to-right)
// using an explicit stack so deeply right-branching trees cannot exhaust the
// goroutine stack. Traversal stops early if visit returns false.
func (n *Node) Walk(visit func(*Node) bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(cur) {
			return
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
}

// Size returns the number of nodes in the subtree rooted at n.
func (n *Node) Size() int {
	count := 0
	n.Walk(func(*Node) bool { count++; return true })
	return count
}

// String renders the subtree in bracketed form, e.g. "(NP (PRP I))".
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if n.IsLeaf() {
		sb.WriteString(n.Text())
		return
	}
	sb.WriteByte('(')
	sb.WriteString(n.Label)
	for _, c := range n.Children {
		sb.WriteByte(' ')
		c.write(sb)
	}
	sb.WriteByte(')')
}

// SpanString returns the terminal words of the subtree joined by spaces,
// the span a matched structure covers in the original sentence.
func (n *Node) SpanString() string {
	var words []string
	n.Walk(func(m *Node) bool {
		if m.IsLeaf() {
			words = append(words, m.Text())
		}
		return true
	})
	return strings.Join(words, " ")
}

// wordLabel recognizes POS labels whose leaves count as words: runs of
// capital letters with an optional trailing $ (PRP$, WP$).
var wordLabel = regexp.MustCompile(`^[A-Z]+\$?$`)

// WordCount counts terminal words in the subtree. A leaf counts when its
// parent label looks like a POS tag and the word itself contains no
// bracket or dash characters, which excludes punctuation and parser
// artifacts. This reproduces the leaf rule the L2SCA word measure uses.
func (n *Node) WordCount() int {
	count := 0
	n.Walk(func(m *Node) bool {
		if !m.IsLeaf() || m.Parent == nil {
			return true
		}
		if !wordLabel.MatchString(m.Parent.Label) {
			return true
		}
		if strings.ContainsAny(m.Text(), "()—–-") {
			return true
		}
		count++
		return true
	})
	return count
}

// Parse reads exactly one bracketed tree from s.
func Parse(s string) (*Node, error) {
	trees, err := ParseAll(s)
	if err != nil {
		return nil, err
	}
	if len(trees) != 1 {
		return nil, &MalformedTreeError{Msg: fmt.Sprintf("expected one tree, found %d", len(trees))}
	}
	return trees[0], nil
}

// ParseAll reads a sequence of bracketed trees separated by whitespace,
// one tree per sentence. The parse is a flat stack machine, never recursive.
func ParseAll(s string) ([]*Node, error) {
	var trees []*Node
	var stack []*Node

	i := 0
	for i < len(s) {
		r := rune(s[i])
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			i++
			start := i
			for i < len(s) && s[i] != '(' && s[i] != ')' && !unicode.IsSpace(rune(s[i])) {
				i++
			}
			node := &Node{Label: s[start:i]}
			stack = append(stack, node)
		case r == ')':
			if len(stack) == 0 {
				return nil, &MalformedTreeError{Msg: "unbalanced closing bracket", Offset: i}
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				if top.Label == "" && len(top.Children) == 0 {
					return nil, &MalformedTreeError{Msg: "empty tree", Offset: i}
				}
				number(top)
				trees = append(trees, top)
			} else {
				parent := stack[len(stack)-1]
				top.Parent = parent
				parent.Children = append(parent.Children, top)
			}
			i++
		default:
			start := i
			for i < len(s) && s[i] != '(' && s[i] != ')' && !unicode.IsSpace(rune(s[i])) {
				i++
			}
			if len(stack) == 0 {
				return nil, &MalformedTreeError{Msg: fmt.Sprintf("text outside brackets: %q", s[start:i]), Offset: start}
			}
			parent := stack[len(stack)-1]
			leaf := &Node{Word: s[start:i], Parent: parent}
			parent.Children = append(parent.Children, leaf)
		}
	}

	if len(stack) > 0 {
		return nil, &MalformedTreeError{Msg: "unbalanced opening bracket", Offset: len(s)}
	}
	if len(trees) == 0 {
		return nil, &MalformedTreeError{Msg: "empty input"}
	}
	return trees, nil
}

// number assigns pre-order indices after a tree is fully built.
func number(root *Node) {
	order := 0
	root.Walk(func(n *Node) bool {
		n.order = order
		order++
		return true
	})
}

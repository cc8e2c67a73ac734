package tree

import (
	"errors"
	"strings"
	"testing"
)

func TestParse_SimpleSentence(t *testing.T) {
	root, err := Parse("(ROOT (S (NP (PRP I)) (VP (VBP run))))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.Label != "ROOT" {
		t.Errorf("expected root label ROOT, got %q", root.Label)
	}
	if root.Parent != nil {
		t.Error("expected root to have no parent")
	}
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child under ROOT, got %d", len(root.Children))
	}
	s := root.Children[0]
	if s.Label != "S" || len(s.Children) != 2 {
		t.Fatalf("expected S with 2 children, got %q with %d", s.Label, len(s.Children))
	}
	if s.Children[0].Label != "NP" || s.Children[1].Label != "VP" {
		t.Errorf("expected NP VP, got %q %q", s.Children[0].Label, s.Children[1].Label)
	}
	if got := root.SpanString(); got != "I run" {
		t.Errorf("expected span %q, got %q", "I run", got)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	in := "(ROOT (S (NP (PRP I)) (VP (VBP run))))"
	root, err := Parse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := root.String(); got != in {
		t.Errorf("expected %q, got %q", in, got)
	}
}

func TestParseAll_MultipleTrees(t *testing.T) {
	trees, err := ParseAll("(ROOT (NP (DT a)))\n(ROOT (NP (DT the)))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trees) != 2 {
		t.Fatalf("expected 2 trees, got %d", len(trees))
	}
	if trees[0].SpanString() != "a" || trees[1].SpanString() != "the" {
		t.Errorf("unexpected spans %q, %q", trees[0].SpanString(), trees[1].SpanString())
	}
}

func TestParse_MalformedInputs(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "  \n\t"},
		{"unbalanced open", "(ROOT (NP (DT a))"},
		{"unbalanced close", "(ROOT (NP (DT a))))"},
		{"text outside brackets", "hello (NP (DT a))"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAll(tc.input)
			if err == nil {
				t.Fatalf("expected error for %q", tc.input)
			}
			var mte *MalformedTreeError
			if !errors.As(err, &mte) {
				t.Errorf("expected MalformedTreeError, got %T: %v", err, err)
			}
		})
	}
}

func TestWalk_PreOrder(t *testing.T) {
	root, err := Parse("(A (B (C c)) (D d))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var labels []string
	root.Walk(func(n *Node) bool {
		labels = append(labels, n.Text())
		return true
	})
	want := "A B C c D d"
	if got := strings.Join(labels, " "); got != want {
		t.Errorf("expected pre-order %q, got %q", want, got)
	}
	// Orders must be strictly increasing in visit order.
	prev := -1
	root.Walk(func(n *Node) bool {
		if n.Order() <= prev {
			t.Errorf("order not increasing at %q: %d after %d", n.Text(), n.Order(), prev)
		}
		prev = n.Order()
		return true
	})
}

func TestWordCount(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"(ROOT (S (NP (PRP I)) (VP (VBP run))))", 2},
		{"(ROOT (S (NP (PRP I)) (VP (VBP run)) (. .)))", 2},          // punctuation label excluded
		{"(ROOT (S (NP (PRP$ my) (NN dog)) (VP (VBZ barks))))", 3},   // PRP$ counts
		{"(ROOT (S (NP (NN x)) (VP (VBD did) (PRT (RP -)))))", 2},    // dash word excluded
	}
	for _, tc := range cases {
		root, err := Parse(tc.input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := root.WordCount(); got != tc.want {
			t.Errorf("WordCount(%q): expected %d, got %d", tc.input, tc.want, got)
		}
	}
}

func TestHeadRules_VP(t *testing.T) {
	root, err := Parse("(VP (VBP run) (NP (NN home)))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	head := CollinsRules().HeadChild(root)
	if head == nil || head.Label != "VBP" {
		t.Fatalf("expected VP head VBP, got %v", head)
	}
}

func TestHeadRules_SBARPrefersWH(t *testing.T) {
	root, err := Parse("(SBAR (WHNP (WP who)) (S (VP (VBZ runs))))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	head := CollinsRules().HeadChild(root)
	if head == nil || head.Label != "WHNP" {
		t.Fatalf("expected SBAR head WHNP, got %v", head)
	}
}

func TestHeadRules_NPPossessive(t *testing.T) {
	root, err := Parse("(NP (NNP John) (POS 's))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	head := CollinsRules().HeadChild(root)
	if head == nil || head.Label != "POS" {
		t.Fatalf("expected NP head POS, got %v", head)
	}
}

func TestHeadRules_UnknownLabel(t *testing.T) {
	root, err := Parse("(XYZ (A a) (B b))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if head := CollinsRules().HeadChild(root); head != nil {
		t.Errorf("expected nil head for uncovered label, got %v", head)
	}
}

func TestHeadRules_SingleChild(t *testing.T) {
	root, err := Parse("(XYZ (A a))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	head := CollinsRules().HeadChild(root)
	if head == nil || head.Label != "A" {
		t.Fatalf("expected single child as head, got %v", head)
	}
}

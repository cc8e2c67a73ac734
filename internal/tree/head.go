package tree

// Head finding identifies the head child of a phrase. The convention is
// supplied as a per-label rule table rather than hard-coded: head rules
// differ between grammar formalisms, and callers may load their own table.

// SearchDir controls how a HeadRule scans a node's children.
type SearchDir string

const (
	// SearchLeft tries each candidate label in order, scanning children
	// left to right for the first child carrying that label.
	SearchLeft SearchDir = "left"
	// SearchRight tries each candidate label in order, scanning children
	// right to left.
	SearchRight SearchDir = "right"
	// SearchLeftDis scans children left to right, taking the first child
	// whose label is any of the candidates.
	SearchLeftDis SearchDir = "leftdis"
	// SearchRightDis scans children right to left, taking the first child
	// whose label is any of the candidates.
	SearchRightDis SearchDir = "rightdis"
)

// HeadRule is one pass over a node's children.
type HeadRule struct {
	Dir    SearchDir `json:"dir" yaml:"dir"`
	Labels []string  `json:"labels" yaml:"labels"`
}

// HeadRules maps a parent label to its ordered rule passes.
type HeadRules map[string][]HeadRule

// HeadChild returns the head child of n under the rule table, or nil for
// leaves and for labels the table does not cover.
func (r HeadRules) HeadChild(n *Node) *Node {
	if n == nil || n.IsLeaf() {
		return nil
	}
	if len(n.Children) == 1 {
		return n.Children[0]
	}

	// NP convention: a final possessive marker heads the phrase.
	if n.Label == "NP" {
		if last := n.Children[len(n.Children)-1]; last.Label == "POS" {
			return last
		}
	}

	rules, ok := r[n.Label]
	if !ok {
		return nil
	}
	for _, rule := range rules {
		if head := applyRule(n.Children, rule); head != nil {
			return head
		}
	}

	// No pass matched: default to the end the first pass scans from.
	if len(rules) > 0 && (rules[0].Dir == SearchRight || rules[0].Dir == SearchRightDis) {
		return n.Children[len(n.Children)-1]
	}
	return n.Children[0]
}

func applyRule(children []*Node, rule HeadRule) *Node {
	switch rule.Dir {
	case SearchLeft:
		for _, label := range rule.Labels {
			for _, c := range children {
				if c.Label == label {
					return c
				}
			}
		}
	case SearchRight:
		for _, label := range rule.Labels {
			for i := len(children) - 1; i >= 0; i-- {
				if children[i].Label == label {
					return children[i]
				}
			}
		}
	case SearchLeftDis:
		for _, c := range children {
			for _, label := range rule.Labels {
				if c.Label == label {
					return c
				}
			}
		}
	case SearchRightDis:
		for i := len(children) - 1; i >= 0; i-- {
			for _, label := range rule.Labels {
				if children[i].Label == label {
					return children[i]
				}
			}
		}
	}
	return nil
}

// CollinsRules returns the Collins head table for the Penn Treebank label
// set, the convention the built-in structure catalog was written against.
func CollinsRules() HeadRules {
	return HeadRules{
		"ADJP":   {{SearchLeft, []string{"NNS", "QP", "NN", "$", "ADVP", "JJ", "VBN", "VBG", "ADJP", "JJR", "NP", "JJS", "DT", "FW", "RBR", "RBS", "SBAR", "RB"}}},
		"ADVP":   {{SearchRight, []string{"RB", "RBR", "RBS", "FW", "ADVP", "TO", "CD", "JJR", "JJ", "IN", "NP", "JJS", "NN"}}},
		"CONJP":  {{SearchRight, []string{"CC", "RB", "IN"}}},
		"FRAG":   {{SearchRight, nil}},
		"INTJ":   {{SearchLeft, nil}},
		"LST":    {{SearchRight, []string{"LS", ":"}}},
		"NAC":    {{SearchLeft, []string{"NN", "NNS", "NNP", "NNPS", "NP", "NAC", "EX", "$", "CD", "QP", "PRP", "VBG", "JJ", "JJS", "JJR", "ADJP", "FW"}}},
		"NX":     {{SearchLeft, nil}},
		"PP":     {{SearchRight, []string{"IN", "TO", "VBG", "VBN", "RP", "FW"}}},
		"PRN":    {{SearchLeft, nil}},
		"PRT":    {{SearchRight, []string{"RP"}}},
		"QP":     {{SearchLeft, []string{"$", "IN", "NNS", "NN", "JJ", "RB", "DT", "CD", "NCD", "QP", "JJR", "JJS"}}},
		"RRC":    {{SearchRight, []string{"VP", "NP", "ADVP", "ADJP", "PP"}}},
		"S":      {{SearchLeft, []string{"TO", "IN", "VP", "S", "SBAR", "ADJP", "UCP", "NP"}}},
		"SBAR":   {{SearchLeft, []string{"WHNP", "WHPP", "WHADVP", "WHADJP", "IN", "DT", "S", "SQ", "SINV", "SBAR", "FRAG"}}},
		"SBARQ":  {{SearchLeft, []string{"SQ", "S", "SINV", "SBARQ", "FRAG"}}},
		"SINV":   {{SearchLeft, []string{"VBZ", "VBD", "VBP", "VB", "MD", "VP", "S", "SINV", "ADJP", "NP"}}},
		"SQ":     {{SearchLeft, []string{"VBZ", "VBD", "VBP", "VB", "MD", "VP", "SQ"}}},
		"UCP":    {{SearchRight, nil}},
		"VP":     {{SearchLeft, []string{"TO", "VBD", "VBN", "MD", "VBZ", "VB", "VBG", "VBP", "VP", "ADJP", "NN", "NNS", "NP"}}},
		"WHADJP": {{SearchLeft, []string{"CC", "WRB", "JJ", "ADJP"}}},
		"WHADVP": {{SearchRight, []string{"CC", "WRB"}}},
		"WHNP":   {{SearchLeft, []string{"WDT", "WP", "WP$", "WHADJP", "WHPP", "WHNP"}}},
		"WHPP":   {{SearchRight, []string{"IN", "TO", "FW"}}},
		"NP": {
			{SearchRightDis, []string{"NN", "NNP", "NNPS", "NNS", "NX", "POS", "JJR"}},
			{SearchLeft, []string{"NP"}},
			{SearchRightDis, []string{"$", "ADJP", "PRN"}},
			{SearchRightDis, []string{"CD"}},
			{SearchRightDis, []string{"JJ", "JJS", "RB", "QP"}},
		},
		"ROOT": {{SearchLeft, nil}},
		"TOP":  {{SearchLeft, nil}},
	}
}

package catalog

// defaultDefinitions is the built-in syntactic complexity catalog. The
// base patterns follow the L2SCA production-rule definitions; the
// derived measures are the standard length and density ratios computed
// from them.
var defaultDefinitions = []Definition{
	{
		Name:        "W",
		Description: "words",
		Counter:     CounterWords,
	},
	{
		Name:        "S",
		Description: "sentences",
		Pattern:     "ROOT !> __",
	},
	{
		Name:        "VP1",
		Description: "regular verb phrases",
		Pattern:     "VP > S|SINV|SQ",
	},
	{
		Name:        "VP2",
		Description: "verb phrases in inverted yes/no questions or wh-questions",
		Pattern:     "MD|VBZ|VBP|VBD > (SQ !< VP)",
	},
	{
		Name:        "C1",
		Description: "regular clauses",
		Pattern:     "S|SINV|SQ [> ROOT <, (VP <# VB) | <# MD|VBZ|VBP|VBD | < (VP [<# MD|VBP|VBZ|VBD | < CC < (VP <# MD|VBP|VBZ|VBD)])]",
	},
	{
		Name:        "C2",
		Description: "fragment clauses",
		Pattern:     "FRAG > ROOT !<< (S|SINV|SQ [> ROOT <, (VP <# VB) | <# MD|VBZ|VBP|VBD | < (VP [<# MD|VBP|VBZ|VBD | < CC < (VP <# MD|VBP|VBZ|VBD)])])",
	},
	{
		Name:        "T1",
		Description: "regular T-units",
		Pattern:     "S|SBARQ|SINV|SQ > ROOT | [$-- S|SBARQ|SINV|SQ !>> SBAR|VP]",
	},
	{
		Name:        "T2",
		Description: "fragment T-units",
		Pattern:     "FRAG > ROOT !<< (S|SBARQ|SINV|SQ > ROOT | [$-- S|SBARQ|SINV|SQ !>> SBAR|VP])",
	},
	{
		Name:        "CN1",
		Description: "complex nominals, type 1",
		Pattern:     "NP !> NP [<< JJ|POS|PP|S|VBG | << (NP $++ NP !$+ CC)]",
	},
	{
		Name:        "CN2",
		Description: "complex nominals, type 2",
		Pattern:     "SBAR [<# WHNP | <# (IN < That|that|For|for) | <, S] & [$+ VP | > VP]",
	},
	{
		Name:        "CN3",
		Description: "complex nominals, type 3",
		Pattern:     "S < (VP <# VBG|TO) $+ VP",
	},
	{
		Name:        "DC",
		Description: "dependent clauses",
		Pattern:     "SBAR < (S|SINV|SQ [> ROOT <, (VP <# VB) | <# MD|VBZ|VBP|VBD | < (VP [<# MD|VBP|VBZ|VBD | < CC < (VP <# MD|VBP|VBZ|VBD)])])",
	},
	{
		Name:        "CT",
		Description: "complex T-units",
		Pattern:     "S|SBARQ|SINV|SQ [> ROOT | [$-- S|SBARQ|SINV|SQ !>> SBAR|VP]] << (SBAR < (S|SINV|SQ [> ROOT <, (VP <# VB) | <# MD|VBZ|VBP|VBD | < (VP [<# MD|VBP|VBZ|VBD | < CC < (VP <# MD|VBP|VBZ|VBD)])]))",
	},
	{
		Name:        "CP",
		Description: "coordinate phrases",
		Pattern:     "ADJP|ADVP|NP|VP < CC",
	},
	{Name: "VP", Description: "verb phrases", Formula: "VP1 + VP2"},
	{Name: "C", Description: "clauses", Formula: "C1 + C2"},
	{Name: "T", Description: "T-units", Formula: "T1 + T2"},
	{Name: "CN", Description: "complex nominals", Formula: "CN1 + CN2 + CN3"},
	{Name: "MLS", Description: "mean length of sentence", Formula: "W / S"},
	{Name: "MLT", Description: "mean length of T-unit", Formula: "W / T"},
	{Name: "MLC", Description: "mean length of clause", Formula: "W / C"},
	{Name: "C/S", Description: "clauses per sentence", Formula: "C / S"},
	{Name: "VP/T", Description: "verb phrases per T-unit", Formula: "VP / T"},
	{Name: "C/T", Description: "clauses per T-unit", Formula: "C / T"},
	{Name: "DC/C", Description: "dependent clauses per clause", Formula: "DC / C"},
	{Name: "DC/T", Description: "dependent clauses per T-unit", Formula: "DC / T"},
	{Name: "T/S", Description: "T-units per sentence", Formula: "T / S"},
	{Name: "CT/T", Description: "complex T-unit ratio", Formula: "CT / T"},
	{Name: "CP/T", Description: "coordinate phrases per T-unit", Formula: "CP / T"},
	{Name: "CP/C", Description: "coordinate phrases per clause", Formula: "CP / C"},
	{Name: "CN/T", Description: "complex nominals per T-unit", Formula: "CN / T"},
	{Name: "CN/C", Description: "complex nominals per clause", Formula: "CN / C"},
}

// DefaultMeasures is the report column order for the built-in catalog:
// raw counts first, then the derived ratios.
var DefaultMeasures = []string{
	"W", "S", "VP", "C", "T", "DC", "CT", "CP", "CN",
	"MLS", "MLT", "MLC",
	"C/S", "VP/T", "C/T", "DC/C", "DC/T", "T/S",
	"CT/T", "CP/T", "CP/C", "CN/T", "CN/C",
}

// Default returns the built-in catalog. The definitions are fixed at
// build time, so a load failure is a programming error.
func Default(opts ...Option) *Catalog {
	opts = append([]Option{WithMeasures(DefaultMeasures)}, opts...)
	cat, err := Load(DefaultDefinitions(), opts...)
	if err != nil {
		panic("catalog: built-in definitions failed to load: " + err.Error())
	}
	return cat
}

// DefaultDefinitions returns a copy of the built-in definitions, usable
// as a starting point for a customized catalog.
func DefaultDefinitions() []Definition {
	defs := make([]Definition, len(defaultDefinitions))
	copy(defs, defaultDefinitions)
	return defs
}

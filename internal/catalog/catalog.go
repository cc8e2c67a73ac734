// Package catalog holds the structure definitions the analyzer counts:
// pattern-defined base structures and formula-defined derived structures,
// with load-time validation and dependency ordering.
package catalog

import (
	"fmt"
	"sort"

	"github.com/tanloong/neosca/internal/tree"
	"github.com/tanloong/neosca/internal/tregex"
)

// CounterWords is the built-in counter kind for the word measure, which
// counts terminal words rather than matching a pattern.
const CounterWords = "words"

// Definition is one catalog record as supplied by the caller. Exactly one
// of Pattern, Formula, or Counter must be set.
type Definition struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Pattern     string `json:"tregex_pattern,omitempty" yaml:"tregex_pattern,omitempty"`
	Formula     string `json:"value_source,omitempty" yaml:"value_source,omitempty"`
	Counter     string `json:"counter,omitempty" yaml:"counter,omitempty"`
}

// Structure is a validated, compiled catalog entry.
type Structure struct {
	Definition
	Compiled *tregex.Compiled // set for pattern-defined structures
	Expr     Expr             // set for formula-defined structures
}

// IsBase reports whether the structure is evaluated directly against
// trees (pattern or counter) rather than derived from other values.
func (s *Structure) IsBase() bool { return s.Expr == nil }

// Catalog is an immutable, validated set of structures. Once loaded it is
// shared read-only across all evaluation work; multiple catalogs can
// coexist in one process.
type Catalog struct {
	structures []*Structure
	byName     map[string]*Structure
	evalOrder  []string // derived structures in dependency order
	measures   []string // report column order; empty means load order
}

// Option adjusts catalog loading.
type Option func(*loader)

// WithHeadRules sets the head-finding table patterns compile against.
func WithHeadRules(rules tree.HeadRules) Option {
	return func(l *loader) { l.compileOpts = []tregex.Option{tregex.WithHeadRules(rules)} }
}

// WithMeasures sets the report column order. Names must be defined in
// the catalog.
func WithMeasures(names []string) Option {
	return func(l *loader) { l.measures = names }
}

type loader struct {
	compileOpts []tregex.Option
	measures    []string
}

// Load validates and compiles a catalog. Any error aborts the load.
func Load(defs []Definition, opts ...Option) (*Catalog, error) {
	cat, errs := load(defs, false, opts...)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return cat, nil
}

// LoadPartial compiles what it can: entries with bad patterns or formulas
// are dropped and reported, as are formulas referencing dropped entries.
// Reference cycles and duplicate names are still reported per entry.
func LoadPartial(defs []Definition, opts ...Option) (*Catalog, []error) {
	return load(defs, true, opts...)
}

func load(defs []Definition, partial bool, opts ...Option) (*Catalog, []error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}

	var errs []error
	fail := func(err error) bool {
		errs = append(errs, err)
		return partial
	}

	cat := &Catalog{byName: make(map[string]*Structure, len(defs))}
	for _, def := range defs {
		if _, dup := cat.byName[def.Name]; dup {
			if !fail(&DuplicateStructureError{Name: def.Name}) {
				return nil, errs
			}
			continue
		}
		s, err := compile(def, l.compileOpts)
		if err != nil {
			if !fail(err) {
				return nil, errs
			}
			continue
		}
		cat.structures = append(cat.structures, s)
		cat.byName[def.Name] = s
	}

	// Formulas may only reference defined names. In partial mode a broken
	// reference drops the referencing structure, which may strand further
	// formulas; iterate until the survivors are closed under reference.
	for {
		removed := false
		for _, s := range cat.structures {
			if s.Expr == nil {
				continue
			}
			for _, ref := range Refs(s.Expr) {
				if _, ok := cat.byName[ref]; ok {
					continue
				}
				if !fail(&UnknownStructureError{Name: s.Name, Ref: ref}) {
					return nil, errs
				}
				cat.remove(s.Name)
				removed = true
				break
			}
		}
		if !removed {
			break
		}
	}

	order, cycle := cat.sortDerived()
	if cycle != nil {
		if !fail(&CyclicFormulaError{Cycle: cycle}) {
			return nil, errs
		}
		// Drop the whole cycle, then reload so structures referencing into
		// it are dropped and reported too.
		for _, name := range cycle {
			cat.remove(name)
		}
		cat, more := load(cat.definitions(), true, opts...)
		return cat, append(errs, more...)
	}
	cat.evalOrder = order

	for _, name := range l.measures {
		if _, ok := cat.byName[name]; !ok {
			if !fail(&UnknownStructureError{Name: "measures", Ref: name}) {
				return nil, errs
			}
			continue
		}
		cat.measures = append(cat.measures, name)
	}
	return cat, errs
}

func compile(def Definition, compileOpts []tregex.Option) (*Structure, error) {
	set := 0
	for _, v := range []string{def.Pattern, def.Formula, def.Counter} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, &InvalidDefinitionError{Name: def.Name, Msg: "exactly one of tregex_pattern, value_source, or counter is required"}
	}

	s := &Structure{Definition: def}
	switch {
	case def.Pattern != "":
		compiled, err := tregex.Compile(def.Pattern, compileOpts...)
		if err != nil {
			return nil, fmt.Errorf("structure %q: %w", def.Name, err)
		}
		s.Compiled = compiled
	case def.Formula != "":
		expr, err := ParseFormula(def.Formula)
		if err != nil {
			return nil, fmt.Errorf("structure %q: %w", def.Name, err)
		}
		s.Expr = expr
	case def.Counter != "":
		if def.Counter != CounterWords {
			return nil, &InvalidDefinitionError{Name: def.Name, Msg: fmt.Sprintf("unknown counter %q", def.Counter)}
		}
	}
	return s, nil
}

func (c *Catalog) remove(name string) {
	if _, ok := c.byName[name]; !ok {
		return
	}
	delete(c.byName, name)
	for i, s := range c.structures {
		if s.Name == name {
			c.structures = append(c.structures[:i], c.structures[i+1:]...)
			break
		}
	}
}

func (c *Catalog) definitions() []Definition {
	defs := make([]Definition, 0, len(c.structures))
	for _, s := range c.structures {
		defs = append(defs, s.Definition)
	}
	return defs
}

// sortDerived topologically orders formula-defined structures so every
// structure appears after everything it references (Kahn's algorithm).
// On a cycle it returns nil and the cycle members in reference order.
func (c *Catalog) sortDerived() ([]string, []string) {
	// indegree counts unresolved derived->derived references.
	indegree := make(map[string]int)
	dependents := make(map[string][]string)
	for _, s := range c.structures {
		if s.Expr == nil {
			continue
		}
		indegree[s.Name] = 0
	}
	for _, s := range c.structures {
		if s.Expr == nil {
			continue
		}
		for _, ref := range Refs(s.Expr) {
			if _, derived := indegree[ref]; derived || ref == s.Name {
				indegree[s.Name]++
				dependents[ref] = append(dependents[ref], s.Name)
			}
		}
	}

	var queue []string
	for _, s := range c.structures { // catalog order keeps the sort stable
		if s.Expr != nil && indegree[s.Name] == 0 {
			queue = append(queue, s.Name)
		}
	}

	var order []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)
		for _, dep := range dependents[name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) == len(indegree) {
		return order, nil
	}

	// The leftovers contain at least one cycle; walk references to name it.
	var stuck []string
	for name, deg := range indegree {
		if deg > 0 {
			stuck = append(stuck, name)
		}
	}
	sort.Strings(stuck)
	return nil, c.findCycle(stuck)
}

func (c *Catalog) findCycle(stuck []string) []string {
	inStuck := make(map[string]bool, len(stuck))
	for _, name := range stuck {
		inStuck[name] = true
	}
	// Follow references until a name repeats; the repetition closes the cycle.
	seen := make(map[string]int)
	var path []string
	cur := stuck[0]
	for {
		if at, ok := seen[cur]; ok {
			return path[at:]
		}
		seen[cur] = len(path)
		path = append(path, cur)
		next := ""
		for _, ref := range Refs(c.byName[cur].Expr) {
			if ref == cur || inStuck[ref] {
				next = ref
				break
			}
		}
		if next == "" {
			// Shouldn't happen for a stuck node; fall back to what we have.
			return path
		}
		cur = next
	}
}

// Get returns the structure with the given name.
func (c *Catalog) Get(name string) (*Structure, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// Structures returns every entry in catalog (load) order.
func (c *Catalog) Structures() []*Structure { return c.structures }

// Names returns every structure name in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.structures))
	for i, s := range c.structures {
		names[i] = s.Name
	}
	return names
}

// Base returns the structures evaluated directly against trees.
func (c *Catalog) Base() []*Structure {
	var out []*Structure
	for _, s := range c.structures {
		if s.IsBase() {
			out = append(out, s)
		}
	}
	return out
}

// EvalOrder returns the formula-defined structure names in an order where
// every structure follows all structures it references.
func (c *Catalog) EvalOrder() []string { return c.evalOrder }

// Measures returns the report column order: the configured measure list
// if one was given, otherwise every structure in catalog order.
func (c *Catalog) Measures() []string {
	if len(c.measures) > 0 {
		return c.measures
	}
	return c.Names()
}

// Package analyzer evaluates a structure catalog over parsed
// constituency trees and aggregates the results across units.
package analyzer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tanloong/neosca/internal/catalog"
	"github.com/tanloong/neosca/internal/tree"
)

// SkippedUnit records a sentence that could not be analyzed. Skips are
// accounted for, never fatal to the unit.
type SkippedUnit struct {
	Index  int    `json:"index"` // zero-based position in the input
	Reason string `json:"reason"`
}

// Record holds the measure values for one unit (a document or a whole
// corpus) plus optional match diagnostics.
type Record struct {
	Name      string              `json:"name"`
	Values    map[string]Value    `json:"values"`
	Matches   map[string][]string `json:"matches,omitempty"` // matched subtree spans, when reserved
	Sentences int                 `json:"sentences"`
	Skipped   []SkippedUnit       `json:"skipped,omitempty"`
}

// Analyzer evaluates one catalog. It is immutable after construction and
// safe for concurrent use.
type Analyzer struct {
	cat         *catalog.Catalog
	log         *slog.Logger
	concurrency int
	reserve     bool
}

// Option adjusts analyzer behavior.
type Option func(*Analyzer)

// WithConcurrency bounds how many sentences are matched at once within a
// single unit. Values below 1 mean sequential.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) { a.concurrency = n }
}

// WithReserveMatched keeps the span text of every matched subtree on the
// record, per structure.
func WithReserveMatched(reserve bool) Option {
	return func(a *Analyzer) { a.reserve = reserve }
}

// WithLogger sets the analyzer's logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *Analyzer) { a.log = log }
}

func New(cat *catalog.Catalog, opts ...Option) *Analyzer {
	a := &Analyzer{cat: cat, log: slog.Default(), concurrency: 1}
	for _, opt := range opts {
		opt(a)
	}
	if a.concurrency < 1 {
		a.concurrency = 1
	}
	return a
}

// Catalog returns the catalog the analyzer evaluates.
func (a *Analyzer) Catalog() *catalog.Catalog { return a.cat }

// sentenceCounts is the per-sentence base tally produced by one worker.
type sentenceCounts struct {
	idx     int
	counts  map[string]float64
	matches map[string][]string
	err     error
}

// AnalyzeTrees evaluates the catalog over parsed trees and returns the
// unit record: base counts summed across sentences, derived values
// computed from the sums.
func (a *Analyzer) AnalyzeTrees(ctx context.Context, name string, trees []*tree.Node) *Record {
	rec := &Record{Name: name, Values: make(map[string]Value)}

	results := make(chan sentenceCounts, len(trees))
	sem := make(chan struct{}, a.concurrency)
	for i, root := range trees {
		sem <- struct{}{}
		go func(i int, root *tree.Node) {
			defer func() { <-sem }()
			select {
			case <-ctx.Done():
				results <- sentenceCounts{idx: i, err: ctx.Err()}
				return
			default:
			}
			counts, matches := a.countTree(root)
			results <- sentenceCounts{idx: i, counts: counts, matches: matches}
		}(i, root)
	}

	// Collect by sentence index before merging: completion order varies
	// under concurrency, and reserved spans and skip indices must not.
	collected := make([]sentenceCounts, len(trees))
	for range trees {
		r := <-results
		collected[r.idx] = r
	}

	totals := make(map[string]float64)
	if a.reserve {
		rec.Matches = make(map[string][]string)
	}
	for _, r := range collected {
		if r.err != nil {
			rec.Skipped = append(rec.Skipped, SkippedUnit{Index: r.idx, Reason: r.err.Error()})
			continue
		}
		rec.Sentences++
		for k, v := range r.counts {
			totals[k] += v
		}
		for k, spans := range r.matches {
			rec.Matches[k] = append(rec.Matches[k], spans...)
		}
	}

	for k, v := range totals {
		rec.Values[k] = Num(v)
	}
	a.derive(rec)
	return rec
}

// AnalyzeText parses bracketed trees from text (one tree per line, or
// spanning lines until brackets balance) and analyzes them. Malformed
// trees are skipped and recorded, not fatal.
func (a *Analyzer) AnalyzeText(ctx context.Context, name, text string) *Record {
	chunks := splitTrees(text)
	var trees []*tree.Node
	var skipped []SkippedUnit
	for i, chunk := range chunks {
		root, err := tree.Parse(chunk)
		if err != nil {
			a.log.Warn("skipping malformed tree", "unit", name, "index", i, "error", err)
			skipped = append(skipped, SkippedUnit{Index: i, Reason: err.Error()})
			continue
		}
		trees = append(trees, root)
	}
	rec := a.AnalyzeTrees(ctx, name, trees)
	rec.Skipped = append(skipped, rec.Skipped...)
	return rec
}

// countTree tallies every base structure against one sentence tree.
func (a *Analyzer) countTree(root *tree.Node) (map[string]float64, map[string][]string) {
	counts := make(map[string]float64)
	var matches map[string][]string
	if a.reserve {
		matches = make(map[string][]string)
	}
	for _, s := range a.cat.Base() {
		if s.Counter == catalog.CounterWords {
			counts[s.Name] += float64(root.WordCount())
			continue
		}
		nodes := s.Compiled.Matches(root)
		counts[s.Name] += float64(len(nodes))
		if a.reserve {
			for _, n := range nodes {
				matches[s.Name] = append(matches[s.Name], n.SpanString())
			}
		}
	}
	return counts, matches
}

// derive fills in formula-defined values in dependency order. A missing
// base value counts as zero; a zero divisor yields Undefined, and
// Undefined propagates.
func (a *Analyzer) derive(rec *Record) {
	for _, s := range a.cat.Base() {
		if _, ok := rec.Values[s.Name]; !ok {
			rec.Values[s.Name] = Num(0)
		}
	}
	for _, name := range a.cat.EvalOrder() {
		s, _ := a.cat.Get(name)
		rec.Values[name] = a.eval(s.Expr, rec.Values)
	}
}

func (a *Analyzer) eval(e catalog.Expr, vals map[string]Value) Value {
	switch e := e.(type) {
	case catalog.NumExpr:
		return Num(e.Value)
	case catalog.RefExpr:
		v, ok := vals[e.Name]
		if !ok {
			return Undefined
		}
		return v
	case catalog.BinExpr:
		l := a.eval(e.Left, vals)
		r := a.eval(e.Right, vals)
		if !l.Defined || !r.Defined {
			return Undefined
		}
		switch e.Op {
		case '+':
			return Num(l.N + r.N)
		case '-':
			return Num(l.N - r.N)
		case '*':
			return Num(l.N * r.N)
		case '/':
			if r.N == 0 {
				return Undefined
			}
			return Num(l.N / r.N)
		}
	}
	return Undefined
}

// Combine aggregates unit records into one corpus record: base counts
// are summed first, then derived values recomputed from the sums. Ratios
// are never averaged across units.
func (a *Analyzer) Combine(name string, records ...*Record) *Record {
	out := &Record{Name: name, Values: make(map[string]Value)}
	totals := make(map[string]float64)
	for _, rec := range records {
		out.Sentences += rec.Sentences
		out.Skipped = append(out.Skipped, rec.Skipped...)
		for _, s := range a.cat.Base() {
			if v, ok := rec.Values[s.Name]; ok && v.Defined {
				totals[s.Name] += v.N
			}
		}
		if rec.Matches != nil {
			if out.Matches == nil {
				out.Matches = make(map[string][]string)
			}
			for k, spans := range rec.Matches {
				out.Matches[k] = append(out.Matches[k], spans...)
			}
		}
	}
	for k, v := range totals {
		out.Values[k] = Num(v)
	}
	a.derive(out)
	return out
}

// splitTrees cuts text into individual bracketed trees. A tree ends when
// its brackets balance. Non-blank text between trees is kept as its own
// chunk; it fails to parse downstream and is recorded as skipped rather
// than vanishing.
func splitTrees(text string) []string {
	var chunks []string
	var b, stray strings.Builder
	flushStray := func() {
		if s := strings.TrimSpace(stray.String()); s != "" {
			chunks = append(chunks, s)
		}
		stray.Reset()
	}
	depth := 0
	for _, r := range text {
		switch r {
		case '(':
			if depth == 0 {
				flushStray()
			}
			depth++
			b.WriteRune(r)
		case ')':
			if depth == 0 {
				stray.WriteRune(r)
				continue
			}
			depth--
			b.WriteRune(r)
			if depth == 0 {
				chunks = append(chunks, strings.TrimSpace(b.String()))
				b.Reset()
			}
		default:
			if depth > 0 {
				b.WriteRune(r)
			} else {
				stray.WriteRune(r)
			}
		}
	}
	if rest := strings.TrimSpace(b.String()); rest != "" {
		chunks = append(chunks, rest)
	}
	flushStray()
	return chunks
}

package catalog

import (
	"fmt"
	"strings"
)

// DuplicateStructureError reports two catalog entries sharing a name.
type DuplicateStructureError struct {
	Name string
}

func (e *DuplicateStructureError) Error() string {
	return fmt.Sprintf("duplicate structure definition: %q", e.Name)
}

// UnknownStructureError reports a formula referencing a name the catalog
// does not define.
type UnknownStructureError struct {
	Name string // the structure whose formula is broken
	Ref  string // the missing reference
}

func (e *UnknownStructureError) Error() string {
	return fmt.Sprintf("structure %q references undefined structure %q", e.Name, e.Ref)
}

// CyclicFormulaError reports a reference cycle among formula-defined
// structures, including self-reference.
type CyclicFormulaError struct {
	Cycle []string // the members of the cycle, in reference order
}

func (e *CyclicFormulaError) Error() string {
	return fmt.Sprintf("cyclic formula definition: %s", strings.Join(append(append([]string{}, e.Cycle...), e.Cycle[0]), " -> "))
}

// InvalidDefinitionError reports an entry that is not exactly one of
// pattern-defined, formula-defined, or counter-defined.
type InvalidDefinitionError struct {
	Name string
	Msg  string
}

func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("invalid structure definition %q: %s", e.Name, e.Msg)
}

// InvalidFormulaError reports malformed formula text.
type InvalidFormulaError struct {
	Formula string
	Offset  int
	Msg     string
}

func (e *InvalidFormulaError) Error() string {
	return fmt.Sprintf("invalid formula %q at offset %d: %s", e.Formula, e.Offset, e.Msg)
}

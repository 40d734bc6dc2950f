// Package check validates a catalog against the integrity constraint
// battery. Violations are accumulated and returned as a structured list,
// never thrown: callers decide whether to proceed with an incorrect
// catalog. Violation codes are part of the external contract — operators
// diagnose bad schemas by code.
package check

import (
	"fmt"
	"strings"

	"github.com/catagraph/catagraph/internal/catalog"
)

// Paradigm selects the storage-specific rule tier.
type Paradigm int

const (
	// ParadigmNone runs only the paradigm-agnostic tiers.
	ParadigmNone Paradigm = iota
	// ParadigmNormalized checks flat normalized (relational) storage rules.
	ParadigmNormalized
	// ParadigmOneNF checks normalized rules plus the stricter 1NF shape.
	ParadigmOneNF
	// ParadigmDocument checks document-per-aggregate storage. Nested
	// structs are the point of that layout, so no extra shape rules apply.
	ParadigmDocument
)

func (p Paradigm) String() string {
	switch p {
	case ParadigmNone:
		return "none"
	case ParadigmNormalized:
		return "normalized"
	case ParadigmOneNF:
		return "1nf"
	case ParadigmDocument:
		return "document"
	default:
		return fmt.Sprintf("Paradigm(%d)", int(p))
	}
}

// Options configures a validation run. Zero value runs the generic, atom,
// struct and set tiers only.
type Options struct {
	// DesignLevel additionally runs the design tier: the catalog is a
	// finished design (first-level sets, full coverage), not just a
	// well-formed domain model.
	DesignLevel bool
	// Paradigm selects storage-specific rules.
	Paradigm Paradigm
}

// Violation is one failed integrity constraint with the offending elements.
type Violation struct {
	Code     string   `json:"code"`
	Elements []string `json:"elements,omitempty"`
	Message  string   `json:"message"`
}

// Error implements the error interface.
func (v Violation) Error() string {
	if len(v.Elements) > 0 {
		return fmt.Sprintf("[%s] %s: %s", v.Code, strings.Join(v.Elements, ", "), v.Message)
	}
	return fmt.Sprintf("[%s] %s", v.Code, v.Message)
}

// Report is the outcome of a validation run.
type Report struct {
	OK         bool        `json:"ok"`
	Violations []Violation `json:"violations,omitempty"`
}

// checker accumulates violations during a run.
type checker struct {
	cat        *catalog.Catalog
	violations []Violation
}

func (ck *checker) add(code string, elements []string, format string, args ...any) {
	ck.violations = append(ck.violations, Violation{
		Code:     code,
		Elements: elements,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Check runs the tiered rule battery over the catalog. It is a pure
// function: two runs over the same unmodified catalog return the identical
// violation list. Later tiers are skipped only on total degeneracy (an
// empty catalog).
func Check(cat *catalog.Catalog, opts Options) Report {
	ck := &checker{cat: cat}

	if len(cat.Nodes()) == 0 && len(cat.Edges()) == 0 && len(cat.Incidences()) == 0 {
		ck.add(ICGeneric2, nil, "catalog is empty")
		return Report{OK: false, Violations: ck.violations}
	}

	ck.checkGeneric()
	ck.checkAtoms()
	ck.checkStructs()
	ck.checkSets()
	if opts.DesignLevel {
		ck.checkDesign()
	}
	switch opts.Paradigm {
	case ParadigmNormalized:
		ck.checkNormalized()
	case ParadigmOneNF:
		ck.checkNormalized()
		ck.checkOneNF()
	}

	return Report{OK: len(ck.violations) == 0, Violations: ck.violations}
}

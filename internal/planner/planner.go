// Package planner rewrites logical queries into executable statements over
// the compiled table layout ("bucket algorithm", answering-queries-using-
// views style). For each required query element it collects the candidate
// tables that can supply it, enumerates minimal covering table
// combinations, builds a join chain per combination, and assembles one
// statement per surviving combination. More than one statement means the
// rewrite is ambiguous; callers pick one, typically by cost.
package planner

import (
	"fmt"
	"strings"

	"github.com/catagraph/catagraph/internal/catalog"
	"github.com/catagraph/catagraph/internal/ddl"
)

// Query is the logical query descriptor (JSON reference serialization).
type Query struct {
	// Project lists the attributes to return.
	Project []string `json:"project"`
	// Filter is a boolean SQL-like predicate over conjunctions of
	// attribute comparisons (BETWEEN included). Empty means no filter.
	Filter string `json:"filter,omitempty"`
	// Join lists the classes and associations the query ranges over.
	Join []string `json:"join"`
}

// Query error codes (Q300-Q399). Each is fatal to the single query only.
const (
	ErrInvalidQuery        = "Q300" // element is not a known class/association/attribute
	ErrUnderspecified      = "Q301" // a required element is not coverable
	ErrUnjoinable          = "Q302" // chosen tables cannot be connected
	ErrTooManyAlternatives = "Q303" // combination enumeration exceeded the cap
	ErrUnsupportedLayout   = "Q304" // layout paradigm exposes no attribute columns
)

// QueryError reports a fatal rewrite failure.
type QueryError struct {
	Code     string   `json:"code"`
	Elements []string `json:"elements,omitempty"`
	Message  string   `json:"message"`
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if len(e.Elements) > 0 {
		return fmt.Sprintf("[%s] %s: %s", e.Code, strings.Join(e.Elements, ", "), e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func queryErr(code string, elements []string, format string, args ...any) *QueryError {
	return &QueryError{Code: code, Elements: elements, Message: fmt.Sprintf(format, args...)}
}

// DefaultMaxAlternatives bounds the bucket-combination enumeration.
// The cartesian product is exponential in the number of required elements,
// so a run away schema fails fast instead of exhausting memory.
const DefaultMaxAlternatives = 64

// Options configures rewriting.
type Options struct {
	// MaxAlternatives caps the number of enumerated table combinations
	// (and UNION combinations in the recursive case). Zero means
	// DefaultMaxAlternatives.
	MaxAlternatives int
}

func (o Options) cap() int {
	if o.MaxAlternatives > 0 {
		return o.MaxAlternatives
	}
	return DefaultMaxAlternatives
}

// Statement is one executable rewrite of a query.
type Statement struct {
	SQL string `json:"sql"`
	// Cost is the weighted-frequency estimate: the summed row estimates of
	// the chosen tables. Callers typically execute the cheapest statement.
	Cost int64 `json:"cost"`
	// Tables lists the physical tables the statement reads.
	Tables []string `json:"tables"`
}

// Planner rewrites queries against one compiled layout. It is pure and
// safe for concurrent use.
type Planner struct {
	layout *ddl.Layout
	cat    *catalog.Catalog
	opts   Options
}

// New returns a planner over the compiled layout.
func New(layout *ddl.Layout, opts Options) *Planner {
	return &Planner{layout: layout, cat: layout.Catalog(), opts: opts}
}

// hierTop returns the topmost superclass of a class. Classes of one
// hierarchy share an identity for matching purposes.
func (p *Planner) hierTop(class string) string {
	chain, _ := p.cat.SuperclassesOf(class)
	if len(chain) == 0 {
		return class
	}
	return chain[len(chain)-1]
}

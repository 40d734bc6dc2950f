// Package ddl compiles a validated catalog into a physical table layout
// and the DDL statements creating it. One first-level set maps to one
// table. The layout is also the planner's view of which structs and
// attributes each table materializes.
package ddl

import (
	"fmt"

	"github.com/catagraph/catagraph/internal/catalog"
)

// Paradigm selects the physical storage strategy.
type Paradigm int

const (
	// Normalized stores one column per attribute in flat tables.
	Normalized Paradigm = iota
	// Document stores one opaque structured value per aggregate row.
	Document
)

func (p Paradigm) String() string {
	switch p {
	case Normalized:
		return "normalized"
	case Document:
		return "document"
	default:
		return fmt.Sprintf("Paradigm(%d)", int(p))
	}
}

// Options configures compilation.
type Options struct {
	Paradigm Paradigm
}

// Compile error codes (C200-C299). A CompileError is fatal to the table
// being generated, not to the catalog.
const (
	ErrMissingPrimaryKey = "C201" // no anchor resolves to a key
	ErrColumnCollision   = "C202" // two attributes map to the same column
	ErrUnresolvedTarget  = "C203" // no table anchors the referenced class
	ErrPathArity         = "C204" // column does not map to exactly one attribute
)

// CompileError reports a fatal schema compilation failure.
type CompileError struct {
	Code    string `json:"code"`
	Table   string `json:"table"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("[%s] table %s: %s", e.Code, e.Table, e.Message)
}

func compileErr(code, table, format string, args ...any) *CompileError {
	return &CompileError{Code: code, Table: table, Message: fmt.Sprintf(format, args...)}
}

// Column is one physical column of a table.
type Column struct {
	Name    string `json:"name"`
	SQLType string `json:"sql_type"`
	// Attr is the domain attribute the column stores. For a loose end this
	// is the identifier attribute of the unresolved class.
	Attr string `json:"attr,omitempty"`
	// LooseEnd marks a column introduced by an association end whose class
	// is not part of the table; Assoc names the association.
	LooseEnd bool   `json:"loose_end,omitempty"`
	Assoc    string `json:"assoc,omitempty"`
	// Identifier marks columns storing a class identifier.
	Identifier bool `json:"identifier,omitempty"`
}

// ForeignKey is a single-column reference to another table.
type ForeignKey struct {
	Column    string `json:"column"`
	RefTable  string `json:"ref_table"`
	RefColumn string `json:"ref_column"`
}

// Table is the compiled form of one first-level set.
type Table struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	PrimaryKey  []string     `json:"primary_key"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty"`
	// Structs lists the second-level structs the table materializes.
	Structs []string `json:"structs"`
	// AnchorClasses and AnchorAssocs are the resolved anchors across those
	// structs, in declaration order.
	AnchorClasses []string `json:"anchor_classes,omitempty"`
	AnchorAssocs  []string `json:"anchor_assocs,omitempty"`
	// StructColumns maps struct name -> attribute name -> column name.
	StructColumns map[string]map[string]string `json:"struct_columns,omitempty"`
	// RowEstimate is the weighted-frequency cost hook: the instance count
	// of the largest anchor class.
	RowEstimate int64 `json:"row_estimate"`
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnForAttr returns the column storing the named attribute, or nil.
// Plain attribute columns win over loose ends carrying the same attribute.
func (t *Table) ColumnForAttr(attr string) *Column {
	var loose *Column
	for i := range t.Columns {
		if t.Columns[i].Attr != attr {
			continue
		}
		if !t.Columns[i].LooseEnd {
			return &t.Columns[i]
		}
		if loose == nil {
			loose = &t.Columns[i]
		}
	}
	return loose
}

// Layout is the compiled physical schema.
type Layout struct {
	Paradigm Paradigm `json:"paradigm"`
	Tables   []*Table `json:"tables"`

	cat    *catalog.Catalog
	byName map[string]*Table
}

// Table returns the named table, or nil.
func (l *Layout) Table(name string) *Table {
	return l.byName[name]
}

// Catalog returns the catalog the layout was compiled from.
func (l *Layout) Catalog() *catalog.Catalog {
	return l.cat
}

// TablesContaining returns the tables whose set transitively contains the
// named element (a class or association), in layout order.
func (l *Layout) TablesContaining(element string) []*Table {
	ph := catalog.PhantomName(element)
	var out []*Table
	for _, t := range l.Tables {
		if l.cat.Contains(t.Name, ph) {
			out = append(out, t)
		}
	}
	return out
}

// TablesSupplying returns the tables with a column for the named attribute.
func (l *Layout) TablesSupplying(attr string) []*Table {
	var out []*Table
	for _, t := range l.Tables {
		if t.ColumnForAttr(attr) != nil {
			out = append(out, t)
		}
	}
	return out
}

// ResolveColumn maps an in-table column name back to its owning domain
// attribute. Under the normalized paradigm every column maps to exactly
// one atomic attribute; anything else is a path-arity violation.
func (l *Layout) ResolveColumn(table, column string) (string, error) {
	t := l.byName[table]
	if t == nil {
		return "", compileErr(ErrUnresolvedTarget, table, "unknown table")
	}
	col := t.Column(column)
	if col == nil {
		return "", compileErr(ErrUnresolvedTarget, table, "unknown column %q", column)
	}
	if l.Paradigm != Normalized || col.Attr == "" {
		return "", compileErr(ErrPathArity, table, "column %q does not map to exactly one domain attribute", column)
	}
	return col.Attr, nil
}

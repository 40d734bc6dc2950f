package ddl

import (
	"fmt"
	"strings"

	"github.com/catagraph/catagraph/internal/catalog"
)

// Build compiles the catalog's first-level sets into a table layout.
// The catalog is expected to have passed validation for the chosen
// paradigm; Build still fails fast on anything that prevents sound DDL
// (missing keys, column collisions, unresolvable references).
func Build(cat *catalog.Catalog, opts Options) (*Layout, error) {
	l := &Layout{
		Paradigm: opts.Paradigm,
		cat:      cat,
		byName:   make(map[string]*Table),
	}
	for _, set := range cat.FirstLevelSets() {
		var t *Table
		var err error
		switch opts.Paradigm {
		case Document:
			t = documentTable(cat, set)
		default:
			t, err = normalizedTable(cat, set)
			if err != nil {
				return nil, err
			}
		}
		l.Tables = append(l.Tables, t)
		l.byName[t.Name] = t
	}
	if opts.Paradigm == Normalized {
		if err := l.resolveForeignKeys(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// sqlType maps a domain datatype to its column type. Strings become a
// bounded varchar using the attribute's size; other types pass through.
func sqlType(n *catalog.Node) string {
	if strings.EqualFold(n.DataType, "string") {
		size := n.Size
		if size <= 0 {
			size = 255
		}
		return fmt.Sprintf("VARCHAR(%d)", size)
	}
	return strings.ToUpper(n.DataType)
}

// normalizedTable compiles one first-level set into a flat table: one
// column per attribute found in any struct under the set, plus loose-end
// columns for association ends whose class is not materialized here.
func normalizedTable(cat *catalog.Catalog, set *catalog.Edge) (*Table, error) {
	t := &Table{
		Name:          set.Name,
		StructColumns: make(map[string]map[string]string),
	}

	var structs []*catalog.Edge
	for _, inc := range cat.OutboundOf(set.Name) {
		if e := cat.EdgeOfPhantom(inc.Node); e != nil && e.Kind == catalog.EdgeStruct {
			structs = append(structs, e)
			t.Structs = append(t.Structs, e.Name)
		}
	}

	// Classes materialized anywhere in the table decide which association
	// ends are loose.
	memberClasses := make(map[string]bool)
	for _, st := range structs {
		for _, inc := range structMembers(cat, st.Name) {
			if e := cat.EdgeOfPhantom(inc.Node); e != nil && e.Kind == catalog.EdgeClass {
				memberClasses[e.Name] = true
			}
		}
	}

	addColumn := func(col Column) error {
		if existing := t.Column(col.Name); existing != nil {
			if existing.Attr == col.Attr && existing.Assoc == col.Assoc {
				return nil // same element reached through two structs
			}
			return compileErr(ErrColumnCollision, t.Name, "column %q maps to both %q and %q", col.Name, existing.Attr, col.Attr)
		}
		t.Columns = append(t.Columns, col)
		return nil
	}

	for _, st := range structs {
		cols := make(map[string]string)
		for _, inc := range structMembers(cat, st.Name) {
			if n := cat.Node(inc.Node); n != nil && n.Kind == catalog.NodeAttribute {
				col := Column{
					Name:       n.Name,
					SQLType:    sqlType(n),
					Attr:       n.Name,
					Identifier: n.Identifier,
				}
				if err := addColumn(col); err != nil {
					return nil, err
				}
				cols[n.Name] = n.Name
				continue
			}
			e := cat.EdgeOfPhantom(inc.Node)
			if e == nil {
				continue
			}
			switch e.Kind {
			case catalog.EdgeClass:
				if inc.Anchor && !contains(t.AnchorClasses, e.Name) {
					t.AnchorClasses = append(t.AnchorClasses, e.Name)
				}
			case catalog.EdgeAssociation:
				if inc.Anchor && !contains(t.AnchorAssocs, e.Name) {
					t.AnchorAssocs = append(t.AnchorAssocs, e.Name)
				}
				for _, end := range cat.OutboundOf(e.Name) {
					if classPresent(cat, memberClasses, end.EndClass) {
						continue
					}
					attr := cat.Node(end.Node)
					if attr == nil {
						continue
					}
					col := Column{
						Name:       end.EndName,
						SQLType:    sqlType(attr),
						Attr:       attr.Name,
						LooseEnd:   true,
						Assoc:      e.Name,
						Identifier: true,
					}
					if err := addColumn(col); err != nil {
						return nil, err
					}
					cols[attr.Name] = end.EndName
				}
			}
		}
		t.StructColumns[st.Name] = cols
	}

	if err := primaryKey(cat, t); err != nil {
		return nil, err
	}
	t.RowEstimate = rowEstimate(cat, t)
	return t, nil
}

// structMembers returns a struct's direct and closed-over incidences.
func structMembers(cat *catalog.Catalog, structName string) []*catalog.Incidence {
	return append(cat.OutboundOf(structName), cat.TransitiveOf(structName)...)
}

// classPresent reports whether an association end's class is materialized
// in the table, directly or via a class of the same hierarchy.
func classPresent(cat *catalog.Catalog, memberClasses map[string]bool, endClass string) bool {
	if memberClasses[endClass] {
		return true
	}
	for cls := range memberClasses {
		for _, h := range cat.Hierarchy(cls) {
			if h == endClass {
				return true
			}
		}
	}
	for _, h := range cat.Hierarchy(endClass) {
		if memberClasses[h] {
			return true
		}
	}
	return false
}

// primaryKey derives the table key from the structs' anchors: a class
// anchor contributes its identifier column, an association anchor its
// loose end columns.
func primaryKey(cat *catalog.Catalog, t *Table) error {
	var key []string
	add := func(col string) {
		if col != "" && !contains(key, col) && t.Column(col) != nil {
			key = append(key, col)
		}
	}
	for _, cls := range t.AnchorClasses {
		if id, ok := cat.IdentifierOf(cls); ok {
			if c := t.ColumnForAttr(id); c != nil {
				add(c.Name)
			}
		}
	}
	for _, assoc := range t.AnchorAssocs {
		for _, end := range cat.OutboundOf(assoc) {
			if c := t.Column(end.EndName); c != nil && c.LooseEnd {
				add(c.Name)
			}
		}
	}
	if len(key) == 0 {
		return compileErr(ErrMissingPrimaryKey, t.Name, "no anchor resolves to a key column")
	}
	t.PrimaryKey = key
	return nil
}

// rowEstimate is the weighted-frequency cost hook: the largest instance
// count among the table's anchor classes, falling back to the anchor
// associations' end classes.
func rowEstimate(cat *catalog.Catalog, t *Table) int64 {
	var est int64
	for _, cls := range t.AnchorClasses {
		if e := cat.Edge(cls); e != nil && e.Count > est {
			est = e.Count
		}
	}
	for _, assoc := range t.AnchorAssocs {
		for _, end := range cat.OutboundOf(assoc) {
			if owner := cat.Edge(end.EndClass); owner != nil && owner.Count > est {
				est = owner.Count
			}
		}
	}
	return est
}

// resolveForeignKeys emits references for loose ends and for identifier
// columns of classes whose hierarchy is split across tables. The target is
// found by walking the class's hierarchy from most-specific to least and
// taking the first table solely anchored on that class.
func (l *Layout) resolveForeignKeys() error {
	for _, t := range l.Tables {
		for i := range t.Columns {
			col := &t.Columns[i]
			switch {
			case col.LooseEnd:
				endClass := l.looseEndClass(col)
				target, refCol := l.soleAnchorTable(endClass, nil)
				if target == nil {
					return compileErr(ErrUnresolvedTarget, t.Name, "no table anchors class %q referenced by loose end %q", endClass, col.Name)
				}
				t.ForeignKeys = append(t.ForeignKeys, ForeignKey{Column: col.Name, RefTable: target.Name, RefColumn: refCol})
			case col.Identifier:
				// Split hierarchy: the identifier also keys a sole-anchor
				// table of a superclass elsewhere.
				for _, cls := range t.AnchorClasses {
					id, ok := l.cat.IdentifierOf(cls)
					if !ok || id != col.Attr {
						continue
					}
					target, refCol := l.soleAnchorTable(cls, t)
					if target != nil {
						t.ForeignKeys = append(t.ForeignKeys, ForeignKey{Column: col.Name, RefTable: target.Name, RefColumn: refCol})
					}
					break
				}
			}
		}
	}
	return nil
}

// looseEndClass recovers the class an association end references.
func (l *Layout) looseEndClass(col *Column) string {
	for _, end := range l.cat.OutboundOf(col.Assoc) {
		if end.EndName == col.Name {
			return end.EndClass
		}
	}
	return ""
}

// soleAnchorTable walks the class's hierarchy from most-specific to least
// and returns the first table (other than skip) whose only anchor is that
// class, together with its identifier column name.
func (l *Layout) soleAnchorTable(class string, skip *Table) (*Table, string) {
	if class == "" {
		return nil, ""
	}
	for _, h := range l.cat.Hierarchy(class) {
		for _, cand := range l.Tables {
			if cand == skip {
				continue
			}
			if len(cand.AnchorClasses) != 1 || cand.AnchorClasses[0] != h || len(cand.AnchorAssocs) != 0 {
				continue
			}
			id, ok := l.cat.IdentifierOf(h)
			if !ok {
				continue
			}
			if c := cand.ColumnForAttr(id); c != nil {
				return cand, c.Name
			}
		}
	}
	return nil, ""
}

// documentTable compiles a first-level set into the fixed two-column
// document shape: a surrogate key and one opaque structured value. The
// engine cannot enforce references into nested values, so document tables
// carry no foreign keys; that is a design limitation, not an error.
func documentTable(cat *catalog.Catalog, set *catalog.Edge) *Table {
	t := &Table{
		Name: set.Name,
		Columns: []Column{
			{Name: "id", SQLType: "VARCHAR(64)", Identifier: true},
			{Name: "doc", SQLType: "TEXT"},
		},
		PrimaryKey: []string{"id"},
	}
	for _, inc := range cat.OutboundOf(set.Name) {
		if e := cat.EdgeOfPhantom(inc.Node); e != nil && e.Kind == catalog.EdgeStruct {
			t.Structs = append(t.Structs, e.Name)
			for _, mi := range structMembers(cat, e.Name) {
				if me := cat.EdgeOfPhantom(mi.Node); me != nil && mi.Anchor {
					switch me.Kind {
					case catalog.EdgeClass:
						if !contains(t.AnchorClasses, me.Name) {
							t.AnchorClasses = append(t.AnchorClasses, me.Name)
						}
					case catalog.EdgeAssociation:
						if !contains(t.AnchorAssocs, me.Name) {
							t.AnchorAssocs = append(t.AnchorAssocs, me.Name)
						}
					}
				}
			}
		}
	}
	t.RowEstimate = rowEstimate(cat, t)
	return t
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

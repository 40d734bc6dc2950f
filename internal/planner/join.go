package planner

import (
	"fmt"
	"strings"

	"github.com/catagraph/catagraph/internal/catalog"
	"github.com/catagraph/catagraph/internal/ddl"
)

// joinKey is a column a table can be matched on: either a class identifier
// materialized in the table, or a loose association end referencing a class
// stored elsewhere. Keys of one hierarchy are interchangeable, so the key
// carries the hierarchy top rather than the concrete class.
type joinKey struct {
	top   string
	col   string
	loose bool
	assoc string
}

func (p *Planner) joinKeys(t *ddl.Table) []joinKey {
	var keys []joinKey
	for _, col := range t.Columns {
		if !col.Identifier {
			continue
		}
		if col.LooseEnd {
			for _, end := range p.cat.OutboundOf(col.Assoc) {
				if end.EndName == col.Name {
					keys = append(keys, joinKey{top: p.hierTop(end.EndClass), col: col.Name, loose: true, assoc: col.Assoc})
					break
				}
			}
			continue
		}
		if owner := p.cat.OwningClass(col.Attr); owner != nil {
			keys = append(keys, joinKey{top: p.hierTop(owner.Name), col: col.Name})
		}
	}
	return keys
}

// matchTables finds an equi-join between two tables. Accepted matches, in
// preference order: a class identifier materialized in both; a loose end in
// one against the identifier in the other (either direction); two loose ends
// referencing the same hierarchy, but only when that hierarchy is not part
// of the query (pure pass-through).
func (p *Planner) matchTables(a, b *ddl.Table, queryTops map[string]bool) (colA, colB string, ok bool) {
	keysA, keysB := p.joinKeys(a), p.joinKeys(b)
	type pair struct {
		a, b joinKey
		rank int
	}
	best := pair{rank: 4}
	for _, ka := range keysA {
		for _, kb := range keysB {
			if ka.top != kb.top {
				continue
			}
			var rank int
			switch {
			case !ka.loose && !kb.loose:
				rank = 1
			case ka.loose != kb.loose:
				rank = 2
			default:
				if queryTops[ka.top] {
					continue // pass-through joins may not skip a queried class
				}
				rank = 3
			}
			if rank < best.rank {
				best = pair{a: ka, b: kb, rank: rank}
			}
		}
	}
	if best.rank == 4 {
		return "", "", false
	}
	return best.a.col, best.b.col, true
}

// assemble renders one table combination into a statement: places the
// tables into a join chain, picks a supplier per attribute (earliest table
// in the combination wins), injects subclass discriminants, and qualifies
// the filter.
func (p *Planner) assemble(q Query, classes []string, combo []*ddl.Table) (Statement, error) {
	queryTops := make(map[string]bool, len(classes))
	for _, cls := range classes {
		queryTops[p.hierTop(cls)] = true
	}

	// Greedy placement with a deferred queue: a table that matches nothing
	// placed so far goes to the back and gets retried after others land. A
	// full pass without progress means the combination cannot be connected.
	alias := map[string]string{combo[0].Name: "t_1"}
	from := fmt.Sprintf("FROM %s t_1", combo[0].Name)
	placed := []*ddl.Table{combo[0]}
	queue := append([]*ddl.Table(nil), combo[1:]...)
	for len(queue) > 0 {
		progressed := false
		var deferred []*ddl.Table
		for _, cand := range queue {
			var done bool
			for _, host := range placed {
				hostCol, candCol, ok := p.matchTables(host, cand, queryTops)
				if !ok {
					continue
				}
				a := fmt.Sprintf("t_%d", len(placed)+1)
				alias[cand.Name] = a
				from += fmt.Sprintf(" JOIN %s %s ON %s.%s = %s.%s",
					cand.Name, a, alias[host.Name], hostCol, a, candCol)
				placed = append(placed, cand)
				progressed, done = true, true
				break
			}
			if !done {
				deferred = append(deferred, cand)
			}
		}
		if !progressed {
			names := make([]string, len(deferred))
			for i, t := range deferred {
				names[i] = t.Name
			}
			return Statement{}, queryErr(ErrUnjoinable, names, "tables cannot be joined to the rest of the combination")
		}
		queue = deferred
	}

	// Attribute supplier: the earliest table in the combination that carries
	// a column for the attribute.
	qualify := make(map[string]string)
	supply := func(attr string) (string, bool) {
		if q, ok := qualify[attr]; ok {
			return q, true
		}
		for _, t := range combo {
			if col := t.ColumnForAttr(attr); col != nil {
				ref := alias[t.Name] + "." + col.Name
				qualify[attr] = ref
				return ref, true
			}
		}
		return "", false
	}

	var selectList []string
	for _, attr := range q.Project {
		ref, ok := supply(attr)
		if !ok {
			return Statement{}, queryErr(ErrUnderspecified, []string{attr}, "no chosen table supplies attribute %q", attr)
		}
		selectList = append(selectList, ref)
	}
	for _, attr := range filterAttrs(q.Filter) {
		if _, ok := supply(attr); !ok {
			return Statement{}, queryErr(ErrUnderspecified, []string{attr}, "no chosen table supplies attribute %q", attr)
		}
	}

	var where []string
	if q.Filter != "" {
		where = append(where, qualifyFilter(q.Filter, qualify))
	}
	discs, err := p.discriminants(classes, combo, qualify, supply)
	if err != nil {
		return Statement{}, err
	}
	where = append(where, discs...)
	cond := "TRUE"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	stmt := Statement{
		SQL: fmt.Sprintf("SELECT %s %s WHERE %s", strings.Join(selectList, ", "), from, cond),
	}
	for _, t := range combo {
		stmt.Cost += t.RowEstimate
		stmt.Tables = append(stmt.Tables, t.Name)
	}
	return stmt, nil
}

// discriminants injects the negated constraints of sibling subclasses: when
// a chosen table also stores a sibling of a queried class, rows belonging to
// the sibling must be filtered out.
func (p *Planner) discriminants(classes []string, combo []*ddl.Table, qualify map[string]string, supply func(string) (string, bool)) ([]string, error) {
	inCombo := func(table *ddl.Table) bool {
		for _, t := range combo {
			if t == table {
				return true
			}
		}
		return false
	}

	var out []string
	seen := make(map[string]bool)
	for _, cls := range classes {
		hier := make(map[string]bool)
		for _, h := range p.cat.Hierarchy(cls) {
			hier[h] = true
		}
		gens, _ := p.cat.GeneralizationsOf(cls)
		for _, gen := range gens {
			for _, sub := range p.cat.Subclasses(gen) {
				sibling := catalog.TrimPhantom(sub.Node)
				if hier[sibling] || sub.Constraint == "" {
					continue
				}
				present := false
				for _, t := range p.layout.TablesContaining(sibling) {
					if inCombo(t) {
						present = true
						break
					}
				}
				if !present {
					continue
				}
				for _, attr := range filterAttrs(sub.Constraint) {
					if _, ok := supply(attr); !ok {
						return nil, queryErr(ErrUnderspecified, []string{attr},
							"discriminant for %q references attribute %q supplied by no chosen table", sibling, attr)
					}
				}
				cond := "NOT (" + qualifyFilter(sub.Constraint, qualify) + ")"
				if !seen[cond] {
					seen[cond] = true
					out = append(out, cond)
				}
			}
		}
	}
	return out, nil
}

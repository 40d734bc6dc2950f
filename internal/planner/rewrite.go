package planner

import (
	"sort"
	"strings"

	"github.com/catagraph/catagraph/internal/catalog"
	"github.com/catagraph/catagraph/internal/ddl"
)

// bucket is the candidate table list for one required query element.
type bucket struct {
	elem   string
	tables []*ddl.Table
}

// Rewrite turns a logical query into one or more executable statements,
// smallest table count first. Multiple statements mean the rewrite is
// ambiguous; the caller picks one, usually the cheapest.
func (p *Planner) Rewrite(q Query) ([]Statement, error) {
	// Document tables expose only the set identifier and the opaque
	// aggregate value, so no attribute or join column exists to rewrite
	// against.
	if p.layout.Paradigm == ddl.Document {
		return nil, queryErr(ErrUnsupportedLayout, nil,
			"document layouts expose no attribute columns; compile a normalized layout to rewrite queries")
	}

	classes, assocs, attrs, err := p.validate(q)
	if err != nil {
		return nil, err
	}

	// A queried class whose hierarchy is materialized nowhere may still be
	// answerable through its subclasses: substitute each subclass and take
	// the union of the results.
	for _, cls := range classes {
		if len(p.hierTables(cls)) == 0 {
			return p.rewriteUnion(q, cls)
		}
	}

	buckets, err := p.buildBuckets(classes, assocs, attrs)
	if err != nil {
		return nil, err
	}
	combos, err := p.combinations(buckets)
	if err != nil {
		return nil, err
	}

	// A combination that cannot be connected is dropped as long as another
	// one survives; the error surfaces only when nothing does.
	var stmts []Statement
	var firstErr error
	for _, combo := range combos {
		stmt, err := p.assemble(q, classes, combo)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		stmts = append(stmts, stmt)
	}
	if len(stmts) == 0 {
		return nil, firstErr
	}
	return stmts, nil
}

// validate checks that every query element names a catalog element of the
// right kind, that the join elements induce a connected sub-hypergraph, and
// that every required attribute is reachable from the joined classes.
func (p *Planner) validate(q Query) (classes, assocs, attrs []string, err error) {
	if len(q.Join) == 0 {
		return nil, nil, nil, queryErr(ErrInvalidQuery, nil, "query joins nothing")
	}
	if len(q.Project) == 0 {
		return nil, nil, nil, queryErr(ErrInvalidQuery, nil, "query projects nothing")
	}

	seen := make(map[string]bool)
	for _, elem := range q.Join {
		if seen[elem] {
			continue
		}
		seen[elem] = true
		e := p.cat.Edge(elem)
		if e == nil {
			return nil, nil, nil, queryErr(ErrInvalidQuery, []string{elem}, "join element %q is not a class or association", elem)
		}
		switch e.Kind {
		case catalog.EdgeClass:
			classes = append(classes, elem)
		case catalog.EdgeAssociation:
			assocs = append(assocs, elem)
		default:
			return nil, nil, nil, queryErr(ErrInvalidQuery, []string{elem}, "join element %q is a %s, not a class or association", elem, e.Kind)
		}
	}

	attrs = append(attrs, q.Project...)
	for _, a := range filterAttrs(q.Filter) {
		if !containsStr(attrs, a) {
			attrs = append(attrs, a)
		}
	}
	classTops := make(map[string]bool, len(classes))
	for _, cls := range classes {
		classTops[p.hierTop(cls)] = true
	}
	for _, a := range attrs {
		n := p.cat.Node(a)
		if n == nil || n.Kind != catalog.NodeAttribute {
			return nil, nil, nil, queryErr(ErrInvalidQuery, []string{a}, "%q is not a catalog attribute", a)
		}
		owner := p.cat.OwningClass(a)
		if owner == nil {
			return nil, nil, nil, queryErr(ErrUnderspecified, []string{a}, "attribute %q belongs to no class", a)
		}
		if !classTops[p.hierTop(owner.Name)] {
			return nil, nil, nil, queryErr(ErrUnderspecified, []string{a}, "attribute %q is not reachable from the joined classes", a)
		}
	}

	if err := p.checkConnected(classes, assocs); err != nil {
		return nil, nil, nil, err
	}
	return classes, assocs, attrs, nil
}

// checkConnected verifies the join elements form one component: an
// association touches a class when one of its ends lands in the class's
// hierarchy, and two classes of the same hierarchy touch each other.
func (p *Planner) checkConnected(classes, assocs []string) error {
	elems := append(append([]string(nil), classes...), assocs...)
	if len(elems) <= 1 {
		return nil
	}
	adjacent := func(a, b string) bool {
		ea, eb := p.cat.Edge(a), p.cat.Edge(b)
		if ea.Kind == catalog.EdgeAssociation {
			ea, eb = eb, ea
			a, b = b, a
		}
		switch {
		case ea.Kind == catalog.EdgeClass && eb.Kind == catalog.EdgeClass:
			return p.hierTop(a) == p.hierTop(b)
		case ea.Kind == catalog.EdgeClass && eb.Kind == catalog.EdgeAssociation:
			for _, end := range p.cat.OutboundOf(b) {
				if p.hierTop(end.EndClass) == p.hierTop(a) {
					return true
				}
			}
			return false
		default:
			// Two associations touch when they share an end hierarchy.
			for _, ea := range p.cat.OutboundOf(a) {
				for _, eb := range p.cat.OutboundOf(b) {
					if p.hierTop(ea.EndClass) == p.hierTop(eb.EndClass) {
						return true
					}
				}
			}
			return false
		}
	}

	reached := map[string]bool{elems[0]: true}
	frontier := []string{elems[0]}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		for _, next := range elems {
			if !reached[next] && adjacent(cur, next) {
				reached[next] = true
				frontier = append(frontier, next)
			}
		}
	}
	var missing []string
	for _, elem := range elems {
		if !reached[elem] {
			missing = append(missing, elem)
		}
	}
	if len(missing) > 0 {
		return queryErr(ErrUnderspecified, missing, "join elements do not form a connected sub-hypergraph")
	}
	return nil
}

// hierTables returns the first-level tables containing the class or any of
// its superclasses (a superclass table can answer for the subclass once the
// discriminants are applied).
func (p *Planner) hierTables(class string) []*ddl.Table {
	var out []*ddl.Table
	seen := make(map[string]bool)
	for _, h := range p.cat.Hierarchy(class) {
		for _, t := range p.layout.TablesContaining(h) {
			if !seen[t.Name] {
				seen[t.Name] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// buildBuckets collects the candidate tables per required element: one
// identity bucket per joined class, one bucket per required attribute, and
// one bucket per joined association. An empty bucket is fatal.
func (p *Planner) buildBuckets(classes, assocs, attrs []string) ([]bucket, error) {
	var buckets []bucket
	for _, cls := range classes {
		tables := p.hierTables(cls)
		if len(tables) == 0 {
			return nil, queryErr(ErrUnderspecified, []string{cls}, "class %q is not contained in any table", cls)
		}
		buckets = append(buckets, bucket{elem: cls, tables: tables})

		for _, a := range attrs {
			owner := p.cat.OwningClass(a)
			if owner == nil || p.hierTop(owner.Name) != p.hierTop(cls) {
				continue
			}
			supply := p.layout.TablesSupplying(a)
			if len(supply) == 0 {
				return nil, queryErr(ErrUnderspecified, []string{a}, "no table supplies attribute %q", a)
			}
			buckets = append(buckets, bucket{elem: a, tables: supply})
		}
	}
	for _, assoc := range assocs {
		tables := p.layout.TablesContaining(assoc)
		if len(tables) == 0 {
			return nil, queryErr(ErrUnderspecified, []string{assoc}, "association %q is not contained in any table", assoc)
		}
		buckets = append(buckets, bucket{elem: assoc, tables: tables})
	}
	return buckets, nil
}

// combinations enumerates one table choice per bucket, collapses duplicate
// table sets, and drops any set that strictly contains another (only the
// minimal covers survive). Results come back smallest first.
func (p *Planner) combinations(buckets []bucket) ([][]*ddl.Table, error) {
	total := 1
	for _, b := range buckets {
		total *= len(b.tables)
		if total > p.opts.cap() {
			return nil, queryErr(ErrTooManyAlternatives, nil,
				"bucket combinations exceed the limit of %d", p.opts.cap())
		}
	}

	var combos [][]*ddl.Table
	comboKeys := make(map[string]bool)
	pick := make([]*ddl.Table, len(buckets))
	var walk func(i int)
	walk = func(i int) {
		if i == len(buckets) {
			var set []*ddl.Table
			seen := make(map[string]bool)
			for _, t := range pick {
				if !seen[t.Name] {
					seen[t.Name] = true
					set = append(set, t)
				}
			}
			key := comboKey(set)
			if !comboKeys[key] {
				comboKeys[key] = true
				combos = append(combos, set)
			}
			return
		}
		for _, t := range buckets[i].tables {
			pick[i] = t
			walk(i + 1)
		}
	}
	walk(0)

	minimal := combos[:0]
	for i, c := range combos {
		subsumed := false
		for j, other := range combos {
			if i != j && len(other) < len(c) && tableSubset(other, c) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			minimal = append(minimal, c)
		}
	}
	sort.SliceStable(minimal, func(i, j int) bool {
		if len(minimal[i]) != len(minimal[j]) {
			return len(minimal[i]) < len(minimal[j])
		}
		return comboKey(minimal[i]) < comboKey(minimal[j])
	})
	return minimal, nil
}

// rewriteUnion answers a query over an unmaterialized class by rewriting it
// once per immediate subclass and joining the alternatives with UNION. Every
// subclass must be answerable or the union would silently drop instances.
func (p *Planner) rewriteUnion(q Query, class string) ([]Statement, error) {
	gens := p.cat.GeneralizationsBelow(class)
	if len(gens) == 0 {
		return nil, queryErr(ErrUnderspecified, []string{class},
			"class %q is not contained in any table and has no subclasses", class)
	}
	gen := gens[0]

	var perSub [][]Statement
	total := 1
	for _, sub := range p.cat.Subclasses(gen.Name) {
		subClass := catalog.TrimPhantom(sub.Node)
		subQuery := q
		subQuery.Join = replaceStr(q.Join, class, subClass)
		alts, err := p.Rewrite(subQuery)
		if err != nil {
			return nil, err
		}
		perSub = append(perSub, alts)
		total *= len(alts)
		if total > p.opts.cap() {
			return nil, queryErr(ErrTooManyAlternatives, []string{class},
				"union alternatives exceed the limit of %d", p.opts.cap())
		}
	}

	stmts := []Statement{{}}
	for _, alts := range perSub {
		var next []Statement
		for _, partial := range stmts {
			for _, alt := range alts {
				combined := Statement{Cost: partial.Cost + alt.Cost}
				if partial.SQL == "" {
					combined.SQL = alt.SQL
				} else {
					combined.SQL = partial.SQL + " UNION " + alt.SQL
				}
				combined.Tables = append(append([]string(nil), partial.Tables...), alt.Tables...)
				next = append(next, combined)
			}
		}
		stmts = next
	}
	for i := range stmts {
		stmts[i].Tables = dedupeStr(stmts[i].Tables)
	}
	return stmts, nil
}

func comboKey(set []*ddl.Table) string {
	names := make([]string, len(set))
	for i, t := range set {
		names[i] = t.Name
	}
	sort.Strings(names)
	return strings.Join(names, "\x00")
}

func tableSubset(sub, super []*ddl.Table) bool {
	names := make(map[string]bool, len(super))
	for _, t := range super {
		names[t.Name] = true
	}
	for _, t := range sub {
		if !names[t.Name] {
			return false
		}
	}
	return true
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func replaceStr(list []string, old, new string) []string {
	out := make([]string, len(list))
	for i, v := range list {
		if v == old {
			out[i] = new
		} else {
			out[i] = v
		}
	}
	return out
}

func dedupeStr(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := list[:0]
	for _, v := range list {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

package check

import "github.com/catagraph/catagraph/internal/catalog"

// Atom rules (IC-Atoms1 - IC-Atoms10): attributes, associations and
// generalizations.
const (
	ICAtoms1  = "IC-Atoms1"  // every attribute belongs to exactly one class
	ICAtoms2  = "IC-Atoms2"  // attribute distinct values <= class count
	ICAtoms3  = "IC-Atoms3"  // identifier distinct values == class count
	ICAtoms4  = "IC-Atoms4"  // association has exactly two ends
	ICAtoms5  = "IC-Atoms5"  // association ends are identifier attributes
	ICAtoms6  = "IC-Atoms6"  // a class has at most one direct superclass
	ICAtoms7  = "IC-Atoms7"  // generalization chains are acyclic
	ICAtoms8  = "IC-Atoms8"  // every subclass carries a discriminant
	ICAtoms9  = "IC-Atoms9"  // a hierarchy top declares its own identifier
	ICAtoms10 = "IC-Atoms10" // one identifier declaration per hierarchy
)

func (ck *checker) checkAtoms() {
	cat := ck.cat

	// IC-Atoms1: attribute ownership.
	for _, n := range cat.NodesOfKind(catalog.NodeAttribute) {
		owners := 0
		for _, inc := range cat.IncidencesOfNode(n.Name) {
			if inc.Kind == catalog.EdgeClass && inc.Dir == catalog.Outbound {
				owners++
			}
		}
		if owners != 1 {
			ck.add(ICAtoms1, []string{n.Name}, "attribute belongs to %d classes, want exactly 1", owners)
		}
	}

	// IC-Atoms2/3: cardinality compatibility per class-attribute incidence.
	for _, cls := range cat.EdgesOfKind(catalog.EdgeClass) {
		for _, inc := range cat.OutboundOf(cls.Name) {
			if inc.DistinctVals > cls.Count {
				ck.add(ICAtoms2, []string{cls.Name, inc.Node},
					"attribute has %d distinct values but class has %d instances", inc.DistinctVals, cls.Count)
			}
			if inc.Identifier && inc.DistinctVals != cls.Count {
				ck.add(ICAtoms3, []string{cls.Name, inc.Node},
					"identifier has %d distinct values, want the class count %d", inc.DistinctVals, cls.Count)
			}
		}
	}

	// IC-Atoms4/5: association arity and end typing.
	for _, assoc := range cat.EdgesOfKind(catalog.EdgeAssociation) {
		ends := cat.OutboundOf(assoc.Name)
		if len(ends) != 2 {
			ck.add(ICAtoms4, []string{assoc.Name}, "association has %d ends, want exactly 2", len(ends))
		}
		for _, end := range ends {
			n := cat.Node(end.Node)
			if n == nil || n.Kind != catalog.NodeAttribute || !n.Identifier {
				ck.add(ICAtoms5, []string{assoc.Name, end.Node}, "association end is not an identifier attribute")
			}
		}
	}

	// IC-Atoms6/7: single inheritance and acyclicity.
	for _, cls := range cat.EdgesOfKind(catalog.EdgeClass) {
		supers := 0
		for _, inc := range cat.IncidencesOfNode(catalog.PhantomName(cls.Name)) {
			if inc.Kind == catalog.EdgeGeneralization && inc.Dir == catalog.Outbound && inc.Role == catalog.RoleSubclass {
				supers++
			}
		}
		if supers > 1 {
			ck.add(ICAtoms6, []string{cls.Name}, "class has %d direct superclasses, want at most 1", supers)
		}
		if _, cycle := cat.SuperclassesOf(cls.Name); cycle {
			ck.add(ICAtoms7, []string{cls.Name}, "generalization chain is cyclic")
		}
	}

	// IC-Atoms8: discriminants.
	for _, gen := range cat.EdgesOfKind(catalog.EdgeGeneralization) {
		for _, sub := range cat.Subclasses(gen.Name) {
			if sub.Constraint == "" {
				ck.add(ICAtoms8, []string{gen.Name, sub.Node}, "subclass carries no discriminant predicate")
			}
		}
	}

	// IC-Atoms9/10: identifier placement in hierarchies.
	topsSeen := make(map[string]bool)
	for _, gen := range cat.EdgesOfKind(catalog.EdgeGeneralization) {
		super, ok := cat.SuperclassOf(gen.Name)
		if !ok {
			continue
		}
		chain, cycle := cat.SuperclassesOf(super)
		if cycle {
			continue // already flagged by IC-Atoms7
		}
		top := super
		if len(chain) > 0 {
			top = chain[len(chain)-1]
		}
		if !topsSeen[top] {
			topsSeen[top] = true
			if !declaresIdentifier(cat, top) {
				ck.add(ICAtoms9, []string{top}, "hierarchy top declares no identifier of its own")
			}
		}
	}
	for _, cls := range cat.EdgesOfKind(catalog.EdgeClass) {
		if !declaresIdentifier(cat, cls.Name) {
			continue
		}
		chain, cycle := cat.SuperclassesOf(cls.Name)
		if cycle {
			continue
		}
		for _, super := range chain {
			if declaresIdentifier(cat, super) {
				ck.add(ICAtoms10, []string{cls.Name, super}, "both classes in the same hierarchy declare an identifier")
			}
		}
	}
}

// declaresIdentifier reports whether the class declares an identifier
// attribute directly (not inherited).
func declaresIdentifier(cat *catalog.Catalog, class string) bool {
	for _, inc := range cat.OutboundOf(class) {
		if inc.Kind == catalog.EdgeClass && inc.Identifier {
			return true
		}
	}
	return false
}

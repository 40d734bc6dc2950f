package check

import "github.com/catagraph/catagraph/internal/catalog"

// Paradigm rules for normalized (relational) and 1NF storage.
// Document storage needs no extra shape rules: nesting is its point.
const (
	ICNorm1 = "IC-Norm1" // all sets are first-level
	ICNorm2 = "IC-Norm2" // second level holds exactly the structs
	ICNorm3 = "IC-Norm3" // struct contents are functionally reachable from anchors
	IC1NF1  = "IC-1NF1"  // sets may only contain structs (even transitively)
	IC1NF2  = "IC-1NF2"  // structs appear only at the second level
)

func (ck *checker) checkNormalized() {
	cat := ck.cat

	// IC-Norm1: nested sets cannot map to flat tables.
	firstLevel := make(map[string]bool)
	for _, set := range cat.FirstLevelSets() {
		firstLevel[set.Name] = true
	}
	for _, set := range cat.EdgesOfKind(catalog.EdgeSet) {
		if !firstLevel[set.Name] {
			ck.add(ICNorm1, []string{set.Name}, "set is nested; normalized storage requires all sets at the first level")
		}
	}

	// IC-Norm2: the second level (direct children of first-level sets) must
	// be structs, and every struct must sit there.
	secondLevel := make(map[string]bool)
	for _, set := range cat.FirstLevelSets() {
		for _, inc := range cat.OutboundOf(set.Name) {
			e := cat.EdgeOfPhantom(inc.Node)
			if e == nil || e.Kind != catalog.EdgeStruct {
				ck.add(ICNorm2, []string{set.Name, catalog.TrimPhantom(inc.Node)}, "second-level element of a normalized set is not a struct")
				continue
			}
			secondLevel[e.Name] = true
		}
	}
	for _, st := range cat.EdgesOfKind(catalog.EdgeStruct) {
		if !secondLevel[st.Name] {
			ck.add(ICNorm2, []string{st.Name}, "struct is not at the second level of any first-level set")
		}
	}

	// IC-Norm3: a struct maps to one flat row, so every class whose
	// attributes it carries must be reachable from the anchors along
	// functional (to-one) association ends.
	for _, st := range cat.EdgesOfKind(catalog.EdgeStruct) {
		ck.checkFunctionalReach(st.Name)
	}
}

// checkFunctionalReach walks member associations from the struct's anchor
// identity, following only ends with multiplicity upper bound 1, and flags
// member classes left unreached.
func (ck *checker) checkFunctionalReach(structName string) {
	cat := ck.cat

	var anchors []*catalog.Incidence
	var classes []string
	type hop struct {
		assoc    string
		fromTop  string
		toTop    string
		funcward bool
	}
	var hops []hop

	members := append(cat.OutboundOf(structName), cat.TransitiveOf(structName)...)
	for _, inc := range members {
		if inc.Anchor {
			anchors = append(anchors, inc)
		}
		e := cat.EdgeOfPhantom(inc.Node)
		if e == nil {
			continue
		}
		switch e.Kind {
		case catalog.EdgeClass:
			classes = append(classes, e.Name)
		case catalog.EdgeAssociation:
			ends := cat.OutboundOf(e.Name)
			if len(ends) != 2 {
				continue // IC-Atoms4 already fired
			}
			tops := endTops(cat, e.Name)
			if len(tops) != 2 {
				continue
			}
			// Traversing toward an end is functional when that end's
			// multiplicity upper bound is 1.
			hops = append(hops,
				hop{e.Name, tops[1], tops[0], ends[0].Mult.Functional()},
				hop{e.Name, tops[0], tops[1], ends[1].Mult.Functional()},
			)
		}
	}
	if len(anchors) == 0 {
		return // IC-Structs3 already fired
	}

	reached := make(map[string]bool)
	for _, t := range anchorTops(cat, anchors) {
		reached[t] = true
	}
	for grew := true; grew; {
		grew = false
		for _, h := range hops {
			if h.funcward && reached[h.fromTop] && !reached[h.toTop] {
				reached[h.toTop] = true
				grew = true
			}
		}
	}
	for _, cls := range classes {
		if !reached[hierarchyTop(cat, cls)] {
			ck.add(ICNorm3, []string{structName, cls}, "class is not functionally reachable from the struct's anchor")
		}
	}
}

func (ck *checker) checkOneNF() {
	cat := ck.cat

	// IC-1NF1: no set may reach another set or a bare class, even through
	// nesting.
	for _, set := range cat.EdgesOfKind(catalog.EdgeSet) {
		for _, inc := range append(cat.OutboundOf(set.Name), cat.TransitiveOf(set.Name)...) {
			e := cat.EdgeOfPhantom(inc.Node)
			if e != nil && e.Kind == catalog.EdgeSet {
				ck.add(IC1NF1, []string{set.Name, e.Name}, "set contains another set; 1NF allows structs only")
			}
		}
	}

	// IC-1NF2: struct-in-struct nesting is NF², not 1NF.
	for _, st := range cat.EdgesOfKind(catalog.EdgeStruct) {
		for _, inc := range cat.OutboundOf(st.Name) {
			e := cat.EdgeOfPhantom(inc.Node)
			if e != nil && (e.Kind == catalog.EdgeStruct || e.Kind == catalog.EdgeSet) {
				ck.add(IC1NF2, []string{st.Name, e.Name}, "struct nests a %s; 1NF structs hold atoms only", e.Kind)
			}
		}
	}
}

package check

import "github.com/catagraph/catagraph/internal/catalog"

// Design-level rules (IC-Design1 - IC-Design3): the catalog is a finished
// storage design, not just a well-formed domain model.
const (
	ICDesign1 = "IC-Design1" // every first-level container is a set
	ICDesign2 = "IC-Design2" // every domain atom is reachable from a first-level set
	ICDesign3 = "IC-Design3" // every domain element appears in at least one struct
)

func (ck *checker) checkDesign() {
	cat := ck.cat

	// IC-Design1: structs must be nested somewhere; a struct nobody
	// contains is a container at the first level, which only sets may be.
	for _, st := range cat.EdgesOfKind(catalog.EdgeStruct) {
		contained := false
		for _, inc := range cat.IncidencesOfNode(catalog.PhantomName(st.Name)) {
			if inc.Dir == catalog.Outbound || inc.Dir == catalog.Transitive {
				contained = true
				break
			}
		}
		if !contained {
			ck.add(ICDesign1, []string{st.Name}, "struct is a first-level container; only sets may be first-level")
		}
	}

	// IC-Design2: union of everything first-level sets reach.
	reach := make(map[string]bool)
	for _, set := range cat.FirstLevelSets() {
		for _, inc := range append(cat.OutboundOf(set.Name), cat.TransitiveOf(set.Name)...) {
			reach[inc.Node] = true
		}
	}
	for _, name := range domainElements(cat) {
		if !reach[name] {
			ck.add(ICDesign2, []string{displayName(name)}, "domain element is not reachable from any first-level set")
		}
	}

	// IC-Design3: struct coverage.
	inStruct := make(map[string]bool)
	for _, st := range cat.EdgesOfKind(catalog.EdgeStruct) {
		for _, inc := range append(cat.OutboundOf(st.Name), cat.TransitiveOf(st.Name)...) {
			inStruct[inc.Node] = true
		}
	}
	for _, name := range domainElements(cat) {
		if !inStruct[name] {
			ck.add(ICDesign3, []string{displayName(name)}, "domain element appears in no struct")
		}
	}
}

// domainElements returns the incidence-target names of the domain atoms:
// attribute nodes plus class and association phantoms.
func domainElements(cat *catalog.Catalog) []string {
	var out []string
	for _, n := range cat.NodesOfKind(catalog.NodeAttribute) {
		out = append(out, n.Name)
	}
	for _, e := range cat.EdgesOfKind(catalog.EdgeClass) {
		out = append(out, catalog.PhantomName(e.Name))
	}
	for _, e := range cat.EdgesOfKind(catalog.EdgeAssociation) {
		out = append(out, catalog.PhantomName(e.Name))
	}
	return out
}

// displayName strips the phantom prefix so violations name the element the
// user declared.
func displayName(target string) string {
	return catalog.TrimPhantom(target)
}

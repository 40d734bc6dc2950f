package check

import "github.com/catagraph/catagraph/internal/catalog"

// Struct rules (IC-Structs1 - IC-Structs6).
const (
	ICStructs1 = "IC-Structs1" // struct has a phantom
	ICStructs2 = "IC-Structs2" // the stored transitive closure is correct
	ICStructs3 = "IC-Structs3" // struct has at least one anchor
	ICStructs4 = "IC-Structs4" // anchors are class or association phantoms
	ICStructs5 = "IC-Structs5" // the anchor subgraph is connected
	ICStructs6 = "IC-Structs6" // one association path from anchor to each attribute
)

func (ck *checker) checkStructs() {
	cat := ck.cat
	for _, st := range cat.EdgesOfKind(catalog.EdgeStruct) {
		if cat.PhantomOfEdge(st.Name) == nil {
			ck.add(ICStructs1, []string{st.Name}, "struct has no phantom node")
		}

		ck.checkClosure(st.Name)

		var anchors []*catalog.Incidence
		for _, inc := range cat.OutboundOf(st.Name) {
			if inc.Anchor {
				anchors = append(anchors, inc)
			}
		}
		if len(anchors) == 0 {
			ck.add(ICStructs3, []string{st.Name}, "struct has no anchor")
		}
		for _, a := range anchors {
			e := cat.EdgeOfPhantom(a.Node)
			if e == nil || (e.Kind != catalog.EdgeClass && e.Kind != catalog.EdgeAssociation) {
				ck.add(ICStructs4, []string{st.Name, a.Node}, "anchor is not a class or association phantom")
			}
		}

		ck.checkAnchorConnectivity(st.Name, anchors)
		ck.checkAttributePaths(st.Name, anchors)
	}
}

// checkClosure recomputes the struct's transitive set and compares it with
// the stored one (IC-Structs2). The builders always precompute the closure;
// a mismatch means the catalog was corrupted after building.
func (ck *checker) checkClosure(structName string) {
	cat := ck.cat
	want := make(map[string]bool)
	for _, node := range cat.ComputeClosure(structName) {
		want[node] = true
	}
	got := make(map[string]bool)
	for _, inc := range cat.TransitiveOf(structName) {
		got[inc.Node] = true
	}
	for _, inc := range cat.TransitiveOf(structName) {
		if !want[inc.Node] {
			ck.add(ICStructs2, []string{structName, inc.Node}, "stored transitive incidence is not in the recomputed closure")
		}
	}
	for _, node := range cat.ComputeClosure(structName) {
		if !got[node] {
			ck.add(ICStructs2, []string{structName, node}, "recomputed closure member has no stored transitive incidence")
		}
	}
}

// hierarchyTop returns the topmost superclass of a class; classes in one
// hierarchy share an identity, so paths and connectivity are computed over
// hierarchy tops.
func hierarchyTop(cat *catalog.Catalog, class string) string {
	chain, _ := cat.SuperclassesOf(class)
	if len(chain) == 0 {
		return class
	}
	return chain[len(chain)-1]
}

// endTops returns the hierarchy tops of the two classes an association
// connects, resolved through the owning classes of its end attributes.
func endTops(cat *catalog.Catalog, assoc string) []string {
	var tops []string
	for _, end := range cat.OutboundOf(assoc) {
		owner := cat.OwningClass(end.Node)
		if owner != nil {
			tops = append(tops, hierarchyTop(cat, owner.Name))
		}
	}
	return tops
}

// anchorTops resolves anchors to hierarchy tops: class anchors directly,
// association anchors through both their ends.
func anchorTops(cat *catalog.Catalog, anchors []*catalog.Incidence) []string {
	var tops []string
	seen := make(map[string]bool)
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			tops = append(tops, t)
		}
	}
	for _, a := range anchors {
		e := cat.EdgeOfPhantom(a.Node)
		if e == nil {
			continue
		}
		switch e.Kind {
		case catalog.EdgeClass:
			add(hierarchyTop(cat, e.Name))
		case catalog.EdgeAssociation:
			for _, t := range endTops(cat, e.Name) {
				add(t)
			}
		}
	}
	return tops
}

// checkAnchorConnectivity verifies the anchor subgraph forms one component
// (IC-Structs5). Class anchors connect through association anchors whose
// ends match them; anchors in the same hierarchy count as one identity.
func (ck *checker) checkAnchorConnectivity(structName string, anchors []*catalog.Incidence) {
	cat := ck.cat
	if len(anchors) <= 1 {
		return
	}

	// Component per anchor, merged through shared hierarchy tops.
	topOf := make(map[int][]string, len(anchors))
	for i, a := range anchors {
		e := cat.EdgeOfPhantom(a.Node)
		if e == nil {
			continue
		}
		switch e.Kind {
		case catalog.EdgeClass:
			topOf[i] = []string{hierarchyTop(cat, e.Name)}
		case catalog.EdgeAssociation:
			topOf[i] = endTops(cat, e.Name)
		}
	}

	reached := map[int]bool{0: true}
	frontier := map[string]bool{}
	for _, t := range topOf[0] {
		frontier[t] = true
	}
	for {
		grew := false
		for i := range anchors {
			if reached[i] {
				continue
			}
			for _, t := range topOf[i] {
				if frontier[t] {
					reached[i] = true
					grew = true
					for _, u := range topOf[i] {
						frontier[u] = true
					}
					break
				}
			}
		}
		if !grew {
			break
		}
	}
	for i, a := range anchors {
		if !reached[i] {
			ck.add(ICStructs5, []string{structName, a.Node}, "anchor is disconnected from the anchor subgraph")
		}
	}
}

// checkAttributePaths verifies every attribute member of the struct is
// reachable from the anchor identity by exactly one simple path of member
// associations (IC-Structs6). Zero paths means the attribute's identity is
// undetermined; more than one means it is ambiguous.
func (ck *checker) checkAttributePaths(structName string, anchors []*catalog.Incidence) {
	cat := ck.cat
	starts := anchorTops(cat, anchors)
	if len(starts) == 0 {
		return // no anchors; IC-Structs3 already fired
	}
	startSet := make(map[string]bool, len(starts))
	for _, s := range starts {
		startSet[s] = true
	}

	// Member associations of the struct (direct or through nesting).
	var assocs []string
	for _, inc := range append(cat.OutboundOf(structName), cat.TransitiveOf(structName)...) {
		if e := cat.EdgeOfPhantom(inc.Node); e != nil && e.Kind == catalog.EdgeAssociation {
			assocs = append(assocs, e.Name)
		}
	}

	for _, inc := range append(cat.OutboundOf(structName), cat.TransitiveOf(structName)...) {
		n := cat.Node(inc.Node)
		if n == nil || n.Kind != catalog.NodeAttribute {
			continue
		}
		owner := cat.OwningClass(n.Name)
		if owner == nil {
			continue // IC-Atoms1 already fired
		}
		target := hierarchyTop(cat, owner.Name)

		var paths int
		if startSet[target] {
			paths = 1
		} else {
			for _, s := range starts {
				visited := make(map[string]bool, len(startSet))
				for k := range startSet {
					visited[k] = true
				}
				paths += countAssocPaths(cat, assocs, s, target, visited, make(map[string]bool))
			}
		}
		switch {
		case paths == 0:
			ck.add(ICStructs6, []string{structName, n.Name}, "attribute is not reachable from an anchor through the struct's associations")
		case paths > 1:
			ck.add(ICStructs6, []string{structName, n.Name}, "attribute is reachable from an anchor by %d association paths, want exactly 1", paths)
		}
	}
}

// countAssocPaths counts simple paths from the hierarchy top `from` to
// `target` using each member association at most once.
func countAssocPaths(cat *catalog.Catalog, assocs []string, from, target string, visited, used map[string]bool) int {
	if from == target {
		return 1
	}
	count := 0
	for _, a := range assocs {
		if used[a] {
			continue
		}
		tops := endTops(cat, a)
		if len(tops) != 2 {
			continue
		}
		var next string
		switch from {
		case tops[0]:
			next = tops[1]
		case tops[1]:
			next = tops[0]
		default:
			continue
		}
		if visited[next] {
			continue
		}
		used[a] = true
		visited[next] = true
		count += countAssocPaths(cat, assocs, next, target, visited, used)
		delete(visited, next)
		delete(used, a)
	}
	return count
}

package check

import "github.com/catagraph/catagraph/internal/catalog"

// Generic hypergraph shape rules (IC-Generic1 - IC-Generic7).
const (
	ICGeneric1 = "IC-Generic1" // names are unique across nodes and edges
	ICGeneric2 = "IC-Generic2" // the hypergraph is connected
	ICGeneric3 = "IC-Generic3" // every phantom has exactly one inbound edge
	ICGeneric4 = "IC-Generic4" // every edge has exactly one inbound incidence
	ICGeneric5 = "IC-Generic5" // every edge has at least one outbound incidence
	ICGeneric6 = "IC-Generic6" // no edge reaches its own phantom (acyclic edge)
	ICGeneric7 = "IC-Generic7" // outbound and transitive sets are disjoint
)

func (ck *checker) checkGeneric() {
	cat := ck.cat

	// IC-Generic1: the builder namespace is shared, but a restored or
	// hand-assembled catalog can collide a node name with an edge name.
	for _, e := range cat.Edges() {
		if cat.Node(e.Name) != nil {
			ck.add(ICGeneric1, []string{e.Name}, "name used by both a node and an edge")
		}
	}

	ck.checkConnected()

	// IC-Generic3: phantoms are owned by exactly one edge.
	for _, n := range cat.NodesOfKind(catalog.NodePhantom) {
		inbound := 0
		for _, inc := range cat.IncidencesOfNode(n.Name) {
			if inc.Dir == catalog.Inbound {
				inbound++
			}
		}
		if inbound != 1 {
			ck.add(ICGeneric3, []string{n.Name}, "phantom has %d inbound edges, want exactly 1", inbound)
		}
	}

	for _, e := range cat.Edges() {
		inbound := 0
		for _, inc := range cat.Incidences() {
			if inc.Edge == e.Name && inc.Dir == catalog.Inbound {
				inbound++
			}
		}
		if inbound != 1 {
			ck.add(ICGeneric4, []string{e.Name}, "edge has %d inbound incidences, want exactly 1", inbound)
		}
		if len(cat.OutboundOf(e.Name)) == 0 {
			ck.add(ICGeneric5, []string{e.Name}, "edge has no outbound incidence")
		}

		// IC-Generic6: an edge containing its own phantom is cyclic.
		own := catalog.PhantomName(e.Name)
		if cat.Contains(e.Name, own) {
			ck.add(ICGeneric6, []string{e.Name}, "edge contains its own phantom")
		}

		// IC-Generic7: the closure must not repeat direct members.
		outbound := make(map[string]bool)
		for _, inc := range cat.OutboundOf(e.Name) {
			outbound[inc.Node] = true
		}
		for _, inc := range cat.TransitiveOf(e.Name) {
			if outbound[inc.Node] {
				ck.add(ICGeneric7, []string{e.Name, inc.Node}, "node is both outbound and transitive")
			}
		}
	}
}

// checkConnected verifies the whole hypergraph forms one component.
// Nodes and edges are vertices; every incidence is an undirected arc.
func (ck *checker) checkConnected() {
	cat := ck.cat
	adj := make(map[string][]string)
	link := func(a, b string) {
		adj[a] = append(adj[a], b)
		adj[b] = append(adj[b], a)
	}
	for _, inc := range cat.Incidences() {
		link("edge:"+inc.Edge, "node:"+inc.Node)
	}

	var all []string
	for _, n := range cat.Nodes() {
		all = append(all, "node:"+n.Name)
	}
	for _, e := range cat.Edges() {
		all = append(all, "edge:"+e.Name)
	}
	if len(all) == 0 {
		return
	}

	seen := map[string]bool{all[0]: true}
	queue := []string{all[0]}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range adj[v] {
			if !seen[w] {
				seen[w] = true
				queue = append(queue, w)
			}
		}
	}
	for _, v := range all {
		if !seen[v] {
			ck.add(ICGeneric2, []string{v[5:]}, "element is disconnected from the hypergraph")
		}
	}
}

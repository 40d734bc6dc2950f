package catalog

// Restore rebuilds a catalog from raw element sets, bypassing the builder
// preconditions. It is the deserialization path for snapshots: the rows are
// trusted to have passed the builders once already, and the snapshot layer
// verifies the fingerprint after restoring.
func Restore(id string, nodes []*Node, edges []*Edge, incidences []*Incidence) *Catalog {
	c := &Catalog{
		ID:     id,
		nodes:  make(map[string]*Node, len(nodes)),
		edges:  make(map[string]*Edge, len(edges)),
		byEdge: make(map[string][]*Incidence, len(edges)),
		byNode: make(map[string][]*Incidence, len(nodes)),
	}
	for _, n := range nodes {
		c.putNode(n)
	}
	for _, e := range edges {
		c.edges[e.Name] = e
		c.edgeOrder = append(c.edgeOrder, e.Name)
	}
	for _, inc := range incidences {
		c.putIncidence(inc)
	}
	return c
}

package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Build error codes (B100-B199).
const (
	ErrDuplicateName    = "B101" // name already used by a node or edge
	ErrUnknownReference = "B102" // referenced element does not exist
	ErrArity            = "B103" // kind-specific arity rule violated
	ErrIncompatible     = "B104" // cardinalities or hierarchy incompatible
	ErrKindMismatch     = "B105" // referenced element has the wrong kind
)

// BuildError reports a violated builder precondition. Builder operations
// either fully apply or reject before mutating, so the catalog is always
// left in its last-good state.
type BuildError struct {
	Code    string `json:"code"`
	Element string `json:"element"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Element, e.Message)
}

func buildErr(code, element, format string, args ...any) *BuildError {
	return &BuildError{Code: code, Element: element, Message: fmt.Sprintf(format, args...)}
}

const phantomPrefix = "ph$"

// PhantomName returns the synthetic node name for an edge's phantom.
// The prefix keeps phantoms out of the user namespace; they never appear
// in generated statements.
func PhantomName(edge string) string {
	return phantomPrefix + edge
}

// IsPhantomName reports whether a node name belongs to a phantom.
func IsPhantomName(name string) bool {
	return strings.HasPrefix(name, phantomPrefix)
}

// TrimPhantom returns the edge name behind a phantom node name.
func TrimPhantom(name string) string {
	return strings.TrimPrefix(name, phantomPrefix)
}

// Catalog is the hypergraph store: the sole owner of all nodes, edges and
// incidences. It is populated once through the builder operations and is
// append-only afterwards. All read operations are pure and safe to run in
// parallel against the same snapshot.
type Catalog struct {
	// ID identifies this catalog instance across snapshots.
	ID string

	nodes     map[string]*Node
	edges     map[string]*Edge
	nodeOrder []string
	edgeOrder []string

	incidences []*Incidence
	byEdge     map[string][]*Incidence
	byNode     map[string][]*Incidence
}

// New returns an empty catalog with a fresh identity.
func New() *Catalog {
	return &Catalog{
		ID:     uuid.NewString(),
		nodes:  make(map[string]*Node),
		edges:  make(map[string]*Edge),
		byEdge: make(map[string][]*Incidence),
		byNode: make(map[string][]*Incidence),
	}
}

// Node returns the named node, or nil.
func (c *Catalog) Node(name string) *Node {
	return c.nodes[name]
}

// Edge returns the named edge, or nil.
func (c *Catalog) Edge(name string) *Edge {
	return c.edges[name]
}

// NodesOfKind returns all nodes of the given kind in insertion order.
func (c *Catalog) NodesOfKind(kind NodeKind) []*Node {
	var out []*Node
	for _, name := range c.nodeOrder {
		if n := c.nodes[name]; n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// EdgesOfKind returns all edges of the given kind in insertion order.
func (c *Catalog) EdgesOfKind(kind EdgeKind) []*Edge {
	var out []*Edge
	for _, name := range c.edgeOrder {
		if e := c.edges[name]; e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Edges returns all edges in insertion order.
func (c *Catalog) Edges() []*Edge {
	out := make([]*Edge, 0, len(c.edgeOrder))
	for _, name := range c.edgeOrder {
		out = append(out, c.edges[name])
	}
	return out
}

// Nodes returns all nodes in insertion order.
func (c *Catalog) Nodes() []*Node {
	out := make([]*Node, 0, len(c.nodeOrder))
	for _, name := range c.nodeOrder {
		out = append(out, c.nodes[name])
	}
	return out
}

// Incidences returns every incidence in insertion order.
// The returned slice must not be mutated.
func (c *Catalog) Incidences() []*Incidence {
	return c.incidences
}

// InboundOf returns the edge's inbound incidence (to its own phantom),
// or nil if the edge has none.
func (c *Catalog) InboundOf(edge string) *Incidence {
	for _, inc := range c.byEdge[edge] {
		if inc.Dir == Inbound {
			return inc
		}
	}
	return nil
}

// OutboundOf returns the edge's outbound incidences in insertion order.
func (c *Catalog) OutboundOf(edge string) []*Incidence {
	var out []*Incidence
	for _, inc := range c.byEdge[edge] {
		if inc.Dir == Outbound {
			out = append(out, inc)
		}
	}
	return out
}

// TransitiveOf returns the edge's precomputed transitive incidences.
func (c *Catalog) TransitiveOf(edge string) []*Incidence {
	var out []*Incidence
	for _, inc := range c.byEdge[edge] {
		if inc.Dir == Transitive {
			out = append(out, inc)
		}
	}
	return out
}

// IncidencesOfNode returns every incidence touching the named node.
func (c *Catalog) IncidencesOfNode(node string) []*Incidence {
	return c.byNode[node]
}

// PhantomOfEdge returns the phantom node standing for the named edge.
func (c *Catalog) PhantomOfEdge(edge string) *Node {
	return c.nodes[PhantomName(edge)]
}

// EdgeOfPhantom resolves a phantom node name back to its edge.
func (c *Catalog) EdgeOfPhantom(phantom string) *Edge {
	if !IsPhantomName(phantom) {
		return nil
	}
	return c.edges[strings.TrimPrefix(phantom, phantomPrefix)]
}

// Contains reports whether the edge reaches the node directly (outbound)
// or through its precomputed closure (transitive).
func (c *Catalog) Contains(edge, node string) bool {
	for _, inc := range c.byEdge[edge] {
		if inc.Node == node && (inc.Dir == Outbound || inc.Dir == Transitive) {
			return true
		}
	}
	return false
}

// FirstLevelSets returns the sets not nested inside any struct or set.
// A first-level set corresponds to a physical table.
func (c *Catalog) FirstLevelSets() []*Edge {
	var out []*Edge
	for _, set := range c.EdgesOfKind(EdgeSet) {
		ph := PhantomName(set.Name)
		nested := false
		for _, inc := range c.byNode[ph] {
			if inc.Dir == Outbound || inc.Dir == Transitive {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, set)
		}
	}
	return out
}

// nameFree reports an error if the name is already taken by a node or edge.
func (c *Catalog) nameFree(name string) error {
	if name == "" {
		return buildErr(ErrUnknownReference, name, "empty element name")
	}
	if _, ok := c.nodes[name]; ok {
		return buildErr(ErrDuplicateName, name, "node %q already exists", name)
	}
	if _, ok := c.edges[name]; ok {
		return buildErr(ErrDuplicateName, name, "edge %q already exists", name)
	}
	return nil
}

// putNode registers a node. Callers must have checked the name first.
func (c *Catalog) putNode(n *Node) {
	c.nodes[n.Name] = n
	c.nodeOrder = append(c.nodeOrder, n.Name)
}

// putEdge registers an edge and its phantom, wired by an inbound incidence.
func (c *Catalog) putEdge(e *Edge) {
	c.edges[e.Name] = e
	c.edgeOrder = append(c.edgeOrder, e.Name)
	ph := &Node{Name: PhantomName(e.Name), Kind: NodePhantom, Subkind: e.Kind}
	c.putNode(ph)
	c.putIncidence(&Incidence{Edge: e.Name, Node: ph.Name, Kind: e.Kind, Dir: Inbound})
}

// putIncidence registers an incidence in the arena and both indexes.
func (c *Catalog) putIncidence(inc *Incidence) {
	c.incidences = append(c.incidences, inc)
	c.byEdge[inc.Edge] = append(c.byEdge[inc.Edge], inc)
	c.byNode[inc.Node] = append(c.byNode[inc.Node], inc)
}

package catalog

import "fmt"

// NodeKind distinguishes the two node flavors in the hypergraph.
//
// Attribute nodes carry domain data (datatype, size, distinct-value count).
// Phantom nodes are synthetic placeholders, one per edge, that let edges
// reference other edges uniformly (a struct "contains" a class by pointing
// at the class edge's phantom).
type NodeKind int

const (
	NodeAttribute NodeKind = iota
	NodePhantom
)

func (k NodeKind) String() string {
	switch k {
	case NodeAttribute:
		return "Attribute"
	case NodePhantom:
		return "Phantom"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// EdgeKind is the closed set of hyperedge kinds.
// It doubles as the phantom subkind (a phantom remembers which kind of
// edge it stands for).
type EdgeKind int

const (
	EdgeClass EdgeKind = iota
	EdgeAssociation
	EdgeGeneralization
	EdgeStruct
	EdgeSet
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeClass:
		return "Class"
	case EdgeAssociation:
		return "Association"
	case EdgeGeneralization:
		return "Generalization"
	case EdgeStruct:
		return "Struct"
	case EdgeSet:
		return "Set"
	default:
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
}

// Direction classifies an incidence relative to its edge.
//
//   - Inbound connects an edge to its own phantom (exactly one per edge).
//   - Outbound connects an edge to a node/phantom it directly contains.
//   - Transitive connects a struct/set to a node it contains through a
//     nested struct/set. The closure is precomputed at build time so higher
//     layers never re-walk nested structures.
type Direction int

const (
	Inbound Direction = iota
	Outbound
	Transitive
)

func (d Direction) String() string {
	switch d {
	case Inbound:
		return "Inbound"
	case Outbound:
		return "Outbound"
	case Transitive:
		return "Transitive"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// GenRole marks which side of a generalization an incidence is on.
type GenRole int

const (
	RoleNone GenRole = iota
	RoleSuperclass
	RoleSubclass
)

func (r GenRole) String() string {
	switch r {
	case RoleNone:
		return "None"
	case RoleSuperclass:
		return "Superclass"
	case RoleSubclass:
		return "Subclass"
	default:
		return fmt.Sprintf("GenRole(%d)", int(r))
	}
}

package catalog

// Unbounded marks a multiplicity upper bound with no limit ("*").
const Unbounded = -1

// Multiplicity is an association end's cardinality bounds.
// Max == 1 denotes a functional (to-one) end; Max == Unbounded denotes "*".
type Multiplicity struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Functional reports whether the end is to-one.
func (m Multiplicity) Functional() bool {
	return m.Max == 1
}

// Node is an atom of the hypergraph.
//
// For Kind == NodeAttribute the DataType, Size, DistinctVals and Identifier
// fields are meaningful. For Kind == NodePhantom only Subkind is, recording
// the kind of the edge the phantom stands for.
type Node struct {
	Name string   `json:"name"`
	Kind NodeKind `json:"kind"`

	DataType     string `json:"data_type,omitempty"`
	Size         int    `json:"size,omitempty"`
	DistinctVals int64  `json:"distinct_vals,omitempty"`
	Identifier   bool   `json:"identifier,omitempty"`

	Subkind EdgeKind `json:"subkind,omitempty"`
}

// Edge is a named hyperedge.
//
// Count is meaningful for classes (instance cardinality). Disjoint and
// Complete are meaningful for generalizations. Structs and sets carry no
// edge-level payload; their shape lives in their incidences.
type Edge struct {
	Name string   `json:"name"`
	Kind EdgeKind `json:"kind"`

	Count    int64 `json:"count,omitempty"`
	Disjoint bool  `json:"disjoint,omitempty"`
	Complete bool  `json:"complete,omitempty"`
}

// Incidence connects an edge to a node. Kind always matches the edge's kind.
// The payload fields are populated per kind:
//
//   - class-attribute incidences: Identifier, DistinctVals
//   - association ends: EndName, Mult
//   - generalization incidences: Role, Constraint (subclass discriminant)
//   - struct members: Anchor
type Incidence struct {
	Edge string    `json:"edge"`
	Node string    `json:"node"`
	Kind EdgeKind  `json:"kind"`
	Dir  Direction `json:"dir"`

	Identifier   bool         `json:"identifier,omitempty"`
	DistinctVals int64        `json:"distinct_vals,omitempty"`
	EndName      string       `json:"end_name,omitempty"`
	EndClass     string       `json:"end_class,omitempty"`
	Mult         Multiplicity `json:"mult"`
	Role         GenRole      `json:"role,omitempty"`
	Constraint   string       `json:"constraint,omitempty"`
	Anchor       bool         `json:"anchor,omitempty"`
}

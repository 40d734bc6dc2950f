package catalog

// Builder operations. Each validates all of its preconditions before the
// first mutation, so a failed call leaves the catalog untouched (§ error
// taxonomy: BuildError is fatal to the call, never to the catalog).

// AttributeDef describes one attribute of a class being added.
type AttributeDef struct {
	Name         string
	DataType     string
	Size         int
	DistinctVals int64
	Identifier   bool
}

// EndDef describes one end of an association: the class it touches, the
// end name (used as the loose-end column name when the class is not part
// of a struct), and its multiplicity.
type EndDef struct {
	Class string
	Name  string
	Mult  Multiplicity
}

// SubclassDef names one subclass of a generalization together with the
// discriminant predicate selecting its rows.
type SubclassDef struct {
	Class      string
	Constraint string
}

// AddClass adds a class edge with its attribute nodes.
//
// Attribute names are global: an attribute already owned by another class
// is rejected here (duplicate ownership never reaches validation).
func (c *Catalog) AddClass(name string, count int64, attrs []AttributeDef) error {
	if err := c.nameFree(name); err != nil {
		return err
	}
	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if err := c.nameFree(a.Name); err != nil {
			return err
		}
		if seen[a.Name] {
			return buildErr(ErrDuplicateName, a.Name, "attribute %q listed twice on class %q", a.Name, name)
		}
		seen[a.Name] = true
		if a.DistinctVals < 0 {
			return buildErr(ErrIncompatible, a.Name, "attribute %q has negative distinct value count", a.Name)
		}
	}
	if count < 0 {
		return buildErr(ErrIncompatible, name, "class %q has negative instance count", name)
	}

	c.putEdge(&Edge{Name: name, Kind: EdgeClass, Count: count})
	for _, a := range attrs {
		c.putNode(&Node{
			Name:         a.Name,
			Kind:         NodeAttribute,
			DataType:     a.DataType,
			Size:         a.Size,
			DistinctVals: a.DistinctVals,
			Identifier:   a.Identifier,
		})
		c.putIncidence(&Incidence{
			Edge:         name,
			Node:         a.Name,
			Kind:         EdgeClass,
			Dir:          Outbound,
			Identifier:   a.Identifier,
			DistinctVals: a.DistinctVals,
		})
	}
	return nil
}

// AddAssociation adds a binary association. Each end resolves to the
// identifier attribute of its class, walking the generalization hierarchy
// when the class inherits its identifier.
func (c *Catalog) AddAssociation(name string, ends []EndDef) error {
	if err := c.nameFree(name); err != nil {
		return err
	}
	if len(ends) != 2 {
		return buildErr(ErrArity, name, "association %q requires exactly two ends, got %d", name, len(ends))
	}
	idAttrs := make([]string, 2)
	for i, end := range ends {
		cls := c.Edge(end.Class)
		if cls == nil {
			return buildErr(ErrUnknownReference, name, "association %q references unknown class %q", name, end.Class)
		}
		if cls.Kind != EdgeClass {
			return buildErr(ErrKindMismatch, name, "association %q end %q is a %s, not a class", name, end.Class, cls.Kind)
		}
		id, ok := c.IdentifierOf(end.Class)
		if !ok {
			return buildErr(ErrIncompatible, name, "association %q end class %q has no identifier attribute", name, end.Class)
		}
		if end.Mult.Max != Unbounded && (end.Mult.Min > end.Mult.Max || end.Mult.Min < 0) {
			return buildErr(ErrIncompatible, name, "association %q end %q has incompatible multiplicity %d..%d", name, end.Name, end.Mult.Min, end.Mult.Max)
		}
		idAttrs[i] = id
	}

	c.putEdge(&Edge{Name: name, Kind: EdgeAssociation})
	for i, end := range ends {
		c.putIncidence(&Incidence{
			Edge:     name,
			Node:     idAttrs[i],
			Kind:     EdgeAssociation,
			Dir:      Outbound,
			EndName:  end.Name,
			EndClass: end.Class,
			Mult:     end.Mult,
		})
	}
	return nil
}

// AddGeneralization adds a generalization edge between one superclass and
// one or more subclasses. Single inheritance is enforced here: a class that
// already has a superclass cannot be made a subclass again.
func (c *Catalog) AddGeneralization(name, superclass string, subs []SubclassDef, disjoint, complete bool) error {
	if err := c.nameFree(name); err != nil {
		return err
	}
	super := c.Edge(superclass)
	if super == nil {
		return buildErr(ErrUnknownReference, name, "generalization %q references unknown superclass %q", name, superclass)
	}
	if super.Kind != EdgeClass {
		return buildErr(ErrKindMismatch, name, "generalization %q superclass %q is a %s, not a class", name, superclass, super.Kind)
	}
	if len(subs) == 0 {
		return buildErr(ErrArity, name, "generalization %q requires at least one subclass", name)
	}
	seen := make(map[string]bool, len(subs))
	for _, sub := range subs {
		e := c.Edge(sub.Class)
		if e == nil {
			return buildErr(ErrUnknownReference, name, "generalization %q references unknown subclass %q", name, sub.Class)
		}
		if e.Kind != EdgeClass {
			return buildErr(ErrKindMismatch, name, "generalization %q subclass %q is a %s, not a class", name, sub.Class, e.Kind)
		}
		if sub.Class == superclass {
			return buildErr(ErrIncompatible, name, "generalization %q lists %q as both superclass and subclass", name, superclass)
		}
		if seen[sub.Class] {
			return buildErr(ErrDuplicateName, name, "generalization %q lists subclass %q twice", name, sub.Class)
		}
		seen[sub.Class] = true
		if g, _ := c.directSuperclass(sub.Class); g != "" {
			return buildErr(ErrIncompatible, name, "class %q already has a superclass via %q (single inheritance)", sub.Class, g)
		}
	}

	c.putEdge(&Edge{Name: name, Kind: EdgeGeneralization, Disjoint: disjoint, Complete: complete})
	c.putIncidence(&Incidence{
		Edge: name,
		Node: PhantomName(superclass),
		Kind: EdgeGeneralization,
		Dir:  Outbound,
		Role: RoleSuperclass,
	})
	for _, sub := range subs {
		c.putIncidence(&Incidence{
			Edge:       name,
			Node:       PhantomName(sub.Class),
			Kind:       EdgeGeneralization,
			Dir:        Outbound,
			Role:       RoleSubclass,
			Constraint: sub.Constraint,
		})
	}
	return nil
}

// AddStruct adds a struct edge over the named members. Members may be
// attributes, classes, associations, or nested structs/sets; anchors must
// be a subset of the members naming classes or associations.
//
// Two closures are precomputed here so later layers never re-walk nesting:
// the contents of nested structs/sets become Transitive incidences, and the
// inherited generalizations of every member class are attached the same way.
func (c *Catalog) AddStruct(name string, members, anchors []string) error {
	if err := c.nameFree(name); err != nil {
		return err
	}
	if len(members) == 0 {
		return buildErr(ErrArity, name, "struct %q requires at least one member", name)
	}
	memberSet := make(map[string]bool, len(members))
	for _, m := range members {
		target, err := c.memberTarget(name, m)
		if err != nil {
			return err
		}
		if memberSet[target] {
			return buildErr(ErrDuplicateName, name, "struct %q lists member %q twice", name, m)
		}
		memberSet[target] = true
	}
	anchorSet := make(map[string]bool, len(anchors))
	for _, a := range anchors {
		e := c.Edge(a)
		if e == nil {
			return buildErr(ErrUnknownReference, name, "struct %q anchor %q is not a class or association", name, a)
		}
		if e.Kind != EdgeClass && e.Kind != EdgeAssociation {
			return buildErr(ErrKindMismatch, name, "struct %q anchor %q is a %s, not a class or association", name, a, e.Kind)
		}
		if !memberSet[PhantomName(a)] {
			return buildErr(ErrUnknownReference, name, "struct %q anchor %q is not among its members", name, a)
		}
		anchorSet[PhantomName(a)] = true
	}

	c.putEdge(&Edge{Name: name, Kind: EdgeStruct})
	for _, m := range members {
		target, _ := c.memberTarget(name, m)
		c.putIncidence(&Incidence{
			Edge:   name,
			Node:   target,
			Kind:   EdgeStruct,
			Dir:    Outbound,
			Anchor: anchorSet[target],
		})
	}
	c.closeOver(name, EdgeStruct)
	return nil
}

// AddSet adds a set edge. Sets directly contain structs only; classes and
// other sets are rejected here (the validator re-checks as IC-Sets2).
func (c *Catalog) AddSet(name string, structs []string) error {
	if err := c.nameFree(name); err != nil {
		return err
	}
	if len(structs) == 0 {
		return buildErr(ErrArity, name, "set %q requires at least one element", name)
	}
	memberSet := make(map[string]bool, len(structs))
	for _, s := range structs {
		e := c.Edge(s)
		if e == nil {
			return buildErr(ErrUnknownReference, name, "set %q references unknown struct %q", name, s)
		}
		if e.Kind != EdgeStruct {
			return buildErr(ErrKindMismatch, name, "set %q may not directly contain %s %q", name, e.Kind, s)
		}
		if memberSet[PhantomName(s)] {
			return buildErr(ErrDuplicateName, name, "set %q lists struct %q twice", name, s)
		}
		memberSet[PhantomName(s)] = true
	}

	c.putEdge(&Edge{Name: name, Kind: EdgeSet})
	for _, s := range structs {
		c.putIncidence(&Incidence{
			Edge: name,
			Node: PhantomName(s),
			Kind: EdgeSet,
			Dir:  Outbound,
		})
	}
	c.closeOver(name, EdgeSet)
	return nil
}

// ComputeClosure recomputes the transitive target set of a struct/set edge
// from its outbound incidences: the contents of nested structs/sets plus the
// inherited generalizations of member classes. The edge's own phantom and
// its direct targets are excluded. Discovery order is deterministic.
//
// The builder materializes this as Transitive incidences; the validator
// recomputes it to confirm the stored closure was not corrupted.
func (c *Catalog) ComputeClosure(edge string) []string {
	own := PhantomName(edge)
	direct := make(map[string]bool)
	for _, inc := range c.OutboundOf(edge) {
		direct[inc.Node] = true
	}

	var out []string
	added := make(map[string]bool)
	add := func(node string) {
		if node == own || direct[node] || added[node] {
			return
		}
		added[node] = true
		out = append(out, node)
	}

	for _, inc := range c.OutboundOf(edge) {
		nested := c.EdgeOfPhantom(inc.Node)
		if nested == nil {
			continue
		}
		switch nested.Kind {
		case EdgeStruct, EdgeSet:
			for _, ni := range c.byEdge[nested.Name] {
				if ni.Dir == Outbound || ni.Dir == Transitive {
					add(ni.Node)
				}
			}
		case EdgeClass:
			gens, _ := c.GeneralizationsOf(nested.Name)
			for _, g := range gens {
				add(PhantomName(g))
			}
		}
	}
	return out
}

// memberTarget resolves a struct member name to the node it is wired to:
// the node itself for attributes, the phantom for edges.
func (c *Catalog) memberTarget(structName, member string) (string, error) {
	if n := c.Node(member); n != nil {
		if n.Kind != NodeAttribute {
			return "", buildErr(ErrKindMismatch, structName, "struct %q member %q is a phantom, not an element name", structName, member)
		}
		return member, nil
	}
	e := c.Edge(member)
	if e == nil {
		return "", buildErr(ErrUnknownReference, structName, "struct %q references unknown member %q", structName, member)
	}
	switch e.Kind {
	case EdgeClass, EdgeAssociation, EdgeStruct, EdgeSet:
		return PhantomName(member), nil
	default:
		return "", buildErr(ErrKindMismatch, structName, "struct %q may not contain %s %q", structName, e.Kind, member)
	}
}

// closeOver materializes the edge's precomputed closure as Transitive
// incidences. Must run after the edge's outbound incidences are in place.
func (c *Catalog) closeOver(edge string, kind EdgeKind) {
	for _, node := range c.ComputeClosure(edge) {
		c.putIncidence(&Incidence{Edge: edge, Node: node, Kind: kind, Dir: Transitive})
	}
}

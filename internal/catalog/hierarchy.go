package catalog

// Hierarchy resolution. Single inheritance is a structural invariant
// (IC-Atoms6), so every class has at most one direct superclass. The walks
// here are iterative with an explicit visited set: on a genuine cycle they
// stop and report it instead of returning a silently truncated chain. The
// validator remains the single source of truth for flagging real cycles
// (IC-Atoms7); callers of the resolver treat cycle == true as "stop here".

// directSuperclass returns the generalization edge and superclass of the
// named class, or empty strings when the class is a hierarchy top.
// If several subclass links exist (invalid catalog) the first in insertion
// order is used; the validator reports the violation.
func (c *Catalog) directSuperclass(class string) (gen, super string) {
	for _, inc := range c.byNode[PhantomName(class)] {
		if inc.Kind != EdgeGeneralization || inc.Dir != Outbound || inc.Role != RoleSubclass {
			continue
		}
		for _, gi := range c.OutboundOf(inc.Edge) {
			if gi.Role == RoleSuperclass {
				if e := c.EdgeOfPhantom(gi.Node); e != nil {
					return inc.Edge, e.Name
				}
			}
		}
	}
	return "", ""
}

// SuperclassesOf returns the ordered superclass chain of the named class,
// nearest first. cycle is true when the walk revisited a class; the partial
// chain discovered up to that point is still returned.
func (c *Catalog) SuperclassesOf(class string) (chain []string, cycle bool) {
	visited := map[string]bool{class: true}
	current := class
	for {
		_, super := c.directSuperclass(current)
		if super == "" {
			return chain, false
		}
		if visited[super] {
			return chain, true
		}
		visited[super] = true
		chain = append(chain, super)
		current = super
	}
}

// GeneralizationsOf mirrors SuperclassesOf but returns the generalization
// edges traversed instead of the class names. Used to attach all inherited
// generalizations to a struct that contains a subclass.
func (c *Catalog) GeneralizationsOf(class string) (gens []string, cycle bool) {
	visited := map[string]bool{class: true}
	current := class
	for {
		gen, super := c.directSuperclass(current)
		if super == "" {
			return gens, false
		}
		if visited[super] {
			return gens, true
		}
		visited[super] = true
		gens = append(gens, gen)
		current = super
	}
}

// Hierarchy returns the class itself followed by its superclass chain.
func (c *Catalog) Hierarchy(class string) []string {
	chain, _ := c.SuperclassesOf(class)
	return append([]string{class}, chain...)
}

// IdentifierOf resolves the identifier attribute of a class, walking the
// hierarchy upward when the identifier is inherited.
func (c *Catalog) IdentifierOf(class string) (string, bool) {
	for _, cls := range c.Hierarchy(class) {
		for _, inc := range c.OutboundOf(cls) {
			if inc.Kind == EdgeClass && inc.Identifier {
				return inc.Node, true
			}
		}
	}
	return "", false
}

// Subclasses returns the subclass incidences of a generalization edge in
// insertion order.
func (c *Catalog) Subclasses(gen string) []*Incidence {
	var out []*Incidence
	for _, inc := range c.OutboundOf(gen) {
		if inc.Role == RoleSubclass {
			out = append(out, inc)
		}
	}
	return out
}

// SuperclassOf returns the superclass of a generalization edge.
func (c *Catalog) SuperclassOf(gen string) (string, bool) {
	for _, inc := range c.OutboundOf(gen) {
		if inc.Role == RoleSuperclass {
			if e := c.EdgeOfPhantom(inc.Node); e != nil {
				return e.Name, true
			}
		}
	}
	return "", false
}

// GeneralizationsBelow returns the generalization edges whose superclass is
// the named class, in insertion order.
func (c *Catalog) GeneralizationsBelow(class string) []*Edge {
	var out []*Edge
	for _, inc := range c.byNode[PhantomName(class)] {
		if inc.Kind == EdgeGeneralization && inc.Dir == Outbound && inc.Role == RoleSuperclass {
			out = append(out, c.edges[inc.Edge])
		}
	}
	return out
}

// OwningClass returns the class edge owning an attribute node, or nil.
// An attribute owned by more than one class cannot be built (the builder
// enforces global attribute names), so the first match is definitive.
func (c *Catalog) OwningClass(attr string) *Edge {
	for _, inc := range c.byNode[attr] {
		if inc.Kind == EdgeClass && inc.Dir == Outbound {
			return c.edges[inc.Edge]
		}
	}
	return nil
}

package loadspec

import (
	"github.com/catagraph/catagraph/internal/catalog"
)

// Build constructs a catalog from a decoded document. Classes,
// associations and generalizations apply in that order; structs and sets
// are containers and may nest each other, so they apply interleaved by
// dependency regardless of how the document orders them. The first builder
// failure aborts; the partial catalog is discarded.
func Build(doc *Document) (*catalog.Catalog, error) {
	cat := catalog.New()

	for _, cls := range doc.Classes {
		attrs := make([]catalog.AttributeDef, len(cls.Attributes))
		for i, a := range cls.Attributes {
			attrs[i] = catalog.AttributeDef{
				Name:         a.Name,
				DataType:     a.Type,
				Size:         a.Size,
				DistinctVals: a.Distinct,
				Identifier:   a.Identifier,
			}
		}
		if err := cat.AddClass(cls.Name, cls.Count, attrs); err != nil {
			return nil, err
		}
	}

	for _, assoc := range doc.Associations {
		ends := make([]catalog.EndDef, len(assoc.Ends))
		for i, e := range assoc.Ends {
			ends[i] = catalog.EndDef{
				Class: e.Class,
				Name:  e.Name,
				Mult:  catalog.Multiplicity{Min: e.Mult.Min, Max: e.Mult.Max},
			}
		}
		if err := cat.AddAssociation(assoc.Name, ends); err != nil {
			return nil, err
		}
	}

	for _, gen := range doc.Generalizations {
		subs := make([]catalog.SubclassDef, len(gen.Subclasses))
		for i, s := range gen.Subclasses {
			subs[i] = catalog.SubclassDef{Class: s.Class, Constraint: s.Constraint}
		}
		if err := cat.AddGeneralization(gen.Name, gen.Superclass, subs, gen.Disjoint, gen.Complete); err != nil {
			return nil, err
		}
	}

	if err := buildContainers(cat, doc); err != nil {
		return nil, err
	}
	return cat, nil
}

// buildContainers applies structs and sets in dependency order: a container
// is ready once every element it references exists. When a pass makes no
// progress the remaining containers form a reference the builders will
// reject, so the first one is applied to surface its error.
func buildContainers(cat *catalog.Catalog, doc *Document) error {
	type container struct {
		refs  []string
		apply func() error
	}
	var pending []container
	for _, st := range doc.Structs {
		pending = append(pending, container{
			refs:  st.Members,
			apply: func() error { return cat.AddStruct(st.Name, st.Members, st.Anchors) },
		})
	}
	for _, set := range doc.Sets {
		pending = append(pending, container{
			refs:  set.Structs,
			apply: func() error { return cat.AddSet(set.Name, set.Structs) },
		})
	}

	ready := func(c container) bool {
		for _, ref := range c.refs {
			if cat.Node(ref) == nil && cat.Edge(ref) == nil {
				return false
			}
		}
		return true
	}
	for len(pending) > 0 {
		var deferred []container
		for _, c := range pending {
			if !ready(c) {
				deferred = append(deferred, c)
				continue
			}
			if err := c.apply(); err != nil {
				return err
			}
		}
		if len(deferred) == len(pending) {
			return deferred[0].apply()
		}
		pending = deferred
	}
	return nil
}

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shopCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := New()
	require.NoError(t, c.AddClass("Person", 100, []AttributeDef{
		{Name: "pid", DataType: "string", Size: 36, DistinctVals: 100, Identifier: true},
		{Name: "name", DataType: "string", Size: 64, DistinctVals: 90},
	}))
	require.NoError(t, c.AddClass("Order", 1000, []AttributeDef{
		{Name: "oid", DataType: "string", Size: 36, DistinctVals: 1000, Identifier: true},
		{Name: "amount", DataType: "int", DistinctVals: 400},
	}))
	require.NoError(t, c.AddAssociation("Placed", []EndDef{
		{Class: "Person", Name: "customer", Mult: Multiplicity{Min: 1, Max: 1}},
		{Class: "Order", Name: "purchase", Mult: Multiplicity{Min: 0, Max: Unbounded}},
	}))
	return c
}

func TestAddClassWiresPhantomAndAttributes(t *testing.T) {
	c := New()
	require.NoError(t, c.AddClass("Person", 100, []AttributeDef{
		{Name: "pid", DataType: "string", DistinctVals: 100, Identifier: true},
	}))

	e := c.Edge("Person")
	require.NotNil(t, e)
	assert.Equal(t, EdgeClass, e.Kind)
	assert.Equal(t, int64(100), e.Count)

	ph := c.PhantomOfEdge("Person")
	require.NotNil(t, ph)
	assert.Equal(t, NodePhantom, ph.Kind)
	assert.Equal(t, EdgeClass, ph.Subkind)

	inbound := c.InboundOf("Person")
	require.NotNil(t, inbound)
	assert.Equal(t, PhantomName("Person"), inbound.Node)

	n := c.Node("pid")
	require.NotNil(t, n)
	assert.Equal(t, NodeAttribute, n.Kind)
	assert.True(t, n.Identifier)

	outbound := c.OutboundOf("Person")
	require.Len(t, outbound, 1)
	assert.Equal(t, "pid", outbound[0].Node)
	assert.True(t, outbound[0].Identifier)
}

func TestAddClassRejectsDuplicates(t *testing.T) {
	c := New()
	require.NoError(t, c.AddClass("Person", 10, []AttributeDef{
		{Name: "pid", DataType: "string", DistinctVals: 10, Identifier: true},
	}))

	err := c.AddClass("Person", 5, nil)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrDuplicateName, be.Code)

	// Attribute names are global across classes.
	err = c.AddClass("Other", 5, []AttributeDef{{Name: "pid", DataType: "string"}})
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrDuplicateName, be.Code)

	// A failed call leaves the catalog untouched.
	assert.Nil(t, c.Edge("Other"))
}

func TestAddAssociationResolvesEndIdentifiers(t *testing.T) {
	c := shopCatalog(t)

	ends := c.OutboundOf("Placed")
	require.Len(t, ends, 2)
	assert.Equal(t, "pid", ends[0].Node)
	assert.Equal(t, "customer", ends[0].EndName)
	assert.Equal(t, "Person", ends[0].EndClass)
	assert.True(t, ends[0].Mult.Functional())
	assert.Equal(t, "oid", ends[1].Node)
	assert.False(t, ends[1].Mult.Functional())
}

func TestAddAssociationErrors(t *testing.T) {
	c := shopCatalog(t)
	var be *BuildError

	err := c.AddAssociation("Bad", []EndDef{{Class: "Person", Name: "p"}})
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrArity, be.Code)

	err = c.AddAssociation("Bad", []EndDef{
		{Class: "Person", Name: "p"},
		{Class: "Nope", Name: "n"},
	})
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrUnknownReference, be.Code)

	err = c.AddAssociation("Bad", []EndDef{
		{Class: "Person", Name: "p"},
		{Class: "Placed", Name: "x"},
	})
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrKindMismatch, be.Code)

	require.NoError(t, c.AddClass("NoID", 10, []AttributeDef{
		{Name: "label", DataType: "string", DistinctVals: 5},
	}))
	err = c.AddAssociation("Bad", []EndDef{
		{Class: "Person", Name: "p"},
		{Class: "NoID", Name: "n"},
	})
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrIncompatible, be.Code)
}

func TestAddStructResolvesMembersAndAnchors(t *testing.T) {
	c := shopCatalog(t)
	require.NoError(t, c.AddStruct("SShop",
		[]string{"Person", "Order", "Placed", "pid", "name", "oid", "amount"},
		[]string{"Order"}))

	outbound := c.OutboundOf("SShop")
	require.Len(t, outbound, 7)
	assert.Equal(t, PhantomName("Person"), outbound[0].Node)
	assert.Equal(t, "pid", outbound[3].Node)

	var anchors []string
	for _, inc := range outbound {
		if inc.Anchor {
			anchors = append(anchors, inc.Node)
		}
	}
	assert.Equal(t, []string{PhantomName("Order")}, anchors)
}

func TestAddStructErrors(t *testing.T) {
	c := shopCatalog(t)
	var be *BuildError

	err := c.AddStruct("S", []string{"Nope"}, nil)
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrUnknownReference, be.Code)

	err = c.AddStruct("S", []string{"Person", "Person"}, nil)
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrDuplicateName, be.Code)

	// Anchors must be members and must be classes or associations.
	err = c.AddStruct("S", []string{"Person", "pid"}, []string{"Order"})
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrUnknownReference, be.Code)

	err = c.AddStruct("S", []string{"Person", "pid"}, []string{"pid"})
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrUnknownReference, be.Code)
}

func TestAddSetAcceptsStructsOnly(t *testing.T) {
	c := shopCatalog(t)
	require.NoError(t, c.AddStruct("SPerson", []string{"Person", "pid", "name"}, []string{"Person"}))

	var be *BuildError
	err := c.AddSet("T", []string{"Person"})
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrKindMismatch, be.Code)

	require.NoError(t, c.AddSet("TPerson", []string{"SPerson"}))
	assert.True(t, c.Contains("TPerson", PhantomName("SPerson")))
}

func TestFirstLevelSets(t *testing.T) {
	c := shopCatalog(t)
	require.NoError(t, c.AddStruct("SInner", []string{"Person", "pid", "name"}, []string{"Person"}))
	require.NoError(t, c.AddSet("TInner", []string{"SInner"}))
	require.NoError(t, c.AddStruct("SOuter", []string{"Order", "oid", "amount", "TInner"}, []string{"Order"}))
	require.NoError(t, c.AddSet("TOuter", []string{"SOuter"}))

	var names []string
	for _, set := range c.FirstLevelSets() {
		names = append(names, set.Name)
	}
	assert.Equal(t, []string{"TOuter"}, names)
}

func TestClosureDescendsNestingAndAttachesGeneralizations(t *testing.T) {
	c := New()
	require.NoError(t, c.AddClass("Animal", 500, []AttributeDef{
		{Name: "aid", DataType: "string", DistinctVals: 500, Identifier: true},
		{Name: "species", DataType: "string", DistinctVals: 2},
	}))
	require.NoError(t, c.AddClass("Dog", 300, []AttributeDef{
		{Name: "fetches", DataType: "int", DistinctVals: 2},
	}))
	require.NoError(t, c.AddGeneralization("GenAnimal", "Animal", []SubclassDef{
		{Class: "Dog", Constraint: "species = 'dog'"},
	}, true, false))
	require.NoError(t, c.AddStruct("SDog", []string{"Dog", "aid", "species", "fetches"}, []string{"Dog"}))
	require.NoError(t, c.AddSet("TDog", []string{"SDog"}))

	// The struct's closure carries the inherited generalization, not the
	// superclass itself.
	assert.True(t, c.Contains("SDog", PhantomName("GenAnimal")))
	assert.False(t, c.Contains("SDog", PhantomName("Animal")))

	// The set's closure reaches through the struct.
	assert.True(t, c.Contains("TDog", PhantomName("Dog")))
	assert.True(t, c.Contains("TDog", "fetches"))
	assert.True(t, c.Contains("TDog", PhantomName("GenAnimal")))

	// Closure members are Transitive, never duplicated as Outbound.
	for _, inc := range c.TransitiveOf("TDog") {
		assert.NotEqual(t, PhantomName("SDog"), inc.Node)
	}
}

func TestEdgeOfPhantomRoundTrip(t *testing.T) {
	c := shopCatalog(t)
	e := c.EdgeOfPhantom(PhantomName("Placed"))
	require.NotNil(t, e)
	assert.Equal(t, "Placed", e.Name)
	assert.Nil(t, c.EdgeOfPhantom("Placed"))
	assert.True(t, IsPhantomName(PhantomName("Placed")))
	assert.Equal(t, "Placed", TrimPhantom(PhantomName("Placed")))
}

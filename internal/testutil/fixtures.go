// Package testutil provides shared catalog fixtures for tests. Each fixture
// builds a small, fully valid catalog through the public builder operations,
// so a builder regression fails every suite loudly instead of skewing one.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/catagraph/catagraph/internal/catalog"
)

// ShopClasses populates the Person/Order/Placed base model used by most
// fixtures: two classes with identifier attributes and one functional
// association from orders to their customer.
func ShopClasses(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat := catalog.New()

	require.NoError(t, cat.AddClass("Person", 100, []catalog.AttributeDef{
		{Name: "pid", DataType: "string", Size: 36, DistinctVals: 100, Identifier: true},
		{Name: "name", DataType: "string", Size: 64, DistinctVals: 90},
	}))
	require.NoError(t, cat.AddClass("Order", 1000, []catalog.AttributeDef{
		{Name: "oid", DataType: "string", Size: 36, DistinctVals: 1000, Identifier: true},
		{Name: "amount", DataType: "int", DistinctVals: 400},
	}))
	require.NoError(t, cat.AddAssociation("Placed", []catalog.EndDef{
		{Class: "Person", Name: "customer", Mult: catalog.Multiplicity{Min: 1, Max: 1}},
		{Class: "Order", Name: "purchase", Mult: catalog.Multiplicity{Min: 0, Max: catalog.Unbounded}},
	}))
	return cat
}

// ShopSingleTable materializes the shop model into one table holding both
// classes and the association.
func ShopSingleTable(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat := ShopClasses(t)

	require.NoError(t, cat.AddStruct("SShop",
		[]string{"Person", "Order", "Placed", "pid", "name", "oid", "amount"},
		[]string{"Order"}))
	require.NoError(t, cat.AddSet("TShop", []string{"SShop"}))
	return cat
}

// ShopTwoTables materializes the shop model into one table per class; the
// association lives with the orders, leaving a loose end on the customer.
func ShopTwoTables(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat := ShopClasses(t)

	require.NoError(t, cat.AddStruct("SPerson",
		[]string{"Person", "pid", "name"},
		[]string{"Person"}))
	require.NoError(t, cat.AddStruct("SOrder",
		[]string{"Order", "Placed", "oid", "amount"},
		[]string{"Order"}))
	require.NoError(t, cat.AddSet("TPerson", []string{"SPerson"}))
	require.NoError(t, cat.AddSet("TOrder", []string{"SOrder"}))
	return cat
}

// AnimalClasses populates the Animal hierarchy: an abstract superclass
// holding the identifier and the discriminating attribute, and two
// disjoint, complete subclasses.
func AnimalClasses(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat := catalog.New()

	require.NoError(t, cat.AddClass("Animal", 500, []catalog.AttributeDef{
		{Name: "aid", DataType: "string", Size: 36, DistinctVals: 500, Identifier: true},
		{Name: "name", DataType: "string", Size: 64, DistinctVals: 450},
		{Name: "species", DataType: "string", Size: 16, DistinctVals: 2},
	}))
	require.NoError(t, cat.AddClass("Dog", 300, []catalog.AttributeDef{
		{Name: "fetches", DataType: "int", DistinctVals: 2},
	}))
	require.NoError(t, cat.AddClass("Cat", 200, []catalog.AttributeDef{
		{Name: "lives", DataType: "int", DistinctVals: 9},
	}))
	require.NoError(t, cat.AddGeneralization("GenAnimal", "Animal", []catalog.SubclassDef{
		{Class: "Dog", Constraint: "species = 'dog'"},
		{Class: "Cat", Constraint: "species = 'cat'"},
	}, true, true))
	return cat
}

// AnimalsSplit stores each subclass in its own table; the superclass itself
// is implicitly stored, so queries over Animal resolve through a union of
// the subclass tables.
func AnimalsSplit(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat := AnimalClasses(t)

	require.NoError(t, cat.AddStruct("SDog",
		[]string{"Dog", "aid", "name", "species", "fetches"},
		[]string{"Dog"}))
	require.NoError(t, cat.AddStruct("SCat",
		[]string{"Cat", "aid", "name", "species", "lives"},
		[]string{"Cat"}))
	require.NoError(t, cat.AddSet("TDog", []string{"SDog"}))
	require.NoError(t, cat.AddSet("TCat", []string{"SCat"}))
	return cat
}

// AnimalsSingleTable stores both subclasses in one table, so queries over
// one subclass need the sibling's discriminant negated.
func AnimalsSingleTable(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat := AnimalClasses(t)

	require.NoError(t, cat.AddStruct("SAnimals",
		[]string{"Dog", "Cat", "aid", "name", "species", "fetches", "lives"},
		[]string{"Dog", "Cat"}))
	require.NoError(t, cat.AddSet("TAnimals", []string{"SAnimals"}))
	return cat
}

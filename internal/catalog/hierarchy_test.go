package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hierarchyCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := New()
	require.NoError(t, c.AddClass("Vehicle", 100, []AttributeDef{
		{Name: "vin", DataType: "string", DistinctVals: 100, Identifier: true},
		{Name: "kind", DataType: "string", DistinctVals: 3},
	}))
	require.NoError(t, c.AddClass("Car", 60, []AttributeDef{
		{Name: "doors", DataType: "int", DistinctVals: 3},
	}))
	require.NoError(t, c.AddClass("Sportscar", 10, []AttributeDef{
		{Name: "topSpeed", DataType: "int", DistinctVals: 10},
	}))
	require.NoError(t, c.AddGeneralization("GenVehicle", "Vehicle", []SubclassDef{
		{Class: "Car", Constraint: "kind = 'car'"},
	}, true, false))
	require.NoError(t, c.AddGeneralization("GenCar", "Car", []SubclassDef{
		{Class: "Sportscar", Constraint: "doors = 2"},
	}, false, false))
	return c
}

func TestSuperclassChain(t *testing.T) {
	c := hierarchyCatalog(t)

	chain, cycle := c.SuperclassesOf("Sportscar")
	assert.False(t, cycle)
	assert.Equal(t, []string{"Car", "Vehicle"}, chain)

	chain, cycle = c.SuperclassesOf("Vehicle")
	assert.False(t, cycle)
	assert.Empty(t, chain)

	assert.Equal(t, []string{"Sportscar", "Car", "Vehicle"}, c.Hierarchy("Sportscar"))
}

func TestGeneralizationsOf(t *testing.T) {
	c := hierarchyCatalog(t)

	gens, cycle := c.GeneralizationsOf("Sportscar")
	assert.False(t, cycle)
	assert.Equal(t, []string{"GenCar", "GenVehicle"}, gens)
}

func TestIdentifierOfWalksHierarchy(t *testing.T) {
	c := hierarchyCatalog(t)

	id, ok := c.IdentifierOf("Sportscar")
	require.True(t, ok)
	assert.Equal(t, "vin", id)

	id, ok = c.IdentifierOf("Vehicle")
	require.True(t, ok)
	assert.Equal(t, "vin", id)
}

func TestCycleDetection(t *testing.T) {
	c := New()
	require.NoError(t, c.AddClass("A", 10, []AttributeDef{
		{Name: "aID", DataType: "string", DistinctVals: 10, Identifier: true},
	}))
	require.NoError(t, c.AddClass("B", 10, []AttributeDef{
		{Name: "bVal", DataType: "int", DistinctVals: 5},
	}))
	// Two generalizations closing a loop are constructible; single
	// inheritance only blocks a second superclass for the same class.
	require.NoError(t, c.AddGeneralization("GenAB", "A", []SubclassDef{{Class: "B", Constraint: "bVal = 1"}}, false, false))
	require.NoError(t, c.AddGeneralization("GenBA", "B", []SubclassDef{{Class: "A", Constraint: "bVal = 2"}}, false, false))

	chain, cycle := c.SuperclassesOf("A")
	assert.True(t, cycle)
	assert.Equal(t, []string{"B"}, chain)

	_, cycle = c.GeneralizationsOf("B")
	assert.True(t, cycle)
}

func TestSingleInheritanceEnforced(t *testing.T) {
	c := hierarchyCatalog(t)
	require.NoError(t, c.AddClass("Boat", 20, []AttributeDef{
		{Name: "draft", DataType: "int", DistinctVals: 5},
	}))

	var be *BuildError
	err := c.AddGeneralization("GenBoat", "Boat", []SubclassDef{{Class: "Car", Constraint: "kind = 'x'"}}, false, false)
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrIncompatible, be.Code)
}

func TestSubclassesAndBelow(t *testing.T) {
	c := hierarchyCatalog(t)

	subs := c.Subclasses("GenVehicle")
	require.Len(t, subs, 1)
	assert.Equal(t, PhantomName("Car"), subs[0].Node)
	assert.Equal(t, "kind = 'car'", subs[0].Constraint)

	super, ok := c.SuperclassOf("GenCar")
	require.True(t, ok)
	assert.Equal(t, "Car", super)

	below := c.GeneralizationsBelow("Vehicle")
	require.Len(t, below, 1)
	assert.Equal(t, "GenVehicle", below[0].Name)
	assert.Empty(t, c.GeneralizationsBelow("Sportscar"))
}

func TestOwningClass(t *testing.T) {
	c := hierarchyCatalog(t)

	owner := c.OwningClass("doors")
	require.NotNil(t, owner)
	assert.Equal(t, "Car", owner.Name)
	assert.Nil(t, c.OwningClass("missing"))
}

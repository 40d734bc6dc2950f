package ddl

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catagraph/catagraph/internal/catalog"
	"github.com/catagraph/catagraph/internal/testutil"
)

func golden(t *testing.T, name string, stmts []string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(strings.Join(stmts, "\n")+"\n"))
}

func TestNormalizedTwoTables(t *testing.T) {
	layout, err := Build(testutil.ShopTwoTables(t), Options{Paradigm: Normalized})
	require.NoError(t, err)

	golden(t, "shop_two_tables", layout.DDL())

	orders := layout.Table("TOrder")
	require.NotNil(t, orders)
	assert.Equal(t, []string{"oid"}, orders.PrimaryKey)
	assert.Equal(t, []ForeignKey{{Column: "customer", RefTable: "TPerson", RefColumn: "pid"}}, orders.ForeignKeys)
	assert.Equal(t, int64(1000), orders.RowEstimate)

	customer := orders.Column("customer")
	require.NotNil(t, customer)
	assert.True(t, customer.LooseEnd)
	assert.Equal(t, "Placed", customer.Assoc)
	assert.Equal(t, "pid", customer.Attr)
}

func TestNormalizedSplitHierarchy(t *testing.T) {
	layout, err := Build(testutil.AnimalsSplit(t), Options{Paradigm: Normalized})
	require.NoError(t, err)

	golden(t, "animals_split", layout.DDL())

	dogs := layout.Table("TDog")
	require.NotNil(t, dogs)
	// The identifier lives on the superclass but keys the subclass table.
	assert.Equal(t, []string{"aid"}, dogs.PrimaryKey)
	assert.Empty(t, dogs.ForeignKeys)
	assert.Equal(t, int64(300), dogs.RowEstimate)
}

func TestDocumentTable(t *testing.T) {
	layout, err := Build(testutil.AnimalsSingleTable(t), Options{Paradigm: Document})
	require.NoError(t, err)

	golden(t, "animals_document", layout.DDL())

	tbl := layout.Table("TAnimals")
	require.NotNil(t, tbl)
	assert.Equal(t, []string{"id"}, tbl.PrimaryKey)
	assert.Equal(t, []string{"SAnimals"}, tbl.Structs)
	assert.Equal(t, []string{"Dog", "Cat"}, tbl.AnchorClasses)
	assert.Equal(t, int64(300), tbl.RowEstimate)
}

func TestMissingPrimaryKey(t *testing.T) {
	c := catalog.New()
	require.NoError(t, c.AddClass("Note", 10, []catalog.AttributeDef{
		{Name: "text", DataType: "string", DistinctVals: 10},
	}))
	require.NoError(t, c.AddStruct("SNote", []string{"Note", "text"}, []string{"Note"}))
	require.NoError(t, c.AddSet("TNote", []string{"SNote"}))

	_, err := Build(c, Options{Paradigm: Normalized})
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ErrMissingPrimaryKey, cerr.Code)
	assert.Equal(t, "TNote", cerr.Table)
}

func TestColumnCollision(t *testing.T) {
	// An association end named like a member attribute would need the same
	// column twice.
	c := catalog.New()
	require.NoError(t, c.AddClass("Person", 100, []catalog.AttributeDef{
		{Name: "pid", DataType: "string", Size: 36, DistinctVals: 100, Identifier: true},
	}))
	require.NoError(t, c.AddClass("Order", 1000, []catalog.AttributeDef{
		{Name: "oid", DataType: "string", Size: 36, DistinctVals: 1000, Identifier: true},
		{Name: "customer", DataType: "string", Size: 64, DistinctVals: 400},
	}))
	require.NoError(t, c.AddAssociation("Placed", []catalog.EndDef{
		{Class: "Person", Name: "customer", Mult: catalog.Multiplicity{Min: 1, Max: 1}},
		{Class: "Order", Name: "purchase", Mult: catalog.Multiplicity{Min: 0, Max: catalog.Unbounded}},
	}))
	require.NoError(t, c.AddStruct("SOrder",
		[]string{"Order", "Placed", "oid", "customer"},
		[]string{"Order"}))
	require.NoError(t, c.AddSet("TOrder", []string{"SOrder"}))

	_, err := Build(c, Options{Paradigm: Normalized})
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ErrColumnCollision, cerr.Code)
}

func TestUnresolvedForeignKeyTarget(t *testing.T) {
	// Same model as the two-table shop, but the person table is missing:
	// the orders' loose end has nowhere to point.
	c := testutil.ShopClasses(t)
	require.NoError(t, c.AddStruct("SOrder",
		[]string{"Order", "Placed", "oid", "amount"},
		[]string{"Order"}))
	require.NoError(t, c.AddSet("TOrder", []string{"SOrder"}))

	_, err := Build(c, Options{Paradigm: Normalized})
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ErrUnresolvedTarget, cerr.Code)
	assert.Equal(t, "TOrder", cerr.Table)
}

func TestLayoutQueries(t *testing.T) {
	layout, err := Build(testutil.ShopTwoTables(t), Options{Paradigm: Normalized})
	require.NoError(t, err)

	names := func(tables []*Table) []string {
		var out []string
		for _, tbl := range tables {
			out = append(out, tbl.Name)
		}
		return out
	}

	assert.Equal(t, []string{"TPerson"}, names(layout.TablesContaining("Person")))
	assert.Equal(t, []string{"TOrder"}, names(layout.TablesContaining("Placed")))
	assert.Empty(t, layout.TablesContaining("Nobody"))

	// pid is supplied both by the person table and by the orders' loose end.
	assert.Equal(t, []string{"TPerson", "TOrder"}, names(layout.TablesSupplying("pid")))
	assert.Equal(t, []string{"TOrder"}, names(layout.TablesSupplying("amount")))

	attr, err := layout.ResolveColumn("TOrder", "customer")
	require.NoError(t, err)
	assert.Equal(t, "pid", attr)

	_, err = layout.ResolveColumn("TOrder", "nope")
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ErrUnresolvedTarget, cerr.Code)
}

func TestResolveColumnDocument(t *testing.T) {
	layout, err := Build(testutil.AnimalsSingleTable(t), Options{Paradigm: Document})
	require.NoError(t, err)

	// A document column packs a whole aggregate, never one attribute.
	_, err = layout.ResolveColumn("TAnimals", "doc")
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ErrPathArity, cerr.Code)
}

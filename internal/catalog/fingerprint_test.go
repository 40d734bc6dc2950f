package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintIgnoresCatalogID(t *testing.T) {
	a := shopCatalog(t)
	b := shopCatalog(t)
	require.NotEqual(t, a.ID, b.ID)

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.Len(t, fa, 64)
}

func TestFingerprintChangesWithContent(t *testing.T) {
	a := shopCatalog(t)
	fa, err := a.Fingerprint()
	require.NoError(t, err)

	b := shopCatalog(t)
	require.NoError(t, b.AddClass("Extra", 5, []AttributeDef{
		{Name: "eID", DataType: "string", DistinctVals: 5, Identifier: true},
	}))
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb)
}

func TestFingerprintStableUnderRestore(t *testing.T) {
	a := shopCatalog(t)
	require.NoError(t, a.AddStruct("SShop",
		[]string{"Person", "Order", "Placed", "pid", "name", "oid", "amount"},
		[]string{"Order"}))
	require.NoError(t, a.AddSet("TShop", []string{"SShop"}))

	fa, err := a.Fingerprint()
	require.NoError(t, err)

	restored := Restore(a.ID, a.Nodes(), a.Edges(), a.Incidences())
	fr, err := restored.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fa, fr)

	// The restored catalog answers the same structural queries.
	assert.True(t, restored.Contains("TShop", PhantomName("Person")))
	assert.Len(t, restored.FirstLevelSets(), 1)
}

package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catagraph/catagraph/internal/catalog"
	"github.com/catagraph/catagraph/internal/testutil"
)

func TestDesignCleanLayouts(t *testing.T) {
	for name, fixture := range map[string]func(*testing.T) *catalog.Catalog{
		"shop single table": testutil.ShopSingleTable,
		"shop two tables":   testutil.ShopTwoTables,
	} {
		t.Run(name, func(t *testing.T) {
			report := Check(fixture(t), Options{DesignLevel: true})
			assert.True(t, report.OK, "violations: %v", report.Violations)
		})
	}
}

func TestFirstLevelStruct(t *testing.T) {
	c := testutil.ShopClasses(t)
	require.NoError(t, c.AddStruct("SShop",
		[]string{"Person", "Order", "Placed", "pid", "name", "oid", "amount"},
		[]string{"Order"}))

	report := Check(c, Options{DesignLevel: true})
	require.False(t, report.OK)

	var found bool
	for _, v := range report.Violations {
		if v.Code == ICDesign1 {
			assert.Equal(t, []string{"SShop"}, v.Elements)
			found = true
		}
	}
	assert.True(t, found, "violations: %v", report.Violations)
}

// A split hierarchy stores its superclass implicitly: no table row is an
// Animal that is neither a Dog nor a Cat. The design tier flags that.
func TestImplicitSuperclassStorage(t *testing.T) {
	report := Check(testutil.AnimalsSplit(t), Options{DesignLevel: true})
	require.False(t, report.OK)

	byCode := make(map[string][][]string)
	for _, v := range report.Violations {
		byCode[v.Code] = append(byCode[v.Code], v.Elements)
	}
	assert.Contains(t, byCode[ICDesign2], []string{"Animal"})
	assert.Contains(t, byCode[ICDesign3], []string{"Animal"})
}

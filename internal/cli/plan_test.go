package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeQuery(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "query.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPlanText(t *testing.T) {
	doc := writeDoc(t, shopDoc)
	query := writeQuery(t, `{
		"project": ["name", "amount"],
		"join": ["Person", "Order", "Placed"]
	}`)

	stdout, _, err := execute(t, "plan", doc, query)
	require.NoError(t, err)
	assert.Contains(t, stdout, "-- cost 1100, tables [TPerson TOrder]")
	assert.Contains(t, stdout,
		"SELECT t_1.name, t_2.amount FROM TPerson t_1 JOIN TOrder t_2 ON t_1.pid = t_2.customer WHERE TRUE")
}

func TestPlanJSON(t *testing.T) {
	doc := writeDoc(t, shopDoc)
	query := writeQuery(t, `{
		"project": ["name"],
		"filter": "amount > 10",
		"join": ["Person", "Order", "Placed"]
	}`)

	stdout, _, err := execute(t, "--format", "json", "plan", doc, query)
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, data["ambiguous"])
	stmts, ok := data["statements"].([]interface{})
	require.True(t, ok)
	require.Len(t, stmts, 1)
	stmt, ok := stmts[0].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, stmt["sql"], "WHERE t_2.amount > 10")
}

func TestPlanUnanswerableQuery(t *testing.T) {
	doc := writeDoc(t, shopDoc)
	query := writeQuery(t, `{
		"project": ["name"],
		"join": ["Order"]
	}`)

	stdout, _, err := execute(t, "--format", "json", "plan", doc, query)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Q301", resp.Error.Code)
}

func TestPlanMalformedQueryFile(t *testing.T) {
	doc := writeDoc(t, shopDoc)
	query := writeQuery(t, `{not json`)

	stdout, _, err := execute(t, "plan", doc, query)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Q300")
}

func TestPlanMissingQueryFile(t *testing.T) {
	doc := writeDoc(t, shopDoc)

	_, _, err := execute(t, "plan", doc, filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

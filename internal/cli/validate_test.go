package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidDocument(t *testing.T) {
	path := writeDoc(t, shopDoc)

	stdout, _, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ catalog valid")
}

func TestValidateValidDocumentJSON(t *testing.T) {
	path := writeDoc(t, shopDoc)

	stdout, _, err := execute(t, "--format", "json", "validate", path)
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["valid"])
}

func TestValidateReportsViolations(t *testing.T) {
	path := writeDoc(t, overcountedDoc)

	stdout, _, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ validation failed")
	assert.Contains(t, stdout, "IC-Atoms2")
}

func TestValidateReportsViolationsJSON(t *testing.T) {
	path := writeDoc(t, overcountedDoc)

	stdout, _, err := execute(t, "--format", "json", "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "IC-Atoms2", resp.Error.Code)

	// The payload carries the full violation list alongside the lead error.
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, data["valid"])
	assert.NotEmpty(t, data["violations"])
}

func TestValidateParadigmRules(t *testing.T) {
	// A set nested inside a struct passes the generic battery but fails the
	// normalized shape rules.
	nested := `
classes: [
	{
		name:  "Person"
		count: 100
		attributes: [
			{name: "pid", type: "string", size: 36, distinct: 100, identifier: true},
		]
	},
	{
		name:  "Order"
		count: 1000
		attributes: [
			{name: "oid", type: "string", size: 36, distinct: 1000, identifier: true},
		]
	},
]
associations: [
	{
		name: "Placed"
		ends: [
			{class: "Person", name: "customer", mult: {min: 1, max: 1}},
			{class: "Order", name: "purchase", mult: {min: 0}},
		]
	},
]
structs: [
	{name: "SPerson", members: ["Person", "pid"], anchors: ["Person"]},
	{name: "SOrder", members: ["Order", "Placed", "oid", "TPersons"], anchors: ["Order"]},
]
sets: [
	{name: "TPersons", structs: ["SPerson"]},
	{name: "TOrders", structs: ["SOrder"]},
]
`
	path := writeDoc(t, nested)

	stdout, _, err := execute(t, "validate", path)
	require.NoError(t, err, "document paradigm-free validation should pass: %s", stdout)

	stdout, _, err = execute(t, "validate", path, "--paradigm", "normalized")
	require.Error(t, err)
	assert.Contains(t, stdout, "IC-Norm1")

	_, _, err = execute(t, "validate", path, "--paradigm", "document")
	assert.NoError(t, err)
}

func TestValidateUnknownParadigm(t *testing.T) {
	path := writeDoc(t, shopDoc)

	_, _, err := execute(t, "validate", path, "--paradigm", "sharded")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateMissingDocument(t *testing.T) {
	stdout, _, err := execute(t, "validate", "absent.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "L001")
}

func TestValidateBuilderError(t *testing.T) {
	// The association references a class the document never declares.
	dangling := `
classes: [
	{
		name:  "Order"
		count: 10
		attributes: [
			{name: "oid", type: "string", distinct: 10, identifier: true},
		]
	},
]
associations: [
	{
		name: "Placed"
		ends: [
			{class: "Person", name: "customer", mult: {min: 1, max: 1}},
			{class: "Order", name: "purchase", mult: {min: 0}},
		]
	},
]
`
	path := writeDoc(t, dangling)

	stdout, _, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "B102")
}

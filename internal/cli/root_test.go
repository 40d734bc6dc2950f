package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shopDoc is a valid two-table shop schema used across the command tests.
const shopDoc = `
classes: [
	{
		name:  "Person"
		count: 100
		attributes: [
			{name: "pid", type: "string", size: 36, distinct: 100, identifier: true},
			{name: "name", type: "string", size: 64, distinct: 90},
		]
	},
	{
		name:  "Order"
		count: 1000
		attributes: [
			{name: "oid", type: "string", size: 36, distinct: 1000, identifier: true},
			{name: "amount", type: "int", distinct: 400},
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
	{name: "SPerson", members: ["Person", "pid", "name"], anchors: ["Person"]},
	{name: "SOrder", members: ["Order", "Placed", "oid", "amount"], anchors: ["Order"]},
]
sets: [
	{name: "TPerson", structs: ["SPerson"]},
	{name: "TOrder", structs: ["SOrder"]},
]
`

// overcountedDoc declares more distinct name values than the class has
// instances, which trips the cardinality rules but still compiles to DDL.
const overcountedDoc = `
classes: [
	{
		name:  "Person"
		count: 100
		attributes: [
			{name: "pid", type: "string", size: 36, distinct: 100, identifier: true},
			{name: "name", type: "string", size: 64, distinct: 200},
		]
	},
]
structs: [
	{name: "SPerson", members: ["Person", "pid", "name"], anchors: ["Person"]},
]
sets: [
	{name: "TPerson", structs: ["SPerson"]},
]
`

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the full root command with the given arguments and returns
// the captured stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root := NewRootCommand()
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootRejectsUnknownFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "validate", "whatever.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootRejectsMissingConfig(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"),
		"validate", "whatever.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))
	assert.Equal(t, ExitFailure, GetExitCode(WrapExitError(ExitFailure, "wrapped", errors.New("cause"))))
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
paradigm: document
design_level: true
snapshot_db: /tmp/snapshots.db
max_alternatives: 8
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "document", cfg.Paradigm)
	assert.True(t, cfg.DesignLevel)
	assert.Equal(t, "/tmp/snapshots.db", cfg.SnapshotDB)
	assert.Equal(t, 8, cfg.MaxAlternatives)
}

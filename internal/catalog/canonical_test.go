package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalSortsKeysUTF16(t *testing.T) {
	// U+FF21 (FULLWIDTH A) sorts after "z" in UTF-16 code units; a byte
	// sort of the UTF-8 encoding would agree here, so also pin the
	// surrogate case: U+1D11E (one surrogate pair) vs U+FF21.
	m := map[string]any{}
	m["b"] = int64(2)
	m["a"] = int64(1)
	m["Ａ"] = int64(3)
	m["\U0001D11E"] = int64(4)
	out, err := MarshalCanonical(m)
	require.NoError(t, err)
	// Surrogate pairs start at 0xD800, below 0xFF21, so 𝄞 sorts first
	// among the non-ASCII keys.
	assert.Equal(t, `{"a":1,"b":2,"𝄞":4,"Ａ":3}`, string(out))
}

func TestMarshalCanonicalNormalizesNFC(t *testing.T) {
	// "é" as combining sequence (e + U+0301) normalizes to U+00E9.
	composed, err := MarshalCanonical("café")
	require.NoError(t, err)
	decomposed, err := MarshalCanonical("café")
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonicalEscaping(t *testing.T) {
	out, err := MarshalCanonical("a\"b\\c\nd\u0001e<&>")
	require.NoError(t, err)
	// No HTML escaping; control characters as \u escapes.
	assert.Equal(t, `"a\"b\\c\nd\u0001e<&>"`, string(out))
}

func TestMarshalCanonicalRejectsFloatsAndNull(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"x": 1.5})
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"x": nil})
	assert.Error(t, err)

	_, err = MarshalCanonical([]any{int64(1), float32(2)})
	assert.Error(t, err)
}

func TestMarshalCanonicalNested(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{
		"list": []any{"x", int64(1), true},
		"obj":  map[string]any{"k": "v"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"list":["x",1,true],"obj":{"k":"v"}}`, string(out))
}

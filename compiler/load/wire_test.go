package load

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireTables(t *testing.T) {
	for name, n := range map[string]int{
		"schema": len(schemaKeys),
		"type":   len(typeKeys),
		"field":  len(fieldKeys),
	} {
		assert.NotZero(t, n, name)
	}
	// Nested entities decode through the recursive tables.
	s, err := Decode([]byte(`{"fields":[{"name":"p","type":{"type":"string","xjoin.type":"json",
		"xjoin.fields":[{"name":"q","type":{"type":"string","xjoin.type":"json",
		"xjoin.fields":[{"name":"r","type":{"type":"int","xjoin.type":"integer"}}]}}]}}]}`), FormatJSON)
	require.NoError(t, err)
	inner := s.Fields[0].Type.Object().XJoinFields[0].Type.Object().XJoinFields[0]
	assert.Equal(t, "r", inner.Name)
}

func TestAsBool(t *testing.T) {
	for _, v := range []any{true, "true", "1", "T"} {
		b, err := asBool(v)
		require.NoError(t, err, v)
		assert.True(t, b, v)
	}
	for _, v := range []any{false, "false", "0"} {
		b, err := asBool(v)
		require.NoError(t, err, v)
		assert.False(t, b, v)
	}
	for _, v := range []any{"maybe", 1, nil, []any{true}} {
		_, err := asBool(v)
		assert.Error(t, err, v)
	}
}

func TestAsInt(t *testing.T) {
	for _, tt := range []struct {
		in   any
		want int64
	}{
		{3, 3},
		{int64(-4), -4},
		{uint64(5), 5},
		{float64(6), 6},
		{json.Number("7"), 7},
		{"8", 8},
	} {
		got, err := asInt(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	for _, v := range []any{1.5, 1e30, math.Inf(1), uint64(math.MaxUint64), json.Number("1.5"), "x", true, nil} {
		_, err := asInt(v)
		assert.Error(t, err, v)
	}
}

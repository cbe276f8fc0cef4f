package jsonorder

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObjectKeepsOrder(t *testing.T) {
	doc := `{"type":"object","properties":{"zeta":{"type":"string"},"alpha":{"type":"object","properties":{"z":{},"a":{}}}},"required":["zeta","alpha"]}`

	obj, err := DecodeObject([]byte(doc))
	require.NoError(t, err)

	props, ok := obj.Get("properties")
	require.True(t, ok)
	var keys []string
	for pair := props.(*Object).Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"zeta", "alpha"}, keys)

	required, _ := obj.Get("required")
	assert.Equal(t, []any{"zeta", "alpha"}, required)

	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, doc, string(out))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{"string", `"hi"`, "hi"},
		{"number", ` 1.5 `, 1.5},
		{"bool", `false`, false},
		{"null", `null`, nil},
		{"array", `[1, "a", [true]]`, []any{1.0, "a", []any{true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Decode([]byte("  "))
	assert.Error(t, err)
	_, err = Decode([]byte(`{"a" 1}`))
	assert.Error(t, err)
}

func TestMap(t *testing.T) {
	obj, err := DecodeObject([]byte(`{"b":1,"a":{"y":2,"x":3}}`))
	require.NoError(t, err)

	m := Map(obj)
	assert.Equal(t, 1.0, m["b"])
	assert.IsType(t, &Object{}, m["a"])
}

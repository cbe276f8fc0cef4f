// Package jsonorder decodes JSON while keeping object key order, so rendered
// schemas reach provider SDKs with their properties in declaration order.
package jsonorder

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"

	json "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a JSON object whose keys keep their document order. It marshals
// back in the same order.
type Object = orderedmap.OrderedMap[string, any]

// Decode decodes data into nil, bool, float64, string, []any or *Object.
func Decode(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("jsonorder: empty input")
	}

	switch trimmed[0] {
	case '{':
		return DecodeObject(trimmed)
	case '[':
		var raw []stdjson.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, err
		}
		items := make([]any, len(raw))
		for i, r := range raw {
			v, err := Decode(r)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	default:
		var v any
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// DecodeObject decodes a JSON object, recursively keeping key order.
func DecodeObject(data []byte) (*Object, error) {
	raw := orderedmap.New[string, stdjson.RawMessage]()
	if err := raw.UnmarshalJSON(data); err != nil {
		return nil, err
	}

	obj := orderedmap.New[string, any](raw.Len())
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		v, err := Decode(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("jsonorder: key %q: %w", pair.Key, err)
		}
		obj.Set(pair.Key, v)
	}
	return obj, nil
}

// Map copies the top level of obj into a plain map. Nested objects stay
// ordered.
func Map(obj *Object) map[string]any {
	m := make(map[string]any, obj.Len())
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		m[pair.Key] = pair.Value
	}
	return m
}

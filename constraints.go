package schemacompat

import (
	"bytes"

	json "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Constraints collects the constraints a handler removed from a node. Keys
// keep insertion order so the folded description is deterministic.
type Constraints struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewConstraints returns an empty constraint set.
func NewConstraints() *Constraints {
	return &Constraints{m: orderedmap.New[string, any]()}
}

// Set records a constraint. Setting an existing key keeps its position.
func (c *Constraints) Set(key string, value any) {
	c.m.Set(key, value)
}

// Get returns the value recorded for key.
func (c *Constraints) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.m.Get(key)
}

// Len returns the number of recorded constraints. A nil set is empty.
func (c *Constraints) Len() int {
	if c == nil {
		return 0
	}
	return c.m.Len()
}

// Keys returns the constraint names in insertion order.
func (c *Constraints) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, c.m.Len())
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// MarshalJSON encodes the constraints as a compact object in insertion order.
// HTML characters are not escaped so patterns stay readable.
func (c *Constraints) MarshalJSON() ([]byte, error) {
	if c.Len() == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		key, err := json.MarshalNoEscape(pair.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.MarshalNoEscape(pair.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MergeDescription folds constraints into a description.
//
// An empty constraint set leaves desc unchanged. Otherwise the result is the
// compact JSON of c, preceded by desc and a newline when desc is not empty.
func MergeDescription(desc string, c *Constraints) string {
	if c.Len() == 0 {
		return desc
	}
	data, err := c.MarshalJSON()
	if err != nil {
		return desc
	}
	if desc == "" {
		return string(data)
	}
	return desc + "\n" + string(data)
}

package schemacompat

import (
	"errors"
	"fmt"

	"github.com/2bigO/schemacompat/schema"
)

// ErrUnsupportedType is returned when a model cannot accept a schema type.
var ErrUnsupportedType = errors.New("unsupported schema type")

// UnsupportedTypeError reports a node type a model profile refuses.
type UnsupportedTypeError struct {
	ModelID string          // model the schema was prepared for
	Type    schema.TypeName // offending node type
}

// Error returns "<model> does not support schema type: <type>".
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s does not support schema type: %s", e.ModelID, e.Type)
}

// Unwrap returns ErrUnsupportedType for use with errors.Is.
func (e *UnsupportedTypeError) Unwrap() error {
	return ErrUnsupportedType
}

// IsUnsupportedType reports whether err was caused by an unsupported type and
// returns the offending type.
func IsUnsupportedType(err error) (schema.TypeName, bool) {
	var ue *UnsupportedTypeError
	if errors.As(err, &ue) {
		return ue.Type, true
	}
	return "", false
}

package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// For builds an object node from the struct type T.
//
// Field names come from json tags. A field is optional when it is a pointer or
// tagged omitempty, unless `required:"true"` overrides it; `required:"false"`
// forces optional. Supported tags:
//
//	desc:"text"          description
//	enum:"a,b,c"         string enum
//	min:"1" max:"10"     length bounds for strings and slices, value bounds for numbers
//	format:"email"       email, url, uuid or date-time
//
// time.Time fields become date nodes. Maps with string keys become records.
func For[T any]() (*ObjectNode, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, &DefinitionError{Path: "/", Message: "cannot reflect nil type"}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, &DefinitionError{Path: "/", Message: fmt.Sprintf("expected struct, got %s", t.Kind())}
	}
	return objectFor(t, "/", map[reflect.Type]bool{})
}

// MustFor is like For but panics on error.
func MustFor[T any]() *ObjectNode {
	n, err := For[T]()
	if err != nil {
		panic(err)
	}
	return n
}

func objectFor(t reflect.Type, path string, seen map[reflect.Type]bool) (*ObjectNode, error) {
	if seen[t] {
		return nil, &DefinitionError{Path: path, Message: fmt.Sprintf("recursive type %s", t)}
	}
	seen[t] = true
	defer delete(seen, t)

	obj := Object()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(jsonTag, ",")
		if name == "" {
			name = field.Name
		}
		p := childPath(path, name)

		node, err := nodeFor(field.Type, field.Tag, p, seen)
		if err != nil {
			return nil, err
		}

		optional := field.Type.Kind() == reflect.Pointer || strings.Contains(opts, "omitempty")
		switch field.Tag.Get("required") {
		case "true":
			optional = false
		case "false":
			optional = true
		}
		if optional {
			node = Optional(node)
		}
		obj.Fields = append(obj.Fields, Prop(name, node))
	}
	return obj, nil
}

func nodeFor(t reflect.Type, tag reflect.StructTag, path string, seen map[reflect.Type]bool) (Node, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	minV, hasMin, err := floatTag(tag, "min", path)
	if err != nil {
		return nil, err
	}
	maxV, hasMax, err := floatTag(tag, "max", path)
	if err != nil {
		return nil, err
	}
	desc := tag.Get("desc")

	if t == timeType {
		return Date().Describe(desc), nil
	}

	switch t.Kind() {
	case reflect.String:
		if values := tag.Get("enum"); values != "" {
			return Enum(strings.Split(values, ",")...).Describe(desc), nil
		}
		s := String().Describe(desc)
		switch format := tag.Get("format"); format {
		case "":
		case "email":
			s = s.Email()
		case "url", "uri":
			s = s.URL()
		case "uuid":
			s = s.UUID()
		case "date-time":
			return Date().Describe(desc), nil
		default:
			return nil, &DefinitionError{Path: path, Message: fmt.Sprintf("unknown format %q", format)}
		}
		if hasMin {
			s = s.Min(int(minV))
		}
		if hasMax {
			s = s.Max(int(maxV))
		}
		return s, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := Int().Describe(desc)
		if hasMin {
			n = n.Min(minV)
		}
		if hasMax {
			n = n.Max(maxV)
		}
		return n, nil

	case reflect.Float32, reflect.Float64:
		n := Number().Describe(desc)
		if hasMin {
			n = n.Min(minV)
		}
		if hasMax {
			n = n.Max(maxV)
		}
		return n, nil

	case reflect.Bool:
		return Bool().Describe(desc), nil

	case reflect.Slice, reflect.Array:
		elem, err := nodeFor(t.Elem(), "", path+"/items", seen)
		if err != nil {
			return nil, err
		}
		a := Array(elem).Describe(desc)
		if hasMin {
			a = a.Min(int(minV))
		}
		if hasMax {
			a = a.Max(int(maxV))
		}
		return a, nil

	case reflect.Struct:
		obj, err := objectFor(t, path, seen)
		if err != nil {
			return nil, err
		}
		return obj.Describe(desc), nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, &DefinitionError{Path: path, Message: fmt.Sprintf("map key must be string, got %s", t.Key())}
		}
		value, err := nodeFor(t.Elem(), "", path+"/additionalProperties", seen)
		if err != nil {
			return nil, err
		}
		return Record(value).Describe(desc), nil

	case reflect.Interface:
		return Any().Describe(desc), nil

	default:
		return nil, &DefinitionError{Path: path, Message: fmt.Sprintf("unsupported Go type %s", t)}
	}
}

func floatTag(tag reflect.StructTag, key, path string) (float64, bool, error) {
	raw, ok := tag.Lookup(key)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, &DefinitionError{Path: path, Message: fmt.Sprintf("invalid %s tag %q", key, raw), Err: err}
	}
	return v, true, nil
}

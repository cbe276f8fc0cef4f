package schema

import (
	"fmt"
	"maps"
	"math"
	"net/mail"
	"net/url"
	"reflect"
	"slices"
	"time"
	"unicode/utf8"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Result is the outcome of validating a value.
type Result struct {
	Success bool
	Value   any    // decoded value, set on success
	Issues  Issues // set on failure
}

// Err returns the issues as an error, or nil on success.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return r.Issues
}

// Validator checks a value against a fixed schema.
type Validator func(v any) Result

// ValidatorFor returns a Validator bound to n. The node must stay valid for
// the lifetime of the validator; nodes are immutable, so sharing is safe.
func ValidatorFor(n Node) Validator {
	return func(v any) Result {
		return Validate(n, v)
	}
}

// Validate checks v against n. It never panics: a panic inside a refinement is
// reported as an internal issue.
func Validate(n Node, v any) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Issues: Issues{{Path: "/", Code: CodeInternal, Message: fmt.Sprint(r)}}}
		}
	}()

	if n == nil {
		return Result{Issues: Issues{{Path: "/", Code: CodeInternal, Message: "nil schema"}}}
	}

	c := &checker{}
	out := c.check(n, v, "/")
	if len(c.issues) > 0 {
		return Result{Issues: c.issues}
	}
	return Result{Success: true, Value: out}
}

type checker struct {
	issues Issues
}

func (c *checker) add(path, code, msg string, params map[string]any) {
	c.issues = append(c.issues, Issue{Path: path, Code: code, Message: msg, Params: params})
}

func (c *checker) check(n Node, v any, path string) any {
	if _, ok := n.(*OptionalNode); ok && v == nil {
		return nil
	}
	before := len(c.issues)
	out := c.structural(n, v, path)
	if len(c.issues) == before {
		c.refine(n.Metadata().Refinements, out, path)
	}
	return out
}

func (c *checker) structural(n Node, v any, path string) any {
	switch t := n.(type) {
	case *OptionalNode:
		return c.check(t.Inner, v, path)
	case *ObjectNode:
		return c.object(t, v, path)
	case *ArrayNode:
		return c.array(t, v, path)
	case *UnionNode:
		return c.union(t, v, path)
	case *StringNode:
		return c.string(t, v, path)
	case *NumberNode:
		return c.number(t, v, path)
	case *DateNode:
		return c.date(t, v, path)
	case *OtherNode:
		return c.other(t, v, path)
	default:
		c.add(path, CodeInternal, fmt.Sprintf("unsupported node %T", n), nil)
		return nil
	}
}

func (c *checker) refine(refs []Refinement, v any, path string) {
	for _, r := range refs {
		if r.Check == nil {
			continue
		}
		err := r.Check(v)
		if err == nil {
			continue
		}
		if iss, ok := AsIssues(err); ok {
			for _, it := range rebase(path, iss) {
				if it.Path == "" {
					it.Path = path
				}
				if it.Rule == "" {
					it.Rule = r.Name
				}
				c.issues = append(c.issues, it)
			}
			continue
		}
		c.issues = append(c.issues, Issue{Path: path, Code: CodeCustom, Message: err.Error(), Rule: r.Name})
	}
}

func (c *checker) object(n *ObjectNode, v any, path string) any {
	obj, ok := asObject(v)
	if !ok {
		c.invalidType(path, "object", v)
		return nil
	}

	out := make(map[string]any, len(obj))
	for _, f := range n.Fields {
		raw, present := obj[f.Name]
		p := childPath(path, f.Name)
		if !present && !acceptsAbsent(f.Node) {
			c.add(p, CodeRequired, "Required", nil)
			continue
		}
		val := c.check(f.Node, raw, p)
		if present {
			out[f.Name] = val
		}
	}

	for _, k := range slices.Sorted(maps.Keys(obj)) {
		if n.index(k) >= 0 {
			continue
		}
		if n.Closed {
			c.add(childPath(path, k), CodeUnknownKey, fmt.Sprintf("Unrecognized key: %q", k), map[string]any{"key": k})
			continue
		}
		out[k] = obj[k]
	}
	return out
}

func (c *checker) array(n *ArrayNode, v any, path string) any {
	items, ok := asSlice(v)
	if !ok {
		c.invalidType(path, "array", v)
		return nil
	}

	got := len(items)
	if n.ExactLength != nil && got != *n.ExactLength {
		code := CodeTooSmall
		if got > *n.ExactLength {
			code = CodeTooBig
		}
		c.add(path, code, fmt.Sprintf("Array must contain exactly %d element(s)", *n.ExactLength),
			map[string]any{"exact": *n.ExactLength, "got": got})
	}
	if n.MinItems != nil && got < *n.MinItems {
		c.add(path, CodeTooSmall, fmt.Sprintf("Array must contain at least %d element(s)", *n.MinItems),
			map[string]any{"minimum": *n.MinItems, "got": got})
	}
	if n.MaxItems != nil && got > *n.MaxItems {
		c.add(path, CodeTooBig, fmt.Sprintf("Array must contain at most %d element(s)", *n.MaxItems),
			map[string]any{"maximum": *n.MaxItems, "got": got})
	}

	out := make([]any, len(items))
	for i, item := range items {
		out[i] = c.check(n.Element, item, childPath(path, fmt.Sprint(i)))
	}
	return out
}

func (c *checker) union(n *UnionNode, v any, path string) any {
	if len(n.Options) < 2 {
		c.add(path, CodeInvalidUnion, ErrUnionArity.Error(), nil)
		return nil
	}
	for _, opt := range n.Options {
		sub := &checker{}
		out := sub.check(opt, v, path)
		if len(sub.issues) == 0 {
			return out
		}
	}
	c.add(path, CodeInvalidUnion, "Invalid input: value matches none of the union options",
		map[string]any{"options": len(n.Options)})
	return nil
}

func (c *checker) string(n *StringNode, v any, path string) any {
	s, ok := v.(string)
	if !ok {
		c.invalidType(path, "string", v)
		return nil
	}

	length := utf8.RuneCountInString(s)
	if n.MinLength != nil && length < *n.MinLength {
		c.add(path, CodeTooSmall, fmt.Sprintf("String must contain at least %d character(s)", *n.MinLength),
			map[string]any{"minimum": *n.MinLength, "got": length})
	}
	if n.MaxLength != nil && length > *n.MaxLength {
		c.add(path, CodeTooBig, fmt.Sprintf("String must contain at most %d character(s)", *n.MaxLength),
			map[string]any{"maximum": *n.MaxLength, "got": length})
	}
	if n.Format != FormatNone && !validFormat(n.Format, s) {
		c.add(path, CodeInvalidFormat, fmt.Sprintf("Invalid %s", n.Format),
			map[string]any{"format": string(n.Format)})
	}
	if n.Pattern != nil && !n.Pattern.MatchString(s) {
		c.add(path, CodePattern, fmt.Sprintf("String must match pattern %s", n.Pattern.String()),
			map[string]any{"pattern": n.Pattern.String()})
	}
	return s
}

func validFormat(f StringFormat, s string) bool {
	switch f {
	case FormatEmail:
		addr, err := mail.ParseAddress(s)
		return err == nil && addr.Address == s
	case FormatURL:
		u, err := url.Parse(s)
		return err == nil && u.Scheme != "" && (u.Host != "" || u.Opaque != "")
	case FormatUUID:
		if len(s) != 36 {
			return false
		}
		_, err := uuid.Parse(s)
		return err == nil
	default:
		return true
	}
}

func (c *checker) number(n *NumberNode, v any, path string) any {
	f, ok := asFloat(v)
	if !ok {
		c.invalidType(path, "number", v)
		return nil
	}
	if math.IsNaN(f) {
		c.add(path, CodeInvalidType, "Expected number, received nan", map[string]any{"expected": "number"})
		return nil
	}
	if n.IsFinite && math.IsInf(f, 0) {
		c.add(path, CodeNotFinite, "Number must be finite", nil)
		return nil
	}
	if n.IsInt && (math.IsInf(f, 0) || math.Trunc(f) != f) {
		c.add(path, CodeInvalidType, "Expected integer, received float", map[string]any{"expected": "integer"})
		return nil
	}

	if n.Gte != nil && f < *n.Gte {
		c.add(path, CodeTooSmall, fmt.Sprintf("Number must be greater than or equal to %v", *n.Gte),
			map[string]any{"minimum": *n.Gte, "inclusive": true, "got": f})
	}
	if n.Gt != nil && f <= *n.Gt {
		c.add(path, CodeTooSmall, fmt.Sprintf("Number must be greater than %v", *n.Gt),
			map[string]any{"minimum": *n.Gt, "inclusive": false, "got": f})
	}
	if n.Lte != nil && f > *n.Lte {
		c.add(path, CodeTooBig, fmt.Sprintf("Number must be less than or equal to %v", *n.Lte),
			map[string]any{"maximum": *n.Lte, "inclusive": true, "got": f})
	}
	if n.Lt != nil && f >= *n.Lt {
		c.add(path, CodeTooBig, fmt.Sprintf("Number must be less than %v", *n.Lt),
			map[string]any{"maximum": *n.Lt, "inclusive": false, "got": f})
	}
	if n.Multiple != nil && !isMultiple(f, *n.Multiple) {
		c.add(path, CodeNotMultipleOf, fmt.Sprintf("Number must be a multiple of %v", *n.Multiple),
			map[string]any{"multipleOf": *n.Multiple, "got": f})
	}
	return f
}

func isMultiple(f, step float64) bool {
	if step == 0 || math.IsInf(f, 0) {
		return false
	}
	q := f / step
	return math.Abs(q-math.Round(q)) < 1e-9
}

func (c *checker) date(n *DateNode, v any, path string) any {
	t, ok := asTime(v)
	if !ok {
		if _, isString := v.(string); isString {
			c.add(path, CodeInvalidFormat, "Invalid date", map[string]any{"format": "date-time"})
			return nil
		}
		c.invalidType(path, "date", v)
		return nil
	}
	if n.MinDate != nil && t.Before(*n.MinDate) {
		c.add(path, CodeTooSmall, fmt.Sprintf("Date must be greater than or equal to %s", n.MinDate.UTC().Format(time.RFC3339Nano)),
			map[string]any{"minimum": n.MinDate.UTC().Format(time.RFC3339Nano)})
	}
	if n.MaxDate != nil && t.After(*n.MaxDate) {
		c.add(path, CodeTooBig, fmt.Sprintf("Date must be smaller than or equal to %s", n.MaxDate.UTC().Format(time.RFC3339Nano)),
			map[string]any{"maximum": n.MaxDate.UTC().Format(time.RFC3339Nano)})
	}
	return t
}

func (c *checker) other(n *OtherNode, v any, path string) any {
	switch n.Type {
	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			c.invalidType(path, "boolean", v)
			return nil
		}
		return b
	case TypeNull, TypeUndefined:
		if v != nil {
			c.invalidType(path, string(n.Type), v)
		}
		return nil
	case TypeAny, TypeUnknown:
		return v
	case TypeNever:
		c.add(path, CodeInvalidType, "Expected never, received "+describe(v), map[string]any{"expected": "never"})
		return nil
	case TypeEnum:
		for _, want := range n.Values {
			if sameValue(want, v) {
				return v
			}
		}
		c.add(path, CodeInvalidEnum, fmt.Sprintf("Invalid enum value. Expected one of %v", n.Values),
			map[string]any{"options": n.Values})
		return nil
	case TypeLiteral:
		if len(n.Values) == 1 && sameValue(n.Values[0], v) {
			return v
		}
		c.add(path, CodeInvalidLiteral, fmt.Sprintf("Invalid literal value, expected %v", n.Values),
			map[string]any{"expected": n.Values})
		return nil
	case TypeTuple:
		return c.tuple(n, v, path)
	case TypeRecord:
		return c.record(n, v, path)
	case TypeIntersection:
		return c.intersection(n, v, path)
	default:
		c.add(path, CodeInternal, fmt.Sprintf("unknown type %q", n.Type), nil)
		return nil
	}
}

func (c *checker) tuple(n *OtherNode, v any, path string) any {
	items, ok := asSlice(v)
	if !ok {
		c.invalidType(path, "array", v)
		return nil
	}
	if len(items) != len(n.Items) {
		code := CodeTooSmall
		if len(items) > len(n.Items) {
			code = CodeTooBig
		}
		c.add(path, code, fmt.Sprintf("Tuple must contain exactly %d element(s)", len(n.Items)),
			map[string]any{"exact": len(n.Items), "got": len(items)})
		return nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = c.check(n.Items[i], item, childPath(path, fmt.Sprint(i)))
	}
	return out
}

func (c *checker) record(n *OtherNode, v any, path string) any {
	obj, ok := asObject(v)
	if !ok {
		c.invalidType(path, "object", v)
		return nil
	}
	out := make(map[string]any, len(obj))
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		if n.Value == nil {
			out[k] = obj[k]
			continue
		}
		out[k] = c.check(n.Value, obj[k], childPath(path, k))
	}
	return out
}

func (c *checker) intersection(n *OtherNode, v any, path string) any {
	var merged map[string]any
	var last any = v
	for _, member := range n.Items {
		out := c.check(member, v, path)
		if m, ok := out.(map[string]any); ok {
			if merged == nil {
				merged = make(map[string]any, len(m))
			}
			maps.Copy(merged, m)
			continue
		}
		last = out
	}
	if merged != nil {
		return merged
	}
	return last
}

func (c *checker) invalidType(path, expected string, v any) {
	got := describe(v)
	c.add(path, CodeInvalidType, fmt.Sprintf("Expected %s, received %s", expected, got),
		map[string]any{"expected": expected, "received": got})
}

// acceptsAbsent reports whether a missing object property satisfies n.
func acceptsAbsent(n Node) bool {
	switch t := n.(type) {
	case *OptionalNode:
		return true
	case *OtherNode:
		return t.Type == TypeAny || t.Type == TypeUnknown || t.Type == TypeUndefined
	}
	return false
}

func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return t, true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	case reflect.Struct:
		if _, isTime := rv.Interface().(time.Time); isTime {
			return nil, false
		}
		data, err := json.Marshal(rv.Interface())
		if err != nil {
			return nil, false
		}
		var out map[string]any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, false
		}
		return out, true
	}
	return nil, false
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case []any:
		return t, true
	case string:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case interface{ Float64() (float64, error) }:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

func sameValue(want, got any) bool {
	if wf, ok := asFloat(want); ok {
		gf, ok := asFloat(got)
		return ok && wf == gf
	}
	return reflect.DeepEqual(want, got)
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case time.Time, *time.Time:
		return "date"
	}
	if _, ok := asFloat(v); ok {
		return "number"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

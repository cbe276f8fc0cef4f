package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes.
const (
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeUnknownKey     = "unknown_key"
	CodeTooSmall       = "too_small"
	CodeTooBig         = "too_big"
	CodeInvalidFormat  = "invalid_format"
	CodePattern        = "pattern"
	CodeNotMultipleOf  = "not_multiple_of"
	CodeNotFinite      = "not_finite"
	CodeInvalidEnum    = "invalid_enum"
	CodeInvalidLiteral = "invalid_literal"
	CodeInvalidUnion   = "invalid_union"
	CodeCustom         = "custom"
	CodeInternal       = "internal"
)

// Issue is a single validation failure.
type Issue struct {
	Path    string         // JSON pointer, e.g. /items/2/price
	Code    string         // one of the Code constants
	Message string         // human-readable text
	Params  map[string]any // structured parameters such as {"min": 1, "got": 0}
	Rule    string         // refinement name, when a refinement produced the issue
}

// Error implements error so refinements can return a single issue.
func (it Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", it.Code, it.Path, it.Message)
}

// Issues is a collection of validation failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s: %s", iss[i].Code, iss[i].Path, iss[i].Message)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// AsIssues extracts Issues from an error.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	var it Issue
	if errors.As(err, &it) {
		return Issues{it}, true
	}
	return nil, false
}

// childPath appends a JSON pointer segment to path.
func childPath(path, segment string) string {
	segment = strings.ReplaceAll(segment, "~", "~0")
	segment = strings.ReplaceAll(segment, "/", "~1")
	if path == "/" || path == "" {
		return "/" + segment
	}
	return path + "/" + segment
}

// rebase re-roots issue paths produced relative to "/" under path.
func rebase(path string, iss Issues) Issues {
	if path == "/" || path == "" {
		return iss
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		switch {
		case it.Path == "" || it.Path == "/":
			it.Path = path
		case strings.HasPrefix(it.Path, "/"):
			it.Path = path + it.Path
		}
		out[i] = it
	}
	return out
}

package schema

import "regexp"

// StringFormat is a well-known string format.
type StringFormat string

const (
	FormatNone  StringFormat = ""
	FormatEmail StringFormat = "email"
	FormatURL   StringFormat = "url"
	FormatUUID  StringFormat = "uuid"
)

// StringNode describes a string value.
type StringNode struct {
	Meta

	MinLength *int
	MaxLength *int
	Format    StringFormat
	Pattern   *regexp.Regexp
}

// String creates a string node.
func String() *StringNode {
	return &StringNode{}
}

// Email creates a string node with the email format.
func Email() *StringNode { return String().Email() }

// URL creates a string node with the url format.
func URL() *StringNode { return String().URL() }

// UUID creates a string node with the uuid format.
func UUID() *StringNode { return String().UUID() }

func (*StringNode) Kind() Kind         { return KindString }
func (*StringNode) TypeName() TypeName { return TypeString }
func (*StringNode) sealed()            {}

// Describe sets the description.
func (n *StringNode) Describe(description string) *StringNode {
	c := *n
	c.Description = description
	return &c
}

// Min sets the minimum length in characters.
func (n *StringNode) Min(length int) *StringNode {
	c := *n
	c.MinLength = ptr(length)
	return &c
}

// Max sets the maximum length in characters.
func (n *StringNode) Max(length int) *StringNode {
	c := *n
	c.MaxLength = ptr(length)
	return &c
}

// Email requires an email address.
func (n *StringNode) Email() *StringNode { return n.format(FormatEmail) }

// URL requires an absolute URL.
func (n *StringNode) URL() *StringNode { return n.format(FormatURL) }

// UUID requires a canonical UUID.
func (n *StringNode) UUID() *StringNode { return n.format(FormatUUID) }

// Regex requires the string to match expr. It panics if expr does not compile.
func (n *StringNode) Regex(expr string) *StringNode {
	return n.Match(regexp.MustCompile(expr))
}

// Match requires the string to match re.
func (n *StringNode) Match(re *regexp.Regexp) *StringNode {
	c := *n
	c.Pattern = re
	return &c
}

// Refine adds a runtime-only check.
func (n *StringNode) Refine(name string, check func(v any) error) *StringNode {
	c := *n
	c.Meta = c.withRefinement(Refinement{Name: name, Check: check})
	return &c
}

func (n *StringNode) format(f StringFormat) *StringNode {
	c := *n
	c.Format = f
	return &c
}

package schema

// Classify returns the kind of n. A nil node is KindOther.
func Classify(n Node) Kind {
	if n == nil {
		return KindOther
	}
	return n.Kind()
}

// IsObject reports whether n is an object node.
func IsObject(n Node) bool { return Classify(n) == KindObject }

// IsArray reports whether n is an array node.
func IsArray(n Node) bool { return Classify(n) == KindArray }

// IsUnion reports whether n is a union node.
func IsUnion(n Node) bool { return Classify(n) == KindUnion }

// IsOptional reports whether n is an optional node.
func IsOptional(n Node) bool { return Classify(n) == KindOptional }

// IsString reports whether n is a string node, whatever its format.
func IsString(n Node) bool { return Classify(n) == KindString }

// IsNumber reports whether n is a number node, integer or not.
func IsNumber(n Node) bool { return Classify(n) == KindNumber }

// IsDate reports whether n is a date node.
func IsDate(n Node) bool { return Classify(n) == KindDate }

// IsOther reports whether n has no dedicated handler kind.
func IsOther(n Node) bool { return Classify(n) == KindOther }

// TypeOf returns the fine-grained type name of n, or "" for nil.
func TypeOf(n Node) TypeName {
	if n == nil {
		return ""
	}
	return n.TypeName()
}

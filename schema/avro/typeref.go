package avro

import "fmt"

// NullMarker is the Avro primitive name of the null branch in a nullable union.
const NullMarker = "null"

// Kind describes which of the three legal shapes a type reference holds.
type Kind uint8

// Type reference shapes.
const (
	KindNone      Kind = iota // nothing populated
	KindPrimitive             // "string"
	KindObject                // {"type": "record", ...}
	KindUnion                 // ["null", {...}]
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindPrimitive:
		return "primitive"
	case KindObject:
		return "object"
	case KindUnion:
		return "union"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// TypeRef is the polymorphic "type" slot of a Field, Schema or Type.items.
// Exactly one shape is populated, and the shape decides where type
// information is read from.
//
// Union branches are always Types; a primitive name inside a union is
// represented as a Type with only its Type attribute set, and the null
// marker is such a Type whose name is "null".
type TypeRef struct {
	kind     Kind
	name     string
	object   *Type
	branches []*Type
}

// Primitive returns a reference to a primitive (or logical) Avro type name.
// An empty name yields an unpopulated reference.
func Primitive(name string) TypeRef {
	if name == "" {
		return TypeRef{}
	}
	return TypeRef{kind: KindPrimitive, name: name}
}

// Object returns a reference to a nested type definition.
func Object(t *Type) TypeRef {
	if t == nil {
		return TypeRef{}
	}
	return TypeRef{kind: KindObject, object: t}
}

// Union returns a reference to a union of the given branches. Nil branches are dropped.
func Union(branches ...*Type) TypeRef {
	bs := make([]*Type, 0, len(branches))
	for _, b := range branches {
		if b != nil {
			bs = append(bs, b)
		}
	}
	if len(bs) == 0 {
		return TypeRef{}
	}
	return TypeRef{kind: KindUnion, branches: bs}
}

// Nullable returns the canonical two-branch union ["null", t].
func Nullable(t *Type) TypeRef {
	return Union(&Type{Type: NullMarker}, t)
}

// Kind returns the populated shape.
func (r TypeRef) Kind() Kind { return r.kind }

// IsZero reports whether no shape is populated.
func (r TypeRef) IsZero() bool { return r.kind == KindNone }

// Name returns the primitive type name, or "" for other shapes.
func (r TypeRef) Name() string { return r.name }

// Object returns the nested type definition, or nil for other shapes.
func (r TypeRef) Object() *Type { return r.object }

// Branches returns the union branches, or nil for other shapes.
func (r TypeRef) Branches() []*Type { return r.branches }

// NonNull returns the Type that holds the type information of the reference:
// the nested object itself, or the first union branch that is not the null
// marker. It returns nil for primitive references and for unions that
// contain only null branches.
//
// For the canonical ["null", {...}] union this is the branch at index 1.
// Unions with more than one non-null branch are narrowed to the first one.
func (r TypeRef) NonNull() *Type {
	switch r.kind {
	case KindObject:
		return r.object
	case KindUnion:
		for _, b := range r.branches {
			if !b.IsNull() {
				return b
			}
		}
	}
	return nil
}

// String returns a short human readable form of the reference.
func (r TypeRef) String() string {
	switch r.kind {
	case KindPrimitive:
		return r.name
	case KindObject:
		return "{" + r.object.Type + "}"
	case KindUnion:
		s := "["
		for i, b := range r.branches {
			if i > 0 {
				s += ", "
			}
			if b.IsNull() {
				s += NullMarker
			} else {
				s += "{" + b.Type + "}"
			}
		}
		return s + "]"
	default:
		return ""
	}
}

// Clone returns a deep copy of the reference.
func (r TypeRef) Clone() TypeRef {
	c := TypeRef{kind: r.kind, name: r.name}
	if r.object != nil {
		c.object = r.object.Clone()
	}
	if r.branches != nil {
		c.branches = make([]*Type, len(r.branches))
		for i, b := range r.branches {
			c.branches[i] = b.Clone()
		}
	}
	return c
}

// Package avro provides the object model of an Avro schema extended with
// xjoin and Kafka Connect metadata, and the rules that turn each field of
// such a schema into a GraphQL type descriptor.
package avro

import (
	"errors"
	"fmt"
	"maps"
)

// ErrMissingSchemaName is returned by Schema.Validate for an unnamed schema.
var ErrMissingSchemaName = errors.New("avro: schema is missing name attribute")

// Schema is the root of a loaded schema document.
type Schema struct {
	Type            TypeRef
	Fields          []*Field
	Transformations []*Transformation
	XJoinType       string
	Name            string
	Namespace       string
	ConnectName     string
}

// FullName returns the namespace-qualified schema name.
func (s *Schema) FullName() string {
	if s.Namespace == "" {
		return s.Name
	}
	return s.Namespace + "." + s.Name
}

// Validate validates every field of the schema, descending into children.
func (s *Schema) Validate() error {
	if s.Name == "" {
		return ErrMissingSchemaName
	}
	if err := ValidateTree(s.Fields); err != nil {
		return fmt.Errorf("schema %s: %w", s.FullName(), err)
	}
	return nil
}

// Clone returns a deep copy of the schema.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	c := *s
	c.Type = s.Type.Clone()
	c.Fields = cloneFields(s.Fields)
	if s.Transformations != nil {
		c.Transformations = make([]*Transformation, len(s.Transformations))
		for i, tr := range s.Transformations {
			c.Transformations[i] = tr.Clone()
		}
	}
	return &c
}

// Type is a nested (complex) type definition.
//
// Child fields are read from Fields, falling back to XJoinFields when
// Fields is empty.
type Type struct {
	Items            TypeRef
	Fields           []*Field
	XJoinFields      []*Field
	XJoinType        string
	ConnectVersion   int64
	ConnectName      string
	XJoinCase        string
	XJoinEnumeration bool
	XJoinPrimaryKey  bool
	Type             string
	Name             string
}

// NewType returns a Type with the document defaults applied.
func NewType() *Type {
	return &Type{ConnectVersion: 1}
}

// IsNull reports whether t is the null marker of a union.
func (t *Type) IsNull() bool {
	return t == nil || t.Type == NullMarker
}

// Children returns Fields, or XJoinFields when Fields is empty.
func (t *Type) Children() []*Field {
	if t == nil {
		return nil
	}
	if len(t.Fields) > 0 {
		return t.Fields
	}
	return t.XJoinFields
}

// Clone returns a deep copy of the type.
func (t *Type) Clone() *Type {
	if t == nil {
		return nil
	}
	c := *t
	c.Items = t.Items.Clone()
	c.Fields = cloneFields(t.Fields)
	c.XJoinFields = cloneFields(t.XJoinFields)
	return &c
}

// Field is a single field of a record.
type Field struct {
	Name             string
	Type             TypeRef
	Default          any
	XJoinIndex       bool
	XJoinType        string
	XJoinEnumeration bool
	XJoinPrimaryKey  bool
}

// NewField returns a Field with the document defaults applied:
// xjoin.index and xjoin.enumeration default to true.
func NewField(name string, t TypeRef) *Field {
	return &Field{
		Name:             name,
		Type:             t,
		XJoinIndex:       true,
		XJoinEnumeration: true,
	}
}

// Clone returns a deep copy of the field. The default value is copied shallowly.
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}
	c := *f
	c.Type = f.Type.Clone()
	return &c
}

// Transformation describes a pipeline step. It is carried as data only.
type Transformation struct {
	InputField  string
	OutputField string
	Type        string
	Parameters  map[string]any
}

// Clone returns a copy of the transformation with its own parameter map.
func (t *Transformation) Clone() *Transformation {
	if t == nil {
		return nil
	}
	c := *t
	c.Parameters = maps.Clone(t.Parameters)
	return &c
}

func cloneFields(fields []*Field) []*Field {
	if fields == nil {
		return nil
	}
	c := make([]*Field, len(fields))
	for i, f := range fields {
		c[i] = f.Clone()
	}
	return c
}

package avro

// GraphQLType returns the resolved GraphQL output type.
func (f *Field) GraphQLType() string { return Resolve(f).GraphQLType }

// FilterType returns the resolved GraphQL filter input type.
func (f *Field) FilterType() string { return Resolve(f).FilterType }

// Enumeration returns the resolved enumeration flag. Always prefer it over
// reading XJoinEnumeration, which is only a mirror for nested shapes.
func (f *Field) Enumeration() bool { return Resolve(f).Enumeration }

// PrimaryKey returns the resolved primary key flag.
func (f *Field) PrimaryKey() bool { return Resolve(f).PrimaryKey }

// AvroType returns the resolved Avro type name.
func (f *Field) AvroType() string { return Resolve(f).AvroType }

// ResolvedXJoinType returns the resolved xjoin.type, which for nested
// shapes comes from the nested Type rather than the XJoinType field.
func (f *Field) ResolvedXJoinType() string { return Resolve(f).XJoinType }

// Children returns the child fields of a nested or nullable field.
// Primitive fields have no children. The result is derived on every call.
func (f *Field) Children() []*Field {
	if f == nil {
		return nil
	}
	return f.Type.NonNull().Children()
}

// HasChildren reports whether Children is non-empty.
func (f *Field) HasChildren() bool {
	return len(f.Children()) > 0
}

// WalkFunc is called for every field visited by Walk. path holds the names
// of the ancestors followed by the field's own name.
type WalkFunc func(path []string, f *Field) error

// Walk visits fields depth-first in document order, descending through
// Children. It stops at the first error returned by fn.
func Walk(fields []*Field, fn WalkFunc) error {
	return walk(nil, fields, fn)
}

func walk(parent []string, fields []*Field, fn WalkFunc) error {
	for _, f := range fields {
		if f == nil {
			continue
		}
		path := append(parent[:len(parent):len(parent)], f.Name)
		if err := fn(path, f); err != nil {
			return err
		}
		if err := walk(path, f.Children(), fn); err != nil {
			return err
		}
	}
	return nil
}

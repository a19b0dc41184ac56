package avro

// SetEnumeration returns a copy of f whose resolved enumeration flag is v.
// f itself is left untouched.
//
// The flag is written where Resolve reads it: the field for primitive
// references, the nested Type for object and union references. The
// field-level flag is updated as well so both locations agree.
func SetEnumeration(f *Field, v bool) *Field {
	if f == nil {
		return nil
	}
	c := f.Clone()
	if t := c.Type.NonNull(); t != nil {
		t.XJoinEnumeration = v
	}
	c.XJoinEnumeration = v
	return c
}

// WithEnumeration is SetEnumeration as a method.
func (f *Field) WithEnumeration(v bool) *Field {
	return SetEnumeration(f, v)
}

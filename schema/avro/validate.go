package avro

import (
	"fmt"
	"strings"

	"github.com/syssam/xjoin"
)

// Validate checks a single field. It does not descend into children.
func (f *Field) Validate() error {
	return Validate(f)
}

// Validate checks that f has a name, an Avro type and an xjoin type.
func Validate(f *Field) error {
	if f == nil || f.Name == "" {
		return xjoin.NewMissingNameError()
	}
	ft := Resolve(f)
	if ft.AvroType == "" {
		return xjoin.NewMissingAvroTypeError(f.Name)
	}
	if ft.XJoinType == "" {
		return xjoin.NewMissingXJoinTypeError(f.Name)
	}
	return nil
}

// ValidateTree validates fields and all of their descendants, returning the
// first failure prefixed with the dotted path of the offending field.
func ValidateTree(fields []*Field) error {
	return Walk(fields, func(path []string, f *Field) error {
		if err := Validate(f); err != nil {
			return fmt.Errorf("%s: %w", strings.Join(path, "."), err)
		}
		return nil
	})
}

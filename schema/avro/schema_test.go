package avro

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/xjoin"
)

func TestTypeRef(t *testing.T) {
	t.Run("Zero", func(t *testing.T) {
		var r TypeRef
		assert.True(t, r.IsZero())
		assert.Equal(t, KindNone, r.Kind())
		assert.Nil(t, r.NonNull())
		assert.True(t, Primitive("").IsZero())
		assert.True(t, Object(nil).IsZero())
		assert.True(t, Union(nil, nil).IsZero())
	})

	t.Run("NonNullCanonical", func(t *testing.T) {
		inner := &Type{Type: "string"}
		r := Nullable(inner)
		assert.Equal(t, KindUnion, r.Kind())
		assert.Len(t, r.Branches(), 2)
		assert.Same(t, inner, r.NonNull())
		assert.Same(t, inner, r.Branches()[1])
	})

	t.Run("NonNullFirstPosition", func(t *testing.T) {
		inner := &Type{Type: "long"}
		r := Union(inner, &Type{Type: NullMarker})
		assert.Same(t, inner, r.NonNull())
	})

	t.Run("NonNullFirstOfMany", func(t *testing.T) {
		a, b := &Type{Type: "int"}, &Type{Type: "string"}
		r := Union(&Type{Type: NullMarker}, a, b)
		assert.Same(t, a, r.NonNull())
	})

	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "string", Primitive("string").String())
		assert.Equal(t, "{record}", Object(&Type{Type: "record"}).String())
		assert.Equal(t, "[null, {array}]", Nullable(&Type{Type: "array"}).String())
		assert.Equal(t, "union", KindUnion.String())
	})
}

func TestClone(t *testing.T) {
	orig := &Schema{
		Name: "hosts",
		Fields: []*Field{
			{Name: "facts", Type: Nullable(&Type{
				XJoinType: "json",
				Fields:    []*Field{{Name: "fqdn", Type: Primitive("string")}},
			})},
		},
		Transformations: []*Transformation{{InputField: "a", Parameters: map[string]any{"k": "v"}}},
	}
	c := orig.Clone()
	require.Equal(t, orig, c)

	c.Fields[0].Type.NonNull().Fields[0].Name = "changed"
	c.Transformations[0].Parameters["k"] = "changed"
	assert.Equal(t, "fqdn", orig.Fields[0].Children()[0].Name)
	assert.Equal(t, "v", orig.Transformations[0].Parameters["k"])
	assert.NotSame(t, orig.Fields[0].Type.NonNull(), c.Fields[0].Type.NonNull())
}

func TestDefaults(t *testing.T) {
	f := NewField("status", Primitive("string"))
	assert.True(t, f.XJoinIndex)
	assert.True(t, f.XJoinEnumeration)
	assert.False(t, f.XJoinPrimaryKey)
	assert.Equal(t, int64(1), NewType().ConnectVersion)
}

func TestSchemaValidate(t *testing.T) {
	t.Run("MissingName", func(t *testing.T) {
		s := &Schema{}
		assert.ErrorIs(t, s.Validate(), ErrMissingSchemaName)
	})

	t.Run("NestedFailure", func(t *testing.T) {
		s := &Schema{Name: "hosts", Namespace: "com.example", Fields: []*Field{
			{Name: "facts", Type: Object(&Type{Type: "string", XJoinType: "json", Fields: []*Field{
				{Name: "fqdn", Type: Primitive("string")},
			}})},
		}}
		err := s.Validate()
		require.Error(t, err)
		assert.True(t, xjoin.IsMissingXJoinType(err))
		assert.True(t, strings.Contains(err.Error(), "com.example.hosts"))
		assert.True(t, strings.Contains(err.Error(), "facts.fqdn"))
	})

	t.Run("Valid", func(t *testing.T) {
		s := &Schema{Name: "hosts", Fields: []*Field{
			{Name: "id", Type: Primitive("string"), XJoinType: "string"},
		}}
		assert.NoError(t, s.Validate())
	})
}

func TestTransformationCloneNil(t *testing.T) {
	var tr *Transformation
	assert.Nil(t, tr.Clone())
	assert.Nil(t, (&Transformation{}).Clone().Parameters)
}

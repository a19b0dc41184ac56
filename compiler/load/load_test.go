package load

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/xjoin/schema/avro"
)

func fieldByName(t *testing.T, fields []*avro.Field, name string) *avro.Field {
	t.Helper()
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	require.FailNow(t, "field not found", name)
	return nil
}

func TestLoadFileJSON(t *testing.T) {
	s, err := LoadFile(filepath.Join("testdata", "hosts.json"))
	require.NoError(t, err)

	assert.Equal(t, "hosts", s.Name)
	assert.Equal(t, "com.redhat.cloud.inventory", s.Namespace)
	assert.Equal(t, "com.redhat.cloud.inventory.hosts", s.ConnectName)
	assert.Equal(t, "record", s.XJoinType)
	assert.Equal(t, avro.KindPrimitive, s.Type.Kind())
	assert.Equal(t, "record", s.Type.Name())
	require.Len(t, s.Fields, 7)
	require.NoError(t, s.Validate())

	t.Run("ObjectShape", func(t *testing.T) {
		id := fieldByName(t, s.Fields, "id")
		require.Equal(t, avro.KindObject, id.Type.Kind())
		ft := avro.Resolve(id)
		assert.True(t, ft.PrimaryKey)
		assert.Equal(t, "string", ft.AvroType)
		assert.Equal(t, "FilterString", ft.FilterType)
		assert.Equal(t, int64(1), id.Type.Object().ConnectVersion)
	})

	t.Run("UnionShape", func(t *testing.T) {
		dn := fieldByName(t, s.Fields, "display_name")
		require.Equal(t, avro.KindUnion, dn.Type.Kind())
		require.Len(t, dn.Type.Branches(), 2)
		assert.True(t, dn.Type.Branches()[0].IsNull())
		assert.Equal(t, "insensitive", dn.Type.NonNull().XJoinCase)
		assert.Nil(t, dn.Default)

		created := fieldByName(t, s.Fields, "created_on")
		assert.Equal(t, "FilterTimestamp", avro.Resolve(created).FilterType)
		assert.Equal(t, int64(2), created.Type.NonNull().ConnectVersion)
	})

	t.Run("PrimitiveShape", func(t *testing.T) {
		stale := fieldByName(t, s.Fields, "stale")
		require.Equal(t, avro.KindPrimitive, stale.Type.Kind())
		ft := avro.Resolve(stale)
		assert.Equal(t, "Boolean", ft.GraphQLType)
		assert.False(t, ft.Enumeration)
		assert.Equal(t, false, stale.Default)
		assert.True(t, stale.XJoinIndex)
	})

	t.Run("Array", func(t *testing.T) {
		tags := fieldByName(t, s.Fields, "tags")
		ft := avro.Resolve(tags)
		assert.Equal(t, "[String]", ft.GraphQLType)
		assert.Equal(t, "FilterStringArray", ft.FilterType)
		assert.Equal(t, "string", tags.Type.NonNull().Items.Name())
	})

	t.Run("JSONChildren", func(t *testing.T) {
		sp := fieldByName(t, s.Fields, "system_profile")
		require.True(t, sp.HasChildren())
		assert.Equal(t, "InputSystemProfile", avro.Resolve(sp).FilterType)

		arch := fieldByName(t, sp.Children(), "arch")
		assert.True(t, avro.Resolve(arch).Enumeration)
		cores := fieldByName(t, sp.Children(), "cores")
		assert.False(t, cores.XJoinIndex)
		assert.True(t, cores.XJoinEnumeration)
		assert.Equal(t, int64(4), cores.Default)

		facts := fieldByName(t, s.Fields, "facts")
		assert.False(t, facts.HasChildren())
		assert.Empty(t, avro.Resolve(facts).FilterType)
	})

	t.Run("Transformations", func(t *testing.T) {
		require.Len(t, s.Transformations, 1)
		tr := s.Transformations[0]
		assert.Equal(t, "host.canonical_facts", tr.InputField)
		assert.Equal(t, "host.facts", tr.OutputField)
		assert.Equal(t, "copy", tr.Type)
		assert.Equal(t, []any{"fqdn", "insights_id"}, tr.Parameters["keys"])
		assert.Equal(t, int64(2), tr.Parameters["depth"])
	})
}

func TestLoadFileYAML(t *testing.T) {
	s, err := LoadFile(filepath.Join("testdata", "hosts.yaml"))
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	id := fieldByName(t, s.Fields, "id")
	assert.True(t, avro.Resolve(id).PrimaryKey)

	tags := fieldByName(t, s.Fields, "tags")
	assert.Equal(t, avro.KindUnion, tags.Type.Kind())
	assert.Equal(t, "FilterStringArray", avro.Resolve(tags).FilterType)

	sp := fieldByName(t, s.Fields, "system_profile")
	assert.Len(t, sp.Children(), 1)
	assert.Equal(t, "InputSystemProfile", avro.Resolve(sp).FilterType)
}

func TestDecodeShapes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind avro.Kind
	}{
		{"primitive", `{"fields":[{"name":"a","type":"string"}]}`, avro.KindPrimitive},
		{"object", `{"fields":[{"name":"a","type":{"type":"string"}}]}`, avro.KindObject},
		{"union", `{"fields":[{"name":"a","type":["null",{"type":"string"}]}]}`, avro.KindUnion},
		{"primitive union", `{"fields":[{"name":"a","type":["null","string"]}]}`, avro.KindUnion},
		{"missing", `{"fields":[{"name":"a"}]}`, avro.KindNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Decode([]byte(tt.doc), FormatJSON)
			require.NoError(t, err)
			require.Len(t, s.Fields, 1)
			assert.Equal(t, tt.kind, s.Fields[0].Type.Kind())
		})
	}

	t.Run("PrimitiveBranchLifted", func(t *testing.T) {
		s, err := Decode([]byte(`{"fields":[{"name":"a","type":["null","long"]}]}`), FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, "long", avro.Resolve(s.Fields[0]).AvroType)
	})
}

func TestDecodeDefaults(t *testing.T) {
	s, err := Decode([]byte(`{"fields":[{"name":"a","type":{"type":"string"}}]}`), FormatJSON)
	require.NoError(t, err)
	f := s.Fields[0]
	assert.True(t, f.XJoinIndex)
	assert.True(t, f.XJoinEnumeration)
	assert.False(t, f.XJoinPrimaryKey)
	assert.Equal(t, int64(1), f.Type.Object().ConnectVersion)
	assert.False(t, f.Type.Object().XJoinEnumeration)
}

func TestDecodeNoSharing(t *testing.T) {
	doc := `
shared: &t
  type: string
  xjoin.type: string
fields:
  - name: a
    type: *t
  - name: b
    type: *t
`
	s, err := Decode([]byte(doc), FormatYAML)
	require.NoError(t, err)
	require.Len(t, s.Fields, 2)
	assert.NotSame(t, s.Fields[0].Type.Object(), s.Fields[1].Type.Object())

	a := avro.SetEnumeration(s.Fields[0], true)
	assert.True(t, avro.Resolve(a).Enumeration)
	assert.False(t, avro.Resolve(s.Fields[1]).Enumeration)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		format Format
		path   string
	}{
		{"bad json", `{`, FormatJSON, ""},
		{"bad yaml", "fields: [", FormatYAML, ""},
		{"root not object", `[]`, FormatJSON, ""},
		{"type number", `{"fields":[{"name":"a","type":42}]}`, FormatJSON, "fields[0].type"},
		{"empty union", `{"fields":[{"name":"a","type":[]}]}`, FormatJSON, "fields[0].type"},
		{"bad branch", `{"fields":[{"name":"a","type":["null",1]}]}`, FormatJSON, "fields[0].type[1]"},
		{"name not string", `{"fields":[{"name":7}]}`, FormatJSON, "fields[0]"},
		{"bad bool", `{"fields":[{"name":"a","xjoin.enumeration":"maybe"}]}`, FormatJSON, "fields[0]"},
		{"bad version", `{"type":{"connect.version":1.5}}`, FormatJSON, "type"},
		{"fields not list", `{"fields":{}}`, FormatJSON, "fields"},
		{"bad parameters", `{"transformations":[{"parameters":1}]}`, FormatJSON, "transformations[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc), tt.format)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDocument))
			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.path, de.Path)
		})
	}

	t.Run("FileInMessage", func(t *testing.T) {
		_, err := LoadFile(filepath.Join("testdata", "invalid.json"))
		require.Error(t, err)
		assert.True(t, IsDecodeError(err))
		assert.Contains(t, err.Error(), "invalid.json")
		assert.Contains(t, err.Error(), "fields[0].type")
	})
}

func TestDecodeBooleanStrings(t *testing.T) {
	s, err := Decode([]byte(`{"fields":[{"name":"a","type":"string","xjoin.enumeration":"false"}]}`), FormatJSON)
	require.NoError(t, err)
	assert.False(t, s.Fields[0].XJoinEnumeration)
}

func TestStrict(t *testing.T) {
	doc := []byte(`{"name":"s","doc":"ok","fields":[{"name":"a","type":"string","x-custom":1}]}`)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := New(WithLogger(logger)).Decode(doc, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "x-custom")
	assert.NotContains(t, buf.String(), "key=doc")

	_, err = New(WithStrict()).Decode(doc, FormatJSON)
	require.Error(t, err)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "x-custom", de.Key)
	assert.Equal(t, "fields[0]", de.Path)
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{
		"a.json": FormatJSON,
		"a.avsc": FormatJSON,
		"a.YAML": FormatYAML,
		"a.yml":  FormatYAML,
	} {
		got, err := FormatOf(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatOf("a.txt")
	assert.Error(t, err)
	assert.Equal(t, "yaml", FormatYAML.String())
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	second := filepath.Join(dir, "tags.json")
	require.NoError(t, os.WriteFile(second, []byte(`{"name":"tags","fields":[{"name":"key","type":"string","xjoin.type":"string"}]}`), 0o644))

	schemas, err := New(WithWorkers(2)).LoadFiles(context.Background(),
		filepath.Join("testdata", "hosts.json"),
		second,
		filepath.Join("testdata", "hosts.yaml"),
	)
	require.NoError(t, err)
	require.Len(t, schemas, 3)
	assert.Equal(t, "hosts", schemas[0].Name)
	assert.Equal(t, "tags", schemas[1].Name)
	assert.Equal(t, "hosts", schemas[2].Name)

	_, err = LoadFiles(context.Background(), second, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = LoadFiles(context.Background(), filepath.Join("testdata", "invalid.json"))
	assert.True(t, IsDecodeError(err))
}

package load

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/spf13/cast"

	"github.com/syssam/xjoin/schema/avro"
)

// setter decodes the value of one wire key into dst.
type setter[T any] func(d *decoder, path string, dst T, v any) error

// Wire keys are dotted names, mapped statically to entity fields. The
// tables for nested entities are recursive, so they are filled in init.
var (
	schemaKeys map[string]setter[*avro.Schema]
	typeKeys   map[string]setter[*avro.Type]
	fieldKeys  map[string]setter[*avro.Field]
)

func init() {
	schemaKeys = map[string]setter[*avro.Schema]{
		"type": func(d *decoder, p string, s *avro.Schema, v any) (err error) {
			s.Type, err = d.typeRef(p, v)
			return err
		},
		"fields": func(d *decoder, p string, s *avro.Schema, v any) (err error) {
			s.Fields, err = d.fields(p, v)
			return err
		},
		"transformations": func(d *decoder, p string, s *avro.Schema, v any) (err error) {
			s.Transformations, err = d.transformations(p, v)
			return err
		},
		"xjoin.type":   stringKey(func(s *avro.Schema) *string { return &s.XJoinType }),
		"name":         stringKey(func(s *avro.Schema) *string { return &s.Name }),
		"namespace":    stringKey(func(s *avro.Schema) *string { return &s.Namespace }),
		"connect.name": stringKey(func(s *avro.Schema) *string { return &s.ConnectName }),
		"connectName":  stringKey(func(s *avro.Schema) *string { return &s.ConnectName }),
	}

	typeKeys = map[string]setter[*avro.Type]{
		"items": func(d *decoder, p string, t *avro.Type, v any) (err error) {
			t.Items, err = d.typeRef(p, v)
			return err
		},
		"fields": func(d *decoder, p string, t *avro.Type, v any) (err error) {
			t.Fields, err = d.fields(p, v)
			return err
		},
		"xjoin.fields": func(d *decoder, p string, t *avro.Type, v any) (err error) {
			t.XJoinFields, err = d.fields(p, v)
			return err
		},
		"connect.version": func(d *decoder, p string, t *avro.Type, v any) (err error) {
			t.ConnectVersion, err = asInt(v)
			return err
		},
		"xjoin.type":        stringKey(func(t *avro.Type) *string { return &t.XJoinType }),
		"connect.name":      stringKey(func(t *avro.Type) *string { return &t.ConnectName }),
		"xjoin.case":        stringKey(func(t *avro.Type) *string { return &t.XJoinCase }),
		"xjoin.enumeration": boolKey(func(t *avro.Type) *bool { return &t.XJoinEnumeration }),
		"xjoin.primary.key": boolKey(func(t *avro.Type) *bool { return &t.XJoinPrimaryKey }),
		"type":              stringKey(func(t *avro.Type) *string { return &t.Type }),
		"name":              stringKey(func(t *avro.Type) *string { return &t.Name }),
	}

	fieldKeys = map[string]setter[*avro.Field]{
		"type": func(d *decoder, p string, f *avro.Field, v any) (err error) {
			f.Type, err = d.typeRef(p, v)
			return err
		},
		"default": func(_ *decoder, _ string, f *avro.Field, v any) error {
			f.Default = normalize(v)
			return nil
		},
		"xjoin.index":       boolKey(func(f *avro.Field) *bool { return &f.XJoinIndex }),
		"xjoin.type":        stringKey(func(f *avro.Field) *string { return &f.XJoinType }),
		"xjoin.enumeration": boolKey(func(f *avro.Field) *bool { return &f.XJoinEnumeration }),
		"xjoin.primary.key": boolKey(func(f *avro.Field) *bool { return &f.XJoinPrimaryKey }),
		"name":              stringKey(func(f *avro.Field) *string { return &f.Name }),
	}
}

var transformationKeys = map[string]setter[*avro.Transformation]{
	"input.field":  stringKey(func(t *avro.Transformation) *string { return &t.InputField }),
	"output.field": stringKey(func(t *avro.Transformation) *string { return &t.OutputField }),
	"type":         stringKey(func(t *avro.Transformation) *string { return &t.Type }),
	"parameters": func(_ *decoder, _ string, t *avro.Transformation, v any) error {
		if v == nil {
			return nil
		}
		m, ok := asMap(v)
		if !ok {
			return fmt.Errorf("expected object, got %T", v)
		}
		t.Parameters = make(map[string]any, len(m))
		for k, pv := range m {
			t.Parameters[k] = normalize(pv)
		}
		return nil
	},
}

// Standard Avro attributes that carry nothing for type resolution.
var avroKeys = []string{"doc", "aliases", "order", "logicalType", "symbols", "size", "values", "namespace", "default"}

func stringKey[T any](field func(T) *string) setter[T] {
	return func(_ *decoder, _ string, dst T, v any) error {
		if v == nil {
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		*field(dst) = s
		return nil
	}
}

func boolKey[T any](field func(T) *bool) setter[T] {
	return func(_ *decoder, _ string, dst T, v any) error {
		b, err := asBool(v)
		if err != nil {
			return err
		}
		*field(dst) = b
		return nil
	}
}

// decoder builds the object graph from a generic document tree.
type decoder struct {
	file   string
	strict bool
	logger *slog.Logger
}

func (d *decoder) errorf(path, key, format string, args ...any) *DecodeError {
	return &DecodeError{File: d.file, Path: path, Key: key, Message: fmt.Sprintf(format, args...)}
}

// apply decodes every key of m through the given table.
func apply[T any](d *decoder, path string, m map[string]any, keys map[string]setter[T], dst T) error {
	// Sorted for deterministic error reporting.
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)
	for _, k := range names {
		set, ok := keys[k]
		if !ok {
			if slices.Contains(avroKeys, k) {
				continue
			}
			if d.strict {
				return d.errorf(path, k, "unknown key")
			}
			d.logger.Debug("ignoring unknown schema key", "file", d.file, "path", path, "key", k)
			continue
		}
		if err := set(d, join(path, k), dst, m[k]); err != nil {
			if de, ok := err.(*DecodeError); ok {
				return de
			}
			return &DecodeError{File: d.file, Path: path, Key: k, Cause: err}
		}
	}
	return nil
}

func (d *decoder) schema(v any) (*avro.Schema, error) {
	m, ok := asMap(v)
	if !ok {
		return nil, d.errorf("", "", "expected object at document root, got %T", v)
	}
	s := &avro.Schema{}
	if err := apply(d, "", m, schemaKeys, s); err != nil {
		return nil, err
	}
	return s, nil
}

// typeRef classifies v into one of the three type shapes.
func (d *decoder) typeRef(path string, v any) (avro.TypeRef, error) {
	switch v := v.(type) {
	case nil:
		return avro.TypeRef{}, nil
	case string:
		return avro.Primitive(v), nil
	case []any:
		if len(v) == 0 {
			return avro.TypeRef{}, d.errorf(path, "", "empty union")
		}
		branches := make([]*avro.Type, len(v))
		for i, b := range v {
			bp := fmt.Sprintf("%s[%d]", path, i)
			switch b := b.(type) {
			case string:
				t := avro.NewType()
				t.Type = b
				branches[i] = t
			default:
				m, ok := asMap(b)
				if !ok {
					return avro.TypeRef{}, d.errorf(bp, "", "union branch must be a type name or object, got %T", b)
				}
				t, err := d.typ(bp, m)
				if err != nil {
					return avro.TypeRef{}, err
				}
				branches[i] = t
			}
		}
		return avro.Union(branches...), nil
	default:
		m, ok := asMap(v)
		if !ok {
			return avro.TypeRef{}, d.errorf(path, "", "type must be a name, object or union, got %T", v)
		}
		t, err := d.typ(path, m)
		if err != nil {
			return avro.TypeRef{}, err
		}
		return avro.Object(t), nil
	}
}

func (d *decoder) typ(path string, m map[string]any) (*avro.Type, error) {
	t := avro.NewType()
	if err := apply(d, path, m, typeKeys, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (d *decoder) fields(path string, v any) ([]*avro.Field, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, d.errorf(path, "", "expected list of fields, got %T", v)
	}
	fields := make([]*avro.Field, 0, len(list))
	for i, e := range list {
		fp := fmt.Sprintf("%s[%d]", path, i)
		m, ok := asMap(e)
		if !ok {
			return nil, d.errorf(fp, "", "expected field object, got %T", e)
		}
		f := avro.NewField("", avro.TypeRef{})
		if err := apply(d, fp, m, fieldKeys, f); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func (d *decoder) transformations(path string, v any) ([]*avro.Transformation, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, d.errorf(path, "", "expected list of transformations, got %T", v)
	}
	trs := make([]*avro.Transformation, 0, len(list))
	for i, e := range list {
		tp := fmt.Sprintf("%s[%d]", path, i)
		m, ok := asMap(e)
		if !ok {
			return nil, d.errorf(tp, "", "expected transformation object, got %T", e)
		}
		tr := &avro.Transformation{}
		if err := apply(d, tp, m, transformationKeys, tr); err != nil {
			return nil, err
		}
		trs = append(trs, tr)
	}
	return trs, nil
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// asMap accepts both JSON objects and YAML mappings.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[fmt.Sprint(k)] = e
		}
		return out, true
	default:
		return nil, false
	}
}

func asBool(v any) (bool, error) {
	switch v.(type) {
	case bool, string:
		return cast.ToBoolE(v)
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

// asInt accepts any integral number. Fractions and out of range values
// are rejected rather than truncated.
func asInt(v any) (int64, error) {
	switch v := v.(type) {
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", v)
		}
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, fmt.Errorf("expected integer, got %v", v)
		}
	case json.Number:
		if _, err := v.Int64(); err != nil {
			return 0, fmt.Errorf("expected integer, got %s", v)
		}
		return cast.ToInt64E(v.String())
	case int, int64, string:
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
	return cast.ToInt64E(v)
}

// normalize converts decoder specific scalars into plain Go values.
func normalize(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case int:
		return int64(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalize(e)
		}
		return out
	case map[string]any, map[any]any:
		m, _ := asMap(v)
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[k] = normalize(e)
		}
		return out
	default:
		return v
	}
}

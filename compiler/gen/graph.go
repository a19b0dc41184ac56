package gen

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/xjoin/schema/avro"
)

// Graph holds the descriptor trees of a set of schemas.
// A Graph is read-only once NewGraph returns.
type Graph struct {
	Config *Config
	Nodes  []*Node
}

// Node is one schema and its resolved field descriptors.
type Node struct {
	// Schema is the node's private copy of the loaded schema.
	Schema *avro.Schema
	Name   string
	Fields []*Descriptor
}

// Descriptor is the resolved view of a single field.
type Descriptor struct {
	avro.FieldTypes

	Name     string        `json:"name" msgpack:"name"`
	Path     string        `json:"path" msgpack:"path"`
	Default  any           `json:"default,omitempty" msgpack:"default,omitempty"`
	Index    bool          `json:"index" msgpack:"index"`
	Children []*Descriptor `json:"children,omitempty" msgpack:"children,omitempty"`
}

// HasChildren reports whether the descriptor has nested descriptors.
func (d *Descriptor) HasChildren() bool {
	return len(d.Children) > 0
}

// NewGraph validates the schemas and builds their descriptors. Each schema
// is copied first, so the caller's values are never modified.
func NewGraph(c *Config, schemas ...*avro.Schema) (*Graph, error) {
	if c == nil {
		return nil, NewConfigError("Config", nil, "config cannot be nil")
	}
	g := &Graph{Config: c}
	resolver := avro.Resolver{InputName: c.InputName}
	overrides, err := parseEnumerations(c.Enumerations)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(schemas))
	for _, s := range schemas {
		if s == nil {
			continue
		}
		s = s.Clone()
		if s.Name == "" {
			return nil, NewSchemaError("", "", "", avro.ErrMissingSchemaName)
		}
		if seen[s.Name] {
			return nil, NewSchemaError(s.Name, "", "duplicate schema name", nil)
		}
		seen[s.Name] = true
		for _, p := range overrides[s.Name] {
			if !setEnumeration(s.Fields, p) {
				return nil, NewConfigError("Enumerations", s.Name+"."+strings.Join(p, "."), "no such field")
			}
			c.logger().Info("enumeration enabled", "schema", s.Name, "field", strings.Join(p, "."))
		}
		delete(overrides, s.Name)
		if err := validate(s); err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, &Node{
			Schema: s,
			Name:   s.Name,
			Fields: describe(resolver, "", s.Fields),
		})
	}
	for name := range overrides {
		return nil, NewConfigError("Enumerations", name, "no such schema")
	}
	return g, nil
}

// Node returns the node with the given schema name, or nil.
func (g *Graph) Node(name string) *Node {
	for _, n := range g.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// Lookup returns the descriptor at the dotted field path, or nil.
func (n *Node) Lookup(path string) *Descriptor {
	fields := n.Fields
	var d *Descriptor
	for _, name := range strings.Split(path, ".") {
		i := slices.IndexFunc(fields, func(d *Descriptor) bool { return d.Name == name })
		if i < 0 {
			return nil
		}
		d = fields[i]
		fields = d.Children
	}
	return d
}

// Walk visits the node's descriptors depth-first in document order.
func (n *Node) Walk(fn func(*Descriptor) error) error {
	return walkDescriptors(n.Fields, fn)
}

func walkDescriptors(ds []*Descriptor, fn func(*Descriptor) error) error {
	for _, d := range ds {
		if err := fn(d); err != nil {
			return err
		}
		if err := walkDescriptors(d.Children, fn); err != nil {
			return err
		}
	}
	return nil
}

func describe(r avro.Resolver, parent string, fields []*avro.Field) []*Descriptor {
	ds := make([]*Descriptor, 0, len(fields))
	for _, f := range fields {
		p := f.Name
		if parent != "" {
			p = parent + "." + f.Name
		}
		ds = append(ds, &Descriptor{
			FieldTypes: r.Resolve(f),
			Name:       f.Name,
			Path:       p,
			Default:    f.Default,
			Index:      f.XJoinIndex,
			Children:   describe(r, p, f.Children()),
		})
	}
	return ds
}

// validate checks every field of s, reporting the first failure with its path.
func validate(s *avro.Schema) error {
	return avro.Walk(s.Fields, func(path []string, f *avro.Field) error {
		if err := avro.Validate(f); err != nil {
			return NewSchemaError(s.Name, strings.Join(path, "."), "", err)
		}
		return nil
	})
}

func parseEnumerations(paths []string) (map[string][][]string, error) {
	m := make(map[string][][]string)
	for _, p := range paths {
		parts := strings.Split(p, ".")
		if len(parts) < 2 || slices.Contains(parts, "") {
			return nil, NewConfigError("Enumerations", p, "path must be <schema>.<field>")
		}
		m[parts[0]] = append(m[parts[0]], parts[1:])
	}
	return m, nil
}

// setEnumeration replaces the field at path with an enumeration copy.
// fields belongs to the graph's private schema copy.
func setEnumeration(fields []*avro.Field, path []string) bool {
	for i, f := range fields {
		if f.Name != path[0] {
			continue
		}
		if len(path) == 1 {
			fields[i] = avro.SetEnumeration(f, true)
			return true
		}
		return setEnumeration(f.Children(), path[1:])
	}
	return false
}

// ValidationErrors collects every invalid field of the schemas instead of
// stopping at the first one. It returns nil when all fields are valid.
func ValidationErrors(schemas ...*avro.Schema) error {
	var errs []error
	for _, s := range schemas {
		if s == nil {
			continue
		}
		_ = avro.Walk(s.Fields, func(path []string, f *avro.Field) error {
			if err := avro.Validate(f); err != nil {
				errs = append(errs, NewSchemaError(s.Name, strings.Join(path, "."), "", err))
			}
			return nil
		})
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d invalid fields: %w", ErrInvalidSchema, len(errs), errors.Join(errs...))
}

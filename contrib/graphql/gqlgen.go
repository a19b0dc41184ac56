package graphql

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/syssam/xjoin/schema/avro"
)

// gqlgen types the custom scalars are bound to.
const (
	gqlgenMap    = "github.com/99designs/gqlgen/graphql.Map"
	gqlgenString = "github.com/99designs/gqlgen/graphql.String"
)

// scalarBindings binds Object (nested json documents) to graphql.Map and
// Reference to graphql.String.
var scalarBindings = []struct{ typ, model string }{
	{avro.GraphQLObject, gqlgenMap},
	{avro.GraphQLReference, gqlgenString},
}

// GQLGenConfig is the part of gqlgen.yml the extension reads. Keys it does
// not model are dropped by SaveGQLGenConfig; use UpdateGQLGenConfig to edit
// an existing file.
type GQLGenConfig struct {
	SchemaFilename StringList              `yaml:"schema,omitempty"`
	Exec           PackageConfig           `yaml:"exec,omitempty"`
	Model          PackageConfig           `yaml:"model,omitempty"`
	Resolver       ResolverConfig          `yaml:"resolver,omitempty"`
	Autobind       []string                `yaml:"autobind,omitempty"`
	Models         map[string]TypeMapEntry `yaml:"models,omitempty"`

	OmitSliceElementPointers bool `yaml:"omit_slice_element_pointers,omitempty"`
	OmitGetters              bool `yaml:"omit_getters,omitempty"`
	NullableInputOmittable   bool `yaml:"nullable_input_omittable,omitempty"`
}

// PackageConfig locates a generated gqlgen file.
type PackageConfig struct {
	Filename string `yaml:"filename,omitempty"`
	Package  string `yaml:"package,omitempty"`
}

// ResolverConfig configures resolver generation.
type ResolverConfig struct {
	Filename         string `yaml:"filename,omitempty"`
	Package          string `yaml:"package,omitempty"`
	Layout           string `yaml:"layout,omitempty"`
	DirName          string `yaml:"dir,omitempty"`
	FilenameTemplate string `yaml:"filename_template,omitempty"`
}

// TypeMapEntry binds a GraphQL type to Go models.
type TypeMapEntry struct {
	Model  StringList              `yaml:"model,omitempty"`
	Fields map[string]TypeMapField `yaml:"fields,omitempty"`
}

// TypeMapField binds a single GraphQL field.
type TypeMapField struct {
	Resolver  bool   `yaml:"resolver,omitempty"`
	FieldName string `yaml:"fieldName,omitempty"`
}

// StringList is a YAML value written either as a string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", node.Kind)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// LoadGQLGenConfig reads a gqlgen.yml. A missing file yields an empty config.
func LoadGQLGenConfig(path string) (*GQLGenConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &GQLGenConfig{Models: make(map[string]TypeMapEntry)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read gqlgen config: %w", err)
	}
	var cfg GQLGenConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse gqlgen config: %w", err)
	}
	if cfg.Models == nil {
		cfg.Models = make(map[string]TypeMapEntry)
	}
	return &cfg, nil
}

// SaveGQLGenConfig writes cfg to path, creating the directory if needed.
func SaveGQLGenConfig(path string, cfg *GQLGenConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal gqlgen config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// AddSchemaPath adds a schema path unless already present.
func (c *GQLGenConfig) AddSchemaPath(path string) {
	if !slices.Contains(c.SchemaFilename, path) {
		c.SchemaFilename = append(c.SchemaFilename, path)
	}
}

// AddAutobind adds an autobind package unless already present.
func (c *GQLGenConfig) AddAutobind(pkg string) {
	if !slices.Contains(c.Autobind, pkg) {
		c.Autobind = append(c.Autobind, pkg)
	}
}

// SetModel binds typeName to modelPath, keeping existing bindings.
func (c *GQLGenConfig) SetModel(typeName string, modelPath string) {
	if c.Models == nil {
		c.Models = make(map[string]TypeMapEntry)
	}
	entry := c.Models[typeName]
	if !slices.Contains(entry.Model, modelPath) {
		entry.Model = append(entry.Model, modelPath)
	}
	c.Models[typeName] = entry
}

// InjectBindings registers the generated schema and binds the custom
// scalars. Both pkg and schemaPath are optional.
func (c *GQLGenConfig) InjectBindings(pkg string, schemaPath string) {
	if schemaPath != "" {
		c.AddSchemaPath(schemaPath)
	}
	if pkg != "" {
		c.AddAutobind(pkg)
	}
	for _, b := range scalarBindings {
		c.SetModel(b.typ, b.model)
	}
}

// UpdateGQLGenConfig applies InjectBindings to the gqlgen.yml at path and
// returns the result. The file is edited as a YAML node tree, so keys and
// comments GQLGenConfig does not model are kept. A missing file is created.
func UpdateGQLGenConfig(path, pkg, schemaPath string) (*GQLGenConfig, error) {
	doc, err := readYAMLDocument(path)
	if err != nil {
		return nil, err
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("parse gqlgen config: expected a mapping at the top level")
	}
	if schemaPath != "" {
		if err := addListItem(root, "schema", schemaPath); err != nil {
			return nil, err
		}
	}
	if pkg != "" {
		if err := addListItem(root, "autobind", pkg); err != nil {
			return nil, err
		}
	}
	models, err := mappingValue(root, "models")
	if err != nil {
		return nil, err
	}
	for _, b := range scalarBindings {
		entry, err := mappingValue(models, b.typ)
		if err != nil {
			return nil, err
		}
		if err := addListItem(entry, "model", b.model); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal gqlgen config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal gqlgen config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, err
	}
	var cfg GQLGenConfig
	if err := doc.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse gqlgen config: %w", err)
	}
	if cfg.Models == nil {
		cfg.Models = make(map[string]TypeMapEntry)
	}
	return &cfg, nil
}

// readYAMLDocument reads path as a document node holding a mapping. A
// missing or empty file yields an empty mapping.
func readYAMLDocument(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read gqlgen config: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse gqlgen config: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{newMapping()}}
	}
	return &doc, nil
}

// mappingValue returns the mapping stored under key in m, adding an empty
// one when the key is missing or null.
func mappingValue(m *yaml.Node, key string) (*yaml.Node, error) {
	v := lookup(m, key)
	switch {
	case v == nil:
		v = newMapping()
		m.Content = append(m.Content, newScalar(key), v)
	case isNull(v):
		*v = *newMapping()
	case v.Kind != yaml.MappingNode:
		return nil, fmt.Errorf("gqlgen config: %q is not a mapping (line %d)", key, v.Line)
	}
	return v, nil
}

// addListItem adds item to the string list stored under key in m unless
// present. A single string value is turned into a list.
func addListItem(m *yaml.Node, key, item string) error {
	v := lookup(m, key)
	switch {
	case v == nil:
		m.Content = append(m.Content, newScalar(key), newSequence(newScalar(item)))
	case isNull(v):
		*v = *newSequence(newScalar(item))
	case v.Kind == yaml.ScalarNode:
		if v.Value != item {
			old := *v
			*v = *newSequence(&old, newScalar(item))
		}
	case v.Kind == yaml.SequenceNode:
		for _, n := range v.Content {
			if n.Kind == yaml.ScalarNode && n.Value == item {
				return nil
			}
		}
		v.Content = append(v.Content, newScalar(item))
	default:
		return fmt.Errorf("gqlgen config: %q is not a string list (line %d)", key, v.Line)
	}
	return nil
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func newScalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func newSequence(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
}

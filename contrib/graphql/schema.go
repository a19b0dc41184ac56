package graphql

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/xjoin/compiler/gen"
	"github.com/syssam/xjoin/schema/avro"
)

// Directive names carrying the descriptor flags into the SDL.
const (
	DirectiveEnumeration = "enumeration"
	DirectivePrimaryKey  = "primaryKey"
)

// Scalars backing the non built-in GraphQL types produced by the resolver.
var scalars = []string{avro.GraphQLObject, avro.GraphQLReference}

// filterInputs defines the shared filter input types.
var filterInputs = []*ast.Definition{
	inputObject(avro.FilterString,
		inputField("eq", ast.NamedType("String", nil)),
		inputField("contains", ast.NamedType("String", nil)),
		inputField("matches", ast.NamedType("String", nil)),
	),
	inputObject(avro.FilterTimestamp,
		inputField("eq", ast.NamedType("String", nil)),
		inputField("lt", ast.NamedType("String", nil)),
		inputField("lte", ast.NamedType("String", nil)),
		inputField("gt", ast.NamedType("String", nil)),
		inputField("gte", ast.NamedType("String", nil)),
	),
	inputObject(avro.FilterBoolean,
		inputField("is", ast.NamedType("Boolean", nil)),
	),
	inputObject(avro.FilterStringArray,
		inputField("contains", ast.NamedType("String", nil)),
		inputField("contains_all", ast.ListType(ast.NamedType("String", nil), nil)),
		inputField("contains_any", ast.ListType(ast.NamedType("String", nil), nil)),
	),
}

// SchemaGenerator renders a descriptor graph as a GraphQL schema document.
type SchemaGenerator struct {
	graph  *gen.Graph
	config Config
	logger *slog.Logger
	title  cases.Caser

	defined map[string]*ast.Definition
	doc     *ast.SchemaDocument
}

// NewSchemaGenerator creates a generator for g.
func NewSchemaGenerator(g *gen.Graph, cfg Config) *SchemaGenerator {
	return &SchemaGenerator{
		graph:  g,
		config: cfg,
		logger: slogFor(g),
		title:  cases.Title(language.Und, cases.NoLower),
	}
}

// Document builds the schema document.
func (s *SchemaGenerator) Document() *ast.SchemaDocument {
	s.defined = make(map[string]*ast.Definition)
	s.doc = &ast.SchemaDocument{}
	for _, name := range []string{DirectiveEnumeration, DirectivePrimaryKey} {
		s.doc.Directives = append(s.doc.Directives, &ast.DirectiveDefinition{
			Name:      name,
			Locations: []ast.DirectiveLocation{ast.LocationFieldDefinition},
			// The formatter reads the source of every directive definition.
			Position: &ast.Position{Src: &ast.Source{}},
		})
	}
	for _, name := range scalars {
		s.define(&ast.Definition{Kind: ast.Scalar, Name: name})
	}
	if s.config.WhereInputs {
		for _, def := range filterInputs {
			s.define(def)
		}
	}
	query := &ast.Definition{Kind: ast.Object, Name: "Query"}
	for _, n := range s.graph.Nodes {
		typeName := s.TypeName(n.Name)
		if len(n.Fields) == 0 {
			s.logger.Warn("skipping schema without fields", "schema", n.Name)
			continue
		}
		s.define(s.objectType(typeName, n))
		f := &ast.FieldDefinition{
			Name: lowerFirst(typeName),
			Type: ast.NonNullListType(ast.NonNullNamedType(typeName, nil), nil),
			Arguments: ast.ArgumentDefinitionList{
				{Name: "limit", Type: ast.NamedType("Int", nil)},
				{Name: "offset", Type: ast.NamedType("Int", nil)},
			},
		}
		if s.config.WhereInputs {
			if filter, ok := s.filterType(typeName, typeName+"Filter", n.Fields); ok {
				f.Arguments = append(ast.ArgumentDefinitionList{
					{Name: "filter", Type: ast.NamedType(filter, nil)},
				}, f.Arguments...)
			}
		}
		query.Fields = append(query.Fields, f)
	}
	if s.config.Query && len(query.Fields) > 0 {
		s.define(query)
	}
	return s.doc
}

// SDL renders the schema document and checks it with the GraphQL validator.
func (s *SchemaGenerator) SDL() (string, error) {
	var buf bytes.Buffer
	if header := s.config.Header; header != "" {
		for _, line := range strings.Split(header, "\n") {
			buf.WriteString("# " + line + "\n")
		}
		buf.WriteString("\n")
	}
	formatter.NewFormatter(&buf).FormatSchemaDocument(s.Document())
	sdl := buf.String()
	if _, err := gqlparser.LoadSchema(&ast.Source{Name: s.config.SchemaPath, Input: sdl}); err != nil {
		return "", fmt.Errorf("xjoin/graphql: invalid generated schema: %w", err)
	}
	return sdl, nil
}

// TypeName returns the GraphQL object type name of a schema,
// e.g. "host_tags" becomes "HostTags".
func (s *SchemaGenerator) TypeName(schema string) string {
	parts := strings.FieldsFunc(schema, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, p := range parts {
		parts[i] = s.title.String(p)
	}
	return strings.Join(parts, "")
}

func (s *SchemaGenerator) define(def *ast.Definition) {
	if _, ok := s.defined[def.Name]; ok {
		s.logger.Debug("graphql type already defined", "type", def.Name)
		return
	}
	s.defined[def.Name] = def
	s.doc.Definitions = append(s.doc.Definitions, def)
}

func (s *SchemaGenerator) objectType(name string, n *gen.Node) *ast.Definition {
	def := &ast.Definition{Kind: ast.Object, Name: name}
	for _, d := range n.Fields {
		f := &ast.FieldDefinition{Name: d.Name, Type: outputType(d.GraphQLType)}
		if d.PrimaryKey {
			t := *f.Type
			t.NonNull = true
			f.Type = &t
			f.Directives = append(f.Directives, &ast.Directive{Name: DirectivePrimaryKey})
		}
		if d.Enumeration {
			f.Directives = append(f.Directives, &ast.Directive{Name: DirectiveEnumeration})
		}
		def.Fields = append(def.Fields, f)
	}
	return def
}

// filterType defines an input type holding the filters of ds. Nested json
// fields get their own input type named by the resolver. It reports false
// when no field of ds is filterable, in which case nothing is defined.
// scope is the object type name the filter belongs to.
func (s *SchemaGenerator) filterType(scope, name string, ds []*gen.Descriptor) (string, bool) {
	def := &ast.Definition{Kind: ast.InputObject, Name: name}
	for _, d := range ds {
		typ := d.FilterType
		if typ == "" {
			continue
		}
		if d.HasChildren() && d.XJoinType == avro.XJoinJSON {
			nested, ok := s.filterType(scope, typ, d.Children)
			if !ok {
				continue
			}
			typ = nested
		}
		def.Fields = append(def.Fields, inputField(d.Name, ast.NamedType(typ, nil)))
	}
	if len(def.Fields) == 0 {
		return "", false
	}
	return s.defineInput(scope, def), true
}

// defineInput defines an input type and returns its name. An input type of
// the same name and fields is shared. On a conflicting shape the name is
// qualified by scope, and then numbered.
func (s *SchemaGenerator) defineInput(scope string, def *ast.Definition) string {
	base := def.Name
	for i := 1; ; i++ {
		prev, ok := s.defined[def.Name]
		if !ok {
			s.define(def)
			return def.Name
		}
		if sameInput(prev, def) {
			return def.Name
		}
		name := scope + base
		if i > 1 || name == def.Name {
			name = fmt.Sprintf("%s%d", scope+base, i)
		}
		s.logger.Warn("graphql input type name conflict", "type", def.Name, "renamed", name)
		def.Name = name
	}
}

func sameInput(a, b *ast.Definition) bool {
	if a.Kind != b.Kind || len(a.Fields) != len(b.Fields) {
		return false
	}
	for i, f := range a.Fields {
		if f.Name != b.Fields[i].Name || f.Type.String() != b.Fields[i].Type.String() {
			return false
		}
	}
	return true
}

// outputType parses a resolved GraphQL type such as "String" or "[String]".
func outputType(t string) *ast.Type {
	if strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]") {
		return ast.ListType(outputType(t[1:len(t)-1]), nil)
	}
	return ast.NamedType(t, nil)
}

func inputObject(name string, fields ...*ast.FieldDefinition) *ast.Definition {
	return &ast.Definition{Kind: ast.InputObject, Name: name, Fields: fields}
}

func inputField(name string, t *ast.Type) *ast.FieldDefinition {
	return &ast.FieldDefinition{Name: name, Type: t}
}

func slogFor(g *gen.Graph) *slog.Logger {
	if g.Config != nil && g.Config.Logger != nil {
		return g.Config.Logger
	}
	return slog.Default()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

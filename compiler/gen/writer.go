package gen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/sync/errgroup"
)

// DefaultHeader is used when the config has no header.
const DefaultHeader = "Code generated by xjoingql, DO NOT EDIT."

// DescriptorWriter writes the descriptor table of a graph as Go source,
// one file per schema plus a shared file, in parallel.
type DescriptorWriter struct {
	graph   *Graph
	outDir  string
	workers int

	mu    sync.Mutex
	files []string
}

// NewDescriptorWriter creates a writer for g into outDir.
func NewDescriptorWriter(g *Graph, outDir string) *DescriptorWriter {
	return &DescriptorWriter{
		graph:   g,
		outDir:  outDir,
		workers: g.Config.workers(),
	}
}

// Files returns the paths written so far.
func (w *DescriptorWriter) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.files...)
}

// GenerateAll writes every file.
func (w *DescriptorWriter) GenerateAll(ctx context.Context) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return NewGenerationError("descriptors", w.outDir, "create output directory", err)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)

	eg.Go(func() error {
		return w.writeFile(ctx, "descriptors.go", w.sharedFile())
	})
	for _, n := range w.graph.Nodes {
		eg.Go(func() error {
			return w.writeFile(ctx, strings.ToLower(goName(n.Name))+"_descriptors.go", w.nodeFile(n))
		})
	}
	return eg.Wait()
}

func (w *DescriptorWriter) writeFile(ctx context.Context, name string, f *jen.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return NewGenerationError("descriptors", name, "render", err)
	}
	full := filepath.Join(w.outDir, name)
	if err := os.WriteFile(full, buf.Bytes(), 0o644); err != nil {
		return NewGenerationError("descriptors", name, "write", err)
	}
	w.mu.Lock()
	w.files = append(w.files, full)
	w.mu.Unlock()
	return nil
}

func (w *DescriptorWriter) newFile() *jen.File {
	f := jen.NewFile(w.graph.Config.PackageName())
	header := w.graph.Config.Header
	if header == "" {
		header = DefaultHeader
	}
	f.HeaderComment(header)
	return f
}

// sharedFile declares the Field type and the schema index.
func (w *DescriptorWriter) sharedFile() *jen.File {
	f := w.newFile()
	f.Comment("Field is the resolved GraphQL view of a schema field.")
	f.Type().Id("Field").Struct(
		jen.Id("Path").String(),
		jen.Id("GraphQLType").String(),
		jen.Id("FilterType").String(),
		jen.Id("Enumeration").Bool(),
		jen.Id("PrimaryKey").Bool(),
		jen.Id("AvroType").String(),
		jen.Id("XJoinType").String(),
		jen.Id("Index").Bool(),
	)
	dict := jen.Dict{}
	for _, n := range w.graph.Nodes {
		dict[jen.Lit(n.Name)] = jen.Id(fieldsVar(n))
	}
	f.Comment("Schemas maps schema names to their field descriptors.")
	f.Var().Id("Schemas").Op("=").Map(jen.String()).Index().Id("Field").Values(dict)
	return f
}

// nodeFile declares the flattened descriptors of one schema.
func (w *DescriptorWriter) nodeFile(n *Node) *jen.File {
	f := w.newFile()
	f.Commentf("%s holds the field descriptors of the %s schema.", fieldsVar(n), n.Name)
	f.Var().Id(fieldsVar(n)).Op("=").Index().Id("Field").ValuesFunc(func(g *jen.Group) {
		_ = n.Walk(func(d *Descriptor) error {
			g.Line().Values(jen.Dict{
				jen.Id("Path"):        jen.Lit(d.Path),
				jen.Id("GraphQLType"): jen.Lit(d.GraphQLType),
				jen.Id("FilterType"):  jen.Lit(d.FilterType),
				jen.Id("Enumeration"): jen.Lit(d.Enumeration),
				jen.Id("PrimaryKey"):  jen.Lit(d.PrimaryKey),
				jen.Id("AvroType"):    jen.Lit(d.AvroType),
				jen.Id("XJoinType"):   jen.Lit(d.XJoinType),
				jen.Id("Index"):       jen.Lit(d.Index),
			})
			return nil
		})
		g.Line()
	})
	return f
}

func fieldsVar(n *Node) string {
	return goName(n.Name) + "Fields"
}

// goName converts a schema name into an exported Go identifier.
func goName(name string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, inflect.Camelize(name))
	if s == "" || unicode.IsDigit(rune(s[0])) {
		s = "S" + s
	}
	return s
}

// Generate writes the descriptor files of g into the configured target.
func Generate(ctx context.Context, g *Graph) error {
	if g.Config == nil || g.Config.Target == "" {
		return NewConfigError("Target", nil, "missing target directory in config")
	}
	w := NewDescriptorWriter(g, g.Config.Target)
	if err := w.GenerateAll(ctx); err != nil {
		return err
	}
	g.Config.logger().Info("descriptors generated", "target", g.Config.Target, "files", len(w.Files()))
	return nil
}

// Render returns the Go source of the descriptor table of a single node.
func Render(g *Graph, name string) ([]byte, error) {
	n := g.Node(name)
	if n == nil {
		return nil, NewSchemaError(name, "", "no such schema", nil)
	}
	var buf bytes.Buffer
	w := NewDescriptorWriter(g, "")
	if err := w.nodeFile(n).Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

package graphql

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/syssam/xjoin/compiler/gen"
)

// DefaultSchemaFilename is the schema file written when WithSchemaPath
// names a directory.
const DefaultSchemaFilename = "xjoin.graphql"

// Config holds the GraphQL generation settings.
type Config struct {
	// SchemaPath is the output file of the generated SDL.
	SchemaPath string
	// ConfigPath is the gqlgen.yml updated after generation. Empty disables it.
	ConfigPath string
	// Autobind is the Go package added to the gqlgen autobind list,
	// usually the descriptor package.
	Autobind string
	// Header is written as a comment block at the top of the SDL.
	Header string
	// WhereInputs enables the filter input types.
	WhereInputs bool
	// Query enables the Query root type.
	Query bool
}

// SchemaHook is called with the generated SDL before it is written and may
// replace it.
type SchemaHook func(g *gen.Graph, sdl string) (string, error)

// Extension writes the GraphQL schema of a descriptor graph and keeps the
// gqlgen configuration pointing at it.
//
// Usage:
//
//	ex, err := graphql.NewExtension(
//	    graphql.WithConfigPath("./gqlgen.yml"),
//	    graphql.WithSchemaPath("./graph/xjoin.graphql"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = ex.Generate(ctx, g)
type Extension struct {
	config Config

	// gqlgenConfig is the gqlgen.yml content after the last update.
	gqlgenConfig *GQLGenConfig

	schemaHooks []SchemaHook
}

// ExtensionOption is a function that configures the Extension.
type ExtensionOption func(*Extension) error

// NewExtension creates a new GraphQL extension with the given options.
func NewExtension(opts ...ExtensionOption) (*Extension, error) {
	ex := &Extension{
		config: Config{
			SchemaPath:  DefaultSchemaFilename,
			Header:      gen.DefaultHeader,
			WhereInputs: true,
			Query:       true,
		},
	}
	for _, opt := range opts {
		if err := opt(ex); err != nil {
			return nil, err
		}
	}
	return ex, nil
}

// Config returns the GraphQL configuration.
func (e *Extension) Config() Config {
	return e.config
}

// GQLGenConfig returns the gqlgen configuration written by the last
// Generate, if any.
func (e *Extension) GQLGenConfig() *GQLGenConfig {
	return e.gqlgenConfig
}

// Generate writes the schema of g to the configured path and, when a gqlgen
// config path is set, registers the schema and scalar bindings in it.
func (e *Extension) Generate(ctx context.Context, g *gen.Graph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := e.config
	if cfg.Autobind == "" && g.Config != nil {
		cfg.Autobind = g.Config.Package
	}
	sdl, err := NewSchemaGenerator(g, cfg).SDL()
	if err != nil {
		return err
	}
	for _, hook := range e.schemaHooks {
		if sdl, err = hook(g, sdl); err != nil {
			return fmt.Errorf("xjoin/graphql: schema hook: %w", err)
		}
	}
	if dir := filepath.Dir(cfg.SchemaPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("xjoin/graphql: create schema directory: %w", err)
		}
	}
	if err := os.WriteFile(cfg.SchemaPath, []byte(sdl), 0o644); err != nil {
		return fmt.Errorf("xjoin/graphql: write schema: %w", err)
	}
	logger := slogFor(g)
	logger.Info("graphql schema written", "path", cfg.SchemaPath, "schemas", len(g.Nodes))

	if cfg.ConfigPath == "" {
		return nil
	}
	schemaPath, err := relativeTo(cfg.ConfigPath, cfg.SchemaPath)
	if err != nil {
		return err
	}
	gc, err := UpdateGQLGenConfig(cfg.ConfigPath, cfg.Autobind, schemaPath)
	if err != nil {
		return fmt.Errorf("xjoin/graphql: update %q: %w", cfg.ConfigPath, err)
	}
	e.gqlgenConfig = gc
	logger.Info("gqlgen config updated", "path", cfg.ConfigPath)
	return nil
}

// relativeTo expresses target relative to the directory holding config,
// which is how gqlgen resolves schema paths.
func relativeTo(config, target string) (string, error) {
	base, err := filepath.Abs(filepath.Dir(config))
	if err != nil {
		return "", fmt.Errorf("xjoin/graphql: %w", err)
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("xjoin/graphql: %w", err)
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return "", fmt.Errorf("xjoin/graphql: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// WithSchemaPath sets the output path of the GraphQL schema.
// The path can be either a directory or a file path:
//   - "graph/" or "graph" -> outputs to graph/xjoin.graphql
//   - "graph/hosts.graphql" -> outputs to graph/hosts.graphql
func WithSchemaPath(schemaPath string) ExtensionOption {
	return func(e *Extension) error {
		if schemaPath == "" {
			return fmt.Errorf("xjoin/graphql: schema path must not be empty")
		}
		if ext := filepath.Ext(schemaPath); ext == ".graphql" || ext == ".graphqls" {
			e.config.SchemaPath = schemaPath
		} else {
			e.config.SchemaPath = filepath.Join(schemaPath, DefaultSchemaFilename)
		}
		return nil
	}
}

// WithConfigPath sets the path of the gqlgen.yml to update. A missing
// file is created on the first Generate.
func WithConfigPath(path string) ExtensionOption {
	return func(e *Extension) error {
		e.config.ConfigPath = path
		return nil
	}
}

// WithAutobind sets the package added to the gqlgen autobind list.
// Defaults to the descriptor package of the graph.
func WithAutobind(pkg string) ExtensionOption {
	return func(e *Extension) error {
		e.config.Autobind = pkg
		return nil
	}
}

// WithHeader sets the comment block of the generated schema.
func WithHeader(header string) ExtensionOption {
	return func(e *Extension) error {
		e.config.Header = header
		return nil
	}
}

// WithWhereInputs enables or disables the filter input types. Default is true.
func WithWhereInputs(enabled bool) ExtensionOption {
	return func(e *Extension) error {
		e.config.WhereInputs = enabled
		return nil
	}
}

// WithQuery enables or disables the Query root type. Default is true.
func WithQuery(enabled bool) ExtensionOption {
	return func(e *Extension) error {
		e.config.Query = enabled
		return nil
	}
}

// WithConfig sets the full GraphQL configuration.
// Prefer using individual options instead.
func WithConfig(cfg Config) ExtensionOption {
	return func(e *Extension) error {
		e.config = cfg
		return nil
	}
}

// WithSchemaHook adds hooks that run on the generated SDL, in order.
func WithSchemaHook(hooks ...SchemaHook) ExtensionOption {
	return func(e *Extension) error {
		e.schemaHooks = append(e.schemaHooks, hooks...)
		return nil
	}
}

// xjoingql resolves xjoin-annotated Avro schemas into GraphQL field
// descriptors and a GraphQL schema.
//
//	xjoingql -out ./xjoindesc -pkg example.com/app/xjoindesc \
//	    -schema ./graph/xjoin.graphql -gqlgen ./gqlgen.yml \
//	    -enum hosts.display_name ./schemas
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/syssam/xjoin/compiler/gen"
	"github.com/syssam/xjoin/compiler/load"
	"github.com/syssam/xjoin/contrib/graphql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "xjoingql: %v\n", err)
		os.Exit(1)
	}
}

// options holds the parsed command line.
type options struct {
	out      string
	pkg      string
	schema   string
	gqlgen   string
	enums    stringList
	watch    bool
	strict   bool
	noInputs bool
	workers  int
	verbose  bool
	inputs   []string
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			*s = append(*s, p)
		}
	}
	return nil
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("xjoingql", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.out, "out", "xjoindesc", "output directory of the generated descriptors")
	fs.StringVar(&o.pkg, "pkg", "", "import path of the generated descriptor package")
	fs.StringVar(&o.schema, "schema", "", "output path of the GraphQL schema, empty to skip it")
	fs.StringVar(&o.gqlgen, "gqlgen", "", "gqlgen.yml to register the schema in")
	fs.Var(&o.enums, "enum", "enable enumeration on a field, e.g. hosts.display_name (repeatable)")
	fs.BoolVar(&o.watch, "watch", false, "regenerate when the input files change")
	fs.BoolVar(&o.strict, "strict", false, "reject unknown schema keys")
	fs.BoolVar(&o.noInputs, "no-filters", false, "omit the filter input types from the GraphQL schema")
	fs.IntVar(&o.workers, "workers", 0, "number of files loaded and written concurrently")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: xjoingql [flags] schema-file-or-dir...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	o.inputs = fs.Args()
	if len(o.inputs) == 0 {
		fs.Usage()
		return nil, errors.New("no input schemas")
	}
	if o.gqlgen != "" && o.schema == "" {
		return nil, errors.New("-gqlgen requires -schema")
	}
	return o, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	g, err := newGenerator(o, logger)
	if err != nil {
		return err
	}
	if err := g.Run(ctx); err != nil {
		return err
	}
	if !o.watch {
		return nil
	}
	return g.Watch(ctx)
}

// generator runs one load, resolve and write cycle per call.
type generator struct {
	opts   *options
	logger *slog.Logger
	loader *load.Loader
	genOpt []gen.Option
	ext    *graphql.Extension
	snaps  *gen.Snapshots
	// names of the schemas written by the last successful run.
	names []string
}

func newGenerator(o *options, logger *slog.Logger) (*generator, error) {
	loadOpts := []load.Option{load.WithLogger(logger)}
	genOpts := []gen.Option{gen.WithTarget(o.out), gen.WithLogger(logger)}
	if o.strict {
		loadOpts = append(loadOpts, load.WithStrict())
	}
	if o.workers > 0 {
		loadOpts = append(loadOpts, load.WithWorkers(o.workers))
		genOpts = append(genOpts, gen.WithWorkers(o.workers))
	}
	if o.pkg != "" {
		genOpts = append(genOpts, gen.WithPackage(o.pkg))
	}
	if len(o.enums) > 0 {
		genOpts = append(genOpts, gen.WithEnumerations(o.enums...))
	}
	// Fail on bad options before the first load.
	if _, err := gen.NewConfig(genOpts...); err != nil {
		return nil, err
	}
	g := &generator{
		opts:   o,
		logger: logger,
		loader: load.New(loadOpts...),
		genOpt: genOpts,
		snaps:  gen.NewSnapshots(nil),
	}
	if o.schema != "" {
		extOpts := []graphql.ExtensionOption{
			graphql.WithSchemaPath(o.schema),
			graphql.WithWhereInputs(!o.noInputs),
		}
		if o.gqlgen != "" {
			extOpts = append(extOpts, graphql.WithConfigPath(o.gqlgen))
		}
		ext, err := graphql.NewExtension(extOpts...)
		if err != nil {
			return nil, err
		}
		g.ext = ext
	}
	return g, nil
}

// Run regenerates the output. Nothing is written when no schema changed
// since the previous run of the same generator.
func (g *generator) Run(ctx context.Context) error {
	files, err := expand(g.opts.inputs)
	if err != nil {
		return err
	}
	schemas, err := g.loader.LoadFiles(ctx, files...)
	if err != nil {
		return err
	}
	cfg, err := gen.NewConfig(g.genOpt...)
	if err != nil {
		return err
	}
	graph, err := gen.NewGraph(cfg, schemas...)
	if err != nil {
		return err
	}
	changed, err := g.snaps.Changed(ctx, graph)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(graph.Nodes))
	for _, n := range graph.Nodes {
		names = append(names, n.Name)
	}
	slices.Sort(names)
	if len(changed) == 0 && slices.Equal(names, g.names) {
		g.logger.Info("schemas unchanged, skipping generation", "schemas", len(names))
		return nil
	}
	for _, n := range changed {
		g.logger.Debug("schema changed", "schema", n.Name)
	}
	if err := g.write(ctx, graph); err != nil {
		// Forget the snapshots so the next run retries every schema.
		if cerr := g.snaps.Cache.Clear(ctx); cerr != nil {
			g.logger.Warn("clearing snapshots failed", "error", cerr)
		}
		g.names = nil
		return err
	}
	g.names = names
	return nil
}

func (g *generator) write(ctx context.Context, graph *gen.Graph) error {
	if err := gen.Generate(ctx, graph); err != nil {
		return err
	}
	if g.ext != nil {
		return g.ext.Generate(ctx, graph)
	}
	return nil
}

// expand replaces directories by the schema files they contain.
func expand(inputs []string) ([]string, error) {
	var files []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, in)
			continue
		}
		entries, err := os.ReadDir(in)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if _, err := load.FormatOf(e.Name()); err == nil {
				files = append(files, filepath.Join(in, e.Name()))
			}
		}
	}
	slices.Sort(files)
	files = slices.Compact(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no schema files in %s", strings.Join(inputs, ", "))
	}
	return files, nil
}

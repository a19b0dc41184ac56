// Package load reads Avro schema documents carrying xjoin and Kafka Connect
// extensions and turns them into the avro object model.
//
// Every "type" value is classified as a primitive name, a nested type object
// or a union list before the matching variant is constructed, and every
// dotted wire key (xjoin.type, connect.version, ...) is mapped to its entity
// field through a static table. Each nested type is decoded into a fresh
// value, so no two fields share a Type.
package load

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/syssam/xjoin/schema/avro"
)

// Format is the encoding of a schema document.
type Format int

// Supported document formats.
const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatOf returns the format of a file from its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".avsc":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("xjoin/load: unsupported schema file extension %q", filepath.Ext(path))
	}
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithStrict makes unknown wire keys a decode error instead of a debug log.
func WithStrict() Option {
	return func(l *Loader) {
		l.strict = true
	}
}

// WithWorkers limits the number of files decoded concurrently by LoadFiles.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// Loader decodes schema documents. It is safe for concurrent use.
type Loader struct {
	logger  *slog.Logger
	strict  bool
	workers int
}

// New returns a Loader configured with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{
		logger:  slog.Default(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Decode decodes a single document.
func (l *Loader) Decode(data []byte, format Format) (*avro.Schema, error) {
	return l.decode("", data, format)
}

func (l *Loader) decode(file string, data []byte, format Format) (*avro.Schema, error) {
	var doc any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, &DecodeError{File: file, Message: "parse json", Cause: err}
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &DecodeError{File: file, Message: "parse yaml", Cause: err}
		}
	default:
		return nil, &DecodeError{File: file, Message: fmt.Sprintf("unsupported format %s", format)}
	}
	d := &decoder{file: file, strict: l.strict, logger: l.logger}
	s, err := d.schema(doc)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("schema decoded", "file", file, "schema", s.FullName(), "fields", len(s.Fields))
	return s, nil
}

// LoadFile reads and decodes the document at path.
func (l *Loader) LoadFile(path string) (*avro.Schema, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("xjoin/load: read schema: %w", err)
	}
	return l.decode(path, data, format)
}

// LoadFiles decodes the documents at paths concurrently. The result is in
// the order of paths; the first failure cancels the remaining work.
func (l *Loader) LoadFiles(ctx context.Context, paths ...string) ([]*avro.Schema, error) {
	schemas := make([]*avro.Schema, len(paths))
	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(l.workers)
	for i, path := range paths {
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := l.LoadFile(path)
			if err != nil {
				return err
			}
			schemas[i] = s
			return nil
		})
	}
	if err := errg.Wait(); err != nil {
		return nil, err
	}
	return schemas, nil
}

// Decode decodes a single document with a default Loader.
func Decode(data []byte, format Format) (*avro.Schema, error) {
	return New().Decode(data, format)
}

// LoadFile reads and decodes a document with a default Loader.
func LoadFile(path string) (*avro.Schema, error) {
	return New().LoadFile(path)
}

// LoadFiles decodes documents concurrently with a default Loader.
func LoadFiles(ctx context.Context, paths ...string) ([]*avro.Schema, error) {
	return New().LoadFiles(ctx, paths...)
}

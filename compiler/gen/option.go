package gen

import (
	"errors"
	"go/token"
	"log/slog"
	"path"
	"runtime"
	"strings"
)

// Config holds the generation settings.
type Config struct {
	// Package is the import path of the generated descriptor package.
	Package string
	// Target is the output directory.
	Target string
	// Header is written at the top of each generated Go file.
	Header string
	// InputName names the filter input type of json fields with children.
	InputName func(string) string
	// Enumerations lists dotted field paths, prefixed with the schema name,
	// whose enumeration flag is forced on before descriptors are built.
	Enumerations []string
	// Logger receives diagnostics.
	Logger *slog.Logger
	// Workers limits parallel file generation.
	Workers int
}

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithPackage sets the output package import path.
// For example: "github.com/org/project/xjoin/descriptors".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		if name := path.Base(pkg); !token.IsIdentifier(name) {
			return NewConfigError("Package", pkg, "last path element must be a valid Go identifier")
		}
		c.Package = pkg
		return nil
	}
}

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithInputName sets the naming function for nested filter input types.
func WithInputName(fn func(string) string) Option {
	return func(c *Config) error {
		if fn == nil {
			return NewConfigError("InputName", nil, "naming function cannot be nil")
		}
		c.InputName = fn
		return nil
	}
}

// WithEnumerations marks fields as enumerations. Each path has the form
// "<schema>.<field>[.<child>...]".
func WithEnumerations(paths ...string) Option {
	return func(c *Config) error {
		for _, p := range paths {
			if !strings.Contains(p, ".") {
				return NewConfigError("Enumerations", p, "path must be <schema>.<field>")
			}
		}
		c.Enumerations = append(c.Enumerations, paths...)
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = logger
		return nil
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "must be positive")
		}
		c.Workers = n
		return nil
	}
}

// PackageName returns the Go package name of the generated package.
func (c *Config) PackageName() string {
	if c.Package == "" {
		return "descriptors"
	}
	return path.Base(c.Package)
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Config) workers() int {
	if c.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Package gen drives artifact generation: it holds the run configuration,
// the generator contract implemented by the emitters, the batch scheduler
// that fans generation out across entities, and the artifact writer.
package gen

import (
	"go.uber.org/zap"

	"github.com/dtoforge/dtoforge"
	"github.com/dtoforge/dtoforge/schema/operation"
)

// DefaultConcurrency is the batch size used when none is configured.
const DefaultConcurrency = 8

// Config holds the configuration of one generation run.
type Config struct {
	// Target is the output directory for generated artifacts.
	Target string
	// Package is the package name of the generated files.
	Package string
	// Header is an extra file header comment, empty for the default.
	Header string
	// Kinds are the requested generator kinds, in order.
	Kinds []operation.Kind
	// Concurrency bounds the number of entities processed per batch.
	Concurrency int
	// Cache overrides the global memoization store for the run.
	Cache dtoforge.Cache
	// Logger used by the scheduler and writer. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Option configures a generation run.
type Option func(*Config) error

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

// WithPackage sets the output package name.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithHeader sets the file header comment added at the top of each
// generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithKinds sets the requested generator kinds from their names.
func WithKinds(names ...string) Option {
	return func(c *Config) error {
		kinds, err := operation.ParseKinds(names)
		if err != nil {
			return NewConfigError("Kinds", names, err.Error())
		}
		c.Kinds = kinds
		return nil
	}
}

// WithConcurrency sets the batch size. It must be a positive integer.
func WithConcurrency(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Concurrency", n, "concurrency must be positive")
		}
		c.Concurrency = n
		return nil
	}
}

// WithCache sets the global memoization store used by the resolver.
func WithCache(cache dtoforge.Cache) Option {
	return func(c *Config) error {
		c.Cache = cache
		return nil
	}
}

// WithLogger sets the logger used by the scheduler and writer.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) error {
		if l != nil {
			c.Logger = l
		}
		return nil
	}
}

// NewConfig builds a Config from options, applying defaults.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Package:     "dto",
		Kinds:       operation.AllKinds(),
		Concurrency: DefaultConcurrency,
		Logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

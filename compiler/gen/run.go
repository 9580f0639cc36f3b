package gen

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dtoforge/dtoforge/compiler/load"
	"github.com/dtoforge/dtoforge/compiler/resolve"
)

// SharedGenerator emits an artifact that exists once per run rather than
// once per entity (e.g. the shared pagination types used by filters).
type SharedGenerator interface {
	Generate(ctx context.Context) (*Artifact, error)
}

// Runner ties one generation run together: registry construction over the
// manifest, resolution, shared-artifact emission and the batch scheduler.
type Runner struct {
	cfg       *Config
	resolver  *resolve.Resolver
	scheduler *Scheduler
	writer    *Writer
	shared    []SharedGenerator
}

// NewRunner builds a runner for the manifest. Generators are supplied by
// the emitter package (the emitters import this package for the Generator
// contract, so they cannot be constructed here without an import cycle).
func NewRunner(cfg *Config, m *load.Manifest, generators []Generator, shared []SharedGenerator) (*Runner, error) {
	if cfg.Target == "" {
		return nil, NewConfigError("Target", nil, "missing target directory in config")
	}
	registry := resolve.BuildRegistry(m.Entities)
	for _, warn := range registry.Warnings() {
		cfg.Logger.Warn("registry diagnostic", zap.String("warning", warn))
	}
	var opts []resolve.Option
	if cfg.Cache != nil {
		opts = append(opts, resolve.WithCache(cfg.Cache))
	}
	resolver := resolve.New(registry, opts...)
	writer := NewWriter(cfg.Target, cfg.Logger)
	scheduler, err := NewScheduler(resolver, generators, writer, cfg.Concurrency, cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:       cfg,
		resolver:  resolver,
		scheduler: scheduler,
		writer:    writer,
		shared:    shared,
	}, nil
}

// Resolver returns the run's resolver.
func (r *Runner) Resolver() *resolve.Resolver { return r.resolver }

// Metrics returns the writer metrics of the run so far.
func (r *Runner) Metrics() WriterMetrics { return r.writer.Metrics() }

// Run emits the shared artifacts, then executes the batch scheduler over
// all entities. Shared emission is all-or-nothing (first error aborts,
// there is nothing per-entity to salvage); entity generation is fail-soft
// and reports an aggregate error at the end.
func (r *Runner) Run(ctx context.Context) error {
	logger := r.cfg.Logger.With(zap.String("run_id", uuid.NewString()))
	logger.Info("generation run",
		zap.String("target", r.cfg.Target),
		zap.Int("entities", r.resolver.Registry().Len()),
	)
	if len(r.shared) > 0 {
		eg, ctx := errgroup.WithContext(ctx)
		eg.SetLimit(r.cfg.Concurrency)
		for _, sg := range r.shared {
			sg := sg
			eg.Go(func() error {
				a, err := sg.Generate(ctx)
				if err != nil {
					return err
				}
				return r.writer.Write("", a)
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}
	}
	return r.scheduler.Run(ctx)
}

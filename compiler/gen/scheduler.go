package gen

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dtoforge/dtoforge"
	"github.com/dtoforge/dtoforge/compiler/load"
	"github.com/dtoforge/dtoforge/compiler/resolve"
	"github.com/dtoforge/dtoforge/schema/operation"
)

// resolveKind labels failures that happened while resolving an entity's
// context, before any generator ran for it.
const resolveKind = "resolve"

// Scheduler drives a generation run: it partitions the registry's entities
// into consecutive batches of the configured concurrency, launches one
// task per entity within a batch and one sub-task per generator kind
// within an entity, and joins the whole batch before the next one starts.
// Outstanding sub-tasks are therefore bounded by concurrency × kinds.
//
// Failures are caught at the generator sub-task boundary, recorded and
// never cancel sibling tasks or later batches. One aggregate error is
// raised at the very end if any failure was recorded.
type Scheduler struct {
	resolver   *resolve.Resolver
	generators []Generator
	sink       Sink
	limit      int
	logger     *zap.Logger

	mu       sync.Mutex
	failures []dtoforge.Failure
}

// NewScheduler creates a scheduler over the given resolver and generators.
// The limit must be positive; the logger may be nil.
func NewScheduler(r *resolve.Resolver, generators []Generator, sink Sink, limit int, logger *zap.Logger) (*Scheduler, error) {
	if limit <= 0 {
		return nil, NewConfigError("Concurrency", limit, "concurrency must be positive")
	}
	if sink == nil {
		return nil, NewConfigError("Sink", nil, "no sink set")
	}
	if len(generators) == 0 {
		return nil, NewConfigError("Kinds", nil, "no generators set")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		resolver:   r,
		generators: generators,
		sink:       sink,
		limit:      limit,
		logger:     logger,
	}, nil
}

// Run executes the full generation run over the registry's entities in
// registration order. Every entity that does not fail produces its full
// output even when others fail; if any failure was recorded, Run returns a
// single AggregateError enumerating all of them.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.failures = nil
	s.mu.Unlock()

	entities := s.resolver.Registry().Entities()
	s.logger.Info("generation run started",
		zap.Int("entities", len(entities)),
		zap.Int("kinds", len(s.generators)),
		zap.Int("concurrency", s.limit),
	)
	for start := 0; start < len(entities); start += s.limit {
		end := start + s.limit
		if end > len(entities) {
			end = len(entities)
		}
		s.runBatch(ctx, entities[start:end])
	}

	s.mu.Lock()
	failures := s.failures
	s.mu.Unlock()
	if len(failures) > 0 {
		agg := dtoforge.NewAggregateError(failures)
		s.logger.Warn("generation run finished with failures",
			zap.Int("failed", len(failures)),
			zap.Strings("entities", agg.FailedEntities()),
		)
		return agg
	}
	s.logger.Info("generation run finished")
	return nil
}

// runBatch launches one task per entity and waits for the whole tree of
// sub-tasks to settle before returning.
func (s *Scheduler) runBatch(ctx context.Context, batch []*load.Entity) {
	var wg sync.WaitGroup
	for _, e := range batch {
		wg.Add(1)
		go func(e *load.Entity) {
			defer wg.Done()
			s.runEntity(ctx, e)
		}(e)
	}
	wg.Wait()
}

// runEntity resolves the entity's context once and fans out one sub-task
// per generator kind, waiting for all of them.
func (s *Scheduler) runEntity(ctx context.Context, e *load.Entity) {
	rc, err := s.resolveContext(e)
	if err != nil {
		s.record(e.Name, resolveKind, err)
		return
	}
	var wg sync.WaitGroup
	for _, g := range s.generators {
		wg.Add(1)
		go func(g Generator) {
			defer wg.Done()
			if err := s.runGenerator(ctx, g, rc); err != nil {
				s.record(e.Name, g.Kind().String(), err)
			}
		}(g)
	}
	wg.Wait()
}

// resolveContext resolves the generation context, converting panics into
// recorded failures.
func (s *Scheduler) resolveContext(e *load.Entity) (rc *resolve.Context, err error) {
	defer recoverTo(&err)
	rc, err = s.resolver.Context(e)
	if err != nil {
		return nil, dtoforge.WrapUnknown(err)
	}
	return rc, nil
}

// runGenerator runs one generator sub-task. This is the narrowest failure
// boundary: an error or panic here is recorded for the (entity, kind) pair
// and unrelated artifacts keep generating.
func (s *Scheduler) runGenerator(ctx context.Context, g Generator, rc *resolve.Context) (err error) {
	defer recoverTo(&err)
	a, err := g.Generate(ctx, rc)
	if err != nil {
		return dtoforge.WrapUnknown(err)
	}
	if err := s.sink.Write(rc.Name, a); err != nil {
		return dtoforge.WrapUnknown(err)
	}
	s.logger.Debug("artifact generated",
		zap.String("entity", rc.Name),
		zap.String("kind", g.Kind().String()),
		zap.String("file", a.Filename),
	)
	return nil
}

// record appends one failure under the scheduler's mutex.
func (s *Scheduler) record(entity, kind string, err error) {
	s.mu.Lock()
	s.failures = append(s.failures, dtoforge.Failure{Entity: entity, Kind: kind, Err: err})
	s.mu.Unlock()
	s.logger.Error("generation failed",
		zap.String("entity", entity),
		zap.String("kind", kind),
		zap.Error(err),
	)
}

// recoverTo converts a panic into a wrapped unknown error.
func recoverTo(err *error) {
	if r := recover(); r != nil {
		*err = dtoforge.WrapUnknown(fmt.Errorf("panic: %v", r))
	}
}

// Kinds returns the generator kinds the scheduler runs, in order.
func (s *Scheduler) Kinds() []operation.Kind {
	kinds := make([]operation.Kind, len(s.generators))
	for i, g := range s.generators {
		kinds[i] = g.Kind()
	}
	return kinds
}

// Package orchestrator drives every extraction strategy over a corpus of
// models and classifies each model's outcome.
//
// Models are processed one at a time. A model that fails to load is put in
// the NotRead bucket and skipped. Otherwise every strategy runs to
// completion; if any of them returns an error the model lands in
// NotFullyCached, else in Succeed. No single model or strategy failure
// stops the scan; the context is only consulted between models.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/subgraphdumper/internal/cache"
	"github.com/specialistvlad/subgraphdumper/internal/ctxlog"
	"github.com/specialistvlad/subgraphdumper/internal/ir"
	"github.com/specialistvlad/subgraphdumper/internal/metrics"
	"github.com/specialistvlad/subgraphdumper/internal/subgraph"
)

// Loader reads a model identified by path.
type Loader interface {
	Load(ctx context.Context, path string) (*ir.Graph, error)
}

// ModelLoadError wraps a loader failure.
type ModelLoadError struct {
	Model string
	Err   error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to read model %s: %v", e.Model, e.Err)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}

// Orchestrator runs an ordered list of caches over models.
type Orchestrator struct {
	loader Loader
	caches []cache.Cache
}

// New creates an orchestrator. Caches run in the given order.
func New(loader Loader, caches ...cache.Cache) *Orchestrator {
	return &Orchestrator{loader: loader, caches: caches}
}

// CacheModels processes models in order and returns the status buckets.
//
// The returned error is non-nil when a strategy reported an invariant
// violation (a bug in candidate selection) or when ctx was cancelled; in
// both cases the map still holds every model classified so far.
func (o *Orchestrator) CacheModels(ctx context.Context, models []string, extractBody bool) (StatusMap, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Caching models.", "models", len(models), "caches", len(o.caches), "extract_body", extractBody)

	statuses := make(StatusMap)
	var violations []error
	for i, model := range models {
		if err := ctx.Err(); err != nil {
			logger.Warn("Corpus scan cancelled.", "processed", i, "remaining", len(models)-i)
			return statuses, errors.Join(append(violations, err)...)
		}

		mctx := ctxlog.With(ctx, "model", model, "index", i+1, "total", len(models))
		status, errs := o.cacheModel(mctx, model, extractBody)
		statuses.add(status, model)
		metrics.ModelsTotal.WithLabelValues(status.String()).Inc()
		violations = append(violations, errs...)
	}

	logger.Info("Models cached.",
		Succeed.String(), len(statuses[Succeed]),
		NotFullyCached.String(), len(statuses[NotFullyCached]),
		NotRead.String(), len(statuses[NotRead]),
	)
	return statuses, errors.Join(violations...)
}

// cacheModel classifies a single model. It returns the invariant
// violations raised by its strategies.
func (o *Orchestrator) cacheModel(ctx context.Context, model string, extractBody bool) (ModelCacheStatus, []error) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()
	defer func() { metrics.ModelDuration.Observe(time.Since(start).Seconds()) }()

	g, err := o.loader.Load(ctx, model)
	if err != nil {
		loadErr := &ModelLoadError{Model: model, Err: err}
		logger.Warn("Model skipped.", "error", loadErr)
		return NotRead, nil
	}
	logger.Debug("Model loaded.", "nodes", g.Len())

	status := Succeed
	var violations []error
	for _, c := range o.caches {
		err := runCache(ctx, c, g, model, extractBody)
		if err == nil {
			continue
		}
		status = NotFullyCached
		if errors.Is(err, subgraph.ErrInvariantViolation) {
			logger.Error("Strategy hit an invariant violation.", "cache", c.Name(), "error", err)
			violations = append(violations, fmt.Errorf("model %s: %w", model, err))
			continue
		}
		logger.Warn("Strategy did not fully cache model.", "cache", c.Name(), "error", err)
	}

	logger.Info("Model processed.", "status", status.String(), "duration", time.Since(start))
	return status, violations
}

// runCache shields the scan from a panicking strategy.
func runCache(ctx context.Context, c cache.Cache, g *ir.Graph, model string, extractBody bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cache %s panicked: %v", c.Name(), r)
		}
	}()
	return c.UpdateCache(ctx, g, model, extractBody)
}

package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/subgraphdumper/internal/clone"
	"github.com/specialistvlad/subgraphdumper/internal/ctxlog"
	"github.com/specialistvlad/subgraphdumper/internal/ir"
	"github.com/specialistvlad/subgraphdumper/internal/metrics"
	"github.com/specialistvlad/subgraphdumper/internal/subgraph"
)

// GraphCache runs one Extractor and registers what it finds.
type GraphCache struct {
	builder   *subgraph.Builder
	extractor Extractor
	store     *Store
}

// NewGraphCache wires an extractor to a builder and a store.
func NewGraphCache(builder *subgraph.Builder, extractor Extractor, store *Store) *GraphCache {
	return &GraphCache{builder: builder, extractor: extractor, store: store}
}

// Name returns the extractor name.
func (c *GraphCache) Name() string {
	return c.extractor.Name()
}

// UpdateCache implements Cache.
func (c *GraphCache) UpdateCache(ctx context.Context, model *ir.Graph, modelPath string, extractBody bool) error {
	logger := ctxlog.FromContext(ctx).With("cache", c.Name())
	logger.Debug("Cache update started.", "nodes", model.Len(), "extract_body", extractBody)

	var failures []NodeFailure
	patterns, err := c.extract(ctx, model, extractBody, &failures)
	if err != nil {
		return err
	}
	if f, ok := c.extractor.(Filter); ok {
		before := len(patterns)
		patterns = f.Keep(patterns)
		logger.Debug("Patterns filtered.", "before", before, "after", len(patterns))
	}

	added := 0
	for _, p := range patterns {
		if c.store.Register(p, modelPath) {
			added++
			metrics.CandidatesTotal.WithLabelValues(c.Name(), "accepted").Inc()
		} else {
			metrics.CandidatesTotal.WithLabelValues(c.Name(), "duplicate").Inc()
		}
	}
	logger.Debug("Cache update finished.", "patterns", len(patterns), "new", added, "failures", len(failures))

	if len(failures) > 0 {
		return &PartialExtractionError{Cache: c.Name(), Model: modelPath, Failures: failures}
	}
	return nil
}

// extract builds every candidate of g and, when asked to, of the bodies
// nested in g. Each graph gets its own processed set since node names are
// only unique within one graph.
func (c *GraphCache) extract(ctx context.Context, g *ir.Graph, extractBody bool, failures *[]NodeFailure) ([]*subgraph.Pattern, error) {
	logger := ctxlog.FromContext(ctx).With("cache", c.Name(), "graph", g.Name)
	processed := subgraph.NewProcessedSet()

	var patterns []*subgraph.Pattern
	for _, candidate := range c.extractor.Candidates(g, processed) {
		p, err := c.builder.Build(g, candidate, processed, c.Name())
		switch {
		case err == nil:
			patterns = append(patterns, p)
		case errors.Is(err, subgraph.ErrInsufficientComplexity):
			metrics.CandidatesTotal.WithLabelValues(c.Name(), "too_simple").Inc()
			logger.Debug("Candidate skipped.", "reason", err)
		case errors.Is(err, clone.ErrCloneUnsupported):
			metrics.CandidatesTotal.WithLabelValues(c.Name(), "unsupported").Inc()
			logger.Warn("Candidate could not be extracted.", "error", err)
			*failures = append(*failures, NodeFailure{Nodes: names(candidate), Err: err})
		default:
			metrics.CandidatesTotal.WithLabelValues(c.Name(), "invalid").Inc()
			return nil, fmt.Errorf("%s: graph %s: %w", c.Name(), g.Name, err)
		}
	}

	if !extractBody {
		return patterns, nil
	}
	for _, n := range g.Nodes() {
		for _, body := range n.Bodies {
			logger.Debug("Descending into body.", "node", n.Name, "body", body.Name)
			nested, err := c.extract(ctx, body, extractBody, failures)
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, nested...)
		}
	}
	return patterns, nil
}

func names(nodes []*ir.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

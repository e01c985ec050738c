// Package cache defines the extraction strategies the orchestrator drives
// and the store accepted subgraphs are registered into.
//
// A Cache inspects one loaded model at a time. GraphCache, the bundled
// implementation, asks an Extractor for candidate node sets, turns each
// candidate into a canonical subgraph with subgraph.Builder and registers
// the result in a Store keyed by canonical name.
//
// Error contract of UpdateCache:
//   - candidates that are too simple are skipped silently;
//   - candidates containing an uncloneable operator are skipped, and the
//     run reports a *PartialExtractionError once every other candidate has
//     been processed;
//   - a subgraph.ErrInvariantViolation aborts the run and is returned as is.
package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/subgraphdumper/internal/ir"
)

// Cache is one extraction strategy.
type Cache interface {
	// Name identifies the strategy in logs, reports and artifact paths.
	Name() string

	// UpdateCache extracts subgraphs from model. When extractBody is true
	// the strategy also descends into the bodies of composite operators.
	UpdateCache(ctx context.Context, model *ir.Graph, modelPath string, extractBody bool) error
}

// NodeFailure is a recoverable failure tied to one candidate.
type NodeFailure struct {
	Nodes []string
	Err   error
}

// PartialExtractionError reports that a strategy finished its run but had
// to skip some candidates.
type PartialExtractionError struct {
	Cache    string
	Model    string
	Failures []NodeFailure
}

func (e *PartialExtractionError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("[%s]: %v", strings.Join(f.Nodes, ","), f.Err)
	}
	return fmt.Sprintf("%s: %d candidate(s) of %s could not be extracted: %s", e.Cache, len(e.Failures), e.Model, strings.Join(parts, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *PartialExtractionError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Err
	}
	return out
}

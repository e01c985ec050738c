package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/specialistvlad/subgraphdumper/internal/artifact"
	"github.com/specialistvlad/subgraphdumper/internal/ctxlog"
	"github.com/specialistvlad/subgraphdumper/internal/discovery"
	"github.com/specialistvlad/subgraphdumper/internal/orchestrator"
	"github.com/specialistvlad/subgraphdumper/internal/report"
)

// Run discovers models, caches their subgraphs and writes the artifacts and
// status lists. Status lists are written even when caching fails part way.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger.With("run_id", uuid.NewString()))
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.")

	a.startHealthCheckServer(ctx)
	defer func() {
		err = errors.Join(err, a.closeHealthCheckServer(ctx))
	}()

	found, err := discovery.FindModels(ctx, a.config.InputDirs, a.config.Patterns)
	if err != nil {
		return fmt.Errorf("failed to discover models: %w", err)
	}
	logger.Info("🔎 Models discovered.", "count", len(found.Models), "unreadable", len(found.Unreadable))

	statuses := orchestrator.StatusMap{orchestrator.NotRead: found.Unreadable}
	cached, cacheErr := a.orch.CacheModels(ctx, found.Models, a.config.ExtractBody)
	statuses.Merge(cached)

	if err := report.Write(ctx, a.config.OutputDir, statuses); err != nil {
		return errors.Join(cacheErr, fmt.Errorf("failed to write status report: %w", err))
	}
	if _, err := artifact.NewWriter(a.config.OutputDir).Write(ctx, a.store.Entries()); err != nil {
		return errors.Join(cacheErr, fmt.Errorf("failed to write subgraphs: %w", err))
	}
	if cacheErr != nil {
		return fmt.Errorf("caching finished with errors: %w", cacheErr)
	}

	logger.Info("🏁 Caching finished.", "subgraphs", a.store.Len())
	return nil
}

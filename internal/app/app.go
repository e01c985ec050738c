package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/subgraphdumper/internal/cache"
	"github.com/specialistvlad/subgraphdumper/internal/ctxlog"
	"github.com/specialistvlad/subgraphdumper/internal/orchestrator"
	"github.com/specialistvlad/subgraphdumper/internal/subgraph"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	store      *cache.Store
	caches     []cache.Cache
	orch       *orchestrator.Orchestrator
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and pattern store.
func NewApp(outW io.Writer, cfg *Config, loader orchestrator.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	store := cache.NewStore()
	builder := subgraph.NewBuilder(subgraph.ConvertLargeConstants(cfg.ConstThreshold))

	caches := make([]cache.Cache, 0, len(cfg.Extractors))
	for _, name := range cfg.Extractors {
		extractor, err := cache.NewExtractor(name)
		if err != nil {
			// Config validation already rejected unknown names, so this is a
			// programmer error.
			panic(fmt.Errorf("failed to create extractor: %w", err))
		}
		caches = append(caches, cache.NewGraphCache(builder, extractor, store))
	}
	ctxlog.FromContext(ctx).Debug("Extraction strategies configured.", "extractors", cfg.Extractors)

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		store:  store,
		caches: caches,
		orch:   orchestrator.New(loader, caches...),
	}
}

// Store returns the application's pattern store. This is primarily for testing.
func (a *App) Store() *cache.Store {
	return a.store
}

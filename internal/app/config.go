package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/subgraphdumper/internal/cache"
	"github.com/specialistvlad/subgraphdumper/internal/discovery"
	"github.com/specialistvlad/subgraphdumper/internal/subgraph"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	InputDirs []string // directories scanned for models
	OutputDir string   // subgraphs and status lists are written here
	Patterns  []string // glob patterns selecting model files

	Extractors     []string
	ExtractBody    bool
	ConstThreshold int64 // largest constant in bytes kept as a literal

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.InputDirs) == 0 {
		return nil, errors.New("InputDirs is a required configuration field and cannot be empty")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OutputDir is a required configuration field and cannot be empty")
	}
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = discovery.DefaultPatterns
	}
	if len(cfg.Extractors) == 0 {
		cfg.Extractors = cache.ExtractorNames()
	}
	for _, name := range cfg.Extractors {
		if _, err := cache.NewExtractor(name); err != nil {
			return nil, err
		}
	}
	if cfg.ConstThreshold < 0 {
		return nil, fmt.Errorf("ConstThreshold must not be negative, got %d", cfg.ConstThreshold)
	}
	if cfg.ConstThreshold == 0 {
		cfg.ConstThreshold = subgraph.DefaultConstByteThreshold
	}
	return &cfg, nil
}

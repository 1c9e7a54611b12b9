package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/shadernet/internal/ctxlog"
	"github.com/vk/shadernet/internal/hclgraph"
	"github.com/vk/shadernet/internal/memgraph"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	loader *hclgraph.Loader
}

// NewApp is the constructor for the main application. Results are written
// to outW and logs to logW, so the two can be redirected separately.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	if cfg == nil {
		// Callers always pass a config produced by NewConfig.
		panic("app: nil config")
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		loader: hclgraph.NewLoader(),
	}
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// LoadGraph loads the configured graph files.
func (a *App) LoadGraph(ctx context.Context) (*memgraph.Graph, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Loading graph...", "graph_path", a.config.GraphPath)

	g, err := a.loader.Load(ctx, a.config.GraphPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	a.logger.Info("Graph loaded successfully.", "nodes_found", len(g.Nodes()))
	return g, nil
}

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/dataflowgo/internal/ctxlog"
	"github.com/specialistvlad/dataflowgo/internal/datafile"
	"github.com/specialistvlad/dataflowgo/internal/executor"
	"github.com/specialistvlad/dataflowgo/internal/flow"
	"github.com/specialistvlad/dataflowgo/internal/handlers"
	"github.com/specialistvlad/dataflowgo/internal/hcl_adapter"
	"github.com/specialistvlad/dataflowgo/internal/inmemorystore"
	"github.com/specialistvlad/dataflowgo/internal/statestore"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	handlers   *handlers.Handlers
	flow       *flow.DataFlow
	execOpts   []executor.Option
	store      statestore.Store
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It configures an
// isolated logger, installs the handler modules (the core set when none are
// given), and loads the flow from cfg.FlowPath. Without a state path the
// instance lives in memory for the lifetime of the App.
func NewApp(outW io.Writer, cfg *Config, modules ...handlers.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	h := handlers.New()
	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	h.Install(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "handlers", h.Names())

	df, err := hcl_adapter.NewLoader(h).Load(ctx, cfg.FlowPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load flow: %w", err)
	}
	logger.Debug("Flow loaded.", "flow", df.Name, "target", df.TargetData, "transients", df.Transients())

	var opts []executor.Option
	if cfg.LayerEarlyExit {
		opts = append(opts, executor.WithLayerEarlyExit())
	}

	var store statestore.Store = inmemorystore.New()
	if cfg.StatePath != "" {
		store = datafile.NewFileStore(cfg.StatePath)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		handlers: h,
		flow:     df,
		execOpts: opts,
		store:    store,
	}, nil
}

// Flow returns the loaded flow. This is primarily for testing.
func (app *App) Flow() *flow.DataFlow {
	return app.flow
}

// Handlers returns the handler catalog. This is primarily for testing.
func (app *App) Handlers() *handlers.Handlers {
	return app.handlers
}

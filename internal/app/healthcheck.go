package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/dataflowgo/internal/ctxlog"
)

const healthShutdownTimeout = 5 * time.Second

// healthHandler answers liveness probes with the loaded flow's name.
func (app *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctxlog.FromContext(r.Context()).Debug("Health probe.", "remote_addr", r.RemoteAddr)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK %s\n", app.flow.Name)
}

// stateHandler lists the item names committed for the flow so far.
func (app *App) stateHandler(w http.ResponseWriter, r *http.Request) {
	ds, err := app.store.Load(r.Context(), app.flow.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"flow":  app.flow.Name,
		"items": ds.Names(),
	})
}

// startHealthcheck serves /health and /state for the duration of a run. It is
// a no-op when no port is configured.
func (app *App) startHealthcheck(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	if app.config.HealthcheckPort <= 0 {
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", app.healthHandler)
	mux.HandleFunc("/state", app.stateHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.HealthcheckPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	app.httpServer = srv

	go func() {
		logger.Info("🩺 Healthcheck listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Healthcheck server stopped", "error", err)
		}
	}()
}

func (app *App) stopHealthcheck(ctx context.Context) {
	if app.httpServer == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), healthShutdownTimeout)
	defer cancel()

	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		ctxlog.FromContext(ctx).Error("Healthcheck shutdown failed", "error", err)
	}
	app.httpServer = nil
}

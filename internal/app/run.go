package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/dataflowgo/internal/ctxlog"
	"github.com/specialistvlad/dataflowgo/internal/datafile"
	"github.com/specialistvlad/dataflowgo/internal/eventstream"
	"github.com/specialistvlad/dataflowgo/internal/executor"
	"github.com/specialistvlad/dataflowgo/internal/flow"
	"github.com/specialistvlad/dataflowgo/internal/model"
)

// Run executes the loaded flow once with the delta assembled from the data
// file and assignments. The instance starts from the state store and is
// saved back only when the run succeeds.
func (app *App) Run(ctx context.Context) (*model.ExecutionResponse, error) {
	ctx = ctxlog.WithLogger(ctx, app.logger)
	app.logger.Debug("App.Run method started.")

	app.startHealthcheck(ctx)
	defer app.stopHealthcheck(ctx)

	delta, err := app.buildDelta()
	if err != nil {
		return nil, err
	}

	inst, err := app.restoreInstance(ctx)
	if err != nil {
		return nil, err
	}

	exec := executor.New(nil, app.execOpts...)
	exec.RegisterListener(executor.LogListener{})
	if app.config.EventsURL != "" {
		client, err := eventstream.Dial(ctx, eventstream.ClientConfig{
			URL:                app.config.EventsURL,
			Namespace:          app.config.EventsNamespace,
			InsecureSkipVerify: app.config.EventsInsecure,
			ConnectTimeout:     app.config.EventsConnectTimeout,
		})
		switch {
		case err != nil && app.config.EventsRequired:
			return nil, fmt.Errorf("failed to connect event stream: %w", err)
		case err != nil:
			app.logger.Warn("Event stream unavailable, continuing without it.", "error", err)
		default:
			defer client.Disconnect()
			l := eventstream.NewListener(client)
			l.Required = app.config.EventsRequired
			exec.RegisterListener(l)
		}
	}

	resp, err := exec.RunInstance(ctx, inst, delta)
	if err != nil {
		return nil, fmt.Errorf("execution failed: %w", err)
	}

	for _, name := range resp.Names() {
		d, _ := resp.Get(name)
		app.logger.Info("Produced data.", "name", name, "generated_by", d.GeneratedBy, "value", d.FormatValue())
	}

	if err := app.store.Save(ctx, app.flow.Name, inst.DataSet()); err != nil {
		return nil, fmt.Errorf("failed to save state: %w", err)
	}
	app.logger.Debug("State saved.", "items", inst.DataSet().Len())

	app.logger.Debug("App.Run method finished.")
	return resp, nil
}

// buildDelta merges the data file with the assignments. An assignment
// replaces a file item of the same name.
func (app *App) buildDelta() (model.DataDelta, error) {
	ds := model.NewDataSet()
	if app.config.DataPath != "" {
		fromFile, err := datafile.LoadDelta(app.config.DataPath)
		if err != nil {
			return nil, err
		}
		ds.MergeDelta(fromFile)
	}
	sets, err := datafile.ParseSets(app.config.Sets)
	if err != nil {
		return nil, err
	}
	ds.MergeDelta(sets)
	return model.NewDelta(ds.Items()...), nil
}

func (app *App) restoreInstance(ctx context.Context) (*flow.Instance, error) {
	ds, err := app.store.Load(ctx, app.flow.Name)
	if err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return flow.NewInstance(app.flow), nil
	}
	app.logger.Debug("State restored.", "items", ds.Len())
	return flow.NewInstanceWithData(app.flow, ds), nil
}

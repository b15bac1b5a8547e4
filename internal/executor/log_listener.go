package executor

import (
	"context"

	"github.com/specialistvlad/dataflowgo/internal/ctxlog"
	"github.com/specialistvlad/dataflowgo/internal/flow"
	"github.com/specialistvlad/dataflowgo/internal/model"
)

// LogListener writes one structured log line per hook using the logger in
// the run's context, which already carries the run and builder attributes.
type LogListener struct{}

func (LogListener) PreProcessing(ctx context.Context, _ *flow.Instance, delta model.DataDelta) error {
	ctxlog.FromContext(ctx).Info("▶️ Starting flow run", "delta", delta.Names())
	return nil
}

func (LogListener) PostProcessing(ctx context.Context, _ *flow.Instance, _ model.DataDelta, resp *model.ExecutionResponse, runErr error) error {
	logger := ctxlog.FromContext(ctx)
	if runErr != nil {
		logger.Error("Flow run failed", "error", runErr)
		return nil
	}
	logger.Info("🏁 Flow run finished", "produced", resp.Names(), "sweeps", resp.Sweeps)
	return nil
}

func (LogListener) BeforeExecute(ctx context.Context, ev BuilderEvent) error {
	ctxlog.FromContext(ctx).Debug("Running builder", "consumes", ev.Builder.Consumes)
	return nil
}

func (LogListener) AfterExecute(ctx context.Context, _ BuilderEvent, produced *model.Data) error {
	logger := ctxlog.FromContext(ctx)
	if produced == nil {
		logger.Info("✅ Builder finished without output")
		return nil
	}
	logger.Info("✅ Builder finished", "produced", produced.Name)
	return nil
}

func (LogListener) AfterException(ctx context.Context, _ BuilderEvent, cause error) error {
	ctxlog.FromContext(ctx).Error("Builder failed", "error", cause)
	return nil
}

package executor

import (
	"context"

	"github.com/specialistvlad/dataflowgo/internal/flow"
	"github.com/specialistvlad/dataflowgo/internal/model"
)

// BuilderEvent describes the builder a per-builder hook is about.
type BuilderEvent struct {
	Instance *flow.Instance
	Builder  model.BuilderMeta
	Delta    model.DataDelta

	// Responses holds what the run has produced so far. Listeners must treat
	// it as read-only.
	Responses *model.ExecutionResponse
}

// Listener receives notifications around a run and around every builder
// invocation. Hooks are called in registration order.
type Listener interface {
	// PreProcessing runs before any builder. Returning an error aborts the run
	// with PreProcessingError.
	PreProcessing(ctx context.Context, inst *flow.Instance, delta model.DataDelta) error

	// PostProcessing always runs last. resp is nil when the run failed; runErr
	// is nil when it succeeded.
	PostProcessing(ctx context.Context, inst *flow.Instance, delta model.DataDelta, resp *model.ExecutionResponse, runErr error) error

	BeforeExecute(ctx context.Context, ev BuilderEvent) error
	AfterExecute(ctx context.Context, ev BuilderEvent, produced *model.Data) error
	AfterException(ctx context.Context, ev BuilderEvent, cause error) error
}

// NopListener implements every hook as a no-op. Embed it to implement only
// the hooks you care about.
type NopListener struct{}

func (NopListener) PreProcessing(context.Context, *flow.Instance, model.DataDelta) error {
	return nil
}

func (NopListener) PostProcessing(context.Context, *flow.Instance, model.DataDelta, *model.ExecutionResponse, error) error {
	return nil
}

func (NopListener) BeforeExecute(context.Context, BuilderEvent) error { return nil }

func (NopListener) AfterExecute(context.Context, BuilderEvent, *model.Data) error { return nil }

func (NopListener) AfterException(context.Context, BuilderEvent, error) error { return nil }

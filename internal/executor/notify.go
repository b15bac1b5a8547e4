package executor

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/specialistvlad/dataflowgo/internal/ctxlog"
	"github.com/specialistvlad/dataflowgo/internal/flow"
	"github.com/specialistvlad/dataflowgo/internal/model"
)

// safeCall runs fn, turning a panic into an error.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// notifyAll calls hook on every listener, isolating failures. Failures are
// logged together and never returned.
func notifyAll(ctx context.Context, listeners []Listener, hook string, call func(Listener) error) {
	var errs *multierror.Error
	for _, l := range listeners {
		if err := safeCall(func() error { return call(l) }); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		ctxlog.FromContext(ctx).Error("Error running execution listener.", "hook", hook, "failures", errs.Len(), "error", err)
	}
}

func notifyPostProcessing(ctx context.Context, listeners []Listener, inst *flow.Instance, delta model.DataDelta, resp *model.ExecutionResponse, runErr error) {
	notifyAll(ctx, listeners, "post-processing", func(l Listener) error {
		return l.PostProcessing(ctx, inst, delta, resp, runErr)
	})
}

package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/dataflowgo/internal/ctxlog"
	"github.com/specialistvlad/dataflowgo/internal/flow"
	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/specialistvlad/dataflowgo/internal/registry"
)

// Option configures an Executor.
type Option func(*Executor)

// WithLayerEarlyExit makes a sweep stop scanning a layer at the first
// triggered builder whose inputs are incomplete. Only use it when the layering
// guarantees that later siblings cannot be runnable in that case; by default
// the whole layer is scanned.
func WithLayerEarlyExit() Option {
	return func(e *Executor) { e.layerEarlyExit = true }
}

// Executor runs data flows. It is safe for concurrent use as long as
// concurrent runs target different instances.
type Executor struct {
	factory        registry.Factory
	layerEarlyExit bool

	mu        sync.RWMutex
	listeners []Listener
}

// New creates an executor. factory is used for flows that do not carry their
// own and may be nil.
func New(factory registry.Factory, opts ...Option) *Executor {
	e := &Executor{factory: factory}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterListener appends l to the listeners notified by every subsequent
// run. Runs already in progress keep the listeners they started with.
func (e *Executor) RegisterListener(l Listener) {
	if l == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

func (e *Executor) listenerSnapshot() []Listener {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Listener(nil), e.listeners...)
}

// RunFlow executes f once against a fresh instance. Use it for flows that
// are evaluated within a single request.
func (e *Executor) RunFlow(ctx context.Context, f *flow.DataFlow, delta model.DataDelta) (*model.ExecutionResponse, error) {
	if f == nil {
		return nil, errors.New("executor: data flow is required")
	}
	return e.RunInstance(ctx, flow.NewInstance(f), delta)
}

// RunInstance executes inst's flow with delta, using a build context over the
// instance's data set with no extra values.
func (e *Executor) RunInstance(ctx context.Context, inst *flow.Instance, delta model.DataDelta) (*model.ExecutionResponse, error) {
	if inst == nil {
		return nil, errors.New("executor: flow instance is required")
	}
	return e.Run(ctx, model.NewBuildContext(inst.DataSet()), inst, delta)
}

// Run executes inst's flow with delta. Non-transient items produced by the
// run are stored back into inst before Run returns; the response holds only
// what this run produced.
func (e *Executor) Run(ctx context.Context, bc *model.BuildContext, inst *flow.Instance, delta model.DataDelta) (*model.ExecutionResponse, error) {
	if inst == nil || inst.Flow == nil {
		return nil, errors.New("executor: flow instance with a data flow is required")
	}
	factory := inst.Flow.Factory
	if factory == nil {
		factory = e.factory
	}
	if factory == nil {
		return nil, &FrameworkError{
			Code: NoFactoryForDataBuilder,
			Msg:  fmt.Sprintf("no builder factory specified in executor or flow %s", inst.Flow.Name),
		}
	}
	if bc == nil {
		bc = model.NewBuildContext(inst.DataSet())
	}
	ctx = ctxlog.With(ctx, "flow", inst.Flow.Name, "instance", inst.ID)
	// Listeners and the loop only ever see the non-nil items.
	return e.process(ctx, bc, inst, model.NewDelta(delta...), factory)
}

// process wraps the dispatch loop with the pre- and post-processing
// notifications. Post-processing runs on every exit path, including a panic
// escaping the loop, which is re-raised afterwards.
func (e *Executor) process(ctx context.Context, bc *model.BuildContext, inst *flow.Instance, delta model.DataDelta, factory registry.Factory) (resp *model.ExecutionResponse, err error) {
	logger := ctxlog.FromContext(ctx)
	listeners := e.listenerSnapshot()

	defer func() {
		r := recover()
		postErr := err
		if r != nil {
			postErr = fmt.Errorf("executor: unexpected panic: %v", r)
		}
		notifyPostProcessing(ctx, listeners, inst, delta, resp, postErr)
		if r != nil {
			panic(r)
		}
	}()

	for i, l := range listeners {
		if lerr := safeCall(func() error { return l.PreProcessing(ctx, inst, delta) }); lerr != nil {
			logger.Error("Error running pre-processing listener.", "listener", i, "error", lerr)
			return nil, &FrameworkError{
				Code: PreProcessingError,
				Msg:  "error running pre-processing listener: " + lerr.Error(),
				Err:  lerr,
			}
		}
	}

	loop := &run{
		flow:           inst.Flow,
		instance:       inst,
		delta:          delta,
		bc:             bc,
		factory:        factory,
		listeners:      listeners,
		layerEarlyExit: e.layerEarlyExit,
	}
	return loop.execute(ctx)
}

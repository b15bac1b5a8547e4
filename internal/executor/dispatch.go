package executor

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/dataflowgo/internal/ctxlog"
	"github.com/specialistvlad/dataflowgo/internal/flow"
	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/specialistvlad/dataflowgo/internal/registry"
)

// run holds the state of one dispatch loop. It is created per call and never
// shared.
type run struct {
	flow      *flow.DataFlow
	instance  *flow.Instance
	delta     model.DataDelta
	bc        *model.BuildContext
	factory   registry.Factory
	listeners []Listener

	layerEarlyExit bool

	working        *model.DataSet
	response       *model.ExecutionResponse
	active         map[string]struct{}
	newlyGenerated map[string]struct{}
	processed      map[string]bool
}

// execute performs the fixpoint sweep and, on success, commits the
// transient-filtered working set back into the instance.
func (r *run) execute(ctx context.Context) (*model.ExecutionResponse, error) {
	logger := ctxlog.FromContext(ctx)

	r.working = r.instance.DataSet().Copy()
	r.working.MergeDelta(r.delta)
	r.bc.DataSet = r.working
	r.response = model.NewExecutionResponse()
	r.active = make(map[string]struct{}, len(r.delta))
	for _, name := range r.delta.Names() {
		r.active[name] = struct{}{}
	}
	r.newlyGenerated = make(map[string]struct{})
	r.processed = make(map[string]bool, r.flow.Graph.Len())

	for {
		r.response.Sweeps++
		logger.Debug("Starting sweep.", "sweep", r.response.Sweeps, "active", sortedNames(r.active))
		if err := r.sweep(ctx); err != nil {
			return nil, err
		}

		if _, ok := r.newlyGenerated[r.flow.TargetData]; ok {
			logger.Debug("Target produced, run converged.", "target", r.flow.TargetData)
			break
		}
		if len(r.newlyGenerated) == 0 {
			logger.Debug("Nothing new generated, run converged.")
			break
		}
		if !r.flow.LoopingEnabled {
			logger.Debug("Looping disabled, stopping after one sweep.")
			break
		}
		r.active = r.newlyGenerated
		r.newlyGenerated = make(map[string]struct{})
	}

	r.instance.SetDataSet(r.working.CopyExcluding(r.flow.TransientSet()))
	logger.Debug("Run finished.", "sweeps", r.response.Sweeps, "produced", r.response.Names())
	return r.response, nil
}

// sweep makes one pass over every layer.
func (r *run) sweep(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	for level, builders := range r.flow.Graph.Levels() {
		for _, meta := range builders {
			if r.processed[meta.Name] {
				continue
			}
			if len(meta.ConsumesAny(r.active)) == 0 {
				continue
			}
			if !r.working.ContainsAll(meta.Consumes) {
				logger.Debug("Inputs incomplete, builder left for a later sweep.", "builder", meta.Name, "level", level)
				if r.layerEarlyExit {
					break
				}
				continue
			}
			if err := r.runBuilder(ctx, meta); err != nil {
				return err
			}
		}
	}
	return nil
}

// runBuilder invokes one builder and folds its output into the run.
func (r *run) runBuilder(ctx context.Context, meta model.BuilderMeta) error {
	ctx = ctxlog.With(ctx, "builder", meta.Name)
	logger := ctxlog.FromContext(ctx)
	ev := BuilderEvent{Instance: r.instance, Builder: meta, Delta: r.delta, Responses: r.response}

	notifyAll(ctx, r.listeners, "before-execute", func(l Listener) error {
		return l.BeforeExecute(ctx, ev)
	})

	produced, err := r.invoke(ctx, meta)
	if err != nil {
		logger.Error("Error running builder.", "error", err)
		notifyAll(ctx, r.listeners, "after-exception", func(l Listener) error {
			return l.AfterException(ctx, ev, err)
		})
		return builderFailure(meta.Name, err)
	}

	if produced != nil {
		if produced.Name != meta.Produces {
			logger.Warn("Builder produced an undeclared item.", "declared", meta.Produces, "produced", produced.Name)
		}
		produced = produced.WithGeneratedBy(meta.Name)
		r.working.Merge(produced)
		r.response.Responses[produced.Name] = produced
		r.active[produced.Name] = struct{}{}
		if !r.flow.IsTransient(produced.Name) {
			r.newlyGenerated[produced.Name] = struct{}{}
		}
	}
	r.processed[meta.Name] = true
	logger.Debug("Ran builder.", "produced", produced)

	notifyAll(ctx, r.listeners, "after-execute", func(l Listener) error {
		return l.AfterExecute(ctx, ev, produced)
	})
	return nil
}

// invoke resolves and calls the builder, turning a panic into an error.
func (r *run) invoke(ctx context.Context, meta model.BuilderMeta) (out *model.Data, err error) {
	b, err := r.factory.Lookup(meta.Name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("builder panicked: %v", rec)
		}
	}()
	return b.Build(ctx, r.bc)
}

func builderFailure(name string, err error) *FrameworkError {
	fe := &FrameworkError{
		Code:    BuilderExecutionError,
		Msg:     "error running builder " + name,
		Builder: name,
		Err:     err,
	}
	if be, ok := registry.AsBuildError(err); ok {
		fe.Payload = be.Payload
	} else {
		fe.Payload = map[string]any{payloadMessageKey: err.Error()}
	}
	return fe
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

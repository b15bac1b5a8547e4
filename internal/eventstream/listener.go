package eventstream

import (
	"context"
	"fmt"

	"github.com/specialistvlad/dataflowgo/internal/ctxlog"
	"github.com/specialistvlad/dataflowgo/internal/executor"
	"github.com/specialistvlad/dataflowgo/internal/flow"
	"github.com/specialistvlad/dataflowgo/internal/model"
)

// Event names.
const (
	EventFlowStart        = "flow:start"
	EventFlowFinish       = "flow:finish"
	EventBuilderBefore    = "builder:before"
	EventBuilderAfter     = "builder:after"
	EventBuilderException = "builder:exception"
)

// Emitter is the part of a socket.io client the listener needs.
// *socket.Socket satisfies it.
type Emitter interface {
	Emit(ev string, args ...any) error
}

// Listener is an executor.Listener that emits one event per hook.
type Listener struct {
	emitter Emitter

	// Required makes a failed flow:start emit abort the run. Otherwise
	// emit failures are only logged.
	Required bool
}

var _ executor.Listener = (*Listener)(nil)

// NewListener returns a listener publishing through e.
func NewListener(e Emitter) *Listener {
	return &Listener{emitter: e}
}

func (l *Listener) PreProcessing(ctx context.Context, inst *flow.Instance, delta model.DataDelta) error {
	payload := runPayload(inst)
	payload["delta"] = delta.Names()
	err := l.emit(EventFlowStart, payload)
	if err != nil && !l.Required {
		ctxlog.FromContext(ctx).Warn("Event stream unavailable, continuing without it.", "error", err)
		return nil
	}
	return err
}

func (l *Listener) PostProcessing(_ context.Context, inst *flow.Instance, _ model.DataDelta, resp *model.ExecutionResponse, runErr error) error {
	payload := runPayload(inst)
	if runErr != nil {
		payload["error"] = runErr.Error()
		payload["code"] = string(executor.CodeOf(runErr))
	} else {
		payload["produced"] = resp.Names()
		payload["sweeps"] = resp.Sweeps
	}
	return l.emit(EventFlowFinish, payload)
}

func (l *Listener) BeforeExecute(_ context.Context, ev executor.BuilderEvent) error {
	payload := runPayload(ev.Instance)
	payload["builder"] = ev.Builder.Name
	payload["consumes"] = ev.Builder.Consumes
	return l.emit(EventBuilderBefore, payload)
}

func (l *Listener) AfterExecute(_ context.Context, ev executor.BuilderEvent, produced *model.Data) error {
	payload := runPayload(ev.Instance)
	payload["builder"] = ev.Builder.Name
	if produced != nil {
		value, err := ctyValueToInterface(produced.Value)
		if err != nil {
			return fmt.Errorf("converting %s: %w", produced.Name, err)
		}
		payload["produced"] = produced.Name
		payload["value"] = value
	}
	return l.emit(EventBuilderAfter, payload)
}

func (l *Listener) AfterException(_ context.Context, ev executor.BuilderEvent, cause error) error {
	payload := runPayload(ev.Instance)
	payload["builder"] = ev.Builder.Name
	payload["error"] = cause.Error()
	return l.emit(EventBuilderException, payload)
}

func (l *Listener) emit(event string, payload map[string]any) error {
	if err := l.emitter.Emit(event, payload); err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	return nil
}

func runPayload(inst *flow.Instance) map[string]any {
	return map[string]any{
		"flow":     inst.Flow.Name,
		"instance": inst.ID,
	}
}

package executor

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/specialistvlad/dataflowgo/internal/flow"
	"github.com/specialistvlad/dataflowgo/internal/graph"
	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/specialistvlad/dataflowgo/internal/registry"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// callLog records builder invocations in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *callLog) add(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, name)
}

func (c *callLog) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// passThrough returns a builder that copies the value of its first consumed
// item to its produced item, suffixed with the builder name.
func passThrough(log *callLog, meta model.BuilderMeta) registry.Builder {
	return registry.BuilderFunc(func(_ context.Context, bc *model.BuildContext) (*model.Data, error) {
		log.add(meta.Name)
		in, ok := bc.Data(meta.Consumes[0])
		if !ok {
			return nil, fmt.Errorf("input %s missing", meta.Consumes[0])
		}
		return model.StringData(meta.Produces, in.Value.AsString()+"+"+meta.Name), nil
	})
}

// newPassThroughRegistry registers a passThrough builder for every meta.
func newPassThroughRegistry(log *callLog, metas []model.BuilderMeta) *registry.Registry {
	reg := registry.New()
	for _, m := range metas {
		reg.MustRegister(m.Name, passThrough(log, m))
	}
	return reg
}

func meta(name, produces string, consumes ...string) model.BuilderMeta {
	return model.BuilderMeta{Name: name, Consumes: consumes, Produces: produces}
}

func mustFlow(t *testing.T, cfg flow.Config) *flow.DataFlow {
	t.Helper()
	f, err := flow.New(cfg)
	require.NoError(t, err)
	return f
}

// flowFromLevels builds a flow around a hand-made layering, bypassing the
// graph package's validation.
func flowFromLevels(name, target string, looping bool, levels [][]model.BuilderMeta, factory registry.Factory) *flow.DataFlow {
	return &flow.DataFlow{
		Name:           name,
		TargetData:     target,
		LoopingEnabled: looping,
		Graph:          graph.FromLevels(levels),
		Factory:        factory,
	}
}

func strVal(t *testing.T, resp *model.ExecutionResponse, name string) string {
	t.Helper()
	d, ok := resp.Get(name)
	require.True(t, ok, "response missing %s", name)
	require.True(t, d.Value.Type().Equals(cty.String))
	return d.Value.AsString()
}

// event is one recorded listener notification.
type event struct {
	Listener string
	Hook     string
	Builder  string
}

// recordingListener records every hook and can be told to fail on one.
type recordingListener struct {
	name    string
	events  *[]event
	mu      *sync.Mutex
	failOn  string
	panicOn string

	postResp *model.ExecutionResponse
	postErr  error
}

func newRecorder(name string, events *[]event, mu *sync.Mutex) *recordingListener {
	return &recordingListener{name: name, events: events, mu: mu}
}

func (l *recordingListener) record(hook, builder string) error {
	l.mu.Lock()
	*l.events = append(*l.events, event{Listener: l.name, Hook: hook, Builder: builder})
	l.mu.Unlock()
	if l.panicOn == hook {
		panic(l.name + " exploded in " + hook)
	}
	if l.failOn == hook {
		return fmt.Errorf("%s failed in %s", l.name, hook)
	}
	return nil
}

func (l *recordingListener) PreProcessing(context.Context, *flow.Instance, model.DataDelta) error {
	return l.record("pre", "")
}

func (l *recordingListener) PostProcessing(_ context.Context, _ *flow.Instance, _ model.DataDelta, resp *model.ExecutionResponse, runErr error) error {
	l.postResp = resp
	l.postErr = runErr
	return l.record("post", "")
}

func (l *recordingListener) BeforeExecute(_ context.Context, ev BuilderEvent) error {
	return l.record("before", ev.Builder.Name)
}

func (l *recordingListener) AfterExecute(_ context.Context, ev BuilderEvent, _ *model.Data) error {
	return l.record("after", ev.Builder.Name)
}

func (l *recordingListener) AfterException(_ context.Context, ev BuilderEvent, _ error) error {
	return l.record("exception", ev.Builder.Name)
}

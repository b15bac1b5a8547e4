package executor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/specialistvlad/dataflowgo/internal/ctxlog"
	"github.com/specialistvlad/dataflowgo/internal/flow"
	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/specialistvlad/dataflowgo/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListeners_CalledInRegistrationOrder(t *testing.T) {
	var events []event
	mu := &sync.Mutex{}
	ex := New(nil)
	l1 := newRecorder("l1", &events, mu)
	l2 := newRecorder("l2", &events, mu)
	ex.RegisterListener(l1)
	ex.RegisterListener(nil)
	ex.RegisterListener(l2)

	_, err := ex.RunFlow(context.Background(), chainFlow(t, &callLog{}), model.NewDelta(model.StringData("x", "in")))
	require.NoError(t, err)

	want := []event{
		{"l1", "pre", ""}, {"l2", "pre", ""},
		{"l1", "before", "A"}, {"l2", "before", "A"},
		{"l1", "after", "A"}, {"l2", "after", "A"},
		{"l1", "before", "B"}, {"l2", "before", "B"},
		{"l1", "after", "B"}, {"l2", "after", "B"},
		{"l1", "post", ""}, {"l2", "post", ""},
	}
	assert.Equal(t, want, events)
	require.NotNil(t, l1.postResp)
	assert.Equal(t, []string{"y", "z"}, l1.postResp.Names())
	assert.NoError(t, l1.postErr)
}

func TestListeners_PerBuilderFailuresDoNotFailTheRun(t *testing.T) {
	for _, tc := range []struct {
		name  string
		setup func(l *recordingListener)
	}{
		{"after-execute error", func(l *recordingListener) { l.failOn = "after" }},
		{"after-execute panic", func(l *recordingListener) { l.panicOn = "after" }},
		{"before-execute error", func(l *recordingListener) { l.failOn = "before" }},
		{"before-execute panic", func(l *recordingListener) { l.panicOn = "before" }},
		{"post-processing error", func(l *recordingListener) { l.failOn = "post" }},
		{"post-processing panic", func(l *recordingListener) { l.panicOn = "post" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			var events []event
			mu := &sync.Mutex{}
			bad := newRecorder("bad", &events, mu)
			tc.setup(bad)
			good := newRecorder("good", &events, mu)
			ex := New(nil)
			ex.RegisterListener(bad)
			ex.RegisterListener(good)
			log := &callLog{}
			inst := flow.NewInstance(chainFlow(t, log))

			// Act
			resp, err := ex.RunInstance(context.Background(), inst, model.NewDelta(model.StringData("x", "in")))

			// Assert
			require.NoError(t, err)
			assert.Equal(t, []string{"y", "z"}, resp.Names())
			assert.Equal(t, []string{"A", "B"}, log.list())
			assert.Equal(t, []string{"x", "y", "z"}, inst.DataSet().Names())
			assert.NotNil(t, good.postResp, "later listeners still run")
		})
	}
}

func TestListeners_PreProcessingFailureAbortsRun(t *testing.T) {
	for _, mode := range []string{"error", "panic"} {
		t.Run(mode, func(t *testing.T) {
			var events []event
			mu := &sync.Mutex{}
			bad := newRecorder("bad", &events, mu)
			if mode == "error" {
				bad.failOn = "pre"
			} else {
				bad.panicOn = "pre"
			}
			other := newRecorder("other", &events, mu)
			ex := New(nil)
			ex.RegisterListener(bad)
			ex.RegisterListener(other)
			log := &callLog{}
			inst := flow.NewInstanceWithData(chainFlow(t, log), model.NewDataSet(model.StringData("keep", "1")))

			resp, err := ex.RunInstance(context.Background(), inst, model.NewDelta(model.StringData("x", "in")))

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.True(t, errors.Is(err, ErrPreProcessing))
			assert.Equal(t, PreProcessingError, CodeOf(err))
			assert.Empty(t, log.list(), "no builder runs")
			assert.Equal(t, []event{
				{"bad", "pre", ""},
				{"bad", "post", ""}, {"other", "post", ""},
			}, events)
			assert.Nil(t, other.postResp)
			assert.True(t, errors.Is(other.postErr, ErrPreProcessing))
			assert.Equal(t, []string{"keep"}, inst.DataSet().Names(), "instance untouched")
		})
	}
}

func failingFlow(t *testing.T, b registry.Builder) (*flow.DataFlow, *callLog) {
	t.Helper()
	log := &callLog{}
	reg := registry.New()
	reg.MustRegister("A", passThrough(log, meta("A", "y", "x")))
	reg.MustRegister("B", b)
	f := mustFlow(t, flow.Config{
		Name:           "failing",
		Target:         "z",
		LoopingEnabled: true,
		Builders:       []model.BuilderMeta{meta("A", "y", "x"), meta("B", "z", "y")},
		Factory:        reg,
	})
	return f, log
}

func TestRun_BuilderFailure(t *testing.T) {
	cause := errors.New("upstream unavailable")
	for _, tc := range []struct {
		name        string
		builder     registry.Builder
		wantPayload map[string]any
		wantCause   error
	}{
		{
			name: "structured build error keeps its payload",
			builder: registry.BuilderFunc(func(context.Context, *model.BuildContext) (*model.Data, error) {
				return nil, registry.Wrap(cause, "fetch failed", map[string]any{"STATUS": 503})
			}),
			wantPayload: map[string]any{"STATUS": 503},
			wantCause:   cause,
		},
		{
			name: "plain error becomes a message payload",
			builder: registry.BuilderFunc(func(context.Context, *model.BuildContext) (*model.Data, error) {
				return nil, cause
			}),
			wantPayload: map[string]any{"MESSAGE": "upstream unavailable"},
			wantCause:   cause,
		},
		{
			name: "panic is recovered",
			builder: registry.BuilderFunc(func(context.Context, *model.BuildContext) (*model.Data, error) {
				panic("boom")
			}),
			wantPayload: map[string]any{"MESSAGE": "builder panicked: boom"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			var events []event
			mu := &sync.Mutex{}
			rec := newRecorder("rec", &events, mu)
			f, log := failingFlow(t, tc.builder)
			inst := flow.NewInstanceWithData(f, model.NewDataSet(model.StringData("keep", "1")))
			ex := New(nil)
			ex.RegisterListener(rec)

			// Act
			resp, err := ex.RunInstance(context.Background(), inst, model.NewDelta(model.StringData("x", "in")))

			// Assert
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.True(t, errors.Is(err, ErrBuilderExecution))

			var fe *FrameworkError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, BuilderExecutionError, fe.Code)
			assert.Equal(t, "B", fe.Builder)
			assert.Equal(t, tc.wantPayload, fe.Payload)
			if tc.wantCause != nil {
				assert.True(t, errors.Is(err, tc.wantCause))
			}

			assert.Equal(t, []string{"A"}, log.list())
			assert.Equal(t, []event{
				{"rec", "pre", ""},
				{"rec", "before", "A"}, {"rec", "after", "A"},
				{"rec", "before", "B"}, {"rec", "exception", "B"},
				{"rec", "post", ""},
			}, events)
			assert.Nil(t, rec.postResp)
			assert.ErrorIs(t, rec.postErr, ErrBuilderExecution)
			assert.Equal(t, []string{"keep"}, inst.DataSet().Names(), "a failed run commits nothing")
		})
	}
}

func TestRun_UnknownBuilderIsAnExecutionError(t *testing.T) {
	f := mustFlow(t, flow.Config{
		Name:     "missing",
		Target:   "y",
		Builders: []model.BuilderMeta{meta("A", "y", "x")},
		Factory:  registry.New(),
	})

	_, err := New(nil).RunFlow(context.Background(), f, model.NewDelta(model.StringData("x", "in")))

	require.Error(t, err)
	assert.Equal(t, BuilderExecutionError, CodeOf(err))
	assert.ErrorIs(t, err, registry.ErrBuilderNotFound)
}

func TestRun_NilOutputIsNotRecorded(t *testing.T) {
	reg := registry.New()
	reg.MustRegister("A", registry.BuilderFunc(func(context.Context, *model.BuildContext) (*model.Data, error) {
		return nil, nil
	}))
	f := mustFlow(t, flow.Config{Name: "nil", Target: "y", LoopingEnabled: true, Builders: []model.BuilderMeta{meta("A", "y", "x")}, Factory: reg})

	resp, err := New(nil).RunFlow(context.Background(), f, model.NewDelta(model.StringData("x", "in")))
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Len())
	assert.Equal(t, 1, resp.Sweeps)
}

func TestFrameworkError_Message(t *testing.T) {
	err := builderFailure("B", errors.New("bad input"))
	assert.Equal(t, "BUILDER_EXECUTION_ERROR: error running builder B: bad input", err.Error())
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestLogListener_WritesOneLinePerHook(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx := ctxlog.WithLogger(context.Background(), logger)
	ex := New(nil)
	ex.RegisterListener(LogListener{})

	_, err := ex.RunFlow(ctx, chainFlow(t, &callLog{}), model.NewDelta(model.StringData("x", "in")))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Starting flow run")
	assert.Contains(t, out, "builder=A")
	assert.Contains(t, out, "builder=B")
	assert.Contains(t, out, "Flow run finished")
	assert.Equal(t, 4, strings.Count(out, "\n"), "builder start lines are debug only")
}

// exceptionCounter only cares about failures; every other hook is a no-op.
type exceptionCounter struct {
	NopListener
	mu     sync.Mutex
	causes []error
}

func (c *exceptionCounter) AfterException(_ context.Context, _ BuilderEvent, cause error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.causes = append(c.causes, cause)
	return nil
}

func TestListeners_AfterExceptionFailureKeepsTheBuilderError(t *testing.T) {
	cause := errors.New("upstream unavailable")
	failing := registry.BuilderFunc(func(context.Context, *model.BuildContext) (*model.Data, error) {
		return nil, cause
	})
	for _, mode := range []string{"error", "panic"} {
		t.Run(mode, func(t *testing.T) {
			// Arrange
			var events []event
			mu := &sync.Mutex{}
			bad := newRecorder("bad", &events, mu)
			if mode == "error" {
				bad.failOn = "exception"
			} else {
				bad.panicOn = "exception"
			}
			good := newRecorder("good", &events, mu)
			counter := &exceptionCounter{}
			ex := New(nil)
			ex.RegisterListener(bad)
			ex.RegisterListener(good)
			ex.RegisterListener(counter)
			f, log := failingFlow(t, failing)
			inst := flow.NewInstanceWithData(f, model.NewDataSet(model.StringData("keep", "1")))

			// Act
			resp, err := ex.RunInstance(context.Background(), inst, model.NewDelta(model.StringData("x", "in")))

			// Assert
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, ErrBuilderExecution)
			assert.ErrorIs(t, err, cause)
			var fe *FrameworkError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, "B", fe.Builder)
			assert.Equal(t, map[string]any{"MESSAGE": "upstream unavailable"}, fe.Payload)

			assert.Equal(t, []string{"A"}, log.list())
			assert.Equal(t, []event{
				{"bad", "pre", ""}, {"good", "pre", ""},
				{"bad", "before", "A"}, {"good", "before", "A"},
				{"bad", "after", "A"}, {"good", "after", "A"},
				{"bad", "before", "B"}, {"good", "before", "B"},
				{"bad", "exception", "B"}, {"good", "exception", "B"},
				{"bad", "post", ""}, {"good", "post", ""},
			}, events)
			require.Len(t, counter.causes, 1)
			assert.ErrorIs(t, counter.causes[0], cause)
			assert.ErrorIs(t, good.postErr, ErrBuilderExecution)
			assert.Equal(t, []string{"keep"}, inst.DataSet().Names(), "instance untouched")
		})
	}
}

func TestRun_NilDeltaItemsAreIgnored(t *testing.T) {
	var events []event
	mu := &sync.Mutex{}
	rec := newRecorder("rec", &events, mu)
	ex := New(nil)
	ex.RegisterListener(LogListener{})
	ex.RegisterListener(rec)
	log := &callLog{}
	inst := flow.NewInstance(chainFlow(t, log))
	delta := model.DataDelta{nil, model.StringData("x", "in"), nil}

	var (
		resp *model.ExecutionResponse
		err  error
	)
	require.NotPanics(t, func() {
		resp, err = ex.RunInstance(context.Background(), inst, delta)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"y", "z"}, resp.Names())
	assert.Equal(t, []string{"A", "B"}, log.list())
	assert.Equal(t, []string{"x", "y", "z"}, inst.DataSet().Names())
}

func TestRun_UndeclaredOutputNameIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := ctxlog.WithLogger(context.Background(), logger)
	reg := registry.New()
	reg.MustRegister("A", registry.BuilderFunc(func(context.Context, *model.BuildContext) (*model.Data, error) {
		return model.StringData("other", "v"), nil
	}))
	f := mustFlow(t, flow.Config{Name: "renamed", Target: "y", LoopingEnabled: true, Builders: []model.BuilderMeta{meta("A", "y", "x")}, Factory: reg})

	resp, err := New(nil).RunFlow(ctx, f, model.NewDelta(model.StringData("x", "in")))

	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, resp.Names())
	assert.Equal(t, 2, resp.Sweeps, "the target never appears, so the run stops when nothing new is generated")
	assert.Contains(t, buf.String(), "Builder produced an undeclared item.")
	assert.Contains(t, buf.String(), "declared=y")
	assert.Contains(t, buf.String(), "produced=other")
}

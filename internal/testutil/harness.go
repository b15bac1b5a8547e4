// Package testutil holds the shared harness for end-to-end flow tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/dataflowgo/internal/app"
	"github.com/specialistvlad/dataflowgo/internal/handlers"
	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	Response  *model.ExecutionResponse
}

// Harness writes flow files into a temporary directory and runs the app over
// them.
type Harness struct {
	t   *testing.T
	dir string

	// Modules replaces the core handler modules when non-empty.
	Modules []handlers.Module
	// StatePath, when set, is kept between Run calls so a test can drive the
	// same flow instance through several deltas.
	StatePath string
}

// NewHarness writes files (relative path to content) into a fresh directory.
func NewHarness(t *testing.T, files map[string]string, modules ...handlers.Module) *Harness {
	t.Helper()
	dir := t.TempDir()
	flowDir := filepath.Join(dir, "flow")
	require.NoError(t, os.Mkdir(flowDir, 0o755))
	for name, content := range files {
		path := filepath.Join(flowDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return &Harness{t: t, dir: dir, Modules: modules}
}

// WithState enables state persistence for subsequent runs.
func (h *Harness) WithState() *Harness {
	h.StatePath = filepath.Join(h.dir, "state.json")
	return h
}

// Run executes the flow once with the given name=value assignments.
func (h *Harness) Run(sets ...string) *HarnessResult {
	h.t.Helper()
	return h.RunWithContext(context.Background(), sets...)
}

// RunWithContext is Run with a caller-provided context.
func (h *Harness) RunWithContext(ctx context.Context, sets ...string) *HarnessResult {
	h.t.Helper()

	cfg, err := app.NewConfig(app.Config{
		FlowPath:  filepath.Join(h.dir, "flow"),
		Sets:      sets,
		StatePath: h.StatePath,
		LogLevel:  "debug",
		LogFormat: "text",
	})
	require.NoError(h.t, err)

	logBuffer := &app.SafeBuffer{}
	testApp, err := app.NewApp(logBuffer, cfg, h.Modules...)
	if err != nil {
		return &HarnessResult{LogOutput: logBuffer.String(), Err: err}
	}

	resp, runErr := testApp.Run(ctx)

	if os.Getenv("DATAFLOW_TEST_LOGS") == "true" {
		h.t.Logf("--- Full Log Output for %s ---\n%s", h.t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
		Response:  resp,
	}
}

// Names returns the produced item names, or nil when the run failed.
func (r *HarnessResult) Names() []string {
	return r.Response.Names()
}

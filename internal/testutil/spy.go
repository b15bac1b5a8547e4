package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/dataflowgo/internal/handlers"
	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/specialistvlad/dataflowgo/internal/registry"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// SpyModule registers a "spy" handler whose builders record every call and
// the JSON of the items they consumed, then produce a constant "seen" string.
type SpyModule struct {
	mu    sync.Mutex
	calls []SpyCall
}

// SpyCall is one recorded spy invocation.
type SpyCall struct {
	Builder string
	Inputs  map[string]string
}

// Register implements handlers.Module.
func (m *SpyModule) Register(h *handlers.Handlers) {
	h.RegisterHandler("spy", &handlers.RegisteredHandler{
		New: func(meta model.BuilderMeta, _ any) (registry.Builder, error) {
			return registry.BuilderFunc(func(_ context.Context, bc *model.BuildContext) (*model.Data, error) {
				inputs := map[string]string{}
				for name, val := range handlers.ConsumedValues(meta, bc) {
					buf, err := ctyjson.Marshal(val, val.Type())
					if err != nil {
						return nil, err
					}
					inputs[name] = string(buf)
				}
				m.mu.Lock()
				m.calls = append(m.calls, SpyCall{Builder: meta.Name, Inputs: inputs})
				m.mu.Unlock()
				return model.StringData(meta.Produces, "seen"), nil
			}), nil
		},
	})
}

// Calls returns a copy of the recorded calls in invocation order.
func (m *SpyModule) Calls() []SpyCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SpyCall(nil), m.calls...)
}

// Builders returns the names of the builders that ran, in order.
func (m *SpyModule) Builders() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		out = append(out, c.Builder)
	}
	return out
}

// Reset forgets the recorded calls.
func (m *SpyModule) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

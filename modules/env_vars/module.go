package env_vars

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/specialistvlad/dataflowgo/internal/ctxlog"
	"github.com/specialistvlad/dataflowgo/internal/handlers"
	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/specialistvlad/dataflowgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the handlers.Module interface for this package.
type Module struct {
	// Environ replaces os.Environ when set.
	Environ func() []string
}

// Input defines the arguments for the env_vars handler.
type Input struct {
	Prefix string `hcl:"prefix,optional"`
	Strip  bool   `hcl:"strip_prefix,optional"`
}

// builder produces a map of environment variables whenever one of its
// consumed items changes.
type builder struct {
	meta    model.BuilderMeta
	input   *Input
	environ func() []string
}

func (b *builder) Build(ctx context.Context, _ *model.BuildContext) (*model.Data, error) {
	envMap := make(map[string]cty.Value)
	for _, e := range b.environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], b.input.Prefix) {
			continue
		}
		key := pair[0]
		if b.input.Strip {
			key = strings.TrimPrefix(key, b.input.Prefix)
		}
		if key == "" {
			continue
		}
		envMap[key] = cty.StringVal(pair[1])
	}

	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ctxlog.FromContext(ctx).Debug("Collected environment variables.", "keys", keys)

	if len(envMap) == 0 {
		return model.NewData(b.meta.Produces, cty.MapValEmpty(cty.String)), nil
	}
	return model.NewData(b.meta.Produces, cty.MapVal(envMap)), nil
}

// Register registers the handler with the catalog.
func (m *Module) Register(h *handlers.Handlers) {
	environ := m.Environ
	if environ == nil {
		environ = os.Environ
	}
	h.RegisterHandler("env_vars", &handlers.RegisteredHandler{
		NewInput: func() any { return new(Input) },
		New: func(meta model.BuilderMeta, input any) (registry.Builder, error) {
			in, _ := input.(*Input)
			if in == nil {
				in = &Input{}
			}
			return &builder{meta: meta, input: in, environ: environ}, nil
		},
	})
}

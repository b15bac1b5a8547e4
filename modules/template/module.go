// Package template provides the template handler. Its value argument is an
// HCL expression evaluated against the consumed items each time the builder
// runs, e.g. value = "hello ${upper(name)}".
package template

import (
	"context"
	"errors"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/dataflowgo/internal/handlers"
	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/specialistvlad/dataflowgo/internal/registry"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Input defines the arguments for the template handler.
type Input struct {
	Value hcl.Expression `hcl:"value"`
}

type builder struct {
	meta  model.BuilderMeta
	input *Input
}

func (b *builder) Build(_ context.Context, bc *model.BuildContext) (*model.Data, error) {
	val, diags := b.input.Value.Value(handlers.EvalContext(b.meta, bc))
	if diags.HasErrors() {
		return nil, registry.Wrap(diags, "template evaluation failed", map[string]any{
			"RANGE": b.input.Value.Range().String(),
		})
	}
	return model.NewData(b.meta.Produces, val), nil
}

// Register registers the handler with the catalog.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterHandler("template", &handlers.RegisteredHandler{
		NewInput: func() any { return new(Input) },
		New: func(meta model.BuilderMeta, input any) (registry.Builder, error) {
			in, _ := input.(*Input)
			if in == nil || in.Value == nil {
				return nil, errors.New("template requires a value argument")
			}
			return &builder{meta: meta, input: in}, nil
		},
	})
}

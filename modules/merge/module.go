// Package merge provides the merge handler, which combines every consumed
// item into one object keyed by item name.
package merge

import (
	"context"

	"github.com/specialistvlad/dataflowgo/internal/handlers"
	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/specialistvlad/dataflowgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

type builder struct {
	meta model.BuilderMeta
}

func (b *builder) Build(_ context.Context, bc *model.BuildContext) (*model.Data, error) {
	vals := handlers.ConsumedValues(b.meta, bc)
	if len(vals) == 0 {
		return model.NewData(b.meta.Produces, cty.EmptyObjectVal), nil
	}
	return model.NewData(b.meta.Produces, cty.ObjectVal(vals)), nil
}

// Register registers the handler with the catalog.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterHandler("merge", &handlers.RegisteredHandler{
		New: func(meta model.BuilderMeta, _ any) (registry.Builder, error) {
			return &builder{meta: meta}, nil
		},
	})
}

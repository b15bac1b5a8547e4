package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/specialistvlad/dataflowgo/internal/ctxlog"
	"github.com/specialistvlad/dataflowgo/internal/handlers"
	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/specialistvlad/dataflowgo/internal/registry"
)

// Module implements the handlers.Module interface for this package.
type Module struct {
	// Out receives the printed lines. Defaults to os.Stdout.
	Out io.Writer
}

// Input defines the arguments for the print handler.
type Input struct {
	Header string `hcl:"header,optional"`
}

type builder struct {
	meta  model.BuilderMeta
	input *Input
	out   io.Writer
}

// Build writes every consumed item, sorted by name, and produces the printed
// text.
func (b *builder) Build(ctx context.Context, bc *model.BuildContext) (*model.Data, error) {
	ctxlog.FromContext(ctx).Info("Printing input")

	var sb strings.Builder
	if b.input.Header != "" {
		sb.WriteString(b.input.Header)
		sb.WriteString("\n")
	}

	names := append([]string(nil), b.meta.Consumes...)
	sort.Strings(names)
	for _, name := range names {
		d, ok := bc.Data(name)
		if !ok {
			fmt.Fprintf(&sb, "      %s = (null)\n", name)
			continue
		}
		fmt.Fprintf(&sb, "      %s = %s\n", name, d.FormatValue())
	}

	if _, err := io.WriteString(b.out, sb.String()); err != nil {
		return nil, fmt.Errorf("failed to print: %w", err)
	}
	return model.StringData(b.meta.Produces, sb.String()), nil
}

// Register registers the handler with the catalog.
func (m *Module) Register(h *handlers.Handlers) {
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	h.RegisterHandler("print", &handlers.RegisteredHandler{
		NewInput: func() any { return new(Input) },
		New: func(meta model.BuilderMeta, input any) (registry.Builder, error) {
			in, _ := input.(*Input)
			if in == nil {
				in = &Input{}
			}
			return &builder{meta: meta, input: in, out: out}, nil
		},
	})
}

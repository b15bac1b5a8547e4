package template

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/dataflowgo/internal/handlers"
	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/specialistvlad/dataflowgo/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTemplate(t *testing.T, src string) registry.Builder {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), "flow.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())

	h := handlers.New()
	h.Install(&Module{})
	handler, ok := h.Get("template")
	require.True(t, ok)
	b, err := handler.New(model.BuilderMeta{Name: "greet", Consumes: []string{"name"}, Produces: "greeting"}, &Input{Value: expr})
	require.NoError(t, err)
	return b
}

func TestTemplate_EvaluatesAgainstConsumedItems(t *testing.T) {
	b := newTemplate(t, `"hello ${upper(name)}"`)

	d, err := b.Build(context.Background(), model.NewBuildContext(model.NewDataSet(model.StringData("name", "ada"))))

	require.NoError(t, err)
	assert.Equal(t, "greeting", d.Name)
	assert.Equal(t, "hello ADA", d.Value.AsString())
}

func TestTemplate_FailureCarriesPayload(t *testing.T) {
	b := newTemplate(t, `unknown_var`)

	_, err := b.Build(context.Background(), model.NewBuildContext(model.NewDataSet(model.StringData("name", "ada"))))

	require.Error(t, err)
	be, ok := registry.AsBuildError(err)
	require.True(t, ok)
	assert.Contains(t, be.Payload["RANGE"], "flow.hcl")
}

func TestTemplate_RequiresValue(t *testing.T) {
	h := handlers.New()
	h.Install(&Module{})
	handler, _ := h.Get("template")

	_, err := handler.New(model.BuilderMeta{Name: "t", Produces: "o"}, &Input{})
	assert.Error(t, err)
}

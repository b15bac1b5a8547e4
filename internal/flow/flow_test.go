package flow

import (
	"errors"
	"testing"

	"github.com/specialistvlad/dataflowgo/internal/graph"
	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain() []model.BuilderMeta {
	return []model.BuilderMeta{
		{Name: "A", Consumes: []string{"x"}, Produces: "y"},
		{Name: "B", Consumes: []string{"y"}, Produces: "z"},
	}
}

func TestNew_BuildsGraph(t *testing.T) {
	f, err := New(Config{
		Name:           "checkout",
		Target:         "z",
		Transients:     []string{"y"},
		LoopingEnabled: true,
		Builders:       chain(),
	})
	require.NoError(t, err)

	assert.Equal(t, "checkout", f.Name)
	assert.Equal(t, "z", f.TargetData)
	assert.True(t, f.LoopingEnabled)
	assert.Len(t, f.Graph.Levels(), 2)
	assert.True(t, f.IsTransient("y"))
	assert.False(t, f.IsTransient("z"))
	assert.Equal(t, []string{"y"}, f.Transients())
	assert.Nil(t, f.Factory)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Builders: chain()})
	assert.ErrorContains(t, err, "name is required")

	_, err = New(Config{Name: "f", Target: "z", Transients: []string{"z"}, Builders: chain()})
	assert.ErrorContains(t, err, "cannot be transient")

	_, err = New(Config{Name: "f", Transients: []string{""}, Builders: chain()})
	assert.ErrorContains(t, err, "cannot be empty")

	_, err = New(Config{Name: "f", Builders: []model.BuilderMeta{
		{Name: "A", Consumes: []string{"b"}, Produces: "a"},
		{Name: "B", Consumes: []string{"a"}, Produces: "b"},
	}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrCycleFound))
}

func TestTransientSet_IsACopy(t *testing.T) {
	f, err := New(Config{Name: "f", Transients: []string{"tmp"}, Builders: chain()})
	require.NoError(t, err)

	set := f.TransientSet()
	delete(set, "tmp")
	assert.True(t, f.IsTransient("tmp"))
}

func TestInstance(t *testing.T) {
	f, err := New(Config{Name: "f", Builders: chain()})
	require.NoError(t, err)

	a := NewInstance(f)
	b := NewInstance(f)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 0, a.DataSet().Len())

	seeded := NewInstanceWithData(f, model.NewDataSet(model.StringData("x", "1")))
	assert.True(t, seeded.DataSet().Has("x"))

	seeded.SetDataSet(model.NewDataSet())
	assert.Equal(t, 0, seeded.DataSet().Len())
	assert.NotNil(t, NewInstanceWithData(f, nil).DataSet())
}

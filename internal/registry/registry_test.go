package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop() Builder {
	return BuilderFunc(func(context.Context, *model.BuildContext) (*model.Data, error) {
		return nil, nil
	})
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("A", noop()))
	require.NoError(t, r.Register("B", noop()))

	b, err := r.Lookup("A")
	require.NoError(t, err)
	assert.NotNil(t, b)
	assert.Equal(t, []string{"A", "B"}, r.Names())
}

func TestRegistry_LookupMissing(t *testing.T) {
	_, err := New().Lookup("ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBuilderNotFound))
	assert.Contains(t, err.Error(), "ghost")
}

func TestRegistry_RegisterRejectsInvalid(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("A", noop()))

	assert.Error(t, r.Register("A", noop()), "duplicate name")
	assert.Error(t, r.Register("", noop()), "empty name")
	assert.Error(t, r.Register("C", nil), "nil builder")
	assert.Panics(t, func() { r.MustRegister("A", noop()) })
}

func TestBuilderFunc_Build(t *testing.T) {
	f := BuilderFunc(func(_ context.Context, bc *model.BuildContext) (*model.Data, error) {
		in, _ := bc.Data("x")
		return model.NewData("y", in.Value), nil
	})
	bc := model.NewBuildContext(model.NewDataSet(model.StringData("x", "hello")))

	out, err := f.Build(context.Background(), bc)
	require.NoError(t, err)
	assert.Equal(t, "y", out.Name)
	assert.Equal(t, "hello", out.Value.AsString())
}

func TestBuildError(t *testing.T) {
	cause := errors.New("downstream timeout")
	err := Wrap(cause, "fetch failed", map[string]any{"status": 504})

	assert.Equal(t, "fetch failed: downstream timeout", err.Error())
	assert.True(t, errors.Is(err, cause))

	var wrapped error = err
	be, ok := AsBuildError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 504, be.Payload["status"])

	assert.Equal(t, "bad input", NewBuildError("bad input", nil).Error())
	_, ok = AsBuildError(cause)
	assert.False(t, ok)
}

package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/dataflowgo/internal/model"
)

// Builder is a unit of computation that reads from the build context and
// produces at most one Data item. Returning (nil, nil) means the builder ran
// but had nothing to contribute.
type Builder interface {
	Build(ctx context.Context, bc *model.BuildContext) (*model.Data, error)
}

// BuilderFunc adapts a plain function to the Builder interface.
type BuilderFunc func(ctx context.Context, bc *model.BuildContext) (*model.Data, error)

// Build implements Builder.
func (f BuilderFunc) Build(ctx context.Context, bc *model.BuildContext) (*model.Data, error) {
	return f(ctx, bc)
}

// BuildError is the structured failure a builder returns when it wants to
// hand extra detail to the caller. Payload is copied verbatim onto the
// executor's failure.
type BuildError struct {
	Msg     string
	Payload map[string]any
	Err     error
}

// NewBuildError creates a BuildError with an optional payload.
func NewBuildError(msg string, payload map[string]any) *BuildError {
	return &BuildError{Msg: msg, Payload: payload}
}

// Wrap returns a BuildError carrying err as its cause.
func Wrap(err error, msg string, payload map[string]any) *BuildError {
	return &BuildError{Msg: msg, Payload: payload, Err: err}
}

func (e *BuildError) Error() string {
	switch {
	case e.Err == nil:
		return e.Msg
	case e.Msg == "":
		return e.Err.Error()
	default:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
}

func (e *BuildError) Unwrap() error { return e.Err }

// AsBuildError extracts a BuildError from err's chain.
func AsBuildError(err error) (*BuildError, bool) {
	var be *BuildError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

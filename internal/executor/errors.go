package executor

import (
	"errors"
	"fmt"
)

// ErrorCode identifies which phase of a run failed.
type ErrorCode string

const (
	// NoFactoryForDataBuilder means neither the flow nor the executor carries
	// a builder factory.
	NoFactoryForDataBuilder ErrorCode = "NO_FACTORY_FOR_DATA_BUILDER"
	// PreProcessingError means a listener failed in PreProcessing.
	PreProcessingError ErrorCode = "PRE_PROCESSING_ERROR"
	// BuilderExecutionError means a builder failed, panicked, or could not be
	// resolved.
	BuilderExecutionError ErrorCode = "BUILDER_EXECUTION_ERROR"
)

// Sentinels for errors.Is. They match any FrameworkError with the same Code.
var (
	ErrNoFactory        = &FrameworkError{Code: NoFactoryForDataBuilder}
	ErrPreProcessing    = &FrameworkError{Code: PreProcessingError}
	ErrBuilderExecution = &FrameworkError{Code: BuilderExecutionError}
)

// payloadMessageKey is where the message of an unstructured builder failure
// is stored in the payload.
const payloadMessageKey = "MESSAGE"

// FrameworkError is the single typed failure a run returns.
type FrameworkError struct {
	Code ErrorCode
	Msg  string

	// Builder and Payload are set for BuilderExecutionError.
	Builder string
	Payload map[string]any

	Err error
}

func (e *FrameworkError) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Code)
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FrameworkError) Unwrap() error { return e.Err }

// Is reports whether target is a FrameworkError with the same code.
func (e *FrameworkError) Is(target error) bool {
	t, ok := target.(*FrameworkError)
	return ok && t.Code == e.Code
}

// CodeOf returns the code of the FrameworkError in err's chain, or "" if
// there is none.
func CodeOf(err error) ErrorCode {
	var fe *FrameworkError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

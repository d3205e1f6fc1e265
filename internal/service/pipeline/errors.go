package pipeline

import (
	"errors"
	"fmt"
)

// Stage names used in errors, logs and metrics labels.
const (
	StageValidation     = "validation"
	StageTranscription  = "transcription"
	StageRedaction      = "redaction"
	StageClassification = "classification"
	StageSynthesis      = "synthesis"
)

// Sentinel errors for the pipeline failure taxonomy. StageError wraps one
// of these together with the stage and correlation id.
var (
	// ErrInvalidInput - the request payload was rejected before any
	// provider was called (empty audio, oversized audio, empty text).
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderTimeout - a provider did not answer within its stage
	// timeout budget.
	ErrProviderTimeout = errors.New("provider timed out")

	// ErrProviderFailure - a provider answered with an error.
	ErrProviderFailure = errors.New("provider failure")

	// ErrInternalClassification - the classification stage itself failed.
	// The classifier is total by design, so this is a defensive bucket.
	ErrInternalClassification = errors.New("internal classification error")
)

// StageError reports which stage of which run failed. It wraps the
// underlying sentinel so callers can branch with errors.Is.
type StageError struct {
	RequestID string
	Stage     string
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s stage: %v", e.RequestID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a stage timeout.
func (e *StageError) Timeout() bool {
	return errors.Is(e.Err, ErrProviderTimeout)
}

// errorType maps an error to its metrics label.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrProviderTimeout):
		return "timeout"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrInternalClassification):
		return "internal"
	default:
		return "provider_failure"
	}
}

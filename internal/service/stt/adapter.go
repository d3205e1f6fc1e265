// Package stt defines the interface for Speech-to-Text providers.
package stt

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the provider cannot service requests.
var ErrUnavailable = errors.New("stt provider unavailable")

// Result is the outcome of one transcription call.
type Result struct {
	Text       string
	Confidence float64 // in [0,1]
	Language   string  // BCP-47 tag, empty when the provider cannot tell
	DurationMS int64
}

// Adapter defines the interface for STT providers (whisper-server, cloud
// engines, mocks). Implementations must honor ctx cancellation and return
// an error rather than hang.
type Adapter interface {
	// Transcribe converts audio bytes into text. formatHint names the
	// container ("wav", "mp3", ...) when the caller knows it.
	Transcribe(ctx context.Context, audio []byte, formatHint string) (*Result, error)

	// Ready reports whether the provider can currently serve requests.
	Ready(ctx context.Context) bool
}

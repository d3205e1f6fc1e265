// Package tts defines the interface for Text-to-Speech providers.
package tts

import (
	"context"
	"errors"
)

// Speed bounds accepted by Synthesize. Values outside are clamped.
const (
	MinSpeed = 0.5
	MaxSpeed = 2.0
)

// ErrUnavailable is returned when the provider cannot service requests.
var ErrUnavailable = errors.New("tts provider unavailable")

// ErrInvalidVoice is returned when the requested voice does not exist.
var ErrInvalidVoice = errors.New("unknown voice")

// Adapter defines the interface for TTS providers (piper, cloud engines,
// mocks). Implementations must honor ctx cancellation and return an error
// rather than hang.
type Adapter interface {
	// Synthesize renders text as WAV audio using the named voice at the
	// given speed (0.5 = half speed, 2.0 = double speed).
	Synthesize(ctx context.Context, text, voice string, speed float64) ([]byte, error)

	// Ready reports whether the provider can currently serve requests.
	Ready(ctx context.Context) bool
}

// ClampSpeed forces speed into the supported [MinSpeed, MaxSpeed] range.
func ClampSpeed(speed float64) float64 {
	if speed < MinSpeed {
		return MinSpeed
	}
	if speed > MaxSpeed {
		return MaxSpeed
	}
	return speed
}

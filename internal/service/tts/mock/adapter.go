// Package mock provides a mock TTS adapter that generates short silent
// WAV payloads, letting the pipeline run end to end without a voice model.
package mock

import (
	"context"
	"fmt"

	"frontoffice-voice-console/internal/service/tts"
	"frontoffice-voice-console/internal/wav"
)

// Voices accepted by the mock provider.
var Voices = map[string]bool{
	"en_US-lessac-medium": true,
	"en_US-amy-medium":    true,
	"en_GB-alan-medium":   true,
}

// Adapter implements tts.Adapter with generated silent audio whose length
// scales with the input text, approximating real synthesis timing.
type Adapter struct{}

// New creates a mock TTS adapter.
func New() *Adapter {
	return &Adapter{}
}

// Synthesize returns a silent WAV sized to roughly 60ms per word.
// An empty voice falls back to the default; an unknown voice fails the
// same way a real provider would.
func (a *Adapter) Synthesize(ctx context.Context, text, voice string, speed float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if voice != "" && !Voices[voice] {
		return nil, fmt.Errorf("%w: %q", tts.ErrInvalidVoice, voice)
	}

	speed = tts.ClampSpeed(speed)
	words := 1
	for _, r := range text {
		if r == ' ' {
			words++
		}
	}
	ms := int(float64(words) * 60 / speed)
	if ms < 100 {
		ms = 100
	}

	return wav.Silence(ms), nil
}

// Ready always reports true for the mock provider.
func (a *Adapter) Ready(ctx context.Context) bool {
	return true
}

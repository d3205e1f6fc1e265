// Package mock provides a mock STT adapter for running the pipeline
// without a speech model. It cycles through canned front-office utterances
// so repeated requests exercise every intent path.
package mock

import (
	"context"
	"sync"
	"time"

	"frontoffice-voice-console/internal/service/stt"
)

// SimulatedUtterance is one canned transcription outcome.
type SimulatedUtterance struct {
	Text       string
	Confidence float64
}

// DefaultUtterances provides sample utterances covering each intent.
var DefaultUtterances = []SimulatedUtterance{
	{Text: "I need to schedule an appointment for next Tuesday at 3pm", Confidence: 0.94},
	{Text: "What's my insurance copay", Confidence: 0.91},
	{Text: "What are your office hours", Confidence: 0.97},
	{Text: "Can I book a checkup for tomorrow morning", Confidence: 0.89},
	{Text: "I have a question about my bill", Confidence: 0.92},
}

// Adapter implements stt.Adapter with mock responses. Each Transcribe call
// returns the next utterance in the cycle, with a small simulated delay.
type Adapter struct {
	mu         sync.Mutex
	utterances []SimulatedUtterance
	next       int
	fixed      bool
	delay      time.Duration
}

// New creates a mock adapter cycling through DefaultUtterances.
func New() *Adapter {
	return &Adapter{
		utterances: DefaultUtterances,
		delay:      20 * time.Millisecond,
	}
}

// NewFixed creates a mock adapter that always returns the given text and
// confidence. Useful when a test needs a deterministic transcript.
func NewFixed(text string, confidence float64) *Adapter {
	return &Adapter{
		utterances: []SimulatedUtterance{{Text: text, Confidence: confidence}},
		fixed:      true,
	}
}

// Transcribe returns the next simulated utterance. Empty audio still
// produces a result; the caller validates input before reaching providers.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte, formatHint string) (*stt.Result, error) {
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	a.mu.Lock()
	utt := a.utterances[a.next%len(a.utterances)]
	if !a.fixed {
		a.next++
	}
	a.mu.Unlock()

	return &stt.Result{
		Text:       utt.Text,
		Confidence: utt.Confidence,
		Language:   "en",
		DurationMS: a.delay.Milliseconds(),
	}, nil
}

// Ready always reports true for the mock provider.
func (a *Adapter) Ready(ctx context.Context) bool {
	return true
}

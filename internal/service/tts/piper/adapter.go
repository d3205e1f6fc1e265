// Package piper provides a TTS adapter backed by a piper HTTP wrapper.
package piper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"frontoffice-voice-console/internal/service/tts"
)

// Adapter implements tts.Adapter against a piper HTTP server.
type Adapter struct {
	baseURL      string
	defaultVoice string
	client       *http.Client
}

// New creates a piper adapter. defaultVoice is used when the caller does
// not name one.
func New(baseURL, defaultVoice string) *Adapter {
	return &Adapter{
		baseURL:      baseURL,
		defaultVoice: defaultVoice,
		client:       &http.Client{},
	}
}

type synthesizeRequest struct {
	Text        string  `json:"text"`
	Voice       string  `json:"voice"`
	LengthScale float64 `json:"length_scale"`
}

// Synthesize posts the text and returns the WAV bytes piper produced.
// Piper expresses rate as a length scale, the inverse of speed.
func (a *Adapter) Synthesize(ctx context.Context, text, voice string, speed float64) ([]byte, error) {
	if voice == "" {
		voice = a.defaultVoice
	}
	speed = tts.ClampSpeed(speed)

	payload, err := json.Marshal(synthesizeRequest{
		Text:        text,
		Voice:       voice,
		LengthScale: 1.0 / speed,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/synthesize", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tts.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusNotFound:
		return nil, fmt.Errorf("%w: %q", tts.ErrInvalidVoice, voice)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", tts.ErrUnavailable, resp.StatusCode, body)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	return audio, nil
}

// Ready probes the server's health endpoint.
func (a *Adapter) Ready(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Package whisper provides an STT adapter backed by a whisper-server
// instance reachable over HTTP.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"frontoffice-voice-console/internal/service/stt"
)

// Adapter implements stt.Adapter against whisper-server's /inference API.
type Adapter struct {
	baseURL string
	client  *http.Client
}

// New creates a whisper adapter for the given base URL
// (e.g. http://localhost:8080). Per-call deadlines come from the request
// context, so the underlying client carries no timeout of its own.
func New(baseURL string) *Adapter {
	return &Adapter{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// inferenceResponse is the subset of whisper-server's response we consume.
type inferenceResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Transcribe posts the audio as a multipart upload and returns the
// recognized text. whisper-server reports no per-utterance confidence, so
// a fixed high value is used, matching how local whisper deployments are
// typically wrapped.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte, formatHint string) (*stt.Result, error) {
	start := time.Now()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "audio."+containerExt(formatHint))
	if err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/inference", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", stt.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", stt.ErrUnavailable, resp.StatusCode, payload)
	}

	var out inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &stt.Result{
		Text:       out.Text,
		Confidence: 0.95,
		Language:   out.Language,
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
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

func containerExt(formatHint string) string {
	if formatHint == "" {
		return "wav"
	}
	return formatHint
}

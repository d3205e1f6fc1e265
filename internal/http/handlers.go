// Package http exposes the voice pipeline over a JSON/HTTP API.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"frontoffice-voice-console/internal/health"
	"frontoffice-voice-console/internal/models"
	"frontoffice-voice-console/internal/service/pipeline"
	"frontoffice-voice-console/internal/service/tts"
)

// Handler serves the API endpoints.
type Handler struct {
	orch           *pipeline.Orchestrator
	registry       *health.Registry
	privacyDefault bool
	maxAudioBytes  int64
}

// NewHandler creates the API handler.
func NewHandler(orch *pipeline.Orchestrator, registry *health.Registry, privacyDefault bool, maxAudioBytes int64) *Handler {
	if maxAudioBytes <= 0 {
		maxAudioBytes = 10 * 1024 * 1024
	}
	return &Handler{
		orch:           orch,
		registry:       registry,
		privacyDefault: privacyDefault,
		maxAudioBytes:  maxAudioBytes,
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
	Stage     string `json:"stage,omitempty"`
}

type textRequest struct {
	Text string `json:"text"`
}

type speakRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

type intentResponse struct {
	RequestID string `json:"requestId"`
	models.IntentResult
}

type transcribeResponse struct {
	RequestID string `json:"requestId"`
	models.TranscriptionResult
}

type readinessResponse struct {
	Ready     bool                                  `json:"ready"`
	Providers map[health.Role]models.ProviderStatus `json:"providers"`
}

// ProcessPipeline handles POST /v1/pipeline/process: audio in, the full
// pipeline result out. Audio arrives either as the multipart form field
// "audio" or as the raw request body.
func (h *Handler) ProcessPipeline(w http.ResponseWriter, r *http.Request) {
	audio, privacyMode, err := h.readAudioRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := h.orch.Process(r.Context(), audio, privacyMode)
	if err != nil {
		writeStageError(w, err)
		return
	}

	w.Header().Set("X-Request-ID", result.RequestID)
	writeJSON(w, http.StatusOK, result)
}

// RouteIntent handles POST /v1/intent/route: text in, routing decision out.
func (h *Handler) RouteIntent(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	result, requestID, err := h.orch.RouteIntent(r.Context(), req.Text)
	if err != nil {
		writeStageError(w, err)
		return
	}

	w.Header().Set("X-Request-ID", requestID)
	writeJSON(w, http.StatusOK, intentResponse{RequestID: requestID, IntentResult: result})
}

// Transcribe handles POST /v1/stt/transcribe: audio in, transcript out.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	audio, privacyMode, err := h.readAudioRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, requestID, err := h.orch.Transcribe(r.Context(), audio, privacyMode)
	if err != nil {
		writeStageError(w, err)
		return
	}

	w.Header().Set("X-Request-ID", requestID)
	writeJSON(w, http.StatusOK, transcribeResponse{RequestID: requestID, TranscriptionResult: result})
}

// Speak handles POST /v1/tts/speak: text in, WAV audio out.
func (h *Handler) Speak(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	audio, requestID, err := h.orch.Speak(r.Context(), req.Text, req.Voice, req.Speed)
	if err != nil {
		writeStageError(w, err)
		return
	}

	w.Header().Set("X-Request-ID", requestID)
	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

// Liveness handles GET /v1/liveness: process liveness only.
func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readiness handles GET /v1/readiness: 200 when every provider passed its
// last probe, 503 with the per-provider detail otherwise.
func (h *Handler) Readiness(w http.ResponseWriter, _ *http.Request) {
	ready := h.registry.AllReady()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, readinessResponse{
		Ready:     ready,
		Providers: h.registry.Snapshot(),
	})
}

// readAudioRequest extracts the audio payload and the privacy mode flag.
// The "privacy_mode" multipart field or query parameter overrides the
// configured default.
func (h *Handler) readAudioRequest(r *http.Request) ([]byte, bool, error) {
	privacyMode := h.privacyDefault
	if v := r.URL.Query().Get("privacy_mode"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			privacyMode = parsed
		}
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxAudioBytes); err != nil {
			return nil, privacyMode, errors.New("malformed multipart body")
		}
		if v := r.FormValue("privacy_mode"); v != "" {
			if parsed, err := strconv.ParseBool(v); err == nil {
				privacyMode = parsed
			}
		}
		file, _, err := r.FormFile("audio")
		if err != nil {
			return nil, privacyMode, errors.New("missing multipart field \"audio\"")
		}
		defer file.Close()
		audio, err := io.ReadAll(io.LimitReader(file, h.maxAudioBytes+1))
		if err != nil {
			return nil, privacyMode, errors.New("failed to read audio upload")
		}
		return audio, privacyMode, nil
	}

	audio, err := io.ReadAll(io.LimitReader(r.Body, h.maxAudioBytes+1))
	if err != nil {
		return nil, privacyMode, errors.New("failed to read request body")
	}
	return audio, privacyMode, nil
}

// writeStageError maps the pipeline failure taxonomy onto HTTP statuses:
// bad input is the caller's fault, timeouts are gateway timeouts, provider
// failures are bad gateways, and the defensive classification bucket is an
// internal error.
func writeStageError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, pipeline.ErrInvalidInput), errors.Is(err, tts.ErrInvalidVoice):
		status = http.StatusBadRequest
	case errors.Is(err, pipeline.ErrProviderTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, pipeline.ErrInternalClassification):
		status = http.StatusInternalServerError
	}

	resp := errorResponse{Error: err.Error()}
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		resp.RequestID = stageErr.RequestID
		resp.Stage = stageErr.Stage
		resp.Error = stageErr.Err.Error()
		w.Header().Set("X-Request-ID", stageErr.RequestID)
	}
	writeError(w, status, resp)
}

func writeError(w http.ResponseWriter, status int, resp errorResponse) {
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

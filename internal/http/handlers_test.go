package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"frontoffice-voice-console/internal/health"
	"frontoffice-voice-console/internal/models"
	"frontoffice-voice-console/internal/observability/metrics"
	"frontoffice-voice-console/internal/service/intent"
	"frontoffice-voice-console/internal/service/pipeline"
	sttmock "frontoffice-voice-console/internal/service/stt/mock"
	ttsmock "frontoffice-voice-console/internal/service/tts/mock"
)

func newTestServer(t *testing.T, transcript string) (*httptest.Server, *health.Registry) {
	t.Helper()

	orch := pipeline.New(
		pipeline.Config{},
		sttmock.NewFixed(transcript, 0.94),
		ttsmock.New(),
		intent.New(),
		nil,
		metrics.DefaultMetrics,
	)
	registry := health.NewRegistry(nil)
	handler := NewHandler(orch, registry, true, 1024*1024)

	server := httptest.NewServer(NewRouter(handler))
	t.Cleanup(server.Close)
	return server, registry
}

func postMultipartAudio(t *testing.T, url string, audio []byte, fields map[string]string) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio", "utterance.wav")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(audio); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Post(url, writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestProcessPipeline_Multipart(t *testing.T) {
	server, _ := newTestServer(t, "I need to schedule an appointment for next Tuesday at 3pm")

	resp := postMultipartAudio(t, server.URL+"/v1/pipeline/process", []byte("fake-wav"), nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Request-ID"); !strings.HasPrefix(got, "req_") {
		t.Errorf("X-Request-ID = %q, want req_ prefix", got)
	}

	var result models.PipelineResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Intent.Intent != models.IntentAppointmentScheduling {
		t.Errorf("intent = %v, want APPOINTMENT_SCHEDULING", result.Intent.Intent)
	}
	if result.Intent.Entities["time"] != "15:00" {
		t.Errorf("time entity = %q, want 15:00", result.Intent.Entities["time"])
	}
	if len(result.Audio) == 0 {
		t.Error("expected synthesized audio in response")
	}
	if result.AudioDegraded {
		t.Error("mock synthesis should not degrade")
	}
}

func TestProcessPipeline_RawBody(t *testing.T) {
	server, _ := newTestServer(t, "what are your office hours")

	resp, err := http.Post(server.URL+"/v1/pipeline/process", "application/octet-stream", bytes.NewReader([]byte("fake-wav")))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result models.PipelineResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Intent.Intent != models.IntentGeneralInquiry {
		t.Errorf("intent = %v, want GENERAL_INQUIRY", result.Intent.Intent)
	}
}

func TestProcessPipeline_PrivacyModeField(t *testing.T) {
	server, _ := newTestServer(t, "My number is 555-123-4567")

	// Default (privacy on): redacted text present.
	resp := postMultipartAudio(t, server.URL+"/v1/pipeline/process", []byte("fake-wav"), nil)
	var withPrivacy models.PipelineResult
	if err := json.NewDecoder(resp.Body).Decode(&withPrivacy); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if withPrivacy.Transcription.RedactedText == nil || !strings.Contains(*withPrivacy.Transcription.RedactedText, "[PHONE]") {
		t.Error("expected [PHONE] redaction with privacy mode on")
	}

	// Explicitly off via form field.
	resp = postMultipartAudio(t, server.URL+"/v1/pipeline/process", []byte("fake-wav"), map[string]string{"privacy_mode": "false"})
	var withoutPrivacy models.PipelineResult
	if err := json.NewDecoder(resp.Body).Decode(&withoutPrivacy); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if withoutPrivacy.Transcription.RedactedText != nil {
		t.Error("redacted text must be absent with privacy mode off")
	}
}

func TestProcessPipeline_EmptyAudio(t *testing.T) {
	server, _ := newTestServer(t, "hello")

	resp, err := http.Post(server.URL+"/v1/pipeline/process", "application/octet-stream", bytes.NewReader(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Stage != "validation" {
		t.Errorf("stage = %q, want validation", body.Stage)
	}
	if !strings.HasPrefix(body.RequestID, "req_") {
		t.Errorf("error body missing correlation id: %+v", body)
	}
}

func TestRouteIntent(t *testing.T) {
	server, _ := newTestServer(t, "unused")

	body := strings.NewReader(`{"text": "what's my insurance copay"}`)
	resp, err := http.Post(server.URL+"/v1/intent/route", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Intent != models.IntentFinancialClearance {
		t.Errorf("intent = %v, want FINANCIAL_CLEARANCE", result.Intent)
	}
	if !result.HandoffRecommended {
		t.Error("financial clearance must recommend handoff")
	}
	if resp.Header.Get("X-Request-ID") != result.RequestID {
		t.Error("header and body request ids disagree")
	}
}

func TestRouteIntent_BadRequests(t *testing.T) {
	server, _ := newTestServer(t, "unused")

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"text": `},
		{"empty text", `{"text": ""}`},
		{"whitespace text", `{"text": "   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(server.URL+"/v1/intent/route", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestTranscribe(t *testing.T) {
	server, _ := newTestServer(t, "call me at 555-867-5309")

	resp := postMultipartAudio(t, server.URL+"/v1/stt/transcribe", []byte("fake-wav"), nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Text != "call me at 555-867-5309" {
		t.Errorf("text = %q", result.Text)
	}
	if result.RedactedText == nil || !strings.Contains(*result.RedactedText, "[PHONE]") {
		t.Error("expected redacted transcript by default")
	}
}

func TestSpeak(t *testing.T) {
	server, _ := newTestServer(t, "unused")

	body := strings.NewReader(`{"text": "thank you for calling", "voice": "en_US-lessac-medium", "speed": 1.0}`)
	resp, err := http.Post(server.URL+"/v1/tts/speak", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("Content-Type = %q, want audio/wav", ct)
	}
	if !strings.HasPrefix(resp.Header.Get("X-Request-ID"), "req_") {
		t.Error("missing X-Request-ID header")
	}
}

func TestSpeak_UnknownVoice(t *testing.T) {
	server, _ := newTestServer(t, "unused")

	body := strings.NewReader(`{"text": "hello", "voice": "klingon-basso"}`)
	resp, err := http.Post(server.URL+"/v1/tts/speak", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown voice", resp.StatusCode)
	}
}

func TestLiveness(t *testing.T) {
	server, _ := newTestServer(t, "unused")

	resp, err := http.Get(server.URL + "/v1/liveness")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestReadiness(t *testing.T) {
	server, registry := newTestServer(t, "unused")

	// Nothing probed yet: degraded.
	resp, err := http.Get(server.URL + "/v1/readiness")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 before providers are up", resp.StatusCode)
	}
	var degraded readinessResponse
	if err := json.NewDecoder(resp.Body).Decode(&degraded); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if degraded.Ready {
		t.Error("ready = true with no providers up")
	}
	if len(degraded.Providers) != 3 {
		t.Errorf("providers = %d, want 3", len(degraded.Providers))
	}

	// All providers up: ready.
	for _, role := range []health.Role{health.RoleTranscription, health.RoleClassification, health.RoleSynthesis} {
		registry.Update(role, true)
	}
	resp, err = http.Get(server.URL + "/v1/readiness")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 with all providers up", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(t, "unused")

	resp, err := http.Get(server.URL + "/v1/pipeline/process")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

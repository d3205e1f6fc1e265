package whisper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"frontoffice-voice-console/internal/service/stt"
)

func TestTranscribe(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("server could not parse upload: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("upload missing file field: %v", err)
		}
		if got := r.FormValue("response_format"); got != "json" {
			t.Errorf("response_format = %q, want json", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "hello there", "language": "en"}`))
	}))
	defer server.Close()

	a := New(server.URL)
	result, err := a.Transcribe(context.Background(), []byte("fake-wav"), "wav")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if gotPath != "/inference" {
		t.Errorf("path = %q, want /inference", gotPath)
	}
	if result.Text != "hello there" {
		t.Errorf("text = %q", result.Text)
	}
	if result.Language != "en" {
		t.Errorf("language = %q", result.Language)
	}
	if result.Confidence <= 0 || result.Confidence > 1 {
		t.Errorf("confidence = %v, want (0,1]", result.Confidence)
	}
}

func TestTranscribe_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	a := New(server.URL)
	_, err := a.Transcribe(context.Background(), []byte("fake-wav"), "wav")
	if !errors.Is(err, stt.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestTranscribe_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // nothing listening anymore

	a := New(server.URL)
	_, err := a.Transcribe(context.Background(), []byte("fake-wav"), "wav")
	if !errors.Is(err, stt.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestReady(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q, want /health", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()

	if !New(up.URL).Ready(context.Background()) {
		t.Error("expected ready against healthy server")
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	if New(down.URL).Ready(context.Background()) {
		t.Error("expected not ready against unhealthy server")
	}
}

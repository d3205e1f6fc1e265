package piper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"frontoffice-voice-console/internal/service/tts"
)

func TestSynthesize(t *testing.T) {
	var got synthesizeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/synthesize" {
			t.Errorf("path = %q, want /synthesize", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFF....WAVE"))
	}))
	defer server.Close()

	a := New(server.URL, "en_US-lessac-medium")
	audio, err := a.Synthesize(context.Background(), "hello", "en_US-amy-medium", 2.0)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if len(audio) == 0 {
		t.Error("expected audio bytes")
	}
	if got.Voice != "en_US-amy-medium" {
		t.Errorf("voice = %q, want caller's voice", got.Voice)
	}
	if got.LengthScale != 0.5 {
		t.Errorf("length_scale = %v, want 0.5 for double speed", got.LengthScale)
	}
}

func TestSynthesize_DefaultVoiceAndClamping(t *testing.T) {
	var got synthesizeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte("RIFF....WAVE"))
	}))
	defer server.Close()

	a := New(server.URL, "en_US-lessac-medium")
	if _, err := a.Synthesize(context.Background(), "hello", "", 9.0); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if got.Voice != "en_US-lessac-medium" {
		t.Errorf("voice = %q, want configured default", got.Voice)
	}
	// 9.0 clamps to 2.0, so length scale is 0.5.
	if got.LengthScale != 0.5 {
		t.Errorf("length_scale = %v, want 0.5", got.LengthScale)
	}
}

func TestSynthesize_UnknownVoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such voice", http.StatusNotFound)
	}))
	defer server.Close()

	a := New(server.URL, "en_US-lessac-medium")
	_, err := a.Synthesize(context.Background(), "hello", "klingon-basso", 1.0)
	if !errors.Is(err, tts.ErrInvalidVoice) {
		t.Fatalf("err = %v, want ErrInvalidVoice", err)
	}
}

func TestSynthesize_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of memory", http.StatusInternalServerError)
	}))
	defer server.Close()

	a := New(server.URL, "en_US-lessac-medium")
	_, err := a.Synthesize(context.Background(), "hello", "", 1.0)
	if !errors.Is(err, tts.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestReady(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q, want /health", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if !New(server.URL, "").Ready(context.Background()) {
		t.Error("expected ready against healthy server")
	}

	server.Close()
	if New(server.URL, "").Ready(context.Background()) {
		t.Error("expected not ready after server went away")
	}
}

// Package models defines the data structures shared across the voice pipeline.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Intent is the classified purpose of an utterance.
type Intent string

const (
	IntentAppointmentScheduling Intent = "APPOINTMENT_SCHEDULING"
	IntentFinancialClearance    Intent = "FINANCIAL_CLEARANCE"
	IntentGeneralInquiry        Intent = "GENERAL_INQUIRY"
	IntentUnknown               Intent = "UNKNOWN"
)

// RequestContext identifies one pipeline run. It is created once per
// incoming request, never mutated, and discarded after the response.
type RequestContext struct {
	ID          string    `json:"requestId"`
	CreatedAt   time.Time `json:"createdAt"`
	PrivacyMode bool      `json:"privacyMode"`
}

// NewRequestContext generates a fresh correlation identifier of the form
// req_<12 hex chars> and fixes the privacy mode for the request lifetime.
func NewRequestContext(privacyMode bool) RequestContext {
	hexID := strings.ReplaceAll(uuid.New().String(), "-", "")
	return RequestContext{
		ID:          "req_" + hexID[:12],
		CreatedAt:   time.Now().UTC(),
		PrivacyMode: privacyMode,
	}
}

// TranscriptionResult is the output of the transcription stage.
// RedactedText is set only when privacy mode is on and at least one
// redaction pattern matched.
type TranscriptionResult struct {
	Text         string  `json:"text"`
	RedactedText *string `json:"textRedacted,omitempty"`
	Confidence   float64 `json:"confidence"`
	Language     *string `json:"language,omitempty"`
	DurationMS   int64   `json:"durationMs"`
}

// EntityMap maps an entity category (date, time, phone, insurance_provider,
// billing_term, appointment_type, inquiry_type) to its extracted value.
// A category occurring multiple times keeps the first match.
type EntityMap map[string]string

// IntentResult is the output of the classification stage.
type IntentResult struct {
	Intent             Intent    `json:"intent"`
	Confidence         float64   `json:"confidence"`
	Entities           EntityMap `json:"entities"`
	HandoffRecommended bool      `json:"handoffRecommended"`
	Reasoning          string    `json:"reasoning,omitempty"`
	ResponseText       string    `json:"responseText"`
}

// ProviderStatus is the readiness of one capability role as seen by the
// health registry.
type ProviderStatus struct {
	Ready       bool      `json:"ready"`
	LastChecked time.Time `json:"lastChecked"`
}

// PipelineResult bundles everything one pipeline run produced, tagged with
// the correlation identifier of the request that produced it.
type PipelineResult struct {
	RequestID     string              `json:"requestId"`
	PrivacyMode   bool                `json:"privacyMode"`
	Transcription TranscriptionResult `json:"transcription"`
	Intent        IntentResult        `json:"intent"`
	Audio         []byte              `json:"audio"`
	AudioDegraded bool                `json:"audioDegraded"`
	DurationMS    int64               `json:"durationMs"`
}

// PipelineCompleted is the event published after a pipeline run finishes,
// including degraded runs where only synthesis failed.
type PipelineCompleted struct {
	EventType     string  `json:"eventType"`
	RequestID     string  `json:"requestId"`
	Timestamp     int64   `json:"timestamp"`
	Intent        string  `json:"intent"`
	Confidence    float64 `json:"confidence"`
	Handoff       bool    `json:"handoffRecommended"`
	AudioDegraded bool    `json:"audioDegraded"`
	DurationMS    int64   `json:"durationMs"`
}

// PipelineErrored is the event published when a pipeline run aborts.
type PipelineErrored struct {
	EventType string `json:"eventType"`
	RequestID string `json:"requestId"`
	Timestamp int64  `json:"timestamp"`
	Stage     string `json:"stage"`
	Reason    string `json:"reason"`
}

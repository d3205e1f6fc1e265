package intent

import (
	"strings"
	"testing"
	"time"

	"frontoffice-voice-console/internal/models"
	"frontoffice-voice-console/internal/service/entity"
)

var classifierNow = time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)

func classify(t *testing.T, text string, opts ...Option) models.IntentResult {
	t.Helper()
	c := New(opts...)
	return c.Classify(text, entity.Extract(text, classifierNow))
}

func TestClassify_AppointmentScheduling(t *testing.T) {
	tests := []string{
		"I need to schedule an appointment",
		"Can I book a doctor's visit for next week",
		"I want to make an appointment",
		"Book an appointment please",
		"I'd like to come in for a checkup",
	}

	for _, text := range tests {
		result := classify(t, text)
		if result.Intent != models.IntentAppointmentScheduling {
			t.Errorf("Classify(%q) = %s, want APPOINTMENT_SCHEDULING", text, result.Intent)
		}
		if result.Confidence <= 0 {
			t.Errorf("Classify(%q) confidence = %v, want > 0", text, result.Confidence)
		}
	}
}

func TestClassify_FinancialClearance(t *testing.T) {
	tests := []string{
		"what's my insurance copay",
		"how much is my deductible",
		"I have a question about my bill",
		"does my coverage include this",
	}

	for _, text := range tests {
		result := classify(t, text)
		if result.Intent != models.IntentFinancialClearance {
			t.Errorf("Classify(%q) = %s, want FINANCIAL_CLEARANCE", text, result.Intent)
		}
	}
}

func TestClassify_GeneralInquiry(t *testing.T) {
	tests := []string{
		"what are your office hours",
		"where is your location",
		"can you give me directions and parking information",
	}

	for _, text := range tests {
		result := classify(t, text)
		if result.Intent != models.IntentGeneralInquiry {
			t.Errorf("Classify(%q) = %s, want GENERAL_INQUIRY", text, result.Intent)
		}
	}
}

// Scenario: a clear scheduling request with date and time phrases.
func TestClassify_ScheduleNextTuesday(t *testing.T) {
	result := classify(t, "I need to schedule an appointment for next Tuesday at 3pm")

	if result.Intent != models.IntentAppointmentScheduling {
		t.Fatalf("intent = %s, want APPOINTMENT_SCHEDULING", result.Intent)
	}
	if got := result.Entities["date"]; got != "2025-01-21" {
		t.Errorf("date = %q, want 2025-01-21 (upcoming Tuesday)", got)
	}
	if got := result.Entities["time"]; got != "15:00" {
		t.Errorf("time = %q, want 15:00", got)
	}
	if result.Confidence < DefaultConfidenceThreshold {
		t.Errorf("confidence = %v, want >= %v", result.Confidence, DefaultConfidenceThreshold)
	}
	if result.HandoffRecommended {
		t.Error("expected no handoff for a confident scheduling request")
	}
	if !strings.Contains(result.ResponseText, "2025-01-21") || !strings.Contains(result.ResponseText, "15:00") {
		t.Errorf("expected response to echo date and time, got %q", result.ResponseText)
	}
}

// Scenario: financial topics always get a human-review flag.
func TestClassify_InsuranceCopayAlwaysHandsOff(t *testing.T) {
	result := classify(t, "what's my insurance copay")

	if result.Intent != models.IntentFinancialClearance {
		t.Fatalf("intent = %s, want FINANCIAL_CLEARANCE", result.Intent)
	}
	if !result.HandoffRecommended {
		t.Error("FINANCIAL_CLEARANCE must always recommend handoff")
	}
}

func TestClassify_FinancialHandoffRegardlessOfConfidence(t *testing.T) {
	// Saturate the financial score well past the threshold.
	result := classify(t, "insurance coverage copay deductible billing payment out of pocket")

	if result.Intent != models.IntentFinancialClearance {
		t.Fatalf("intent = %s, want FINANCIAL_CLEARANCE", result.Intent)
	}
	if result.Confidence < DefaultConfidenceThreshold {
		t.Fatalf("test setup: confidence %v should exceed threshold", result.Confidence)
	}
	if !result.HandoffRecommended {
		t.Error("handoff must be recommended even at high confidence")
	}
}

// Scenario: noise input.
func TestClassify_UnknownOnNoise(t *testing.T) {
	result := classify(t, "asdkjf random noise")

	if result.Intent != models.IntentUnknown {
		t.Fatalf("intent = %s, want UNKNOWN", result.Intent)
	}
	if result.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", result.Confidence)
	}
	if !result.HandoffRecommended {
		t.Error("expected handoff for UNKNOWN")
	}
	if result.ResponseText == "" {
		t.Error("expected a generic response for UNKNOWN")
	}
}

func TestClassify_ConfidenceBounds(t *testing.T) {
	inputs := []string{
		"",
		"schedule an appointment appointment appointment schedule book booking visit checkup consultation",
		"insurance",
		"help",
		"asdkjf",
	}

	for _, text := range inputs {
		result := classify(t, text)
		if result.Confidence < 0 || result.Confidence > 1 {
			t.Errorf("Classify(%q) confidence %v out of [0,1]", text, result.Confidence)
		}
		if result.Confidence == 0 && result.Intent != models.IntentUnknown {
			t.Errorf("Classify(%q): confidence 0 must mean UNKNOWN, got %s", text, result.Intent)
		}
		if result.Intent == models.IntentUnknown && result.Confidence != 0 {
			t.Errorf("Classify(%q): UNKNOWN must carry confidence 0, got %v", text, result.Confidence)
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	text := "I need to schedule an appointment for next Tuesday at 3pm"
	first := classify(t, text)

	for i := 0; i < 10; i++ {
		again := classify(t, text)
		if again.Intent != first.Intent || again.Confidence != first.Confidence ||
			again.HandoffRecommended != first.HandoffRecommended {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
		for k, v := range first.Entities {
			if again.Entities[k] != v {
				t.Fatalf("run %d entity %s differs: %q vs %q", i, k, again.Entities[k], v)
			}
		}
	}
}

func TestClassify_TieBreakPrecedence(t *testing.T) {
	// "visit" (appointment, 1.0) and "cost" (financial, 1.0) tie on raw
	// score; the earlier category in precedence order must win.
	result := classify(t, "visit cost")

	if result.Intent != models.IntentAppointmentScheduling {
		t.Errorf("tie must resolve to APPOINTMENT_SCHEDULING, got %s", result.Intent)
	}
}

func TestClassify_LowConfidenceHandsOff(t *testing.T) {
	// A single weak keyword scores below the threshold.
	result := classify(t, "I have a question")

	if result.Intent != models.IntentGeneralInquiry {
		t.Fatalf("intent = %s, want GENERAL_INQUIRY", result.Intent)
	}
	if result.Confidence >= DefaultConfidenceThreshold {
		t.Fatalf("test setup: confidence %v should be below threshold", result.Confidence)
	}
	if !result.HandoffRecommended {
		t.Error("expected handoff below confidence threshold")
	}
}

func TestClassify_ReasoningTrace(t *testing.T) {
	c := New(WithReasoning())
	result := c.Classify("schedule an appointment", nil)

	if result.Reasoning == "" {
		t.Fatal("expected reasoning trace when enabled")
	}
	for _, want := range []string{"APPOINTMENT_SCHEDULING", "FINANCIAL_CLEARANCE", "GENERAL_INQUIRY", "schedule an appointment", "winner="} {
		if !strings.Contains(result.Reasoning, want) {
			t.Errorf("reasoning %q missing %q", result.Reasoning, want)
		}
	}
}

func TestClassify_NoReasoningByDefault(t *testing.T) {
	result := classify(t, "schedule an appointment")
	if result.Reasoning != "" {
		t.Errorf("expected empty reasoning by default, got %q", result.Reasoning)
	}
}

func TestClassify_CustomThreshold(t *testing.T) {
	// "I need to reschedule" scores 3.0 of 4.0 saturation, so its 0.75
	// confidence clears the default threshold but not a stricter one.
	relaxed := New()
	if got := relaxed.Classify("I need to reschedule", nil); got.HandoffRecommended {
		t.Fatalf("test setup: confidence %v should clear the default threshold", got.Confidence)
	}

	strict := New(WithThreshold(0.99))
	result := strict.Classify("I need to reschedule", nil)
	if !result.HandoffRecommended {
		t.Errorf("expected handoff with a 0.99 threshold at confidence %v", result.Confidence)
	}
}

func TestClassify_NilEntities(t *testing.T) {
	c := New()
	result := c.Classify("schedule an appointment", nil)
	if result.Entities == nil {
		t.Error("expected non-nil entity map")
	}
}

func TestResponseFor_FinancialBranches(t *testing.T) {
	tests := []struct {
		entities models.EntityMap
		want     string
	}{
		{models.EntityMap{"billing_term": "copay"}, "copay"},
		{models.EntityMap{"billing_term": "deductible"}, "deductible"},
		{models.EntityMap{"insurance_provider": "medicare"}, "medicare"},
		{models.EntityMap{}, "insurance and billing"},
	}

	for _, tt := range tests {
		got := responseFor(models.IntentFinancialClearance, tt.entities)
		if !strings.Contains(got, tt.want) {
			t.Errorf("responseFor(financial, %v) = %q, want mention of %q", tt.entities, got, tt.want)
		}
	}
}

func TestResponseFor_GeneralBranches(t *testing.T) {
	tests := []struct {
		inquiry string
		want    string
	}{
		{"hours", "office hours"},
		{"location", "Medical Plaza"},
		{"contact", "555-0100"},
		{"", "What information"},
	}

	for _, tt := range tests {
		entities := models.EntityMap{}
		if tt.inquiry != "" {
			entities["inquiry_type"] = tt.inquiry
		}
		got := responseFor(models.IntentGeneralInquiry, entities)
		if !strings.Contains(got, tt.want) {
			t.Errorf("responseFor(general, inquiry=%q) = %q, want mention of %q", tt.inquiry, got, tt.want)
		}
	}
}

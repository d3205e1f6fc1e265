package intent

import "frontoffice-voice-console/internal/models"

// phraseWeight is one weighted phrase in a category's keyword table.
// Longer, more specific phrases carry more weight than bare keywords.
type phraseWeight struct {
	Phrase string
	Weight float64
}

// category owns the keyword table, the saturation constant that converts a
// raw score into a confidence, and the precedence position used for
// deterministic tie-breaking.
type category struct {
	Intent     models.Intent
	Phrases    []phraseWeight
	Saturation float64
}

// categories in fixed precedence order: on equal raw scores the earlier
// category wins (Appointment > Financial > General). Loaded once at
// process start and never mutated, so scoring is safe from any goroutine.
var categories = []category{
	{
		Intent:     models.IntentAppointmentScheduling,
		Saturation: 4.0,
		Phrases: []phraseWeight{
			{"schedule an appointment", 3.0},
			{"book an appointment", 3.0},
			{"make an appointment", 3.0},
			{"see the doctor", 2.0},
			{"reschedule", 2.0},
			{"appointment", 1.5},
			{"consultation", 1.5},
			{"check-up", 1.5},
			{"checkup", 1.5},
			{"schedule", 1.0},
			{"booking", 1.0},
			{"book", 1.0},
			{"visit", 1.0},
		},
	},
	{
		Intent:     models.IntentFinancialClearance,
		Saturation: 4.0,
		Phrases: []phraseWeight{
			{"out of pocket", 2.0},
			{"co-pay", 2.0},
			{"copay", 2.0},
			{"deductible", 2.0},
			{"insurance", 1.5},
			{"coverage", 1.5},
			{"billing", 1.0},
			{"bill", 1.0},
			{"payment", 1.0},
			{"charge", 1.0},
			{"financial", 1.0},
			{"cost", 1.0},
			{"price", 1.0},
			{"fee", 1.0},
		},
	},
	{
		Intent:     models.IntentGeneralInquiry,
		Saturation: 3.0,
		Phrases: []phraseWeight{
			{"office hours", 2.0},
			{"hours", 1.5},
			{"location", 1.5},
			{"address", 1.5},
			{"directions", 1.5},
			{"parking", 1.0},
			{"contact", 1.0},
			{"information", 1.0},
			{"question", 0.5},
			{"help", 0.5},
		},
	},
}

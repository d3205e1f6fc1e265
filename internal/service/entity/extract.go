// Package entity scans utterance text for structured values the intent
// layer can use: dates, times, phone numbers, and front-office domain terms.
package entity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"frontoffice-voice-console/internal/models"
)

var (
	weekdayPattern  = regexp.MustCompile(`\b(?:(next|this)\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	relativePattern = regexp.MustCompile(`\b(today|tomorrow)\b`)
	clockPattern    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	meridiemPattern = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm)\b`)
	phonePattern    = regexp.MustCompile(`\(?\b\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}\b`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// domainTerms maps recurring front-office vocabulary to entity categories.
// Term order within a category decides which value wins when several appear.
var domainTerms = []struct {
	category string
	term     string
	value    string
}{
	{"insurance_provider", "medicare", "medicare"},
	{"insurance_provider", "medicaid", "medicaid"},
	{"insurance_provider", "aetna", "aetna"},
	{"insurance_provider", "cigna", "cigna"},
	{"insurance_provider", "blue cross", "blue cross"},
	{"insurance_provider", "united healthcare", "united healthcare"},
	{"billing_term", "copay", "copay"},
	{"billing_term", "co-pay", "copay"},
	{"billing_term", "deductible", "deductible"},
	{"billing_term", "billing", "billing"},
	{"billing_term", "bill", "billing"},
	{"billing_term", "payment", "billing"},
	{"appointment_type", "checkup", "checkup"},
	{"appointment_type", "check-up", "checkup"},
	{"appointment_type", "consultation", "consultation"},
	{"inquiry_type", "hours", "hours"},
	{"inquiry_type", "open", "hours"},
	{"inquiry_type", "location", "location"},
	{"inquiry_type", "address", "location"},
	{"inquiry_type", "directions", "location"},
	{"inquiry_type", "contact", "contact"},
}

// Extract runs every detector over text and returns the combined entity
// map. It is a pure, total function: unextractable text yields an empty
// map. The reference time resolves relative date phrases ("tomorrow",
// "next tuesday") to calendar dates. Phone numbers are captured from the
// text as given, so callers must extract before redacting.
func Extract(text string, now time.Time) models.EntityMap {
	entities := models.EntityMap{}
	normalized := normalize(text)

	if date, ok := detectDate(normalized, now); ok {
		entities["date"] = date
	}
	if clock, ok := detectTime(normalized); ok {
		entities["time"] = clock
	}
	if phone := phonePattern.FindString(text); phone != "" {
		entities["phone"] = phone
	}
	detectDomainTerms(normalized, entities)

	return entities
}

// normalize lower-cases and collapses whitespace so detectors see one
// canonical form of the utterance.
func normalize(text string) string {
	return spacePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
}

// detectDate resolves the first date phrase in text to an ISO calendar
// date. Bare, "next" and "this" weekday references all resolve to the
// next occurrence strictly after the reference day; "today" and
// "tomorrow" resolve to offsets 0 and 1.
func detectDate(text string, now time.Time) (string, bool) {
	wdLoc := weekdayPattern.FindStringSubmatchIndex(text)
	relLoc := relativePattern.FindStringIndex(text)

	// First occurrence wins when both kinds of phrase appear.
	if relLoc != nil && (wdLoc == nil || relLoc[0] < wdLoc[0]) {
		offset := 0
		if text[relLoc[0]:relLoc[1]] == "tomorrow" {
			offset = 1
		}
		return now.AddDate(0, 0, offset).Format("2006-01-02"), true
	}

	if wdLoc != nil {
		name := text[wdLoc[4]:wdLoc[5]]
		target := weekdays[name]
		days := int(target-now.Weekday()+7) % 7
		if days == 0 {
			days = 7
		}
		return now.AddDate(0, 0, days).Format("2006-01-02"), true
	}

	return "", false
}

// detectTime finds the first clock phrase and normalizes it to 24-hour
// HH:MM. Handles "15:00", "3:00 pm" and "3pm" styles.
func detectTime(text string) (string, bool) {
	clockLoc := clockPattern.FindStringSubmatchIndex(text)
	merLoc := meridiemPattern.FindStringSubmatchIndex(text)

	if clockLoc != nil && (merLoc == nil || clockLoc[0] <= merLoc[0]) {
		m := clockPattern.FindStringSubmatch(text[clockLoc[0]:clockLoc[1]])
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return "", false
		}
		return formatClock(hour, minute, m[3]), true
	}

	if merLoc != nil {
		m := meridiemPattern.FindStringSubmatch(text[merLoc[0]:merLoc[1]])
		hour, _ := strconv.Atoi(m[1])
		if hour < 1 || hour > 12 {
			return "", false
		}
		return formatClock(hour, 0, m[2]), true
	}

	return "", false
}

func formatClock(hour, minute int, meridiem string) string {
	switch meridiem {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// detectDomainTerms adds the first matching value per category. Substring
// matching on normalized text keeps this in line with the keyword scoring
// the classifier uses.
func detectDomainTerms(text string, entities models.EntityMap) {
	for _, dt := range domainTerms {
		if _, seen := entities[dt.category]; seen {
			continue
		}
		if strings.Contains(text, dt.term) {
			entities[dt.category] = dt.value
		}
	}
}

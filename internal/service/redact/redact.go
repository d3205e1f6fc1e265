// Package redact rewrites transcript text to mask personally identifiable
// information before it is logged or returned to privacy-mode callers.
//
// Redaction is advisory masking, not erasure: the caller keeps the raw
// transcript and decides which variant to expose based on privacy mode.
package redact

import (
	"regexp"
	"strings"
)

// Rule pairs a PII category with its matcher and placeholder token.
// Rules are applied in order, each over the output of the previous one,
// so a later rule can never re-match an inserted placeholder.
type Rule struct {
	Category    string
	Pattern     *regexp.Regexp
	Placeholder string
}

// Finding is one matched PII value, captured before masking for audit use.
type Finding struct {
	Category string
	Value    string
}

var (
	phonePattern = regexp.MustCompile(`\(?\b\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}\b`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	ssnPattern   = regexp.MustCompile(`\b\d{3}[-. ]?\d{2}[-. ]?\d{4}\b`)

	// Common first names only. This is a known precision/recall gap kept on
	// purpose: uncommon names pass through, and true NER is out of scope.
	commonNames = []string{
		"john", "mary", "james", "patricia", "robert", "jennifer", "michael",
		"linda", "william", "elizabeth", "david", "barbara", "richard", "susan",
		"joseph", "jessica", "thomas", "sarah", "charles", "karen",
	}
	namePattern = regexp.MustCompile(`(?i)\b(` + strings.Join(commonNames, "|") + `)\b`)
)

// rules in fixed priority order: numeric patterns before names so that a
// digit group is always claimed by its most specific category first.
var rules = []Rule{
	{Category: "phone", Pattern: phonePattern, Placeholder: "[PHONE]"},
	{Category: "email", Pattern: emailPattern, Placeholder: "[EMAIL]"},
	{Category: "ssn", Pattern: ssnPattern, Placeholder: "[SSN]"},
	{Category: "name", Pattern: namePattern, Placeholder: "[NAME]"},
}

// Redact replaces every PII match in text with its category placeholder and
// reports how many replacements were made. It is total and idempotent:
// any input returns normally, text without matches comes back unchanged,
// and placeholders never match a rule themselves.
func Redact(text string) (string, int) {
	result := text
	count := 0
	for _, r := range rules {
		matches := len(r.Pattern.FindAllStringIndex(result, -1))
		if matches == 0 {
			continue
		}
		count += matches
		result = r.Pattern.ReplaceAllString(result, r.Placeholder)
	}
	return result, count
}

// Entities lists the PII values present in text without modifying it,
// in rule priority order. Intended for audit logging before masking.
func Entities(text string) []Finding {
	var findings []Finding
	remaining := text
	for _, r := range rules {
		for _, m := range r.Pattern.FindAllString(remaining, -1) {
			findings = append(findings, Finding{Category: r.Category, Value: m})
		}
		// Later rules scan the masked text so one span is reported once.
		remaining = r.Pattern.ReplaceAllString(remaining, r.Placeholder)
	}
	return findings
}

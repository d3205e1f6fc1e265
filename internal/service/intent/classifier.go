// Package intent classifies utterance text into front-office intents using
// a transparent weighted-keyword decision table. No model, no training:
// every classification can be audited from its reasoning trace.
package intent

import (
	"fmt"
	"regexp"
	"strings"

	"frontoffice-voice-console/internal/models"
)

// DefaultConfidenceThreshold is the confidence below which a human handoff
// is recommended.
const DefaultConfidenceThreshold = 0.6

var collapseSpaces = regexp.MustCompile(`\s+`)

// CategoryScore is one category's contribution to the reasoning trace.
type CategoryScore struct {
	Intent  models.Intent
	Raw     float64
	Matched []string
}

// Classifier scores text against the fixed keyword tables. It holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	threshold      float64
	traceReasoning bool
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithThreshold overrides the handoff confidence threshold.
func WithThreshold(threshold float64) Option {
	return func(c *Classifier) { c.threshold = threshold }
}

// WithReasoning enables the human-readable reasoning trace on results.
// Intended for debug contexts only.
func WithReasoning() Option {
	return func(c *Classifier) { c.traceReasoning = true }
}

// New creates a Classifier with the default threshold.
func New(opts ...Option) *Classifier {
	c := &Classifier{threshold: DefaultConfidenceThreshold}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Threshold returns the configured handoff confidence threshold.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Classify scores text against every category and returns the winning
// intent with its confidence, the supplied entities, the handoff decision
// and the canned response text. It is deterministic for identical input
// and never fails: unmatched input yields UNKNOWN with confidence 0.
func (c *Classifier) Classify(text string, entities models.EntityMap) models.IntentResult {
	if entities == nil {
		entities = models.EntityMap{}
	}
	normalized := collapseSpaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")

	scores := scoreCategories(normalized)

	winner, winningScore := pickWinner(scores)

	if winningScore.Raw == 0 {
		result := models.IntentResult{
			Intent:             models.IntentUnknown,
			Confidence:         0,
			Entities:           entities,
			HandoffRecommended: true,
			ResponseText:       responseFor(models.IntentUnknown, entities),
		}
		if c.traceReasoning {
			result.Reasoning = renderTrace(scores, models.IntentUnknown)
		}
		return result
	}

	confidence := winningScore.Raw / winner.Saturation
	if confidence > 1.0 {
		confidence = 1.0
	}

	handoff := confidence < c.threshold || winner.Intent == models.IntentFinancialClearance

	result := models.IntentResult{
		Intent:             winner.Intent,
		Confidence:         confidence,
		Entities:           entities,
		HandoffRecommended: handoff,
		ResponseText:       responseFor(winner.Intent, entities),
	}
	if c.traceReasoning {
		result.Reasoning = renderTrace(scores, winner.Intent)
	}
	return result
}

// scoreCategories computes the raw score and matched phrases for every
// category, in precedence order.
func scoreCategories(normalized string) []CategoryScore {
	scores := make([]CategoryScore, 0, len(categories))
	for _, cat := range categories {
		cs := CategoryScore{Intent: cat.Intent}
		for _, pw := range cat.Phrases {
			if strings.Contains(normalized, pw.Phrase) {
				cs.Raw += pw.Weight
				cs.Matched = append(cs.Matched, pw.Phrase)
			}
		}
		scores = append(scores, cs)
	}
	return scores
}

// pickWinner selects the highest raw score. Ties are broken by the fixed
// precedence order of the categories slice, never by map iteration.
func pickWinner(scores []CategoryScore) (category, CategoryScore) {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i].Raw > scores[best].Raw {
			best = i
		}
	}
	return categories[best], scores[best]
}

// renderTrace builds the audit string: per-category raw scores, matched
// phrases, and the winning category.
func renderTrace(scores []CategoryScore, winner models.Intent) string {
	var b strings.Builder
	for i, cs := range scores {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s=%.1f", cs.Intent, cs.Raw)
		if len(cs.Matched) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(cs.Matched, ", "))
		}
	}
	fmt.Fprintf(&b, "; winner=%s", winner)
	return b.String()
}

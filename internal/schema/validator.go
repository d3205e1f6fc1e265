// Package schema validates outbound event payloads against their JSON
// Schemas before they leave the process.
package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const completedSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "pipeline.completed",
  "type": "object",
  "required": ["eventType", "requestId", "timestamp", "intent", "confidence", "handoffRecommended", "audioDegraded", "durationMs"],
  "properties": {
    "eventType": {"const": "pipeline.completed"},
    "requestId": {"type": "string", "pattern": "^req_[0-9a-f]{12}$"},
    "timestamp": {"type": "integer", "minimum": 0},
    "intent": {"enum": ["APPOINTMENT_SCHEDULING", "FINANCIAL_CLEARANCE", "GENERAL_INQUIRY", "UNKNOWN"]},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "handoffRecommended": {"type": "boolean"},
    "audioDegraded": {"type": "boolean"},
    "durationMs": {"type": "integer", "minimum": 0}
  },
  "additionalProperties": false
}`

const erroredSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "pipeline.errored",
  "type": "object",
  "required": ["eventType", "requestId", "timestamp", "stage", "reason"],
  "properties": {
    "eventType": {"const": "pipeline.errored"},
    "requestId": {"type": "string", "pattern": "^req_[0-9a-f]{12}$"},
    "timestamp": {"type": "integer", "minimum": 0},
    "stage": {"enum": ["validation", "transcription", "redaction", "classification", "synthesis"]},
    "reason": {"type": "string", "minLength": 1}
  },
  "additionalProperties": false
}`

// Validator holds the compiled schemas, keyed by event type.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// New compiles the event schemas. Compilation failure is a programming
// error surfaced at startup, not at publish time.
func New() (*Validator, error) {
	sources := map[string]string{
		"pipeline.completed": completedSchema,
		"pipeline.errored":   erroredSchema,
	}

	schemas := make(map[string]*gojsonschema.Schema, len(sources))
	for eventType, raw := range sources {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", eventType, err)
		}
		schemas[eventType] = compiled
	}
	return &Validator{schemas: schemas}, nil
}

// Validate checks a marshaled payload against the schema registered for
// its event type. Unknown event types are rejected outright.
func (v *Validator) Validate(eventType string, payload []byte) error {
	compiled, ok := v.schemas[eventType]
	if !ok {
		return fmt.Errorf("no schema registered for event type %q", eventType)
	}

	result, err := compiled.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("validate %s payload: %w", eventType, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("%s payload rejected: %s", eventType, strings.Join(details, "; "))
	}
	return nil
}

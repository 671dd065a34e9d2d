// Package validation decides whether an inbound raw tracking payload is
// well-formed and shapes accepted payloads into canonical Interaction records.
//
// Validation and normalization are split on purpose: Validate can reject,
// Normalize never fails. Callers must only normalize payloads that validated.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	v1 "github.com/pitchside-lab/project-pitchside/internal/api/v1"
	"github.com/pitchside-lab/project-pitchside/internal/core/identity"
)

const (
	// MaxClockSkewSeconds bounds |server now - client timestamp|. Events
	// outside the window are rejected, never stored.
	MaxClockSkewSeconds = 3600

	maxStringLength = 500
	maxURLLength    = 2000
)

var stringFields = []string{"element", "page_url", "target", "value"}

var numericBounds = []struct {
	field string
	min   float64
	max   float64
}{
	{"x", 0, 10000},
	{"y", 0, 10000},
	{"scroll_depth", 0, 100},
	{"duration", 0, 86400000},
}

// allowedFields is the normalization allow-list. Unknown keys are silently
// dropped, not errors.
var allowedFields = map[string]struct{}{
	"user_id": {}, "session_id": {}, "event_type": {}, "timestamp": {},
	"element": {}, "page_url": {}, "target": {}, "value": {},
	"x": {}, "y": {}, "scroll_depth": {}, "duration": {},
	"metadata": {},
}

// Validator checks raw tracking payloads against the fixed rule set.
type Validator struct {
	nowFn func() time.Time
}

// NewValidator returns a Validator reading the system clock.
func NewValidator() *Validator {
	return &Validator{nowFn: func() time.Time { return time.Now().UTC() }}
}

// WithNow replaces the clock source. Intended for tests.
func (v *Validator) WithNow(nowFn func() time.Time) *Validator {
	v.nowFn = nowFn
	return v
}

// Validate runs the ordered rule set against data. The first failing rule
// wins; on failure the returned reason names the offending field or value.
// The server clock is read exactly once per call.
func (v *Validator) Validate(data map[string]interface{}) (bool, string) {
	if data == nil {
		return false, "data must be an object"
	}

	for _, field := range []string{"user_id", "event_type", "timestamp"} {
		if _, ok := data[field]; !ok {
			return false, "missing required field: " + field
		}
	}

	userID, ok := data["user_id"].(string)
	if !ok || !identity.IsValidUserID(userID) {
		return false, "invalid user_id format"
	}

	eventType, ok := data["event_type"].(string)
	if !ok || !isAllowedEventType(eventType) {
		return false, "invalid event_type, must be one of: " + strings.Join(v1.AllowedEventTypes, ", ")
	}

	ts, ok := numericValue(data["timestamp"])
	if !ok {
		return false, "timestamp must be a number"
	}
	now := float64(v.nowFn().Unix())
	if math.Abs(now-ts) > MaxClockSkewSeconds {
		return false, "timestamp too far from current time"
	}

	if raw, ok := data["session_id"]; ok {
		sessionID, isStr := raw.(string)
		if !isStr || !identity.IsValidSessionID(sessionID) {
			return false, "invalid session_id format"
		}
	}

	for _, field := range stringFields {
		raw, ok := data[field]
		if !ok {
			continue
		}
		s, isStr := raw.(string)
		if !isStr {
			return false, field + " must be a string"
		}
		limit := maxStringLength
		if field == "page_url" {
			limit = maxURLLength
		}
		if len(s) > limit {
			return false, fmt.Sprintf("%s exceeds maximum length of %d", field, limit)
		}
	}

	for _, bound := range numericBounds {
		raw, ok := data[bound.field]
		if !ok {
			continue
		}
		n, isNum := numericValue(raw)
		if !isNum {
			return false, bound.field + " must be a number"
		}
		if n < bound.min || n > bound.max {
			return false, fmt.Sprintf("%s must be between %g and %g", bound.field, bound.min, bound.max)
		}
	}

	return true, ""
}

// Normalize shapes a validated payload into its canonical record: unknown
// keys are dropped, string values lose angle brackets and surrounding
// whitespace, and the server ingestion time is stamped. Normalizing an
// already-normalized payload yields the same record (given a fixed clock).
func (v *Validator) Normalize(data map[string]interface{}) *v1.Interaction {
	evt := &v1.Interaction{IngestedAt: v.nowFn()}

	for field, raw := range data {
		if _, ok := allowedFields[field]; !ok {
			continue
		}
		switch field {
		case "user_id":
			evt.UserID = sanitizeString(raw)
		case "event_type":
			evt.EventType = sanitizeString(raw)
		case "timestamp":
			evt.Timestamp, _ = numericValue(raw)
		case "session_id":
			evt.SessionID = sanitizedStringPtr(raw)
		case "element":
			evt.Element = sanitizedStringPtr(raw)
		case "page_url":
			evt.PageURL = sanitizedStringPtr(raw)
		case "target":
			evt.Target = sanitizedStringPtr(raw)
		case "value":
			evt.Value = sanitizedStringPtr(raw)
		case "x":
			evt.X = numericPtr(raw)
		case "y":
			evt.Y = numericPtr(raw)
		case "scroll_depth":
			evt.ScrollDepth = numericPtr(raw)
		case "duration":
			evt.Duration = numericPtr(raw)
		case "metadata":
			if m, ok := raw.(map[string]interface{}); ok {
				evt.Metadata = m
			}
		}
	}

	return evt
}

func isAllowedEventType(s string) bool {
	for _, t := range v1.AllowedEventTypes {
		if s == t {
			return true
		}
	}
	return false
}

// numericValue accepts the numeric shapes JSON decoding can produce.
func numericValue(raw interface{}) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func sanitizeString(raw interface{}) string {
	s, _ := raw.(string)
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	return strings.TrimSpace(s)
}

func sanitizedStringPtr(raw interface{}) *string {
	if _, ok := raw.(string); !ok {
		return nil
	}
	s := sanitizeString(raw)
	return &s
}

func numericPtr(raw interface{}) *float64 {
	n, ok := numericValue(raw)
	if !ok {
		return nil
	}
	return &n
}

package v1

import "time"

// Accepted interaction kinds. Anything outside this set is rejected at validation.
const (
	EventClick        = "click"
	EventHover        = "hover"
	EventScroll       = "scroll"
	EventPageView     = "page_view"
	EventSessionStart = "session_start"
	EventSessionEnd   = "session_end"
	EventElementFocus = "element_focus"
	EventMouseMove    = "mouse_move"
	EventKeyPress     = "key_press"
	EventFormSubmit   = "form_submit"
)

// AllowedEventTypes lists the accepted event types in canonical order.
// The order is stable because validation error messages enumerate it.
var AllowedEventTypes = []string{
	EventClick,
	EventHover,
	EventScroll,
	EventPageView,
	EventSessionStart,
	EventSessionEnd,
	EventElementFocus,
	EventMouseMove,
	EventKeyPress,
	EventFormSubmit,
}

// Interaction is the canonical, normalized form of a submitted tracking event.
// Immutable once stored; the store only ever appends.
//
// Timestamp is the client-supplied clock reading (unix seconds, may carry a
// fractional part). IngestedAt is the server clock at acceptance and is the
// audit-trail counterpart of Timestamp.
type Interaction struct {
	// IngestSeq is a monotonic sequence assigned by the database (BIGSERIAL).
	// Not exposed in the public API.
	IngestSeq int64 `json:"-"`

	UserID    string  `json:"user_id"`
	EventType string  `json:"event_type"`
	Timestamp float64 `json:"timestamp"`

	// Optional fields. Absence is a nil pointer, never a zero value, so
	// "x was 0" and "x was omitted" stay distinguishable.
	SessionID   *string  `json:"session_id,omitempty"`
	Element     *string  `json:"element,omitempty"`
	PageURL     *string  `json:"page_url,omitempty"`
	Target      *string  `json:"target,omitempty"`
	Value       *string  `json:"value,omitempty"`
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	ScrollDepth *float64 `json:"scroll_depth,omitempty"`
	Duration    *float64 `json:"duration,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`

	IngestedAt time.Time `json:"ingested_at"`
}

// OccurredAt converts the client timestamp into a time.Time in UTC.
func (i *Interaction) OccurredAt() time.Time {
	secs := int64(i.Timestamp)
	nanos := int64((i.Timestamp - float64(secs)) * float64(time.Second))
	return time.Unix(secs, nanos).UTC()
}

// User is the per-identifier aggregate record. Exactly one exists per
// distinct user identifier ever seen; user_id is the upsert key.
type User struct {
	UserID            string                 `json:"user_id"`
	Fingerprint       map[string]interface{} `json:"fingerprint"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	LastSeen          time.Time              `json:"last_seen"`
	TotalInteractions int64                  `json:"total_interactions"`
	TotalSessions     int64                  `json:"total_sessions"`
}

// Session is one browsing session boundary record, keyed by
// (user_id, session_id). EndedAt is nil until the session ends.
type Session struct {
	UserID    string     `json:"user_id"`
	SessionID string     `json:"session_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Active    bool       `json:"active"`
}

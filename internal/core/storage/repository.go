package storage

import (
	"context"
	"errors"
	"time"

	v1 "github.com/pitchside-lab/project-pitchside/internal/api/v1"
)

// ErrNotFound is returned when a record does not exist. Callers treat it as
// an expected outcome, not a fault.
var ErrNotFound = errors.New("record not found")

// EventTypeCount is one row of a grouped event-type frequency query.
type EventTypeCount struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

// UserInteractionCount is one row of a per-user interaction frequency query.
type UserInteractionCount struct {
	UserID string `json:"user_id"`
	Count  int64  `json:"count"`
}

// EventStore is the append-only interaction store plus the range/filter
// queries the aggregation engine needs. Interactions are never updated or
// deleted once saved.
type EventStore interface {
	SaveInteraction(ctx context.Context, evt *v1.Interaction) error

	// RecentByUser fetches the newest interactions for one user, ordered by
	// client timestamp descending.
	RecentByUser(ctx context.Context, userID string, limit int) ([]*v1.Interaction, error)

	// ClicksSince fetches all click interactions with timestamp >= sinceUnix.
	ClicksSince(ctx context.Context, sinceUnix float64) ([]*v1.Interaction, error)

	CountInteractions(ctx context.Context) (int64, error)
	TopEventTypes(ctx context.Context, limit int) ([]EventTypeCount, error)
	TopUsersByInteractions(ctx context.Context, limit int) ([]UserInteractionCount, error)
}

// UserStore owns the per-user aggregate records. The create path relies on a
// uniqueness constraint on user_id at the storage layer; concurrent creates
// for the same unseen identifier must collapse to a single record.
type UserStore interface {
	// CreateUser inserts the user unless one already exists for the same
	// user_id. Returns created=false (not an error) when the identifier was
	// already present.
	CreateUser(ctx context.Context, user *v1.User) (created bool, err error)

	GetUser(ctx context.Context, userID string) (*v1.User, error)
	ListUsers(ctx context.Context, limit, skip int) ([]*v1.User, error)
	CountUsers(ctx context.Context) (int64, error)
	CountUsersCreatedSince(ctx context.Context, since time.Time) (int64, error)

	UpdateLastSeen(ctx context.Context, userID string, seenAt time.Time) error

	// Increment* are single-statement atomic increments. They must never be
	// implemented as read-modify-write from application code.
	IncrementInteractions(ctx context.Context, userID string) error
	IncrementSessions(ctx context.Context, userID string) error
}

// SessionStore owns session boundary records keyed by (user_id, session_id).
type SessionStore interface {
	// StartSession records a session start. A duplicate start for the same
	// (user_id, session_id) is a no-op and returns created=false.
	StartSession(ctx context.Context, userID, sessionID string, startedAt time.Time) (created bool, err error)

	// EndSession marks the matching open session inactive. Ending a session
	// that was never started (or already ended) is a no-op, not an error.
	EndSession(ctx context.Context, userID, sessionID string, endedAt time.Time) error

	CountSessions(ctx context.Context) (int64, error)
}

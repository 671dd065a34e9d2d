package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// StartSession records a session start. The (user_id, session_id) unique
// constraint keeps at most one record per pair; a duplicate start is a no-op
// reported as created=false.
func (a *Adapter) StartSession(ctx context.Context, userID, sessionID string, startedAt time.Time) (bool, error) {
	var insertedID string
	err := a.db.QueryRowContext(ctx, queryStartSession, userID, sessionID, startedAt).Scan(&insertedID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to start session: %w", err)
	}

	slog.Debug("[Postgres] Started session", "user_id", userID, "session_id", sessionID)
	return true, nil
}

// EndSession marks the matching open session inactive. Zero matched rows
// (never started, or already ended) is success with no state change.
func (a *Adapter) EndSession(ctx context.Context, userID, sessionID string, endedAt time.Time) error {
	if _, err := a.db.ExecContext(ctx, queryEndSession, userID, sessionID, endedAt); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

func (a *Adapter) CountSessions(ctx context.Context) (int64, error) {
	var n int64
	if err := a.db.QueryRowContext(ctx, queryCountSessions).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/pitchside-lab/project-pitchside/internal/api/v1"
	"github.com/pitchside-lab/project-pitchside/internal/core/storage"
)

// CreateUser inserts the user record unless the identifier is already known.
// The user_id primary key carries the uniqueness guarantee: the losing side
// of a concurrent create gets zero rows back and is reported as
// created=false, never as an error.
func (a *Adapter) CreateUser(ctx context.Context, user *v1.User) (bool, error) {
	fingerprintJSON, err := marshalMetadata(user.Fingerprint)
	if err != nil {
		return false, fmt.Errorf("failed to marshal fingerprint: %w", err)
	}
	metadataJSON, err := marshalMetadata(user.Metadata)
	if err != nil {
		return false, err
	}

	var insertedID string
	err = a.db.QueryRowContext(ctx, queryCreateUser,
		user.UserID,
		fingerprintJSON,
		metadataJSON,
		user.CreatedAt,
		user.LastSeen,
	).Scan(&insertedID)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Debug("[Postgres] Created user", "user_id", insertedID)
	return true, nil
}

func (a *Adapter) GetUser(ctx context.Context, userID string) (*v1.User, error) {
	user, err := scanUserRow(a.db.QueryRowContext(ctx, queryGetUser, userID))
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return user, nil
}

// ListUsers returns one page of users in stable storage order.
func (a *Adapter) ListUsers(ctx context.Context, limit, skip int) ([]*v1.User, error) {
	rows, err := a.db.QueryContext(ctx, queryListUsers, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*v1.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

func (a *Adapter) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := a.db.QueryRowContext(ctx, queryCountUsers).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (a *Adapter) CountUsersCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	if err := a.db.QueryRowContext(ctx, queryCountUsersCreatedSince, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count new users: %w", err)
	}
	return n, nil
}

func (a *Adapter) UpdateLastSeen(ctx context.Context, userID string, seenAt time.Time) error {
	if _, err := a.db.ExecContext(ctx, queryUpdateLastSeen, userID, seenAt); err != nil {
		return fmt.Errorf("failed to update last_seen for %s: %w", userID, err)
	}
	return nil
}

// IncrementInteractions bumps the interaction counter in one atomic UPDATE.
func (a *Adapter) IncrementInteractions(ctx context.Context, userID string) error {
	if _, err := a.db.ExecContext(ctx, queryIncrementInteractions, userID); err != nil {
		return fmt.Errorf("failed to increment interactions for %s: %w", userID, err)
	}
	return nil
}

// IncrementSessions bumps the session counter in one atomic UPDATE.
func (a *Adapter) IncrementSessions(ctx context.Context, userID string) error {
	if _, err := a.db.ExecContext(ctx, queryIncrementSessions, userID); err != nil {
		return fmt.Errorf("failed to increment sessions for %s: %w", userID, err)
	}
	return nil
}

// Package users owns per-user aggregate state: idempotent creation on first
// sight, last-seen touches, and atomic counter increments.
package users

import (
	"context"
	"log/slog"
	"time"

	v1 "github.com/pitchside-lab/project-pitchside/internal/api/v1"
	"github.com/pitchside-lab/project-pitchside/internal/core/storage"
)

// MaxListLimit is the hard ceiling on administrative listing page size,
// regardless of the caller-requested value.
const MaxListLimit = 100

// DefaultListLimit applies when the caller doesn't request a page size.
const DefaultListLimit = 50

// Directory mediates all user-record access.
type Directory struct {
	store storage.UserStore
	nowFn func() time.Time
}

func NewDirectory(store storage.UserStore) *Directory {
	if store == nil {
		panic("users: store must not be nil")
	}
	return &Directory{
		store: store,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// WithNow replaces the clock source. Intended for tests.
func (d *Directory) WithNow(nowFn func() time.Time) *Directory {
	d.nowFn = nowFn
	return d
}

// EnsureUser creates the user record on first sight, capturing the
// fingerprint exactly once. Calling again for a known identifier is a no-op:
// the storage uniqueness constraint absorbs concurrent duplicate creates, so
// the losing writer proceeds as if the record already existed.
func (d *Directory) EnsureUser(ctx context.Context, userID string, fingerprint map[string]interface{}) error {
	now := d.nowFn()
	created, err := d.store.CreateUser(ctx, &v1.User{
		UserID:      userID,
		Fingerprint: fingerprint,
		CreatedAt:   now,
		LastSeen:    now,
	})
	if err != nil {
		return err
	}
	if created {
		slog.Info("New user registered", "user_id", userID)
	}
	return nil
}

// TouchLastSeen is best effort: a failure is logged and swallowed so the
// ingestion critical path never blocks on it.
func (d *Directory) TouchLastSeen(ctx context.Context, userID string) {
	if err := d.store.UpdateLastSeen(ctx, userID, d.nowFn()); err != nil {
		slog.Warn("Failed to update last_seen", "user_id", userID, "error", err)
	}
}

func (d *Directory) IncrementInteractions(ctx context.Context, userID string) error {
	return d.store.IncrementInteractions(ctx, userID)
}

func (d *Directory) IncrementSessions(ctx context.Context, userID string) error {
	return d.store.IncrementSessions(ctx, userID)
}

func (d *Directory) GetUser(ctx context.Context, userID string) (*v1.User, error) {
	return d.store.GetUser(ctx, userID)
}

// UserPage is one page of the administrative listing.
type UserPage struct {
	Users []*v1.User `json:"users"`
	Total int64      `json:"total"`
	Limit int        `json:"limit"`
	Skip  int        `json:"skip"`
	// HasMore reports whether records remain past this page.
	HasMore bool `json:"has_more"`
}

// ListUsers returns a page of users in stable storage order. The limit is
// clamped to [0, MaxListLimit] server-side to bound response size.
func (d *Directory) ListUsers(ctx context.Context, limit, skip int) (*UserPage, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if skip < 0 {
		skip = 0
	}

	users, err := d.store.ListUsers(ctx, limit, skip)
	if err != nil {
		return nil, err
	}
	total, err := d.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	return &UserPage{
		Users:   users,
		Total:   total,
		Limit:   limit,
		Skip:    skip,
		HasMore: int64(skip+limit) < total,
	}, nil
}

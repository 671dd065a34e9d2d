package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSession(t *testing.T) {
	startedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		mockResult  func(mock sqlmock.Sqlmock)
		wantCreated bool
		wantErr     bool
	}{
		{
			name: "new pair inserts",
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(queryStartSession)).
					WithArgs("user_a1b2c3d4e5f6", "session_a1b2c3d4e5f6_1748779200", startedAt).
					WillReturnRows(sqlmock.NewRows([]string{"session_id"}).
						AddRow("session_a1b2c3d4e5f6_1748779200"))
			},
			wantCreated: true,
		},
		{
			name: "repeated start is a no-op",
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(queryStartSession)).
					WillReturnError(sql.ErrNoRows)
			},
			wantCreated: false,
		},
		{
			name: "database failure surfaces",
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(queryStartSession)).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adapter, mock, db := newMockAdapter(t)
			defer db.Close()

			tc.mockResult(mock)

			created, err := adapter.StartSession(context.Background(),
				"user_a1b2c3d4e5f6", "session_a1b2c3d4e5f6_1748779200", startedAt)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.wantCreated, created)
			}

			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEndSession(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	endedAt := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(queryEndSession)).
		WithArgs("user_a1b2c3d4e5f6", "session_a1b2c3d4e5f6_1748779200", endedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.EndSession(context.Background(),
		"user_a1b2c3d4e5f6", "session_a1b2c3d4e5f6_1748779200", endedAt)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Ending a session that was never started (or already ended) matches zero
// rows and still succeeds.
func TestEndSession_UnknownSessionSucceeds(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	endedAt := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(queryEndSession)).
		WithArgs("user_a1b2c3d4e5f6", "session_ffffffffffff_1748779200", endedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.EndSession(context.Background(),
		"user_a1b2c3d4e5f6", "session_ffffffffffff_1748779200", endedAt)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountSessions(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryCountSessions)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(11)))

	n, err := adapter.CountSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

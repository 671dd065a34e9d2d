package postgres

// SQL statements for interaction, user, and session storage.

const (
	querySaveInteraction = `
		INSERT INTO interactions (
			user_id, event_type, event_ts, session_id,
			element, page_url, target, value,
			x, y, scroll_depth, duration_ms,
			metadata, ingested_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ingest_seq
	`

	// queryRecentByUser backs the per-user analytics scan. Newest first so
	// the engine's tie-breaking follows the descending-timestamp order.
	queryRecentByUser = `
		SELECT
			ingest_seq, user_id, event_type, event_ts, session_id,
			element, page_url, target, value,
			x, y, scroll_depth, duration_ms,
			metadata, ingested_at
		FROM interactions
		WHERE user_id = $1
		ORDER BY event_ts DESC, ingest_seq DESC
		LIMIT $2
	`

	// queryClicksSince backs the trending scan (click events of the last day).
	queryClicksSince = `
		SELECT
			ingest_seq, user_id, event_type, event_ts, session_id,
			element, page_url, target, value,
			x, y, scroll_depth, duration_ms,
			metadata, ingested_at
		FROM interactions
		WHERE event_type = 'click' AND event_ts >= $1
		ORDER BY event_ts DESC, ingest_seq DESC
	`

	queryCountInteractions = `SELECT COUNT(*) FROM interactions`

	queryTopEventTypes = `
		SELECT event_type, COUNT(*) AS n
		FROM interactions
		GROUP BY event_type
		ORDER BY n DESC, event_type ASC
		LIMIT $1
	`

	queryTopUsersByInteractions = `
		SELECT user_id, COUNT(*) AS n
		FROM interactions
		GROUP BY user_id
		ORDER BY n DESC, user_id ASC
		LIMIT $1
	`

	// queryCreateUser relies on the user_id primary key for idempotent
	// creation. ON CONFLICT DO NOTHING returns no rows for the losing
	// concurrent writer, which the adapter reports as created=false.
	queryCreateUser = `
		INSERT INTO users (
			user_id, fingerprint, metadata,
			created_at, last_seen, total_interactions, total_sessions
		)
		VALUES ($1, $2, $3, $4, $5, 0, 0)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING user_id
	`

	queryGetUser = `
		SELECT
			user_id, fingerprint, metadata,
			created_at, last_seen, total_interactions, total_sessions
		FROM users
		WHERE user_id = $1
	`

	queryListUsers = `
		SELECT
			user_id, fingerprint, metadata,
			created_at, last_seen, total_interactions, total_sessions
		FROM users
		ORDER BY created_at ASC, user_id ASC
		LIMIT $1 OFFSET $2
	`

	queryCountUsers             = `SELECT COUNT(*) FROM users`
	queryCountUsersCreatedSince = `SELECT COUNT(*) FROM users WHERE created_at >= $1`

	queryUpdateLastSeen = `UPDATE users SET last_seen = $2 WHERE user_id = $1`

	// Counter updates are single atomic statements so concurrent increments
	// never lose updates.
	queryIncrementInteractions = `
		UPDATE users SET total_interactions = total_interactions + 1 WHERE user_id = $1
	`
	queryIncrementSessions = `
		UPDATE users SET total_sessions = total_sessions + 1 WHERE user_id = $1
	`

	// queryStartSession keeps at most one record per (user_id, session_id).
	queryStartSession = `
		INSERT INTO sessions (user_id, session_id, started_at, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (user_id, session_id) DO NOTHING
		RETURNING session_id
	`

	// queryEndSession only touches the open record; ending an unknown or
	// already-ended session matches zero rows.
	queryEndSession = `
		UPDATE sessions
		SET ended_at = $3, active = FALSE
		WHERE user_id = $1 AND session_id = $2 AND active = TRUE
	`

	queryCountSessions = `SELECT COUNT(*) FROM sessions`
)

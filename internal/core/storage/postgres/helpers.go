package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	v1 "github.com/pitchside-lab/project-pitchside/internal/api/v1"
)

// marshalMetadata marshals a metadata map for JSONB storage.
// Nil or empty maps produce nil (SQL NULL), not the JSON "null" string.
func marshalMetadata(metadata map[string]interface{}) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	out, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanInteractionRow scans one interactions row. Compatible with both
// sql.Row (single) and sql.Rows (multiple).
func scanInteractionRow(row scanner) (*v1.Interaction, error) {
	var evt v1.Interaction
	var metadataJSON []byte

	err := row.Scan(
		&evt.IngestSeq,
		&evt.UserID,
		&evt.EventType,
		&evt.Timestamp,
		&evt.SessionID,
		&evt.Element,
		&evt.PageURL,
		&evt.Target,
		&evt.Value,
		&evt.X,
		&evt.Y,
		&evt.ScrollDepth,
		&evt.Duration,
		&metadataJSON,
		&evt.IngestedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan interaction row: %w", err)
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &evt.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &evt, nil
}

func collectInteractions(rows *sql.Rows) ([]*v1.Interaction, error) {
	var events []*v1.Interaction
	for rows.Next() {
		evt, err := scanInteractionRow(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interactions: %w", err)
	}
	return events, nil
}

// scanUserRow scans one users row, decoding the JSONB fingerprint and
// metadata columns.
func scanUserRow(row scanner) (*v1.User, error) {
	var user v1.User
	var fingerprintJSON, metadataJSON []byte

	err := row.Scan(
		&user.UserID,
		&fingerprintJSON,
		&metadataJSON,
		&user.CreatedAt,
		&user.LastSeen,
		&user.TotalInteractions,
		&user.TotalSessions,
	)
	if err != nil {
		return nil, err
	}

	if len(fingerprintJSON) > 0 {
		if err := json.Unmarshal(fingerprintJSON, &user.Fingerprint); err != nil {
			return nil, fmt.Errorf("failed to unmarshal fingerprint: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &user.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user metadata: %w", err)
		}
	}

	return &user, nil
}

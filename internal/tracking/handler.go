package tracking

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	v1 "github.com/pitchside-lab/project-pitchside/internal/api/v1"
	httperr "github.com/pitchside-lab/project-pitchside/internal/core/errors"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgPersistFailed  = "Failed to persist event"
)

// trackingError carries the structured HTTP error shape from a helper back
// to the orchestrator. Helpers return this instead of writing to gin.Context
// directly, keeping them decoupled from HTTP.
type trackingError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *trackingError) Error() string {
	return e.message
}

// TrackEventHandler handles POST /api/tracking/event.
func (s *Service) TrackEventHandler(c *gin.Context) {
	payload, herr := s.parseJSONBody(c)
	if herr != nil {
		writeError(c, herr)
		return
	}

	ok, reason := s.validator.Validate(payload)
	if !ok {
		slog.Warn("Event validation failed", "reason", reason)
		writeError(c, &trackingError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpValidationError,
			message:    reason,
		})
		return
	}

	evt := s.validator.Normalize(payload)

	if herr := s.acceptEvent(c, evt); herr != nil {
		writeError(c, herr)
		return
	}

	slog.Info("Tracked event",
		"user_id", evt.UserID,
		"event_type", evt.EventType,
		"ingest_seq", evt.IngestSeq)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Event tracked successfully",
	})
}

// acceptEvent runs the acceptance side effects for one validated event:
// user upsert, append, best-effort last-seen touch, counter increment.
// Upsert and append are both idempotent on retry; the touch never blocks
// the critical path.
func (s *Service) acceptEvent(c *gin.Context, evt *v1.Interaction) *trackingError {
	ctx := c.Request.Context()

	if err := s.directory.EnsureUser(ctx, evt.UserID, fingerprintFrom(c, evt)); err != nil {
		slog.Error("Failed to upsert user", "error", err, "user_id", evt.UserID)
		return &trackingError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPersistFailed,
		}
	}

	if err := s.events.SaveInteraction(ctx, evt); err != nil {
		slog.Error("Failed to persist interaction", "error", err, "user_id", evt.UserID)
		return &trackingError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPersistFailed,
		}
	}

	s.directory.TouchLastSeen(ctx, evt.UserID)

	if err := s.directory.IncrementInteractions(ctx, evt.UserID); err != nil {
		slog.Error("Failed to increment interactions", "error", err, "user_id", evt.UserID)
		return &trackingError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPersistFailed,
		}
	}

	return nil
}

// fingerprintFrom captures request metadata at first sight of a user. The
// directory only stores it on creation; later calls never overwrite it.
func fingerprintFrom(c *gin.Context, evt *v1.Interaction) map[string]interface{} {
	fp := map[string]interface{}{
		"user_agent":      c.Request.UserAgent(),
		"ip_address":      c.ClientIP(),
		"accept_language": c.GetHeader("Accept-Language"),
	}
	if evt.Metadata != nil {
		if v, ok := evt.Metadata["screen_resolution"]; ok {
			fp["screen_resolution"] = v
		}
		if v, ok := evt.Metadata["timezone"]; ok {
			fp["timezone"] = v
		}
	}
	return fp
}

// batchRequest decodes the event list loosely. Items stay untyped so a
// non-object entry becomes one per-event rejection instead of failing the
// whole batch decode.
type batchRequest struct {
	Events []interface{} `json:"events"`
}

// TrackBatchHandler handles POST /api/tracking/batch.
//
// Each event is validated independently; one rejection never aborts the
// others. A batch above MaxBatchSize is rejected whole before any event is
// processed.
func (s *Service) TrackBatchHandler(c *gin.Context) {
	body, herr := s.readBody(c)
	if herr != nil {
		writeError(c, herr)
		return
	}

	var req batchRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Events == nil {
		writeError(c, &trackingError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "No events provided",
		})
		return
	}

	if len(req.Events) > MaxBatchSize {
		writeError(c, &trackingError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpValidationError,
			message:    "Maximum 100 events per batch",
		})
		return
	}

	successful := 0
	failed := 0
	var errors []string

	for _, item := range req.Events {
		raw, _ := item.(map[string]interface{})
		ok, reason := s.validator.Validate(raw)
		if !ok {
			failed++
			errors = append(errors, reason)
			continue
		}

		evt := s.validator.Normalize(raw)
		if herr := s.acceptEvent(c, evt); herr != nil {
			failed++
			errors = append(errors, herr.message)
			continue
		}
		successful++
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"processed":  len(req.Events),
		"successful": successful,
		"failed":     failed,
		"errors":     errorsOrNil(errors),
	})
}

func errorsOrNil(errs []string) interface{} {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

type sessionRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	SessionID string `json:"session_id" binding:"required"`
}

// StartSessionHandler handles POST /api/tracking/session/start.
// The session counter only moves when a new session record was created, so
// a retried start cannot double-count.
func (s *Service) StartSessionHandler(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &trackingError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpValidationError,
			message:    "user_id and session_id required",
		})
		return
	}

	ctx := c.Request.Context()
	created, err := s.sessions.StartSession(ctx, req.UserID, req.SessionID, time.Now().UTC())
	if err != nil {
		slog.Error("Failed to start session", "error", err, "session_id", req.SessionID)
		writeError(c, &trackingError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    "Failed to start session",
		})
		return
	}

	if created {
		if err := s.directory.IncrementSessions(ctx, req.UserID); err != nil {
			slog.Error("Failed to increment sessions", "error", err, "user_id", req.UserID)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Session started",
		"session_id": req.SessionID,
	})
}

// EndSessionHandler handles POST /api/tracking/session/end.
// Ending a session that was never started is a no-op, not an error.
func (s *Service) EndSessionHandler(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &trackingError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpValidationError,
			message:    "user_id and session_id required",
		})
		return
	}

	if err := s.sessions.EndSession(c.Request.Context(), req.UserID, req.SessionID, time.Now().UTC()); err != nil {
		slog.Error("Failed to end session", "error", err, "session_id", req.SessionID)
		writeError(c, &trackingError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    "Failed to end session",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Session ended",
	})
}

// parseJSONBody reads the size-limited body and decodes it into a raw map.
func (s *Service) parseJSONBody(c *gin.Context) (map[string]interface{}, *trackingError) {
	body, herr := s.readBody(c)
	if herr != nil {
		return nil, herr
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(body))
		return nil, &trackingError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}

	return payload, nil
}

// readBody reads the raw request body, enforcing the maximum size to keep
// oversized requests from exhausting memory.
func (s *Service) readBody(c *gin.Context) ([]byte, *trackingError) {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	body, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, &trackingError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(body)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(body), "max", maxBytes)
		return nil, &trackingError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// writeError serializes a trackingError as the JSON HTTP response.
func writeError(c *gin.Context, err *trackingError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}

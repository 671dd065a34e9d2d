// Package tracking is the ingestion boundary: it accepts raw tracking
// payloads over HTTP, runs them through validation/normalization, and fans
// accepted events out to the event store and the user directory.
package tracking

import (
	"github.com/gin-gonic/gin"
	"github.com/pitchside-lab/project-pitchside/internal/core/storage"
	"github.com/pitchside-lab/project-pitchside/internal/core/validation"
	"github.com/pitchside-lab/project-pitchside/internal/users"
)

// MaxBatchSize caps the number of events accepted in one batch call.
// A larger batch is rejected whole, not truncated.
const MaxBatchSize = 100

type Service struct {
	validator        *validation.Validator
	events           storage.EventStore
	sessions         storage.SessionStore
	directory        *users.Directory
	maxBodySizeBytes int
}

func NewService(
	validator *validation.Validator,
	events storage.EventStore,
	sessions storage.SessionStore,
	directory *users.Directory,
	maxBodySizeMB int,
) *Service {
	if validator == nil {
		panic("tracking: validator must not be nil")
	}
	if events == nil {
		panic("tracking: event store must not be nil")
	}
	if sessions == nil {
		panic("tracking: session store must not be nil")
	}
	if directory == nil {
		panic("tracking: directory must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		validator:        validator,
		events:           events,
		sessions:         sessions,
		directory:        directory,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the ingestion routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/api/tracking/event", s.TrackEventHandler)
	r.POST("/api/tracking/batch", s.TrackBatchHandler)
	r.POST("/api/tracking/session/start", s.StartSessionHandler)
	r.POST("/api/tracking/session/end", s.EndSessionHandler)
}

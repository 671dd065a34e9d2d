package social

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	httperr "github.com/pitchside-lab/project-pitchside/internal/core/errors"
)

// RegisterRoutes registers the social mirror routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/api/social/reddit", s.SnapshotHandler)
	r.POST("/api/social/reddit/refresh", s.RefreshHandler)
	r.GET("/api/social/reddit/search", s.SearchHandler)
}

// SnapshotHandler handles GET /api/social/reddit.
func (s *Service) SnapshotHandler(c *gin.Context) {
	snap, err := s.Snapshot(c.Request.Context())
	if err != nil {
		slog.Error("Failed to load social snapshot", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to load social media data",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": snap})
}

// RefreshHandler handles POST /api/social/reddit/refresh.
func (s *Service) RefreshHandler(c *gin.Context) {
	snap, err := s.Refresh(c.Request.Context())
	if err != nil {
		slog.Error("Failed to refresh social snapshot", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to refresh social media data",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": snap})
}

// SearchHandler handles GET /api/social/reddit/search?q=
func (s *Service) SearchHandler(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   "query parameter q is required",
		})
		return
	}

	snap, err := s.Search(c.Request.Context(), query)
	if err != nil {
		slog.Error("Failed to search social posts", "error", err, "query", query)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to search social media data",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": snap})
}

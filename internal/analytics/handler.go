package analytics

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	httperr "github.com/pitchside-lab/project-pitchside/internal/core/errors"
)

// RegisterRoutes registers the analytics read routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/api/analytics/user/:user_id", s.UserReportHandler)
	r.GET("/api/analytics/trending", s.TrendingHandler)
	r.GET("/api/analytics/stats", s.StatsHandler)
}

// UserReportHandler handles GET /api/analytics/user/:user_id.
// An unknown user yields an empty report, not an error.
func (s *Service) UserReportHandler(c *gin.Context) {
	userID := c.Param("user_id")

	report, err := s.UserReport(c.Request.Context(), userID)
	if err != nil {
		slog.Error("Failed to compute user analytics", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to compute user analytics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"user_id":         report.UserID,
		"analytics":       report.Analytics,
		"recommendations": report.Recommendations,
	})
}

// TrendingHandler handles GET /api/analytics/trending.
func (s *Service) TrendingHandler(c *gin.Context) {
	trending, err := s.Trending(c.Request.Context())
	if err != nil {
		slog.Error("Failed to compute trending topics", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to compute trending topics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"trending": trending,
	})
}

// StatsHandler handles GET /api/analytics/stats.
func (s *Service) StatsHandler(c *gin.Context) {
	stats, err := s.Stats(c.Request.Context())
	if err != nil {
		slog.Error("Failed to compute site stats", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to compute site stats",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

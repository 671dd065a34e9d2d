package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	httperr "github.com/pitchside-lab/project-pitchside/internal/core/errors"
	"github.com/pitchside-lab/project-pitchside/internal/core/storage"
)

// RegisterRoutes registers the administrative user routes.
func (d *Directory) RegisterRoutes(r gin.IRouter) {
	r.GET("/api/admin/users", d.ListUsersHandler)
	r.GET("/api/admin/users/:user_id", d.GetUserHandler)
}

// ListUsersHandler handles GET /api/admin/users?limit=&skip=
// Non-numeric or out-of-range paging values fall back to defaults rather
// than erroring; the page size is clamped server-side.
func (d *Directory) ListUsersHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultListLimit)))
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))

	page, err := d.ListUsers(c.Request.Context(), limit, skip)
	if err != nil {
		slog.Error("Failed to list users", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to list users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   page.Users,
		"pagination": gin.H{
			"total":    page.Total,
			"limit":    page.Limit,
			"skip":     page.Skip,
			"has_more": page.HasMore,
		},
	})
}

// GetUserHandler handles GET /api/admin/users/:user_id
func (d *Directory) GetUserHandler(c *gin.Context) {
	userID := c.Param("user_id")

	user, err := d.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpNotFoundError,
				Message:   "User not found",
			})
			return
		}
		slog.Error("Failed to load user", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to load user",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

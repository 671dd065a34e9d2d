package analytics

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/pitchside-lab/project-pitchside/internal/api/v1"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	svc.RegisterRoutes(router)
	return router
}

func TestUserReportHandler(t *testing.T) {
	at := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	events := &fakeEventStore{recent: []*v1.Interaction{
		clickOn("hashtag-WSL", at),
		clickOn("hashtag-WSL", at),
	}}
	svc := newTestService(events, &fakeUserStore{}, &fakeSessionStore{})
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/user/user_a1b2c3d4e5f6", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success   bool          `json:"success"`
		UserID    string        `json:"user_id"`
		Analytics UserAnalytics `json:"analytics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "user_a1b2c3d4e5f6", body.UserID)
	assert.Equal(t, 2, body.Analytics.TotalInteractions)
	assert.Equal(t, 20, body.Analytics.EngagementScore)
}

// An identifier the store has never seen still yields an empty report.
func TestUserReportHandler_UnknownUser(t *testing.T) {
	svc := newTestService(&fakeEventStore{}, &fakeUserStore{}, &fakeSessionStore{})
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/user/user_000000000000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Analytics UserAnalytics `json:"analytics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Zero(t, body.Analytics.TotalInteractions)
}

func TestUserReportHandler_StoreError(t *testing.T) {
	events := &fakeEventStore{recentErr: errors.New("connection refused")}
	svc := newTestService(events, &fakeUserStore{}, &fakeSessionStore{})
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/user/user_a1b2c3d4e5f6", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTrendingHandler(t *testing.T) {
	at := fixedNow.Add(-time.Hour)
	events := &fakeEventStore{clicks: []*v1.Interaction{
		clickOn("hashtag-UWCL", at),
	}}
	svc := newTestService(events, &fakeUserStore{}, &fakeSessionStore{})
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/trending", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success  bool            `json:"success"`
		Trending []TrendingTopic `json:"trending"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Trending, 1)
	assert.Equal(t, "UWCL", body.Trending[0].Hashtag)
}

func TestStatsHandler(t *testing.T) {
	events := &fakeEventStore{totalInteractions: 12}
	svc := newTestService(events, &fakeUserStore{totalUsers: 4}, &fakeSessionStore{totalSessions: 2})
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Stats   struct {
			TotalUsers             int64  `json:"total_users"`
			TotalInteractions      int64  `json:"total_interactions"`
			AvgInteractionsPerUser string `json:"avg_interactions_per_user"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, int64(4), body.Stats.TotalUsers)
	assert.Equal(t, int64(12), body.Stats.TotalInteractions)
	assert.Equal(t, "3", body.Stats.AvgInteractionsPerUser)
}

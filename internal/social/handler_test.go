package social

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	svc.RegisterRoutes(router)
	return router
}

func TestSnapshotHandler_ServesCachedData(t *testing.T) {
	cache := &fakeCache{snap: &Snapshot{TotalPosts: 4}}
	_, client := newStubReddit(t, nil)
	router := newTestRouter(NewService(client, cache))

	req := httptest.NewRequest(http.MethodGet, "/api/social/reddit", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool     `json:"success"`
		Data    Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 4, body.Data.TotalPosts)
	assert.True(t, body.Data.FromCache)
}

func TestRefreshHandler_BypassesCache(t *testing.T) {
	cache := &fakeCache{snap: &Snapshot{TotalPosts: 4}}
	_, client := newStubReddit(t, stubPosts())
	router := newTestRouter(NewService(client, cache))

	req := httptest.NewRequest(http.MethodPost, "/api/social/reddit/refresh", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.TotalPosts, "refresh must serve live data, not the cached snapshot")
	assert.Equal(t, 1, cache.sets)
}

func TestSearchHandler(t *testing.T) {
	_, client := newStubReddit(t, stubPosts())
	router := newTestRouter(NewService(client, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/social/reddit/search?q=UWCL", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.TotalPosts)
}

func TestSearchHandler_MissingQuery(t *testing.T) {
	_, client := newStubReddit(t, nil)
	router := newTestRouter(NewService(client, nil))

	for _, target := range []string{"/api/social/reddit/search", "/api/social/reddit/search?q=%20"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "query parameter q is required")
	}
}

package social

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is an in-memory SnapshotCache.
type fakeCache struct {
	snap   *Snapshot
	getErr error
	setErr error
	sets   int
}

func (f *fakeCache) Get(context.Context) (*Snapshot, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.snap == nil {
		return nil, ErrCacheMiss
	}
	return f.snap, nil
}

func (f *fakeCache) Set(_ context.Context, snap *Snapshot) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.snap = snap
	return nil
}

// newStubReddit serves a fixed listing for every endpoint.
func newStubReddit(t *testing.T, posts []redditPost) (*httptest.Server, *RedditClient) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var listing redditListing
		for _, p := range posts {
			listing.Data.Children = append(listing.Data.Children, struct {
				Data redditPost `json:"data"`
			}{Data: p})
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(listing))
	}))
	t.Cleanup(srv.Close)

	client := &RedditClient{baseURL: srv.URL, client: srv.Client()}
	return srv, client
}

func stubPosts() []redditPost {
	return []redditPost{{
		ID:          "p1",
		Title:       "Incredible comeback in the #UWCL",
		Score:       120,
		NumComments: 30,
		Subreddit:   "WomensSoccer",
		Author:      "fan1",
		Permalink:   "/r/WomensSoccer/comments/p1/",
	}}
}

func TestSnapshot_CacheHit(t *testing.T) {
	cache := &fakeCache{snap: &Snapshot{TotalPosts: 7}}
	_, client := newStubReddit(t, nil)
	svc := NewService(client, cache)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, snap.TotalPosts)
	assert.True(t, snap.FromCache)
	assert.Zero(t, cache.sets, "a cache hit must not trigger a fetch")
}

func TestSnapshot_CacheMissFetchesAndWarms(t *testing.T) {
	cache := &fakeCache{}
	_, client := newStubReddit(t, stubPosts())
	svc := NewService(client, cache)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.FromCache)
	assert.Equal(t, 1, snap.TotalPosts, "duplicate IDs across sources collapse to one post")
	assert.Equal(t, 1, cache.sets)
	require.NotNil(t, cache.snap)
}

func TestSnapshot_CacheOutageDegradesToLiveFetch(t *testing.T) {
	cache := &fakeCache{getErr: errors.New("connection refused"), setErr: errors.New("connection refused")}
	_, client := newStubReddit(t, stubPosts())
	svc := NewService(client, cache)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err, "cache outage must never surface as an API failure")
	assert.Equal(t, 1, snap.TotalPosts)
}

func TestSnapshot_NoCacheConfigured(t *testing.T) {
	_, client := newStubReddit(t, stubPosts())
	svc := NewService(client, nil)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalPosts)
}

func TestRefresh_AllSourcesDownYieldsEmptySnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	client := &RedditClient{baseURL: srv.URL, client: srv.Client()}
	svc := NewService(client, nil)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err, "per-source failures are tolerated")
	assert.Zero(t, snap.TotalPosts)
	assert.Equal(t, SentimentSplit{Positive: 33, Neutral: 34, Negative: 33}, snap.Sentiment)
}

func TestSearch(t *testing.T) {
	_, client := newStubReddit(t, stubPosts())
	cache := &fakeCache{}
	svc := NewService(client, cache)

	snap, err := svc.Search(context.Background(), "UWCL")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalPosts)
	assert.Zero(t, cache.sets, "search never touches the cache")
}

func TestDedupe(t *testing.T) {
	posts := []redditPost{
		{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: ""},
	}
	unique := dedupe(posts)
	require.Len(t, unique, 2)
	assert.Equal(t, "a", unique[0].ID)
	assert.Equal(t, "b", unique[1].ID)
}

func TestNewServiceUsesSystemClockByDefault(t *testing.T) {
	_, client := newStubReddit(t, nil)
	svc := NewService(client, nil)

	before := time.Now().UTC().Add(-time.Minute)
	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	updated, err := time.Parse(time.RFC3339, snap.LastUpdated)
	require.NoError(t, err)
	assert.True(t, updated.After(before))
}

package social

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Service serves the mirrored social snapshot: cache first, live fetch on a
// miss. A cache outage degrades to direct fetching and is never surfaced as
// an API failure.
type Service struct {
	client *RedditClient
	cache  SnapshotCache
	nowFn  func() time.Time
}

func NewService(client *RedditClient, cache SnapshotCache) *Service {
	if client == nil {
		panic("social: reddit client must not be nil")
	}
	return &Service{
		client: client,
		cache:  cache,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// Snapshot returns the cached snapshot when fresh, otherwise fetches live
// and re-warms the cache best-effort.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.Get(ctx)
		if err == nil {
			snap.FromCache = true
			return snap, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			slog.Warn("Snapshot cache read failed, fetching live", "error", err)
		}
	}

	return s.Refresh(ctx)
}

// Refresh fetches live data, rebuilds the snapshot, and re-warms the cache.
// A cache write failure is logged and swallowed.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	posts, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	snap := buildSnapshot(posts, s.nowFn())

	if s.cache != nil {
		if err := s.cache.Set(ctx, snap); err != nil {
			slog.Warn("Failed to cache snapshot", "error", err)
		}
	}

	return snap, nil
}

// Search runs an ad-hoc Reddit search and processes the results without
// touching the cache.
func (s *Service) Search(ctx context.Context, query string) (*Snapshot, error) {
	posts, err := s.client.Search(ctx, query, 50)
	if err != nil {
		return nil, err
	}
	return buildSnapshot(dedupe(posts), s.nowFn()), nil
}

// fetchAll polls the configured subreddits and search terms, tolerating
// per-source failures: one unreachable subreddit doesn't empty the snapshot.
func (s *Service) fetchAll(ctx context.Context) ([]redditPost, error) {
	var all []redditPost

	polled := defaultSubreddits
	if len(polled) > subredditsPolled {
		polled = polled[:subredditsPolled]
	}
	for _, subreddit := range polled {
		posts, err := s.client.TopPosts(ctx, subreddit, postsPerFetch, "week")
		if err != nil {
			slog.Warn("Failed to fetch subreddit", "subreddit", subreddit, "error", err)
			continue
		}
		for i := range posts {
			posts[i].sourceSubreddit = subreddit
		}
		all = append(all, posts...)
	}

	for _, term := range defaultSearchTerms {
		posts, err := s.client.Search(ctx, term, postsPerSearch)
		if err != nil {
			slog.Warn("Failed to search reddit", "query", term, "error", err)
			continue
		}
		for i := range posts {
			posts[i].sourceSubreddit = "search"
		}
		all = append(all, posts...)
	}

	return dedupe(all), nil
}

func dedupe(posts []redditPost) []redditPost {
	seen := make(map[string]struct{}, len(posts))
	unique := posts[:0:0]
	for _, post := range posts {
		if post.ID == "" {
			continue
		}
		if _, dup := seen[post.ID]; dup {
			continue
		}
		seen[post.ID] = struct{}{}
		unique = append(unique, post)
	}
	return unique
}

// Package social mirrors public Reddit posts matching the configured topics
// into a time-limited cache. It runs entirely outside the tracking core: a
// scheduled fetch-and-cache with no coupling to the event store.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	redditBaseURL    = "https://www.reddit.com"
	redditUserAgent  = "PitchsideAnalytics/1.0 (Educational Project)"
	fetchTimeout     = 10 * time.Second
	postsPerFetch    = 25
	postsPerSearch   = 20
	subredditsPolled = 4
)

// defaultSubreddits are polled for top posts; only the first
// subredditsPolled are hit per refresh to stay under rate limits.
var defaultSubreddits = []string{
	"WomensSoccer",
	"NWSL",
	"BarclaysWSL",
	"Lionesses",
	"reddevils",
	"chelseafc",
	"Arsenal",
}

var defaultSearchTerms = []string{
	"women's football",
	"women's soccer",
	"WSL",
	"NWSL",
	"UWCL women",
}

// redditPost is the subset of Reddit's listing payload the processor reads.
type redditPost struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Selftext      string  `json:"selftext"`
	Score         int     `json:"score"`
	NumComments   int     `json:"num_comments"`
	NumCrossposts int     `json:"num_crossposts"`
	CreatedUTC    float64 `json:"created_utc"`
	Subreddit     string  `json:"subreddit"`
	Author        string  `json:"author"`
	Permalink     string  `json:"permalink"`

	// sourceSubreddit records which poll produced the post ("search" for
	// search results). Not part of the wire format.
	sourceSubreddit string
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// RedditClient fetches public listing data from Reddit's JSON endpoints.
type RedditClient struct {
	baseURL string
	client  *http.Client
}

func NewRedditClient() *RedditClient {
	return &RedditClient{
		baseURL: redditBaseURL,
		client:  &http.Client{Timeout: fetchTimeout},
	}
}

// TopPosts fetches the top posts of one subreddit for the given time filter.
func (r *RedditClient) TopPosts(ctx context.Context, subreddit string, limit int, timeFilter string) ([]redditPost, error) {
	endpoint := fmt.Sprintf("%s/r/%s/top.json", r.baseURL, url.PathEscape(subreddit))
	params := url.Values{
		"limit":    {fmt.Sprint(limit)},
		"t":        {timeFilter},
		"raw_json": {"1"},
	}
	return r.fetchListing(ctx, endpoint, params)
}

// Search runs a site-wide search for the given query.
func (r *RedditClient) Search(ctx context.Context, query string, limit int) ([]redditPost, error) {
	endpoint := r.baseURL + "/search.json"
	params := url.Values{
		"q":        {query},
		"limit":    {fmt.Sprint(limit)},
		"sort":     {"relevance"},
		"t":        {"month"},
		"raw_json": {"1"},
	}
	return r.fetchListing(ctx, endpoint, params)
}

func (r *RedditClient) fetchListing(ctx context.Context, endpoint string, params url.Values) ([]redditPost, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build reddit request: %w", err)
	}
	req.Header.Set("User-Agent", redditUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch reddit listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned status %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode reddit listing: %w", err)
	}

	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

package social

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var snapshotNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "literal tags",
			text: "Huge night in the #UWCL semifinal! #Lionesses",
			want: []string{"UWCL", "Lionesses", "Final"},
		},
		{
			name: "topic keywords become virtual tags",
			text: "great goal in the wsl match",
			want: []string{"Wsl", "Goal", "Match"},
		},
		{
			name: "keyword already tagged is not duplicated",
			text: "what a #goal that was, best goal of the season",
			want: []string{"goal"},
		},
		{
			name: "no topics at all",
			text: "completely unrelated text",
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractHashtags(tc.text))
		})
	}
}

func TestClassifySentiment(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		score int
		want  string
	}{
		{"empty is neutral", "", 500, "neutral"},
		{"positive words win", "what an amazing brilliant performance", 0, "positive"},
		{"negative words win", "terrible defending, awful result", 0, "negative"},
		{"no signal is neutral", "the match kicks off at noon", 0, "neutral"},
		{"high engagement tips neutral to positive", "the match kicks off at noon", 150, "positive"},
		{"high engagement cannot flip negative", "awful injury news, so sad, terrible", 150, "negative"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifySentiment(tc.text, tc.score))
		})
	}
}

func TestBuildSnapshot_Empty(t *testing.T) {
	snap := buildSnapshot(nil, snapshotNow)

	assert.Zero(t, snap.TotalPosts)
	assert.Empty(t, snap.TrendingHashtags)
	assert.Empty(t, snap.ViralPosts)
	assert.Empty(t, snap.RecentPosts)
	assert.Equal(t, SentimentSplit{Positive: 33, Neutral: 34, Negative: 33}, snap.Sentiment)
	assert.Equal(t, "Reddit API", snap.DataSource)
	assert.Equal(t, "2025-06-01T12:00:00Z", snap.LastUpdated)
	assert.False(t, snap.FromCache)
}

func TestBuildSnapshot(t *testing.T) {
	postedAt := float64(time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC).Unix())
	posts := []redditPost{
		{
			ID:          "p1",
			Title:       "Incredible #UWCL final tonight",
			Score:       300,
			NumComments: 50,
			CreatedUTC:  postedAt,
			Subreddit:   "WomensSoccer",
			Author:      "fan1",
			Permalink:   "/r/WomensSoccer/comments/p1/",
		},
		{
			ID:          "p2",
			Title:       "Quiet transfer day",
			Score:       10,
			NumComments: 2,
			CreatedUTC:  postedAt,
			Subreddit:   "NWSL",
			Author:      "fan2",
			Permalink:   "/r/NWSL/comments/p2/",
		},
		{
			ID:          "p3",
			Title:       "Quiet news day again",
			Score:       8,
			NumComments: 1,
			CreatedUTC:  postedAt,
			Subreddit:   "NWSL",
			Author:      "fan3",
			Permalink:   "/r/NWSL/comments/p3/",
		},
	}

	snap := buildSnapshot(posts, snapshotNow)

	assert.Equal(t, 3, snap.TotalPosts)
	assert.Equal(t, 318, snap.TotalLikes)
	assert.Equal(t, 53, snap.TotalComments)

	// engagement: p1 = 300+100 = 400, p2 = 14, p3 = 10; avg = 141
	assert.Equal(t, 141, snap.AvgEngagement)

	// p1 beats twice the average; the quiet posts do not.
	require.Len(t, snap.ViralPosts, 1)
	assert.Equal(t, "p1", snap.ViralPosts[0].ID)
	assert.Equal(t, 400, snap.ViralPosts[0].Engagement)

	require.Len(t, snap.RecentPosts, 3)
	assert.Equal(t, "p1", snap.RecentPosts[0].ID, "recent posts ranked by engagement")

	// r/NWSL has two posts, r/WomensSoccer one.
	require.Len(t, snap.PlatformDistribution, 2)
	assert.Equal(t, PlatformCount{Platform: "r/NWSL", Count: 2}, snap.PlatformDistribution[0])
	assert.Equal(t, PlatformCount{Platform: "r/WomensSoccer", Count: 1}, snap.PlatformDistribution[1])

	require.NotEmpty(t, snap.OptimalTimes)
	assert.Equal(t, 18, snap.OptimalTimes[0].Hour)

	assert.Equal(t, "Reddit (r/WomensSoccer)", snap.RecentPosts[0].Platform)
	assert.Equal(t, "u/fan1", snap.RecentPosts[0].Author)
	assert.Equal(t, "https://reddit.com/r/WomensSoccer/comments/p1/", snap.RecentPosts[0].URL)

	// Percentages always sum close to 100.
	total := snap.Sentiment.Positive + snap.Sentiment.Neutral + snap.Sentiment.Negative
	assert.InDelta(t, 100, total, 2)
}

func TestBuildSnapshot_SearchResultFallsBackToSourceSubreddit(t *testing.T) {
	posts := []redditPost{{
		ID:              "s1",
		Title:           "result thread",
		sourceSubreddit: "search",
	}}

	snap := buildSnapshot(posts, snapshotNow)

	require.Len(t, snap.PlatformDistribution, 1)
	assert.Equal(t, "r/search", snap.PlatformDistribution[0].Platform)
}

func TestBuildSnapshot_TruncatesLongText(t *testing.T) {
	longTitle := ""
	for len(longTitle) < 250 {
		longTitle += "title text "
	}
	posts := []redditPost{{ID: "t1", Title: longTitle}}

	snap := buildSnapshot(posts, snapshotNow)

	require.Len(t, snap.RecentPosts, 1)
	assert.Len(t, snap.RecentPosts[0].Text, 203, "200 chars plus ellipsis")
	assert.LessOrEqual(t, len(snap.RecentPosts[0].FullText), 500)
}

func TestRankHashtags_PadsFromDefaults(t *testing.T) {
	counts := map[string]int{"UWCL": 3, "WSL": 1}
	order := []string{"UWCL", "WSL"}

	ranked := rankHashtags(counts, order, 10)

	require.GreaterOrEqual(t, len(ranked), 5)
	assert.Equal(t, TrendingHashtag{Hashtag: "UWCL", Engagement: 300, Posts: 3}, ranked[0])
	assert.Equal(t, TrendingHashtag{Hashtag: "WSL", Engagement: 100, Posts: 1}, ranked[1])

	// Organic tags never appear twice via padding.
	seen := map[string]int{}
	for _, tag := range ranked {
		seen[tag.Hashtag]++
		assert.Equal(t, 1, seen[tag.Hashtag], "duplicate hashtag %s", tag.Hashtag)
	}
}

func TestRankOptimalTimes_FallbackWhenNoTimestamps(t *testing.T) {
	times := rankOptimalTimes(map[int]int{}, map[int]int{})
	require.Len(t, times, 6)
	assert.Equal(t, 18, times[0].Hour)
}

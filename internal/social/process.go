package social

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Post is one processed social-media post in the cached snapshot.
type Post struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	FullText   string `json:"fullText"`
	Platform   string `json:"platform"`
	Author     string `json:"author"`
	Likes      int    `json:"likes"`
	Comments   int    `json:"comments"`
	Shares     int    `json:"shares"`
	Engagement int    `json:"engagement"`
	Sentiment  string `json:"sentiment"`
	Timestamp  string `json:"timestamp,omitempty"`
	URL        string `json:"url"`
}

// TrendingHashtag is one ranked hashtag of the snapshot.
type TrendingHashtag struct {
	Hashtag    string `json:"hashtag"`
	Engagement int    `json:"engagement"`
	Posts      int    `json:"posts"`
}

// OptimalTime is one posting-hour recommendation of the snapshot.
type OptimalTime struct {
	Hour          int `json:"hour"`
	AvgEngagement int `json:"avgEngagement"`
	PostCount     int `json:"postCount"`
}

// PlatformCount is one entry of the per-subreddit distribution.
type PlatformCount struct {
	Platform string `json:"platform"`
	Count    int    `json:"count"`
}

// SentimentSplit holds the percentage split across sentiment classes.
type SentimentSplit struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Snapshot is the full processed view of the mirrored posts. It is what the
// cache stores and the API serves.
type Snapshot struct {
	TotalPosts           int               `json:"totalPosts"`
	TotalLikes           int               `json:"totalLikes"`
	TotalComments        int               `json:"totalComments"`
	TotalShares          int               `json:"totalShares"`
	AvgEngagement        int               `json:"avgEngagement"`
	Sentiment            SentimentSplit    `json:"sentiment"`
	TrendingHashtags     []TrendingHashtag `json:"trendingHashtags"`
	ViralPosts           []Post            `json:"viralPosts"`
	RecentPosts          []Post            `json:"recentPosts"`
	OptimalTimes         []OptimalTime     `json:"optimalTimes"`
	PlatformDistribution []PlatformCount   `json:"platformDistribution"`
	DataSource           string            `json:"dataSource"`
	LastUpdated          string            `json:"lastUpdated"`
	FromCache            bool              `json:"fromCache"`
}

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// topicKeywords are surfaced as "virtual hashtags" when they appear in post
// text without a literal # tag.
var topicKeywords = []string{
	"womens", "women", "wsl", "nwsl", "uwcl", "lionesses", "matildas",
	"uswnt", "soccer", "football", "goal", "match", "final", "champion",
}

var positiveWords = []string{
	"amazing", "incredible", "brilliant", "fantastic", "great",
	"awesome", "wonderful", "excellent", "love", "best", "win",
	"winner", "champion", "goal", "historic", "proud", "beautiful",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "worst", "hate", "disappointed",
	"disappointing", "poor", "loss", "lost", "injury", "injured",
	"unfair", "robbery", "sad", "unfortunate",
}

var defaultHashtags = []string{
	"WomensFootball", "WSL", "NWSL", "UWCL", "Lionesses",
	"WomensSoccer", "WomenInSports", "GirlsFootball",
}

// extractHashtags pulls #tags plus recognized topic keywords from text.
func extractHashtags(text string) []string {
	if text == "" {
		return nil
	}
	var hashtags []string
	for _, m := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		hashtags = append(hashtags, m[1])
	}

	lower := strings.ToLower(text)
	for _, keyword := range topicKeywords {
		if !strings.Contains(lower, keyword) {
			continue
		}
		dup := false
		for _, h := range hashtags {
			if strings.EqualFold(h, keyword) {
				dup = true
				break
			}
		}
		if !dup {
			hashtags = append(hashtags, strings.ToUpper(keyword[:1])+keyword[1:])
		}
	}
	return hashtags
}

// classifySentiment runs the keyword heuristic. High-engagement posts get a
// positive nudge.
func classifySentiment(text string, score int) string {
	if text == "" {
		return "neutral"
	}
	lower := strings.ToLower(text)

	positive := 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			positive++
		}
	}
	negative := 0
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			negative++
		}
	}

	engagementBonus := 0
	if score > 100 {
		engagementBonus = 1
	}

	switch {
	case positive+engagementBonus > negative:
		return "positive"
	case negative > positive:
		return "negative"
	default:
		return "neutral"
	}
}

// buildSnapshot turns deduplicated raw posts into the processed view.
func buildSnapshot(posts []redditPost, now time.Time) *Snapshot {
	if len(posts) == 0 {
		return emptySnapshot(now)
	}

	processed := make([]Post, 0, len(posts))
	hashtagCounts := map[string]int{}
	var hashtagOrder []string
	sentiments := map[string]int{"positive": 0, "neutral": 0, "negative": 0}
	hourlyEngagement := map[int]int{}
	hourlyPosts := map[int]int{}
	platformCounts := map[string]int{}
	var platformOrder []string

	totalLikes, totalComments, totalShares, totalEngagement := 0, 0, 0, 0

	for _, post := range posts {
		fullText := post.Title + " " + post.Selftext
		engagement := post.Score + post.NumComments*2 // comments weighted more

		for _, tag := range extractHashtags(fullText) {
			if _, seen := hashtagCounts[tag]; !seen {
				hashtagOrder = append(hashtagOrder, tag)
			}
			hashtagCounts[tag]++
		}

		sentiment := classifySentiment(fullText, post.Score)
		sentiments[sentiment]++

		if post.CreatedUTC > 0 {
			hour := time.Unix(int64(post.CreatedUTC), 0).UTC().Hour()
			hourlyEngagement[hour] += engagement
			hourlyPosts[hour]++
		}

		subreddit := post.Subreddit
		if subreddit == "" {
			subreddit = post.sourceSubreddit
		}
		platform := "r/" + subreddit
		if _, seen := platformCounts[platform]; !seen {
			platformOrder = append(platformOrder, platform)
		}
		platformCounts[platform]++

		totalLikes += post.Score
		totalComments += post.NumComments
		totalShares += post.NumCrossposts
		totalEngagement += engagement

		title := post.Title
		if len(title) > 200 {
			title = title[:200] + "..."
		}
		trimmedFull := fullText
		if len(trimmedFull) > 500 {
			trimmedFull = trimmedFull[:500]
		}
		timestamp := ""
		if post.CreatedUTC > 0 {
			timestamp = time.Unix(int64(post.CreatedUTC), 0).UTC().Format(time.RFC3339)
		}

		processed = append(processed, Post{
			ID:         post.ID,
			Text:       title,
			FullText:   trimmedFull,
			Platform:   "Reddit (" + platform + ")",
			Author:     "u/" + post.Author,
			Likes:      post.Score,
			Comments:   post.NumComments,
			Shares:     post.NumCrossposts,
			Engagement: engagement,
			Sentiment:  sentiment,
			Timestamp:  timestamp,
			URL:        "https://reddit.com" + post.Permalink,
		})
	}

	trending := rankHashtags(hashtagCounts, hashtagOrder, len(posts))

	totalSentiment := sentiments["positive"] + sentiments["neutral"] + sentiments["negative"]
	if totalSentiment == 0 {
		totalSentiment = 1
	}
	sentimentSplit := SentimentSplit{
		Positive: roundPct(sentiments["positive"], totalSentiment),
		Neutral:  roundPct(sentiments["neutral"], totalSentiment),
		Negative: roundPct(sentiments["negative"], totalSentiment),
	}

	optimalTimes := rankOptimalTimes(hourlyEngagement, hourlyPosts)

	platformDistribution := make([]PlatformCount, 0, len(platformOrder))
	for _, platform := range platformOrder {
		platformDistribution = append(platformDistribution, PlatformCount{Platform: platform, Count: platformCounts[platform]})
	}
	sort.SliceStable(platformDistribution, func(i, j int) bool {
		return platformDistribution[i].Count > platformDistribution[j].Count
	})
	if len(platformDistribution) > 6 {
		platformDistribution = platformDistribution[:6]
	}

	sorted := make([]Post, len(processed))
	copy(sorted, processed)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Engagement > sorted[j].Engagement
	})

	avgEngagement := totalEngagement / len(processed)

	var viral []Post
	for _, p := range sorted {
		if p.Engagement > avgEngagement*2 {
			viral = append(viral, p)
		}
		if len(viral) == 5 {
			break
		}
	}

	recent := sorted
	if len(recent) > 20 {
		recent = recent[:20]
	}

	return &Snapshot{
		TotalPosts:           len(processed),
		TotalLikes:           totalLikes,
		TotalComments:        totalComments,
		TotalShares:          totalShares,
		AvgEngagement:        avgEngagement,
		Sentiment:            sentimentSplit,
		TrendingHashtags:     trending,
		ViralPosts:           viral,
		RecentPosts:          recent,
		OptimalTimes:         optimalTimes,
		PlatformDistribution: platformDistribution,
		DataSource:           "Reddit API",
		LastUpdated:          now.UTC().Format(time.RFC3339),
	}
}

// rankHashtags returns the top ten hashtags by post count, padded from the
// default list when organic tags run short.
func rankHashtags(counts map[string]int, order []string, totalPosts int) []TrendingHashtag {
	trending := make([]TrendingHashtag, 0, len(order))
	for _, tag := range order {
		trending = append(trending, TrendingHashtag{
			Hashtag:    tag,
			Engagement: counts[tag] * 100,
			Posts:      counts[tag],
		})
	}
	sort.SliceStable(trending, func(i, j int) bool {
		return trending[i].Posts > trending[j].Posts
	})
	if len(trending) > 10 {
		trending = trending[:10]
	}

	if len(trending) < 5 {
		for _, tag := range defaultHashtags {
			if len(trending) >= 10 {
				break
			}
			dup := false
			for _, t := range trending {
				if strings.EqualFold(t.Hashtag, tag) {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			trending = append(trending, TrendingHashtag{
				Hashtag:    tag,
				Engagement: totalPosts * 50,
				Posts:      totalPosts / 2,
			})
		}
	}
	return trending
}

func rankOptimalTimes(hourlyEngagement, hourlyPosts map[int]int) []OptimalTime {
	type hourEng struct {
		hour int
		eng  int
	}
	ranked := make([]hourEng, 0, len(hourlyEngagement))
	for hour, eng := range hourlyEngagement {
		ranked = append(ranked, hourEng{hour, eng})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].eng != ranked[j].eng {
			return ranked[i].eng > ranked[j].eng
		}
		return ranked[i].hour < ranked[j].hour
	})
	if len(ranked) > 8 {
		ranked = ranked[:8]
	}

	times := make([]OptimalTime, 0, len(ranked))
	for _, entry := range ranked {
		postCount := hourlyPosts[entry.hour]
		divisor := postCount
		if divisor < 1 {
			divisor = 1
		}
		times = append(times, OptimalTime{
			Hour:          entry.hour,
			AvgEngagement: entry.eng / divisor,
			PostCount:     postCount,
		})
	}

	if len(times) == 0 {
		times = []OptimalTime{
			{Hour: 18, AvgEngagement: 500, PostCount: 15},
			{Hour: 19, AvgEngagement: 450, PostCount: 12},
			{Hour: 20, AvgEngagement: 420, PostCount: 14},
			{Hour: 12, AvgEngagement: 380, PostCount: 10},
			{Hour: 17, AvgEngagement: 350, PostCount: 11},
			{Hour: 21, AvgEngagement: 320, PostCount: 9},
		}
	}
	return times
}

func roundPct(part, total int) int {
	return int(float64(part)/float64(total)*100 + 0.5)
}

func emptySnapshot(now time.Time) *Snapshot {
	return &Snapshot{
		// With no posts there is nothing to classify; report an even split
		// rather than 0/0/0 so percentage consumers still sum to 100.
		Sentiment:            SentimentSplit{Positive: 33, Neutral: 34, Negative: 33},
		TrendingHashtags:     []TrendingHashtag{},
		ViralPosts:           []Post{},
		RecentPosts:          []Post{},
		OptimalTimes:         []OptimalTime{},
		PlatformDistribution: []PlatformCount{},
		DataSource:           "Reddit API",
		LastUpdated:          now.UTC().Format(time.RFC3339),
	}
}

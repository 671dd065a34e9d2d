package analytics

import "github.com/shopspring/decimal"

// ElementClicks is one ranked entry of a user's most-clicked elements.
type ElementClicks struct {
	Element string `json:"element"`
	Clicks  int    `json:"clicks"`
}

// HourActivity is one ranked entry of a user's busiest hours of day.
type HourActivity struct {
	Hour         int `json:"hour"`
	Interactions int `json:"interactions"`
}

// UserAnalytics is the per-user analytics payload, computed over the most
// recent interactions at request time.
type UserAnalytics struct {
	TotalInteractions int             `json:"total_interactions"`
	TopInterests      []ElementClicks `json:"top_interests"`
	PeakActivityHours []HourActivity  `json:"peak_activity_hours"`
	EngagementScore   int             `json:"engagement_score"`
}

// UserRecommendations pairs topic suggestions with a posting-time hint.
type UserRecommendations struct {
	SuggestedHashtags []string `json:"suggested_hashtags"`
	OptimalPostTime   string   `json:"optimal_post_time"`
}

// UserReport is the full per-user analytics response.
type UserReport struct {
	UserID          string              `json:"user_id"`
	Analytics       UserAnalytics       `json:"analytics"`
	Recommendations UserRecommendations `json:"recommendations"`
}

// TrendingTopic is one ranked entry of the site-wide trending report.
type TrendingTopic struct {
	Hashtag       string `json:"hashtag"`
	Clicks        int    `json:"clicks"`
	TrendingScore int    `json:"trending_score"`
}

// EventTypeStat mirrors the grouped event-type frequency rows.
type EventTypeStat struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

// UserStat mirrors the grouped per-user interaction rows.
type UserStat struct {
	UserID string `json:"user_id"`
	Count  int64  `json:"count"`
}

// SiteStats is the site-wide aggregate report.
type SiteStats struct {
	TotalUsers             int64           `json:"total_users"`
	TotalInteractions      int64           `json:"total_interactions"`
	TotalSessions          int64           `json:"total_sessions"`
	NewUsersLast7Days      int64           `json:"new_users_last_7_days"`
	AvgInteractionsPerUser decimal.Decimal `json:"avg_interactions_per_user"`
	TopEventTypes          []EventTypeStat `json:"top_event_types"`
	TopUsers               []UserStat      `json:"top_users"`
}

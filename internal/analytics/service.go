// Package analytics is the read-side aggregation engine. Every report is
// computed over the event store's current contents at request time; no
// precomputed or cached index is maintained for these queries. The engine
// owns no state of its own.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	v1 "github.com/pitchside-lab/project-pitchside/internal/api/v1"
	"github.com/pitchside-lab/project-pitchside/internal/core/storage"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	// recentWindow is how many of a user's newest interactions feed the
	// per-user report.
	recentWindow = 100

	topInterestsLimit = 5
	peakHoursLimit    = 3
	trendingLimit     = 10
	topStatsLimit     = 10

	// topicMarker identifies element identifiers that represent a
	// trending-topic click.
	topicMarker = "hashtag"
	topicPrefix = "hashtag-"

	// fallbackPostTime is suggested when a user has no recorded activity.
	fallbackPostTime = "09:00"
)

// defaultTopics pads hashtag recommendations when a user's own click
// history yields fewer than five.
var defaultTopics = []string{
	"WomensFootball",
	"UWCL",
	"RedFlames",
	"WomenInSports",
	"FemaleSoccer",
}

// Service computes on-demand analytics from the event store and the user
// directory's stores.
type Service struct {
	events   storage.EventStore
	users    storage.UserStore
	sessions storage.SessionStore
	nowFn    func() time.Time
}

func NewService(events storage.EventStore, users storage.UserStore, sessions storage.SessionStore) *Service {
	if events == nil {
		panic("analytics: event store must not be nil")
	}
	if users == nil {
		panic("analytics: user store must not be nil")
	}
	if sessions == nil {
		panic("analytics: session store must not be nil")
	}
	return &Service{
		events:   events,
		users:    users,
		sessions: sessions,
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}

// WithNow replaces the clock source. Intended for tests.
func (s *Service) WithNow(nowFn func() time.Time) *Service {
	s.nowFn = nowFn
	return s
}

// counter accumulates grouped counts while preserving first-encountered
// order, so ranking ties resolve to the earlier key in the scan.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// ranked returns up to limit (key, count) pairs by count descending. The
// sort is stable over first-encountered order, which is the tie-break rule.
func (c *counter) ranked(limit int) []struct {
	Key   string
	Count int
} {
	out := make([]struct {
		Key   string
		Count int
	}, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, struct {
			Key   string
			Count int
		}{key, c.counts[key]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// UserReport computes the per-user analytics over the user's most recent
// interactions, newest first.
func (s *Service) UserReport(ctx context.Context, userID string) (*UserReport, error) {
	recent, err := s.events.RecentByUser(ctx, userID, recentWindow)
	if err != nil {
		return nil, fmt.Errorf("load recent interactions: %w", err)
	}

	clicked := newCounter()
	hours := newCounter()
	hourByLabel := make(map[string]int)

	for _, evt := range recent {
		if evt.EventType == v1.EventClick && evt.Element != nil {
			clicked.add(*evt.Element)
		}
		hour := evt.OccurredAt().Hour()
		label := fmt.Sprintf("%02d", hour)
		hourByLabel[label] = hour
		hours.add(label)
	}

	topInterests := make([]ElementClicks, 0, topInterestsLimit)
	for _, entry := range clicked.ranked(topInterestsLimit) {
		topInterests = append(topInterests, ElementClicks{Element: entry.Key, Clicks: entry.Count})
	}

	peakHours := make([]HourActivity, 0, peakHoursLimit)
	for _, entry := range hours.ranked(peakHoursLimit) {
		peakHours = append(peakHours, HourActivity{Hour: hourByLabel[entry.Key], Interactions: entry.Count})
	}

	return &UserReport{
		UserID: userID,
		Analytics: UserAnalytics{
			TotalInteractions: len(recent),
			TopInterests:      topInterests,
			PeakActivityHours: peakHours,
			EngagementScore:   len(recent) * 10,
		},
		Recommendations: UserRecommendations{
			SuggestedHashtags: suggestHashtags(clicked),
			OptimalPostTime:   optimalPostTime(peakHours),
		},
	}, nil
}

// suggestHashtags picks up to three topics from the user's own clicks, then
// pads from the default topic list to five total, skipping duplicates.
func suggestHashtags(clicked *counter) []string {
	suggestions := make([]string, 0, 5)
	seen := make(map[string]struct{})

	for _, element := range clicked.order {
		if len(suggestions) == 3 {
			break
		}
		if !strings.Contains(strings.ToLower(element), topicMarker) {
			continue
		}
		topic := strings.TrimPrefix(element, topicPrefix)
		if _, dup := seen[strings.ToLower(topic)]; dup {
			continue
		}
		seen[strings.ToLower(topic)] = struct{}{}
		suggestions = append(suggestions, topic)
	}

	for _, topic := range defaultTopics {
		if len(suggestions) == 5 {
			break
		}
		if _, dup := seen[strings.ToLower(topic)]; dup {
			continue
		}
		seen[strings.ToLower(topic)] = struct{}{}
		suggestions = append(suggestions, topic)
	}

	return suggestions
}

func optimalPostTime(peakHours []HourActivity) string {
	if len(peakHours) == 0 {
		return fallbackPostTime
	}
	return fmt.Sprintf("%02d:00", peakHours[0].Hour)
}

// Trending ranks topic-tagged click activity of the last 24 hours.
func (s *Service) Trending(ctx context.Context) ([]TrendingTopic, error) {
	since := float64(s.nowFn().Add(-24 * time.Hour).Unix())

	clicks, err := s.events.ClicksSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load recent clicks: %w", err)
	}

	topics := newCounter()
	for _, evt := range clicks {
		if evt.Element == nil || !strings.HasPrefix(*evt.Element, topicPrefix) {
			continue
		}
		topics.add(strings.TrimPrefix(*evt.Element, topicPrefix))
	}

	trending := make([]TrendingTopic, 0, trendingLimit)
	for _, entry := range topics.ranked(trendingLimit) {
		trending = append(trending, TrendingTopic{
			Hashtag:       entry.Key,
			Clicks:        entry.Count,
			TrendingScore: entry.Count * 100,
		})
	}
	return trending, nil
}

// Stats fans the site-wide counts out concurrently. Any failing read fails
// the whole report; partial results are never returned as complete.
func (s *Service) Stats(ctx context.Context) (*SiteStats, error) {
	stats := &SiteStats{}
	weekAgo := s.nowFn().AddDate(0, 0, -7)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.users.CountUsers(gctx)
		stats.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.events.CountInteractions(gctx)
		stats.TotalInteractions = n
		return err
	})
	g.Go(func() error {
		n, err := s.sessions.CountSessions(gctx)
		stats.TotalSessions = n
		return err
	})
	g.Go(func() error {
		n, err := s.users.CountUsersCreatedSince(gctx, weekAgo)
		stats.NewUsersLast7Days = n
		return err
	})
	g.Go(func() error {
		rows, err := s.events.TopEventTypes(gctx, topStatsLimit)
		if err != nil {
			return err
		}
		stats.TopEventTypes = make([]EventTypeStat, 0, len(rows))
		for _, row := range rows {
			stats.TopEventTypes = append(stats.TopEventTypes, EventTypeStat(row))
		}
		return nil
	})
	g.Go(func() error {
		rows, err := s.events.TopUsersByInteractions(gctx, topStatsLimit)
		if err != nil {
			return err
		}
		stats.TopUsers = make([]UserStat, 0, len(rows))
		for _, row := range rows {
			stats.TopUsers = append(stats.TopUsers, UserStat(row))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load site stats: %w", err)
	}

	// Average stays zero when no users exist; never divide by zero.
	if stats.TotalUsers > 0 {
		stats.AvgInteractionsPerUser = decimal.NewFromInt(stats.TotalInteractions).
			Div(decimal.NewFromInt(stats.TotalUsers)).
			Round(2)
	} else {
		stats.AvgInteractionsPerUser = decimal.Zero
	}

	return stats, nil
}

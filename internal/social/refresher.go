package social

import (
	"context"
	"log/slog"
	"time"
)

// Refresher re-warms the snapshot cache on a periodic interval so most
// requests hit a fresh cache. It is stateless: each tick is an independent
// fetch-and-cache.
type Refresher struct {
	service  *Service
	interval time.Duration
}

func NewRefresher(service *Service, interval time.Duration) *Refresher {
	return &Refresher{service: service, interval: interval}
}

// Start begins the periodic refresh. Runs until the context is cancelled.
// An initial refresh warms the cache before the first tick.
func (r *Refresher) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("[Social] Starting snapshot refresher", "interval", r.interval)

	r.refresh(ctx)

	for {
		select {
		case <-ticker.C:
			r.refresh(ctx)
		case <-ctx.Done():
			slog.Info("[Social] Stopping refresher (context cancelled)")
			return nil
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	snap, err := r.service.Refresh(ctx)
	if err != nil {
		slog.Error("[Social] Snapshot refresh failed", "error", err)
		return
	}
	slog.Info("[Social] Snapshot refreshed", "posts", snap.TotalPosts)
}

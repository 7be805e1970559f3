package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kalambet/shopwatch/internal/search"
	"github.com/kalambet/shopwatch/internal/storage"
)

const defaultSweepInterval = 30 * time.Minute

// Notifier pushes an unsolicited message to a user.
type Notifier interface {
	Push(ctx context.Context, userID, text string) error
}

// Sweeper periodically re-checks every active tracker and notifies the owner
// the first time the market price crosses the target.
type Sweeper struct {
	store    Store
	search   Searcher
	notifier Notifier
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a sweeper. If interval is <= 0, it defaults to 30 minutes.
func NewSweeper(store Store, searcher Searcher, notifier Notifier, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:    store,
		search:   searcher,
		notifier: notifier,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled. The first sweep runs
// after one interval, not at startup, so a deploy does not hammer the sources.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("price sweep failed", "error", err)
			}
		}
	}
}

// RunOnce checks every active tracker sequentially. A failing tracker is
// logged and skipped; the sweep continues with the rest.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	trackers, err := s.store.ListActiveTrackers()
	if err != nil {
		return fmt.Errorf("listing active trackers: %w", err)
	}

	s.logger.Info("price sweep started", "trackers", len(trackers))
	for _, t := range trackers {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.checkTracker(ctx, t); err != nil {
			s.logger.Warn("tracker check failed", "tracker", t.ID, "product", t.ProductName, "error", err)
		}
	}
	return nil
}

// checkTracker re-searches one product and records the observation. The user
// is notified only on the transition into target range: once the last
// recorded price is already at or under target, repeat sweeps stay silent.
func (s *Sweeper) checkTracker(ctx context.Context, t storage.Tracker) error {
	prefs, err := s.store.GetPreferences(t.UserID)
	if err != nil {
		prefs = storage.DefaultPreferences(t.UserID)
	}

	agg := s.search.SearchAll(ctx, t.ProductName, search.Prefs{
		AllowAccessories: prefs.AllowAccessories,
		MinRelevance:     prefs.MinRelevanceScore,
	})
	if agg.Cheapest == nil {
		s.logger.Info("no offers for tracked product", "tracker", t.ID, "product", t.ProductName)
		return nil
	}

	now := time.Now().UTC()
	price := agg.MinPrice
	crossed := price <= t.TargetPrice && (t.LastPrice == nil || *t.LastPrice > t.TargetPrice)

	if err := s.store.UpdateTrackerPrice(t.ID, price, now); err != nil {
		return fmt.Errorf("updating tracker price: %w", err)
	}
	if err := s.store.AppendPriceHistory(storage.PriceRecord{
		TrackerID:  t.ID,
		Price:      price,
		Platform:   agg.Cheapest.Platform,
		ItemName:   agg.Cheapest.Name,
		Link:       agg.Cheapest.Link,
		ObservedAt: now,
	}); err != nil {
		s.logger.Warn("appending price history failed", "tracker", t.ID, "error", err)
	}

	if !crossed {
		return nil
	}
	if s.notifier == nil {
		s.logger.Warn("target reached but no notifier configured", "tracker", t.ID)
		return nil
	}
	if err := s.notifier.Push(ctx, t.UserID, priceAlertReply(t, agg)); err != nil {
		return fmt.Errorf("pushing alert: %w", err)
	}
	s.logger.Info("price alert sent", "tracker", t.ID, "product", t.ProductName, "price", price)
	return nil
}

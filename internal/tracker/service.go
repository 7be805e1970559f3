// Package tracker implements price watches: creating and updating them from
// classified intents, answering price queries, and the periodic sweep that
// notifies users when a target price is reached.
package tracker

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/shopwatch/internal/search"
	"github.com/kalambet/shopwatch/internal/storage"
)

// Target prices outside this range are user input mistakes.
const (
	minTargetPrice = 1
	maxTargetPrice = 50_000_000
)

// Store abstracts tracker persistence.
type Store interface {
	SaveTracker(t storage.Tracker) error
	FindActiveTracker(userID, productName string) (storage.Tracker, error)
	LoadUserTrackers(userID string) ([]storage.Tracker, error)
	ListActiveTrackers() ([]storage.Tracker, error)
	UpdateTrackerTarget(id string, target int, createdAt time.Time) error
	UpdateTrackerPrice(id string, price int, checkedAt time.Time) error
	AppendPriceHistory(rec storage.PriceRecord) error
	GetPreferences(userID string) (storage.Preferences, error)
	SetAllowAccessories(userID string, allow bool) error
}

// Searcher runs the comprehensive price search.
type Searcher interface {
	SearchAll(ctx context.Context, product string, prefs search.Prefs) *search.Aggregate
}

// Service owns the tracking operations. All methods return the reply text to
// send back to the user; storage failures degrade to an apologetic message
// rather than an error the bot cannot phrase.
type Service struct {
	store  Store
	search Searcher
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a tracking service.
func NewService(store Store, searcher Searcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		search: searcher,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// userLock serializes tracker writes per user so concurrent webhook events
// cannot race the find-then-save sequence.
func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// Track creates a tracker for (userID, product) or updates the target of the
// existing one, then runs an immediate price check so the reply can report
// where the market is right now.
func (s *Service) Track(ctx context.Context, userID, product string, target int) string {
	if target < minTargetPrice || target > maxTargetPrice {
		return msgInvalidPrice
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UTC()
	var reply string
	var trackerID string

	existing, err := s.store.FindActiveTracker(userID, product)
	switch {
	case err == nil:
		if err := s.store.UpdateTrackerTarget(existing.ID, target, now); err != nil {
			s.logger.Error("updating tracker failed", "user", userID, "product", product, "error", err)
			return msgTrackFailed
		}
		trackerID = existing.ID
		reply = trackUpdatedReply(product, existing.TargetPrice, target)
	case err == storage.ErrNotFound:
		t := storage.Tracker{
			ID:          uuid.NewString(),
			UserID:      userID,
			ProductName: product,
			TargetPrice: target,
			CreatedAt:   now,
			IsActive:    true,
			TrackMode:   "below",
		}
		if err := s.store.SaveTracker(t); err != nil {
			s.logger.Error("saving tracker failed", "user", userID, "product", product, "error", err)
			return msgTrackFailed
		}
		trackerID = t.ID
		reply = trackCreatedReply(product, target)
	default:
		s.logger.Error("looking up tracker failed", "user", userID, "product", product, "error", err)
		return msgTrackFailed
	}

	agg := s.search.SearchAll(ctx, product, s.prefs(userID))
	if agg.Cheapest == nil {
		return reply + "追蹤已啟動，正在收集價格資訊..."
	}

	s.recordObservation(trackerID, agg, now)
	return reply + currentPriceAnalysis(agg, target) + "\n\n" + agg.FilterNote
}

// NeedPriceReply prompts for the missing target price of a tracking request.
func (s *Service) NeedPriceReply() string {
	return msgNeedPrice
}

// QueryPrice runs the comprehensive search and formats the comparison reply.
func (s *Service) QueryPrice(ctx context.Context, userID, product string) string {
	agg := s.search.SearchAll(ctx, product, s.prefs(userID))
	if agg.Cheapest == nil {
		return notFoundReply(product, agg.FilterNote)
	}
	return priceQueryReply(agg)
}

// List formats the user's active trackers.
func (s *Service) List(userID string) string {
	trackers, err := s.store.LoadUserTrackers(userID)
	if err != nil {
		s.logger.Error("loading trackers failed", "user", userID, "error", err)
		return msgListFailed
	}
	if len(trackers) == 0 {
		return msgNoTrackers
	}
	return trackerListReply(trackers)
}

// Settings applies accessory-filter commands found in the message and reports
// the current preference state.
func (s *Service) Settings(userID, message string) string {
	var status string
	switch {
	case containsAny(message, []string{"允許配件", "包含配件"}):
		if err := s.store.SetAllowAccessories(userID, true); err != nil {
			s.logger.Error("updating preferences failed", "user", userID, "error", err)
			status = "設定更新失敗\n\n"
		} else {
			status = "已設定為允許搜尋配件商品\n\n"
		}
	case containsAny(message, []string{"不要配件", "過濾配件", "排除配件"}):
		if err := s.store.SetAllowAccessories(userID, false); err != nil {
			s.logger.Error("updating preferences failed", "user", userID, "error", err)
			status = "設定更新失敗\n\n"
		} else {
			status = "已設定為自動過濾配件商品\n\n"
		}
	}

	prefs, err := s.store.GetPreferences(userID)
	if err != nil {
		s.logger.Error("loading preferences failed", "user", userID, "error", err)
		prefs = storage.DefaultPreferences(userID)
	}
	return settingsReply(status, prefs)
}

// prefs loads the user's filter settings, falling back to defaults so a
// storage hiccup never blocks a search.
func (s *Service) prefs(userID string) search.Prefs {
	p, err := s.store.GetPreferences(userID)
	if err != nil {
		s.logger.Warn("loading preferences failed, using defaults", "user", userID, "error", err)
		p = storage.DefaultPreferences(userID)
	}
	return search.Prefs{
		AllowAccessories: p.AllowAccessories,
		MinRelevance:     p.MinRelevanceScore,
	}
}

// recordObservation persists the latest observed price. History and the
// tracker row are best-effort: a failed write only loses one data point.
func (s *Service) recordObservation(trackerID string, agg *search.Aggregate, now time.Time) {
	if err := s.store.UpdateTrackerPrice(trackerID, agg.MinPrice, now); err != nil {
		s.logger.Warn("recording tracker price failed", "tracker", trackerID, "error", err)
	}
	if err := s.store.AppendPriceHistory(storage.PriceRecord{
		TrackerID:  trackerID,
		Price:      agg.MinPrice,
		Platform:   agg.Cheapest.Platform,
		ItemName:   agg.Cheapest.Name,
		Link:       agg.Cheapest.Link,
		ObservedAt: now,
	}); err != nil {
		s.logger.Warn("appending price history failed", "tracker", trackerID, "error", err)
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// DefaultMinRelevanceScore is used when a user has no stored preferences.
const DefaultMinRelevanceScore = 0.65

// Tracker is a persisted price watch. TargetPrice is in NT$; the watch fires
// when an observed price is at or under it.
type Tracker struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	ProductName string     `json:"product_name"` // normalized lowercase
	TargetPrice int        `json:"target_price"`
	Platforms   string     `json:"platforms,omitempty"` // JSON array stored as text
	CreatedAt   time.Time  `json:"created_at"`
	LastChecked *time.Time `json:"last_checked,omitempty"`
	LastPrice   *int       `json:"last_price,omitempty"`
	IsActive    bool       `json:"is_active"`
	TrackMode   string     `json:"track_mode"` // "below"
}

// Preferences holds per-user result filtering settings.
type Preferences struct {
	UserID            string    `json:"user_id"`
	AllowAccessories  bool      `json:"allow_accessories"`
	MinRelevanceScore float64   `json:"min_relevance_score"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DefaultPreferences returns the settings applied before a user customizes
// anything.
func DefaultPreferences(userID string) Preferences {
	return Preferences{
		UserID:            userID,
		AllowAccessories:  false,
		MinRelevanceScore: DefaultMinRelevanceScore,
	}
}

// PriceRecord is one historical price observation for a tracker.
type PriceRecord struct {
	ID         int64     `json:"id"`
	TrackerID  string    `json:"tracker_id"`
	Price      int       `json:"price"`
	Platform   string    `json:"platform"`
	ItemName   string    `json:"item_name"`
	Link       string    `json:"link"`
	ObservedAt time.Time `json:"observed_at"`
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/shopwatch/internal/storage"
)

func newAdminHandler(t *testing.T) (http.Handler, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:): %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewAdminHandler(AdminDeps{Store: store, Token: "admin-token"}), store
}

func adminGet(t *testing.T, handler http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAdmin_RequiresToken(t *testing.T) {
	handler, _ := newAdminHandler(t)

	if rec := adminGet(t, handler, "/trackers", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}
	if rec := adminGet(t, handler, "/trackers", "wrong"); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", rec.Code)
	}
}

func TestAdmin_ListTrackers(t *testing.T) {
	handler, store := newAdminHandler(t)

	rec := adminGet(t, handler, "/trackers", "admin-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var trackers []storage.Tracker
	if err := json.NewDecoder(rec.Body).Decode(&trackers); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(trackers) != 0 {
		t.Errorf("empty store must list zero trackers, got %d", len(trackers))
	}

	tr := storage.Tracker{
		ID:          uuid.NewString(),
		UserID:      "u1",
		ProductName: "iphone 15",
		TargetPrice: 25000,
		CreatedAt:   time.Now().UTC(),
		IsActive:    true,
	}
	if err := store.SaveTracker(tr); err != nil {
		t.Fatalf("SaveTracker: %v", err)
	}

	rec = adminGet(t, handler, "/trackers?user_id=u1", "admin-token")
	if err := json.NewDecoder(rec.Body).Decode(&trackers); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(trackers) != 1 || trackers[0].ProductName != "iphone 15" {
		t.Errorf("trackers = %+v", trackers)
	}
}

func TestAdmin_TrackerHistory(t *testing.T) {
	handler, store := newAdminHandler(t)

	tr := storage.Tracker{
		ID:          uuid.NewString(),
		UserID:      "u1",
		ProductName: "ps5",
		TargetPrice: 12000,
		CreatedAt:   time.Now().UTC(),
		IsActive:    true,
	}
	if err := store.SaveTracker(tr); err != nil {
		t.Fatalf("SaveTracker: %v", err)
	}
	if err := store.AppendPriceHistory(storage.PriceRecord{
		TrackerID:  tr.ID,
		Price:      13500,
		Platform:   "PChome",
		ItemName:   "PS5 主機",
		Link:       "https://example.test/ps5",
		ObservedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("AppendPriceHistory: %v", err)
	}

	rec := adminGet(t, handler, "/trackers/"+tr.ID+"/history", "admin-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var history []storage.PriceRecord
	if err := json.NewDecoder(rec.Body).Decode(&history); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(history) != 1 || history[0].Price != 13500 {
		t.Errorf("history = %+v", history)
	}
}

func TestAdmin_DeactivateTracker(t *testing.T) {
	handler, store := newAdminHandler(t)

	tr := storage.Tracker{
		ID:          uuid.NewString(),
		UserID:      "u1",
		ProductName: "ps5",
		TargetPrice: 12000,
		CreatedAt:   time.Now().UTC(),
		IsActive:    true,
	}
	if err := store.SaveTracker(tr); err != nil {
		t.Fatalf("SaveTracker: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/trackers/"+tr.ID, nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if _, err := store.FindActiveTracker("u1", "ps5"); err != storage.ErrNotFound {
		t.Errorf("tracker still active after deactivation: %v", err)
	}

	req = httptest.NewRequest(http.MethodDelete, "/trackers/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", rec.Code)
	}
}

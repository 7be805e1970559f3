package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/shopwatch/internal/storage"
)

// AdminDeps holds dependencies for the operational endpoints.
type AdminDeps struct {
	Store *storage.Store
	Token string
}

// NewAdminHandler returns the bearer-authenticated operational router used to
// inspect and clean up trackers without going through the bot.
func NewAdminHandler(deps AdminDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(BearerAuth(deps.Token))

	r.Get("/trackers", handleListTrackers(deps))
	r.Get("/trackers/{id}/history", handleTrackerHistory(deps))
	r.Delete("/trackers/{id}", handleDeactivateTracker(deps))

	return r
}

func handleListTrackers(deps AdminDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			trackers []storage.Tracker
			err      error
		)
		if userID := r.URL.Query().Get("user_id"); userID != "" {
			trackers, err = deps.Store.LoadUserTrackers(userID)
		} else {
			trackers, err = deps.Store.ListActiveTrackers()
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list trackers: %v", err)
			return
		}
		if trackers == nil {
			trackers = []storage.Tracker{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(trackers)
	}
}

func handleTrackerHistory(deps AdminDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		limit := parseIntParam(r, "limit", 20, 100)

		history, err := deps.Store.GetPriceHistory(id, limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load history: %v", err)
			return
		}
		if history == nil {
			history = []storage.PriceRecord{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(history)
	}
}

func handleDeactivateTracker(deps AdminDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := deps.Store.DeactivateTracker(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "tracker not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to deactivate tracker: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "deactivated"})
	}
}

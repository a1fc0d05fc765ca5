package handler

import (
	"net/http"
	"strconv"

	"github.com/meridianfarm/bloomwatch/internal/logger"
	"github.com/meridianfarm/bloomwatch/internal/repository"
)

const defaultListLimit = 100

// HandleListEvents returns the most recent bloom events for the dashboard
// collaborator. Each event carries its source tag and synthetic flag so the
// UI can show the live-vs-synthetic indicator.
func HandleListEvents(repo repository.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseLimit(r, defaultListLimit)

		events, err := repo.ListEvents(r.Context(), limit)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list events", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list events")
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

// HandleListAlerts returns the most recent alert records, newest first.
func HandleListAlerts(repo repository.Alert) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseLimit(r, defaultListLimit)

		records, err := repo.ListRecords(r.Context(), limit)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list alert records", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list alert records")
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 1000 {
		return fallback
	}
	return limit
}

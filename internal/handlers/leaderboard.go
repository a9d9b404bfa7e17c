// internal/handlers/leaderboard.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/cardden/server/internal/database"
)

const defaultLeaderboardLimit = 20

// LeaderboardHandler returns aggregated win/loss standings for one variant:
// GET /leaderboard?variant=mau&limit=20
func LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	variant := r.URL.Query().Get("variant")
	if variant != "pairs" && variant != "mau" {
		http.Error(w, "variant must be 'pairs' or 'mau'", http.StatusBadRequest)
		return
	}

	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			http.Error(w, "limit must be 1-100", http.StatusBadRequest)
			return
		}
		limit = n
	}

	rows, err := database.FetchTopPlayers(r.Context(), variant, limit)
	if err != nil {
		logrus.Warnf("failed to fetch leaderboard for %s: %v", variant, err)
		http.Error(w, "failed to fetch leaderboard", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []database.LeaderboardRow{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

package handlers

import (
	"encoding/json"
	"net/http"

	"triarb/internal/matrix"
)

// StatsHandler serves the deal-age summary the round-robin compute loop
// has accumulated.
type StatsHandler struct {
	matrix *matrix.Matrix
}

func NewStatsHandler(mx *matrix.Matrix) *StatsHandler {
	return &StatsHandler{matrix: mx}
}

type statsResponse struct {
	AgeMeanMs       float64 `json:"age_mean_ms"`
	AgeStdDevMs     float64 `json:"age_stddev_ms"`
	AgeBestRecentMs float64 `json:"age_best_recent_ms"`
	RegisteredCycles int    `json:"registered_cycles"`
}

// GetStats returns the current age-distribution summary.
//
// GET /api/v1/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	mean, stddev, bestRecent := h.matrix.AgeSummary()
	json.NewEncoder(w).Encode(statsResponse{
		AgeMeanMs:        mean,
		AgeStdDevMs:      stddev,
		AgeBestRecentMs:  bestRecent,
		RegisteredCycles: len(h.matrix.CycleIDs()),
	})
}

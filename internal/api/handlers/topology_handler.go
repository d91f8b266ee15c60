package handlers

import (
	"encoding/json"
	"net/http"

	"triarb/internal/topology"
)

// TopologyHandler serves the cycle set and subscription list built once at
// startup.
type TopologyHandler struct {
	result topology.Result
}

func NewTopologyHandler(result topology.Result) *TopologyHandler {
	return &TopologyHandler{result: result}
}

type topologyResponse struct {
	CycleCount    int      `json:"cycle_count"`
	CycleIDs      []string `json:"cycle_ids"`
	Subscriptions []string `json:"subscriptions"`
}

// GetTopology returns the registered cycles and the symbol subscription set.
//
// GET /api/v1/topology
func (h *TopologyHandler) GetTopology(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ids := make([]string, len(h.result.Cycles))
	for i, c := range h.result.Cycles {
		ids[i] = c.ID
	}
	json.NewEncoder(w).Encode(topologyResponse{
		CycleCount:    len(h.result.Cycles),
		CycleIDs:      ids,
		Subscriptions: h.result.Subscriptions,
	})
}

// Package api wires the HTTP observability surface: health, metrics,
// aggregate stats, registered topology, and the WebSocket event stream.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"triarb/internal/api/handlers"
	"triarb/internal/api/middleware"
	"triarb/internal/matrix"
	"triarb/internal/topology"
	"triarb/internal/websocket"
)

// Dependencies are the collaborators the API surface reads from; all are
// read-only from this package's perspective.
type Dependencies struct {
	Matrix   *matrix.Matrix
	Topology topology.Result
	Hub      *websocket.Hub
}

// SetupRoutes builds the router:
//
//	GET  /health              - liveness probe
//	GET  /metrics             - Prometheus exposition
//	GET  /api/v1/stats        - deal-age summary
//	GET  /api/v1/topology     - registered cycles and subscriptions
//	GET  /ws/stream           - WebSocket event stream
//
// Recovery, Logging, and CORS apply to every route.
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	if deps != nil {
		api := router.PathPrefix("/api/v1").Subrouter()

		if deps.Matrix != nil {
			statsHandler := handlers.NewStatsHandler(deps.Matrix)
			api.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")
		}

		topologyHandler := handlers.NewTopologyHandler(deps.Topology)
		api.HandleFunc("/topology", topologyHandler.GetTopology).Methods("GET")

		if deps.Hub != nil {
			router.HandleFunc("/ws/stream", func(w http.ResponseWriter, r *http.Request) {
				websocket.ServeWS(deps.Hub, w, r)
			}).Methods("GET")
		}
	}

	return router
}

// Package server wires HTTP handlers into a ServeMux via routing helpers.
package server

import (
	"net/http"

	"github.com/Tyrowin/strangerchat/internal/lobby"
)

// SetupRoutes configures and returns an HTTP ServeMux with all application routes.
// metrics may be nil, in which case /metrics is not served.
func SetupRoutes(hub *Hub, metrics *lobby.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.HandleFunc("/ws", WebSocketHandler(hub))
	mux.HandleFunc("/stats", StatsHandler(hub))
	mux.HandleFunc("/test", TestPageHandler)
	if metrics != nil {
		mux.Handle("/metrics", metrics.Handler())
	}
	return mux
}

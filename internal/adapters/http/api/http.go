// Package api exposes the contact relay and the operational endpoints over
// HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/montpellier/pkg/logger"
	"github.com/okian/montpellier/pkg/metrics"
)

// Relay paths. The first is the historical location the site's forms post to.
const (
	RelayPath      = "/server/contact.php"
	RelayAliasPath = "/api/contact"
)

// Server wires HTTP routes for the relay and operations.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	relayHandler  *RelayHandler
}

// NewServer creates a new API server. A nil relay leaves the relay routes
// unmounted.
func NewServer(relay Relayer, statsProvider StatsProvider, log logger.Logger) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
	}
	if relay != nil {
		s.relayHandler = NewRelayHandler(relay, log)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	if s.relayHandler != nil {
		r.HandleFunc(RelayPath, s.relayHandler.HandleContact)
		r.HandleFunc(RelayAliasPath, s.relayHandler.HandleContact)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

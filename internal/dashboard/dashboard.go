// Package dashboard serves administrator statistics, the pulse summary and
// the live report event feed.
package dashboard

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BhavyaPagadala/urbix/internal/analysis"
	"github.com/BhavyaPagadala/urbix/internal/report"
)

// Dashboard provides the statistics endpoints and the websocket feed.
type Dashboard struct {
	store *report.Store
	pulse *analysis.PulseTracker
	loc   *time.Location
	hub   *Hub
}

// New creates a Dashboard. A nil loc buckets trends in UTC.
func New(store *report.Store, pulse *analysis.PulseTracker, loc *time.Location, hub *Hub) *Dashboard {
	if loc == nil {
		loc = time.UTC
	}
	if hub == nil {
		hub = NewHub()
	}
	return &Dashboard{store: store, pulse: pulse, loc: loc, hub: hub}
}

// Hub returns the live feed hub so callers can register it as an observer.
func (d *Dashboard) Hub() *Hub {
	return d.hub
}

// RegisterRoutes mounts the page and statistics routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.ServeIndex)
	r.Get("/api/stats", d.handleStats)
	r.Get("/api/pulse", d.handlePulse)
	r.Get("/api/localities", d.handleLocalities)
}

// RegisterLive mounts the websocket event feed. It must not sit behind a
// request timeout.
func (d *Dashboard) RegisterLive(r chi.Router) {
	r.Get("/ws", d.hub.ServeWS)
}

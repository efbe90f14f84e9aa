package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/BhavyaPagadala/urbix/internal/analysis"
	"github.com/BhavyaPagadala/urbix/internal/lifecycle"
	"github.com/BhavyaPagadala/urbix/internal/report"
	"github.com/BhavyaPagadala/urbix/internal/stats"
)

// handleStats recomputes the snapshot for the filtered collection. The
// locality list always covers the whole collection.
func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	all := d.store.List(report.Filter{})
	snap := stats.Compute(lifecycle.FilterFromQuery(r).Apply(all), d.loc)
	snap.Localities = stats.Localities(all)
	writeJSON(w, http.StatusOK, snap)
}

// handlePulse refreshes the summary only when the collection changed.
func (d *Dashboard) handlePulse(w http.ResponseWriter, r *http.Request) {
	if d.pulse == nil {
		writeJSON(w, http.StatusOK, analysis.Pulse{})
		return
	}
	p := d.pulse.Refresh(r.Context(), d.store.Version(), d.store.List(report.Filter{}))
	writeJSON(w, http.StatusOK, p)
}

func (d *Dashboard) handleLocalities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stats.Localities(d.store.List(report.Filter{})))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

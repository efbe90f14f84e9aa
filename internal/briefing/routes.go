package briefing

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BhavyaPagadala/urbix/internal/analysis"
	"github.com/BhavyaPagadala/urbix/internal/report"
)

// RegisterRoutes mounts GET /api/briefing. ?format=markdown returns the
// Markdown source; the default is HTML. The pulse shown is the last one
// computed and no summarization is triggered.
func RegisterRoutes(r chi.Router, store *report.Store, pulse *analysis.PulseTracker, loc *time.Location) {
	r.Get("/api/briefing", func(w http.ResponseWriter, req *http.Request) {
		locality := req.URL.Query().Get("locality")
		reports := store.List(report.Filter{Locality: locality})

		var p analysis.Pulse
		if pulse != nil {
			p = pulse.Current()
		}
		b := Build(reports, locality, p, time.Now(), loc)

		if req.URL.Query().Get("format") == "markdown" {
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
			w.Write([]byte(b.Markdown()))
			return
		}

		page, err := b.HTML()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	})
}

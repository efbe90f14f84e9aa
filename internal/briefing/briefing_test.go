package briefing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BhavyaPagadala/urbix/internal/analysis"
	"github.com/BhavyaPagadala/urbix/internal/report"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestBuildListsOpenCriticalReports(t *testing.T) {
	reports := report.Seed(now)
	reports = append(reports, report.Report{
		ID: "rep-3", Title: "Closed complaint", Sentiment: report.SentimentNegative,
		Status: report.StatusDismissed, CreatedAt: now,
	})

	b := Build(reports, "", analysis.Pulse{}, now, nil)
	if b.Locality != report.All {
		t.Errorf("locality = %q, want All", b.Locality)
	}
	if len(b.Critical) != 1 || b.Critical[0].ID != "rep-1" {
		t.Errorf("critical = %+v", b.Critical)
	}
	if b.Snapshot.Total != 3 {
		t.Errorf("total = %d", b.Snapshot.Total)
	}
}

func TestMarkdown(t *testing.T) {
	b := Build(report.Seed(now), "Downtown", analysis.Pulse{Summary: "Roads are the main concern.", Stale: true}, now, time.UTC)
	md := b.Markdown()

	for _, want := range []string{
		"# Urbix Governance Brief",
		"**Downtown**",
		"> Roads are the main concern.",
		"predates the latest reports",
		"| Total reports | 2 |",
		"| Resolution rate | 50% |",
		"**Large Pothole on Main St** (rep-1, ",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownWithoutCritical(t *testing.T) {
	b := Build(nil, "", analysis.Pulse{}, now, nil)
	md := b.Markdown()
	if !strings.Contains(md, "None.") {
		t.Errorf("expected empty critical section:\n%s", md)
	}
	if strings.Contains(md, "> ") {
		t.Error("no pulse quote expected without a summary")
	}
}

func TestHTMLEscapesReportText(t *testing.T) {
	reports := []report.Report{{
		ID: "rep-9", Title: "<script>alert(1)</script> | broken", Sentiment: report.SentimentNegative,
		Status: report.StatusPending, CreatedAt: now,
	}}
	page, err := Build(reports, "", analysis.Pulse{}, now, nil).HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	html := string(page)
	if strings.Contains(html, "<script>") {
		t.Error("raw script tag leaked into the page")
	}
	for _, want := range []string{"<!DOCTYPE html>", "<table>", "&lt;script&gt;", "<title>Urbix Governance Brief: All</title>"} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestBriefingRoute(t *testing.T) {
	store := report.NewStore(report.NewMemoryRepository())
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := chi.NewRouter()
	RegisterRoutes(r, store, nil, time.UTC)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/briefing?locality=Sunnydale&format=markdown", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "| Total reports | 1 |") {
		t.Errorf("locality filter not applied:\n%s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/briefing", nil))
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
}

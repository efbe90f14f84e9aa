package similar

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/BhavyaPagadala/urbix/internal/lifecycle"
	"github.com/BhavyaPagadala/urbix/internal/report"
)

// wordEmbedding hashes words into a small vector so texts sharing words
// land close together.
func wordEmbedding(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, 32)
	v[0] = 0.1
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(strings.Trim(w, ".,:!")))
		v[1+h.Sum32()%31]++
	}
	return v, nil
}

func newIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(wordEmbedding)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return idx
}

var corpus = []report.Report{
	{ID: "a", Title: "Pothole on Main Street", Description: "Deep pothole damaging cars", Category: report.CategoryRoads, Status: report.StatusPending},
	{ID: "b", Title: "Another pothole on Main Street", Description: "Pothole near the bakery damaging cars", Category: report.CategoryRoads, Status: report.StatusReviewing},
	{ID: "c", Title: "Broken swing", Description: "Swing chain snapped in the playground", Category: report.CategoryParks, Status: report.StatusPending},
}

func TestSimilarRanksClosestFirst(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()
	if err := idx.AddAll(ctx, corpus); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	if idx.Count() != 3 {
		t.Fatalf("count = %d", idx.Count())
	}

	matches, err := idx.Similar(ctx, corpus[0], 2)
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %+v", matches)
	}
	if matches[0].ID != "b" {
		t.Errorf("closest = %s, want b", matches[0].ID)
	}
	if matches[0].Status != report.StatusReviewing || matches[0].Title != corpus[1].Title {
		t.Errorf("metadata not carried: %+v", matches[0])
	}
	for _, m := range matches {
		if m.ID == "a" {
			t.Error("query report should be excluded")
		}
	}
}

func TestSimilarOnSmallIndex(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()

	matches, err := idx.Similar(ctx, corpus[0], 5)
	if err != nil || len(matches) != 0 {
		t.Fatalf("empty index: %v, %v", matches, err)
	}

	idx.Add(ctx, corpus[0])
	matches, err = idx.Similar(ctx, corpus[0], 5)
	if err != nil || len(matches) != 0 {
		t.Errorf("only self indexed: %v, %v", matches, err)
	}
}

func TestAddReplacesAndRemoveDrops(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()
	idx.AddAll(ctx, corpus)

	updated := corpus[1]
	updated.Status = report.StatusResolved
	if err := idx.Add(ctx, updated); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if idx.Count() != 3 {
		t.Errorf("re-adding should replace, count = %d", idx.Count())
	}
	matches, _ := idx.Similar(ctx, corpus[0], 1)
	if len(matches) != 1 || matches[0].Status != report.StatusResolved {
		t.Errorf("matches = %+v", matches)
	}

	if err := idx.Remove(ctx, "b"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if idx.Count() != 2 {
		t.Errorf("count after remove = %d", idx.Count())
	}
}

func TestObserverIndexesEvents(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()

	idx.OnReportEvent(ctx, lifecycle.Event{Type: lifecycle.EventCreated, Report: corpus[0]})
	idx.OnReportEvent(ctx, lifecycle.Event{Type: lifecycle.EventEnriched, Report: corpus[1]})
	idx.OnReportEvent(ctx, lifecycle.Event{Type: lifecycle.EventEnrichmentFailed, Report: corpus[2]})
	idx.Wait()
	if idx.Count() != 2 {
		t.Fatalf("count = %d, want 2", idx.Count())
	}

	idx.OnReportEvent(ctx, lifecycle.Event{Type: lifecycle.EventDeleted, Report: corpus[0]})
	if idx.Count() != 1 {
		t.Errorf("count after delete = %d, want 1", idx.Count())
	}
}

func TestDocumentIncludesCategoryAndLocality(t *testing.T) {
	r := report.Report{Title: "Leak", Description: "Water", Category: report.CategoryWater, Location: report.Location{Locality: "Harbor"}}
	doc := Document(r)
	if !strings.Contains(doc, report.CategoryWater.Label()) || !strings.Contains(doc, "Harbor") {
		t.Errorf("document = %q", doc)
	}
}

func setupRouter(t *testing.T, idx *Index) (*chi.Mux, *report.Store) {
	t.Helper()
	store := report.NewStore(report.NewMemoryRepository())
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := chi.NewRouter()
	RegisterRoutes(r, idx, store)
	return r, store
}

func TestSimilarRoute(t *testing.T) {
	idx := newIndex(t)
	r, store := setupRouter(t, idx)
	ctx := context.Background()
	idx.AddAll(ctx, store.List(report.Filter{}))
	// An indexed id with no stored report is skipped.
	idx.Add(ctx, report.Report{ID: "ghost", Title: "Large Pothole on Main St"})

	req := httptest.NewRequest(http.MethodGet, "/api/similar/rep-1?limit=1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var matches []Match
	json.NewDecoder(w.Body).Decode(&matches)
	if len(matches) != 1 || matches[0].ID != "rep-2" {
		t.Errorf("matches = %+v", matches)
	}

	for path, want := range map[string]int{
		"/api/similar/missing":       http.StatusNotFound,
		"/api/similar/rep-1?limit=0": http.StatusBadRequest,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != want {
			t.Errorf("%s: status = %d, want %d", path, w.Code, want)
		}
	}
}

func TestSimilarRouteWithoutIndex(t *testing.T) {
	r, _ := setupRouter(t, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/similar/rep-1", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestPersistAndLoad(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t)
	idx.AddAll(ctx, corpus)
	path := t.TempDir() + "/similar.gob.gz"
	if err := idx.Persist(path); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	restored := newIndex(t)
	if err := restored.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if restored.Count() != 3 {
		t.Fatalf("restored count = %d", restored.Count())
	}
	matches, err := restored.Similar(ctx, corpus[0], 1)
	if err != nil || len(matches) != 1 || matches[0].ID != "b" {
		t.Errorf("restored matches = %+v, %v", matches, err)
	}
}

func TestSyncRebuildsOnMismatch(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t)
	idx.AddAll(ctx, corpus)

	if err := idx.Sync(ctx, corpus[:2]); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if idx.Count() != 2 {
		t.Errorf("count = %d, want 2", idx.Count())
	}
	if err := idx.Sync(ctx, corpus[:2]); err != nil || idx.Count() != 2 {
		t.Errorf("second sync: %v, count %d", err, idx.Count())
	}
}

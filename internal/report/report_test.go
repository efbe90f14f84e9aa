package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BhavyaPagadala/urbix/internal/db"
)

// failingRepo returns loadErr from LoadReports and saveErr from SaveReports.
type failingRepo struct {
	loadErr error
	saveErr error
	saved   []Report
}

func (f *failingRepo) LoadReports(ctx context.Context) ([]Report, error) {
	return nil, f.loadErr
}

func (f *failingRepo) SaveReports(ctx context.Context, reports []Report) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = reports
	return nil
}

func loadedStore(t *testing.T) (*Store, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	s := NewStore(repo)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s, repo
}

func sample(id string) Report {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	lat := 12.5
	return Report{
		ID:          id,
		Reporter:    "alice",
		Title:       "Broken light",
		Description: "Street light out",
		Category:    CategoryElectricity,
		Department:  DefaultDepartment,
		Sentiment:   SentimentNegative,
		Status:      StatusPending,
		Location:    Location{Lat: &lat, Locality: "Uptown"},
		CreatedAt:   now,
		History:     []HistoryEntry{{Timestamp: now, Status: StatusPending, Actor: "alice"}},
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"roads_infrastructure", CategoryRoads, true},
		{"Roads & Infrastructure", CategoryRoads, true},
		{"public parks", CategoryParks, true},
		{"WATER_SUPPLY", CategoryWater, true},
		{"space debris", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseCategory(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseCategory(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCategoryLabelsAreReplaceable(t *testing.T) {
	orig := CategoryLabels
	defer func() { CategoryLabels = orig }()

	CategoryLabels = map[Category]string{CategoryRoads: "Carreteras"}
	if got := CategoryRoads.Label(); got != "Carreteras" {
		t.Errorf("Label() = %q", got)
	}
	if got, ok := ParseCategory("carreteras"); !ok || got != CategoryRoads {
		t.Errorf("ParseCategory with replaced labels = %q, %v", got, ok)
	}
	if got := CategoryWater.Label(); got != "water_supply" {
		t.Errorf("missing label should fall back to value, got %q", got)
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus("Resolved"); err != nil || s != StatusResolved {
		t.Errorf("ParseStatus(Resolved) = %q, %v", s, err)
	}
	if _, err := ParseStatus("archived"); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}
	if !StatusDismissed.Terminal() || StatusReviewing.Terminal() {
		t.Error("Terminal() mismatch")
	}
}

func TestParsePriority(t *testing.T) {
	if p, ok := ParsePriority("HIGH"); !ok || p != PriorityHigh {
		t.Errorf("ParsePriority(HIGH) = %q, %v", p, ok)
	}
	if _, ok := ParsePriority("urgent"); ok {
		t.Error("expected urgent to be rejected")
	}
}

func TestCloneIsDeep(t *testing.T) {
	r := sample("rep-x")
	c := r.Clone()
	*c.Location.Lat = 99
	c.History[0].Actor = "mallory"

	if *r.Location.Lat != 12.5 {
		t.Error("clone shares Lat pointer")
	}
	if r.History[0].Actor != "alice" {
		t.Error("clone shares history backing array")
	}
}

func TestLoadSeedsEmptyRepository(t *testing.T) {
	s, repo := loadedStore(t)

	reports := s.List(Filter{})
	if len(reports) != 2 {
		t.Fatalf("expected 2 seed reports, got %d", len(reports))
	}
	if reports[0].ID != "rep-1" || reports[1].ID != "rep-2" {
		t.Errorf("unexpected seed order: %s, %s", reports[0].ID, reports[1].ID)
	}
	if reports[0].Status != StatusPending || reports[1].Status != StatusResolved {
		t.Error("unexpected seed statuses")
	}
	for _, r := range reports {
		if len(r.History) != 1 || r.History[0].Actor != "system" || r.History[0].Status != r.Status {
			t.Errorf("%s: unexpected history %+v", r.ID, r.History)
		}
		if r.Department != "City Office" {
			t.Errorf("%s: department = %q", r.ID, r.Department)
		}
	}
	if repo.Saves() != 1 {
		t.Errorf("seed should be persisted once, got %d saves", repo.Saves())
	}
}

func TestLoadCorruptStartsEmpty(t *testing.T) {
	repo := &failingRepo{loadErr: ErrCorrupt}
	s := NewStore(repo)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := len(s.List(Filter{})); n != 0 {
		t.Errorf("expected empty collection, got %d", n)
	}
	if repo.saved != nil {
		t.Error("corrupt data must not be overwritten on load")
	}
}

func TestLoadPropagatesOtherErrors(t *testing.T) {
	s := NewStore(&failingRepo{loadErr: errors.New("disk on fire")})
	if err := s.Load(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestInsertPrependsAndPersists(t *testing.T) {
	s, repo := loadedStore(t)
	v := s.Version()

	if err := s.Insert(context.Background(), sample("rep-new")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got := s.List(Filter{})[0].ID; got != "rep-new" {
		t.Errorf("head = %q, want rep-new", got)
	}
	if s.Version() <= v {
		t.Error("version did not advance")
	}

	saved, _ := repo.LoadReports(context.Background())
	if len(saved) != 3 || saved[0].ID != "rep-new" {
		t.Errorf("repository not updated: %d reports", len(saved))
	}

	if err := s.Insert(context.Background(), sample("rep-new")); err == nil {
		t.Error("expected duplicate id to be rejected")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s, _ := loadedStore(t)

	r, err := s.Get("rep-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	r.Title = "changed"
	r.History[0].Actor = "changed"

	again, _ := s.Get("rep-1")
	if again.Title == "changed" || again.History[0].Actor == "changed" {
		t.Error("Get leaked internal state")
	}

	if _, err := s.Get("rep-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateRevertsOnSaveFailure(t *testing.T) {
	repo := &failingRepo{loadErr: ErrNoState}
	s := NewStore(repo)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	repo.saveErr = errors.New("read-only")
	v := s.Version()
	_, err := s.Update(context.Background(), "rep-1", func(r *Report) error {
		r.Title = "new title"
		return nil
	})
	if err == nil {
		t.Fatal("expected save error")
	}

	r, _ := s.Get("rep-1")
	if r.Title != "Large Pothole on Main St" {
		t.Errorf("title = %q, update should have been reverted", r.Title)
	}
	if s.Version() != v {
		t.Error("version advanced on failed update")
	}
}

func TestUpdateCallbackError(t *testing.T) {
	s, repo := loadedStore(t)
	saves := repo.Saves()

	sentinel := errors.New("nope")
	_, err := s.Update(context.Background(), "rep-1", func(r *Report) error {
		r.Title = "x"
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected callback error, got %v", err)
	}
	if repo.Saves() != saves {
		t.Error("failed callback should not persist")
	}
}

func TestDelete(t *testing.T) {
	s, _ := loadedStore(t)
	if err := s.Delete(context.Background(), "rep-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("rep-1"); !errors.Is(err, ErrNotFound) {
		t.Error("report still present after delete")
	}
	if err := s.Delete(context.Background(), "rep-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFilter(t *testing.T) {
	s, _ := loadedStore(t)

	tests := []struct {
		name string
		f    Filter
		want int
	}{
		{"all", Filter{Locality: "All", Sentiment: "All", Category: "All"}, 2},
		{"locality", Filter{Locality: "Downtown"}, 1},
		{"sentiment label", Filter{Sentiment: "Positive"}, 1},
		{"category label", Filter{Category: "Public Parks"}, 1},
		{"status", Filter{Status: "pending"}, 1},
		{"reporter", Filter{Reporter: "CITY_WATCHER"}, 1},
		{"no match", Filter{Locality: "Nowhere"}, 0},
		{"unknown category", Filter{Category: "space"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(s.List(tt.f)); got != tt.want {
				t.Errorf("List(%+v) returned %d, want %d", tt.f, got, tt.want)
			}
		})
	}
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer d.Close()

	repo := NewSQLiteRepository(d)
	ctx := context.Background()

	if _, err := repo.LoadReports(ctx); !errors.Is(err, ErrNoState) {
		t.Fatalf("expected ErrNoState on fresh database, got %v", err)
	}

	want := []Report{sample("rep-b"), sample("rep-a")}
	want[1].Location.Lat = nil
	want[1].Priority = PriorityHigh
	if err := repo.SaveReports(ctx, want); err != nil {
		t.Fatalf("SaveReports: %v", err)
	}

	got, err := repo.LoadReports(ctx)
	if err != nil {
		t.Fatalf("LoadReports: %v", err)
	}
	if len(got) != 2 || got[0].ID != "rep-b" || got[1].ID != "rep-a" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Location.Lat == nil || *got[0].Location.Lat != 12.5 {
		t.Error("lat not round-tripped")
	}
	if got[1].Location.Lat != nil {
		t.Error("nil lat should stay nil")
	}
	if got[1].Priority != PriorityHigh {
		t.Errorf("priority = %q", got[1].Priority)
	}
	if !got[0].CreatedAt.Equal(want[0].CreatedAt) {
		t.Errorf("created_at = %v, want %v", got[0].CreatedAt, want[0].CreatedAt)
	}
	if len(got[0].History) != 1 || got[0].History[0].Actor != "alice" {
		t.Errorf("history = %+v", got[0].History)
	}

	// Saving an empty collection is distinct from never saving.
	if err := repo.SaveReports(ctx, nil); err != nil {
		t.Fatalf("SaveReports(nil): %v", err)
	}
	got, err = repo.LoadReports(ctx)
	if err != nil || len(got) != 0 {
		t.Errorf("expected empty collection, got %d, %v", len(got), err)
	}
}

func TestSQLiteRepositoryDetectsCorruption(t *testing.T) {
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer d.Close()

	repo := NewSQLiteRepository(d)
	ctx := context.Background()
	if err := repo.SaveReports(ctx, []Report{sample("rep-1")}); err != nil {
		t.Fatalf("SaveReports: %v", err)
	}

	if _, err := d.Exec(`UPDATE reports SET history = 'not json'`); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.LoadReports(ctx); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt for bad history, got %v", err)
	}

	if _, err := d.Exec(`UPDATE reports SET history = '[]', status = 'archived'`); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.LoadReports(ctx); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt for bad status, got %v", err)
	}
}

func TestFileRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.json")
	repo := NewFileRepository(path)
	ctx := context.Background()

	if _, err := repo.LoadReports(ctx); !errors.Is(err, ErrNoState) {
		t.Fatalf("expected ErrNoState, got %v", err)
	}

	s := NewStore(repo)
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Insert(ctx, sample("rep-file")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	reloaded := NewStore(NewFileRepository(path))
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.List(Filter{}); len(got) != 3 || got[0].ID != "rep-file" {
		t.Errorf("unexpected reloaded collection: %d reports", len(got))
	}

	if err := os.WriteFile(path, []byte(`[{"id": 7}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.LoadReports(ctx); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func checkRepaired(t *testing.T, got []Report) {
	t.Helper()
	if len(got) != 2 {
		t.Fatalf("got %d reports, want 2", len(got))
	}

	a := got[0]
	if a.Category != CategoryOther || a.Sentiment != SentimentNeutral || a.Priority != "" {
		t.Errorf("enums not coerced: category=%q sentiment=%q priority=%q", a.Category, a.Sentiment, a.Priority)
	}
	if a.Department != DefaultDepartment {
		t.Errorf("department = %q", a.Department)
	}
	if len(a.History) != 1 || a.History[0].Status != StatusResolved ||
		a.History[0].Actor != "system" || !a.History[0].Timestamp.Equal(a.CreatedAt) {
		t.Errorf("empty history not synthesized: %+v", a.History)
	}

	b := got[1]
	if b.Category != CategoryRoads || b.Sentiment != SentimentNegative {
		t.Errorf("labels not canonicalized: category=%q sentiment=%q", b.Category, b.Sentiment)
	}
	if n := len(b.History); n != 2 || b.History[n-1].Status != b.Status || b.History[n-1].Actor != "system" {
		t.Errorf("history should end on the report status: %+v", b.History)
	}
	if b.History[1].Timestamp.Before(b.History[0].Timestamp) {
		t.Error("repaired history went backwards")
	}
}

func TestFileRepositoryRepairsLoadedReports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.json")
	data := `[
		{"id":"a","status":"resolved","category":"Bogus","sentiment":"angry","priority":"urgent",
		 "created_at":"2024-03-01T12:00:00Z","history":[]},
		{"id":"b","status":"Resolved","category":"Roads & Infrastructure","sentiment":"Negative",
		 "department":"Public Works","created_at":"2024-03-01T12:00:00Z",
		 "history":[{"timestamp":"2024-03-02T08:00:00Z","status":"pending","actor":"bob"}]}
	]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := NewFileRepository(path).LoadReports(context.Background())
	if err != nil {
		t.Fatalf("LoadReports: %v", err)
	}
	checkRepaired(t, got)
	if got[1].Status != StatusResolved {
		t.Errorf("status label not canonicalized: %q", got[1].Status)
	}
}

func TestSQLiteRepositoryRepairsLoadedReports(t *testing.T) {
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer d.Close()

	repo := NewSQLiteRepository(d)
	ctx := context.Background()

	a := sample("a")
	a.Status = StatusResolved
	a.Category, a.Sentiment, a.Priority, a.Department = "Bogus", "angry", "urgent", ""
	a.History = nil
	b := sample("b")
	b.Status = StatusResolved
	b.Category, b.Sentiment = "Roads & Infrastructure", "Negative"
	b.History[0].Timestamp = b.CreatedAt.Add(time.Hour)
	if err := repo.SaveReports(ctx, []Report{a, b}); err != nil {
		t.Fatalf("SaveReports: %v", err)
	}

	got, err := repo.LoadReports(ctx)
	if err != nil {
		t.Fatalf("LoadReports: %v", err)
	}
	checkRepaired(t, got)
}

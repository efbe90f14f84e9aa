package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Repository loads and saves the whole report collection.
type Repository interface {
	// LoadReports returns ErrNoState when nothing was ever saved and
	// ErrCorrupt when the saved data cannot be decoded.
	LoadReports(ctx context.Context) ([]Report, error)
	SaveReports(ctx context.Context, reports []Report) error
}

// Store owns the live report collection and persists it after every mutation.
type Store struct {
	repo  Repository
	clock func() time.Time

	mu      sync.RWMutex
	reports []Report
	version uint64
}

// NewStore creates a Store backed by repo. Call Load before use.
func NewStore(repo Repository) *Store {
	return &Store{repo: repo, clock: time.Now}
}

// Load replaces the in-memory collection with the repository contents.
// An empty repository is seeded with the demo reports; corrupt data leaves
// the collection empty without overwriting what was stored.
func (s *Store) Load(ctx context.Context) error {
	reports, err := s.repo.LoadReports(ctx)
	switch {
	case errors.Is(err, ErrNoState):
		reports = Seed(s.clock())
		if err := s.repo.SaveReports(ctx, cloneAll(reports)); err != nil {
			return fmt.Errorf("saving seed reports: %w", err)
		}
	case errors.Is(err, ErrCorrupt):
		log.Printf("report: %v; starting with an empty collection", err)
		reports = nil
	case err != nil:
		return fmt.Errorf("loading reports: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = cloneAll(reports)
	s.version++
	return nil
}

// Version increases on every successful mutation. Callers use it to skip
// recomputation when nothing changed.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// List returns copies of the matching reports, newest first.
func (s *Store) List(f Filter) []Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Report, 0, len(s.reports))
	for _, r := range s.reports {
		if f.Matches(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Get returns a copy of the report with the given id.
func (s *Store) Get(id string) (Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.reports[i].Clone(), nil
	}
	return Report{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Insert adds r at the head of the collection and persists it.
func (s *Store) Insert(ctx context.Context, r Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(r.ID) >= 0 {
		return fmt.Errorf("report %s already exists", r.ID)
	}

	prev := s.reports
	s.reports = append([]Report{r.Clone()}, s.reports...)
	if err := s.persist(ctx); err != nil {
		s.reports = prev
		return err
	}
	s.version++
	return nil
}

// Update applies fn to a copy of the report and stores the result. If fn
// returns an error or the save fails, the collection is left unchanged.
func (s *Store) Update(ctx context.Context, id string, fn func(*Report) error) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Report{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	prev := s.reports[i]
	next := prev.Clone()
	if err := fn(&next); err != nil {
		return Report{}, err
	}
	next.ID = prev.ID

	s.reports[i] = next
	if err := s.persist(ctx); err != nil {
		s.reports[i] = prev
		return Report{}, err
	}
	s.version++
	return next.Clone(), nil
}

// Delete removes the report with the given id and persists the collection.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	prev := s.reports
	next := make([]Report, 0, len(prev)-1)
	next = append(next, prev[:i]...)
	next = append(next, prev[i+1:]...)
	s.reports = next
	if err := s.persist(ctx); err != nil {
		s.reports = prev
		return err
	}
	s.version++
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.reports {
		if s.reports[i].ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context) error {
	if err := s.repo.SaveReports(ctx, cloneAll(s.reports)); err != nil {
		return fmt.Errorf("saving reports: %w", err)
	}
	return nil
}

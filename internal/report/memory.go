package report

import (
	"context"
	"sync"
)

// MemoryRepository keeps the saved collection in process memory.
type MemoryRepository struct {
	mu      sync.Mutex
	reports []Report
	saved   bool
	saves   int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) LoadReports(ctx context.Context) ([]Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return nil, ErrNoState
	}
	return cloneAll(m.reports), nil
}

func (m *MemoryRepository) SaveReports(ctx context.Context, reports []Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = cloneAll(reports)
	m.saved = true
	m.saves++
	return nil
}

// Saves counts successful SaveReports calls.
func (m *MemoryRepository) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

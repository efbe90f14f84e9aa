package analysis

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/BhavyaPagadala/urbix/internal/report"
)

// PulseSummarizer produces the one-sentence pulse summary.
type PulseSummarizer interface {
	SummarizePulse(ctx context.Context, reports []report.Report) (string, error)
}

// Pulse is the most recent successful summary.
type Pulse struct {
	Summary   string    `json:"summary"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	// Stale is set when the latest refresh failed and Summary predates it.
	Stale bool `json:"stale"`
}

// PulseTracker caches the pulse summary per store version so each change to
// the collection triggers at most one summarization attempt.
type PulseTracker struct {
	summarizer PulseSummarizer
	clock      func() time.Time

	mu        sync.Mutex
	current   Pulse
	attempted uint64
	tried     bool
}

func NewPulseTracker(s PulseSummarizer) *PulseTracker {
	return &PulseTracker{summarizer: s, clock: time.Now}
}

// Current returns the last known pulse without refreshing.
func (t *PulseTracker) Current() Pulse {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Refresh summarizes reports if version differs from the last attempt.
// On failure the previous summary is kept and marked stale. The lock is not
// held during summarization, so concurrent callers see the last pulse, and
// a result overtaken by a newer version is discarded.
func (t *PulseTracker) Refresh(ctx context.Context, version uint64, reports []report.Report) Pulse {
	t.mu.Lock()
	if t.tried && t.attempted == version {
		cur := t.current
		t.mu.Unlock()
		return cur
	}
	t.tried = true
	t.attempted = version
	t.mu.Unlock()

	summary, err := t.summarizer.SummarizePulse(ctx, reports)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.attempted != version {
		return t.current
	}
	if err != nil {
		log.Printf("analysis: pulse refresh failed: %v", err)
		t.current.Stale = t.current.Summary != ""
		return t.current
	}

	t.current = Pulse{Summary: summary, UpdatedAt: t.clock()}
	return t.current
}

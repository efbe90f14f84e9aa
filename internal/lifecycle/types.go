package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/BhavyaPagadala/urbix/internal/analysis"
	"github.com/BhavyaPagadala/urbix/internal/report"
)

// ErrInvalidSubmission is returned when a submission lacks a title or description.
var ErrInvalidSubmission = errors.New("invalid submission")

// Defaults applied to new reports.
const (
	DefaultLocality = "Main Area"
	DefaultReporter = "user"
	DefaultActor    = "admin"
)

// Analyzer classifies reports. *analysis.Client satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, description, image string) analysis.Result
	TryAnalyze(ctx context.Context, description, image string) (analysis.Result, error)
}

// Submission is a citizen's new report.
type Submission struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Location    report.Location `json:"location"`
	Image       string          `json:"image,omitempty"`
	// Draft carries an analysis already shown to the citizen (photo
	// auto-fill). When set no further enrichment is scheduled.
	Draft *analysis.Result `json:"draft,omitempty"`
}

// EventType names a lifecycle event.
type EventType string

const (
	EventCreated            EventType = "created"
	EventStatusChanged      EventType = "status_changed"
	EventTransitionRejected EventType = "transition_rejected"
	EventEnriched           EventType = "enriched"
	EventEnrichmentFailed   EventType = "enrichment_failed"
	EventDeleted            EventType = "deleted"
)

// Event describes a change to a report.
type Event struct {
	Type   EventType     `json:"type"`
	Report report.Report `json:"report"`
	// From is the previous status for status_changed and transition_rejected.
	From  report.Status `json:"from,omitempty"`
	Actor string        `json:"actor,omitempty"`
	Err   string        `json:"error,omitempty"`
	At    time.Time     `json:"at"`
}

// Observer is notified of lifecycle events. Calls happen synchronously on
// the goroutine that produced the event and must not block for long.
type Observer interface {
	OnReportEvent(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) OnReportEvent(ctx context.Context, ev Event) { f(ctx, ev) }

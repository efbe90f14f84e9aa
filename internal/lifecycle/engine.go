// Package lifecycle creates reports, moves them through triage statuses,
// and merges AI enrichment back into the store.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BhavyaPagadala/urbix/internal/analysis"
	"github.com/BhavyaPagadala/urbix/internal/report"
)

// Options configures an Engine.
type Options struct {
	// Timeout bounds each background enrichment. Defaults to 30s.
	Timeout time.Duration
	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// Engine owns report creation and status transitions.
type Engine struct {
	store    *report.Store
	analyzer Analyzer
	timeout  time.Duration
	clock    func() time.Time

	mu        sync.Mutex
	observers []Observer
	latest    map[string]uint64
	seq       uint64

	wg sync.WaitGroup
}

// errSuperseded marks an enrichment patch that a newer change has overtaken.
var errSuperseded = errors.New("enrichment superseded")

func NewEngine(store *report.Store, analyzer Analyzer, opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Engine{
		store:    store,
		analyzer: analyzer,
		timeout:  opts.Timeout,
		clock:    opts.Clock,
		latest:   make(map[string]uint64),
	}
}

// Store returns the backing report store.
func (e *Engine) Store() *report.Store {
	return e.store
}

// AddObserver registers o for every subsequent event.
func (e *Engine) AddObserver(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

func (e *Engine) emit(ctx context.Context, ev Event) {
	ev.At = e.clock()
	e.mu.Lock()
	obs := append([]Observer(nil), e.observers...)
	e.mu.Unlock()
	for _, o := range obs {
		o.OnReportEvent(ctx, ev)
	}
}

// Delete removes a report. Pending enrichments for it are dropped when
// they complete.
func (e *Engine) Delete(ctx context.Context, id, actor string) error {
	rep, err := e.store.Get(id)
	if err != nil {
		return err
	}
	if err := e.store.Delete(ctx, id); err != nil {
		return err
	}
	if actor == "" {
		actor = DefaultActor
	}
	e.emit(ctx, Event{Type: EventDeleted, Report: rep, Actor: actor})
	return nil
}

// Wait blocks until all scheduled enrichments have finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Draft runs a synchronous analysis used to pre-fill a submission form.
func (e *Engine) Draft(ctx context.Context, description, image string) analysis.Result {
	return e.analyzer.Analyze(ctx, description, image)
}

// Create validates sub, stores a new pending report, and schedules its
// enrichment unless sub carries a draft analysis.
func (e *Engine) Create(ctx context.Context, sub Submission, reporter string) (report.Report, error) {
	title := strings.TrimSpace(sub.Title)
	description := strings.TrimSpace(sub.Description)
	if title == "" || description == "" {
		return report.Report{}, fmt.Errorf("%w: title and description are required", ErrInvalidSubmission)
	}

	reporter = strings.TrimSpace(reporter)
	if reporter == "" {
		reporter = DefaultReporter
	}

	category := report.CategoryOther
	if c, ok := report.ParseCategory(sub.Category); ok {
		category = c
	}

	loc := sub.Location
	if strings.TrimSpace(loc.Locality) == "" {
		loc.Locality = DefaultLocality
	}

	now := e.clock()
	rep := report.Report{
		ID:          "rep-" + uuid.New().String(),
		Reporter:    reporter,
		Title:       title,
		Description: description,
		Category:    category,
		Department:  report.DefaultDepartment,
		Sentiment:   report.SentimentNeutral,
		Status:      report.StatusPending,
		Location:    loc,
		Image:       sub.Image,
		CreatedAt:   now,
		History:     []report.HistoryEntry{{Timestamp: now, Status: report.StatusPending, Actor: reporter}},
	}
	if sub.Draft != nil {
		mergeCreation(&rep, sub.Draft.Normalize())
	}

	if err := e.store.Insert(ctx, rep); err != nil {
		return report.Report{}, err
	}
	e.emit(ctx, Event{Type: EventCreated, Report: rep.Clone(), Actor: reporter})

	if sub.Draft == nil {
		e.schedule(ctx, rep, e.enrichCreated)
	}
	return rep, nil
}

// Transition moves report id to status to. Resolved and dismissed reports
// cannot return to pending or reviewing.
func (e *Engine) Transition(ctx context.Context, id, to, actor string) (report.Report, error) {
	status, err := report.ParseStatus(to)
	if err != nil {
		return report.Report{}, err
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = DefaultActor
	}

	var from report.Status
	updated, err := e.store.Update(ctx, id, func(r *report.Report) error {
		from = r.Status
		if err := checkTransition(r, status); err != nil {
			return err
		}
		r.History = append(r.History, report.HistoryEntry{
			Timestamp: e.nextTimestamp(r),
			Status:    status,
			Actor:     actor,
		})
		r.Status = status
		return nil
	})
	if errors.Is(err, report.ErrTerminalState) {
		if cur, gerr := e.store.Get(id); gerr == nil {
			e.emit(ctx, Event{Type: EventTransitionRejected, Report: cur, From: from, Actor: actor, Err: err.Error()})
		}
		return report.Report{}, err
	}
	if err != nil {
		return report.Report{}, err
	}

	e.emit(ctx, Event{Type: EventStatusChanged, Report: updated.Clone(), From: from, Actor: actor})
	e.schedule(ctx, updated, e.enrichTransitioned)
	return updated, nil
}

func checkTransition(r *report.Report, to report.Status) error {
	if to != report.StatusPending && to != report.StatusReviewing {
		return nil
	}
	switch r.Status {
	case report.StatusResolved:
		return fmt.Errorf("%w: report %s is already resolved", report.ErrTerminalState, r.ID)
	case report.StatusDismissed:
		return fmt.Errorf("%w: report %s is already closed", report.ErrTerminalState, r.ID)
	}
	return nil
}

// nextTimestamp keeps history timestamps non-decreasing under clock skew.
func (e *Engine) nextTimestamp(r *report.Report) time.Time {
	now := e.clock()
	if n := len(r.History); n > 0 && now.Before(r.History[n-1].Timestamp) {
		return r.History[n-1].Timestamp
	}
	return now
}

// Reanalyze runs a synchronous analysis for id and merges it the same way
// creation enrichment does.
func (e *Engine) Reanalyze(ctx context.Context, id string) (report.Report, error) {
	cur, err := e.store.Get(id)
	if err != nil {
		return report.Report{}, err
	}
	token := e.claim(id)
	res := e.analyzer.Analyze(ctx, cur.Description, cur.Image)
	return e.apply(ctx, id, cur.Revision(), token, func(r *report.Report) { mergeCreation(r, res) })
}

// enrichFunc runs the analysis for snapshot and returns the patch to apply.
type enrichFunc func(ctx context.Context, snapshot report.Report) (func(*report.Report), error)

func (e *Engine) enrichCreated(ctx context.Context, snap report.Report) (func(*report.Report), error) {
	res := e.analyzer.Analyze(ctx, snap.Description, snap.Image)
	return func(r *report.Report) { mergeCreation(r, res) }, nil
}

func (e *Engine) enrichTransitioned(ctx context.Context, snap report.Report) (func(*report.Report), error) {
	res, err := e.analyzer.TryAnalyze(ctx, snap.Description, snap.Image)
	if err != nil {
		return nil, err
	}
	return func(r *report.Report) { mergeTransition(r, res) }, nil
}

// schedule runs fn in the background, detached from the caller's
// cancellation but bounded by the engine timeout.
func (e *Engine) schedule(ctx context.Context, snap report.Report, fn enrichFunc) {
	token := e.claim(snap.ID)
	rev := snap.Revision()
	bg := context.WithoutCancel(ctx)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(bg, e.timeout)
		defer cancel()

		patch, err := fn(ctx, snap)
		if err != nil {
			log.Printf("lifecycle: enrichment for %s failed: %v", snap.ID, err)
			e.release(snap.ID, token)
			e.emit(bg, Event{Type: EventEnrichmentFailed, Report: snap, Err: err.Error()})
			return
		}
		// The timeout bounds the analysis only; persisting uses bg.
		if _, err := e.apply(bg, snap.ID, rev, token, patch); err != nil {
			log.Printf("lifecycle: enrichment for %s not applied: %v", snap.ID, err)
		}
	}()
}

// claim records a new enrichment for id and returns its token. Only the
// holder of the latest token may patch the report.
func (e *Engine) claim(id string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	e.latest[id] = e.seq
	return e.seq
}

func (e *Engine) current(id string, token uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.latest[id] == token
}

func (e *Engine) release(id string, token uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.latest[id] == token {
		delete(e.latest, id)
	}
}

// apply merges patch into report id if it was scheduled at revision rev
// and no newer enrichment has been claimed since.
func (e *Engine) apply(ctx context.Context, id string, rev int, token uint64, patch func(*report.Report)) (report.Report, error) {
	defer e.release(id, token)

	updated, err := e.store.Update(ctx, id, func(r *report.Report) error {
		if r.Revision() != rev || !e.current(id, token) {
			return errSuperseded
		}
		patch(r)
		return nil
	})
	if err != nil {
		return report.Report{}, err
	}
	e.emit(ctx, Event{Type: EventEnriched, Report: updated.Clone()})
	return updated, nil
}

// mergeCreation copies a fresh classification onto a new report. Title and
// description stay as the citizen wrote them. A fallback result leaves the
// category the citizen picked.
func mergeCreation(r *report.Report, res analysis.Result) {
	if res != analysis.Fallback() {
		r.Category = res.Category
	}
	r.Department = res.Department
	r.Sentiment = res.Sentiment
	r.Priority = res.Priority
	r.AIInsights = res.Summary
}

// mergeTransition refreshes the classification after a status change.
func mergeTransition(r *report.Report, res analysis.Result) {
	r.Category = res.Category
	r.Sentiment = res.Sentiment
	r.Priority = res.Priority
	r.AIInsights = fmt.Sprintf("[Status: %s] %s", r.Status, res.Summary)
}

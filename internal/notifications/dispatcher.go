package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/BhavyaPagadala/urbix/internal/lifecycle"
	"github.com/BhavyaPagadala/urbix/internal/report"
)

const dispatchTimeout = 30 * time.Second

// Digest summarises a department's notifications over a time period.
type Digest struct {
	Department    string         `json:"department"`
	Period        string         `json:"period"`
	Notifications []Notification `json:"notifications"`
	Summary       string         `json:"summary"`
}

// Dispatcher turns report events into notifications and delivers them to
// the subscribers of the report's department.
type Dispatcher struct {
	store  *Store
	client *http.Client
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher backed by the given store.
func NewDispatcher(store *Store) *Dispatcher {
	return &Dispatcher{
		store: store,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FromEvent builds the notification for a lifecycle event. It returns false
// for events departments are not told about and for unrouted reports.
func FromEvent(ev lifecycle.Event) (Notification, bool) {
	r := ev.Report
	if r.Department == "" {
		return Notification{}, false
	}

	n := Notification{
		ReportID:   r.ID,
		Department: r.Department,
		CreatedAt:  ev.At,
	}

	switch ev.Type {
	case lifecycle.EventCreated:
		n.Type = TypeReportRouted
		n.Severity = severityFor(r)
		n.Title = fmt.Sprintf("New %s report: %s", r.Category.Label(), r.Title)
		n.Message = fmt.Sprintf("Reported in %s by %s.", r.Location.Locality, r.Reporter)
	case lifecycle.EventEnriched:
		n.Type = TypeReportEnriched
		n.Severity = severityFor(r)
		n.Title = fmt.Sprintf("%s report classified: %s", r.Category.Label(), r.Title)
		n.Message = r.AIInsights
	case lifecycle.EventStatusChanged:
		n.Type = TypeStatusChanged
		n.Severity = SeverityInfo
		n.Title = fmt.Sprintf("Report %s: %s", r.Status.Label(), r.Title)
		n.Message = fmt.Sprintf("Status changed from %s to %s by %s.", ev.From.Label(), r.Status.Label(), ev.Actor)
	default:
		return Notification{}, false
	}
	return n, true
}

// severityFor rates a report: negative and high priority is critical,
// either one alone is a warning.
func severityFor(r report.Report) Severity {
	negative := r.Sentiment == report.SentimentNegative
	high := r.Priority == report.PriorityHigh
	switch {
	case negative && high:
		return SeverityCritical
	case negative || high:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// OnReportEvent implements lifecycle.Observer. Delivery happens in the
// background; call Wait to drain it.
func (d *Dispatcher) OnReportEvent(ctx context.Context, ev lifecycle.Event) {
	n, ok := FromEvent(ev)
	if !ok {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
		defer cancel()
		if _, err := d.Dispatch(ctx, n); err != nil {
			log.Printf("notifications: dispatching %s for %s: %v", n.Type, n.ReportID, err)
		}
	}()
}

// Wait blocks until background deliveries have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Dispatch persists a notification and sends it to the department's webhook
// subscribers. It is marked delivered once any webhook accepts it.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) (Notification, error) {
	n, err := d.store.Create(ctx, n)
	if err != nil {
		return n, fmt.Errorf("creating notification: %w", err)
	}

	subs, err := d.store.Subscriptions(ctx, n.Department)
	if err != nil {
		return n, fmt.Errorf("loading subscriptions for %s: %w", n.Department, err)
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return n, fmt.Errorf("encoding notification: %w", err)
	}

	delivered := false
	for _, sub := range subs {
		if sub.Channel != ChannelWebhook || sub.WebhookURL == "" {
			continue
		}
		if !severityMatches(n.Severity, sub.SeverityFilter) {
			continue
		}
		if err := d.SendWebhook(ctx, sub.WebhookURL, payload); err != nil {
			log.Printf("notifications: webhook for %s: %v", sub.Department, err)
			continue
		}
		delivered = true
	}

	if delivered {
		if err := d.store.MarkDelivered(ctx, n.ID); err != nil {
			return n, err
		}
		n.Delivered = true
	}
	return n, nil
}

// GenerateDigest builds a summary of a department's notifications since the given time.
func (d *Dispatcher) GenerateDigest(ctx context.Context, department string, since, now time.Time) (*Digest, error) {
	matched, err := d.store.List(ctx, ListFilter{Department: department, Since: since, Until: now})
	if err != nil {
		return nil, fmt.Errorf("listing notifications for digest: %w", err)
	}

	counts := map[Severity]int{}
	for _, n := range matched {
		counts[n.Severity]++
	}

	return &Digest{
		Department: department,
		Period: fmt.Sprintf("%s to %s",
			since.UTC().Format(time.RFC3339),
			now.UTC().Format(time.RFC3339)),
		Notifications: matched,
		Summary: fmt.Sprintf("%d notification(s) for %s: %d critical, %d warning, %d info",
			len(matched), department,
			counts[SeverityCritical], counts[SeverityWarning], counts[SeverityInfo]),
	}, nil
}

// SendWebhook POSTs payload to the given URL.
func (d *Dispatcher) SendWebhook(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

var severityLevels = map[Severity]int{
	SeverityInfo:     0,
	SeverityWarning:  1,
	SeverityCritical: 2,
}

// severityMatches reports whether actual meets or exceeds the filter threshold.
func severityMatches(actual, filter Severity) bool {
	return severityLevels[actual] >= severityLevels[filter]
}

package audit

import (
	"context"
	"fmt"
	"log"

	"github.com/BhavyaPagadala/urbix/internal/lifecycle"
)

// Recorder writes lifecycle events to the audit trail.
type Recorder struct {
	store *Store
}

func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

// OnReportEvent implements lifecycle.Observer. Write failures are logged.
func (rec *Recorder) OnReportEvent(ctx context.Context, ev lifecycle.Event) {
	entry := Entry{
		Timestamp: ev.At,
		Actor:     ev.Actor,
		ReportID:  ev.Report.ID,
	}

	switch ev.Type {
	case lifecycle.EventCreated:
		entry.Action = ActionReportCreated
		entry.Summary = fmt.Sprintf("Report %q submitted", ev.Report.Title)
		entry.NewValue = string(ev.Report.Status)
	case lifecycle.EventStatusChanged:
		entry.Action = ActionStatusChanged
		entry.Summary = fmt.Sprintf("Status changed from %s to %s", ev.From, ev.Report.Status)
		entry.PreviousValue = string(ev.From)
		entry.NewValue = string(ev.Report.Status)
	case lifecycle.EventTransitionRejected:
		entry.Action = ActionTransitionRejected
		entry.Summary = ev.Err
		entry.PreviousValue = string(ev.From)
	case lifecycle.EventEnriched:
		entry.Action = ActionReportEnriched
		entry.Actor = "system"
		entry.Summary = ev.Report.AIInsights
		entry.NewValue = string(ev.Report.Category)
	case lifecycle.EventEnrichmentFailed:
		entry.Action = ActionEnrichmentFailed
		entry.Actor = "system"
		entry.Summary = ev.Err
	case lifecycle.EventDeleted:
		entry.Action = ActionReportDeleted
		entry.Summary = fmt.Sprintf("Report %q deleted", ev.Report.Title)
		entry.PreviousValue = string(ev.Report.Status)
	default:
		return
	}

	if err := rec.store.Log(ctx, entry); err != nil {
		log.Printf("audit: recording %s for %s: %v", ev.Type, ev.Report.ID, err)
	}
}

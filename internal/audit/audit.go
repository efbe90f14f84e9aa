package audit

import "time"

// Action describes what happened to a report.
type Action string

const (
	ActionReportCreated      Action = "report_created"
	ActionStatusChanged      Action = "status_changed"
	ActionTransitionRejected Action = "transition_rejected"
	ActionReportEnriched     Action = "report_enriched"
	ActionEnrichmentFailed   Action = "enrichment_failed"
	ActionReportDeleted      Action = "report_deleted"
)

// Entry is a single audit trail record.
type Entry struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Actor         string    `json:"actor"`
	Action        Action    `json:"action"`
	ReportID      string    `json:"report_id"`
	Summary       string    `json:"summary"`
	PreviousValue string    `json:"previous_value,omitempty"`
	NewValue      string    `json:"new_value,omitempty"`
}

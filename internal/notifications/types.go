package notifications

import "time"

// Severity indicates how urgently a department should look at a notification.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ParseSeverity accepts info, warning or critical.
func ParseSeverity(s string) (Severity, bool) {
	switch v := Severity(s); v {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return v, true
	}
	return "", false
}

// NotificationType categorises the report change that triggered the notification.
type NotificationType string

const (
	TypeReportRouted   NotificationType = "report_routed"
	TypeReportEnriched NotificationType = "report_enriched"
	TypeStatusChanged  NotificationType = "status_changed"
)

// Channels a subscription can use.
const (
	ChannelWebhook   = "webhook"
	ChannelDashboard = "dashboard"
)

// Notification is a single alert addressed to the department handling a report.
type Notification struct {
	ID         string           `json:"id"`
	Type       NotificationType `json:"type"`
	Severity   Severity         `json:"severity"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	ReportID   string           `json:"report_id"`
	Department string           `json:"department"`
	Delivered  bool             `json:"delivered"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Subscription stores how a department wants to receive notifications.
type Subscription struct {
	Department     string   `json:"department"`
	Channel        string   `json:"channel"`
	SeverityFilter Severity `json:"severity_filter"`
	WebhookURL     string   `json:"webhook_url,omitempty"`
}

package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BhavyaPagadala/urbix/internal/db"
)

// ErrNotFound is returned when a notification does not exist.
var ErrNotFound = errors.New("notification not found")

// ListFilter controls which notifications are returned by List.
type ListFilter struct {
	Type       NotificationType
	Severity   Severity
	Department string
	ReportID   string
	Delivered  *bool
	Since      time.Time
	Until      time.Time
	Limit      int
	Offset     int
}

// Store persists notifications and department subscriptions.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a new notification. An empty ID is generated and a zero
// CreatedAt means now.
func (s *Store) Create(ctx context.Context, n Notification) (Notification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.CreatedAt = n.CreatedAt.UTC().Truncate(time.Second)

	delivered := 0
	if n.Delivered {
		delivered = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, type, severity, title, message, report_id, department, delivered, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Type), string(n.Severity), n.Title, n.Message,
		n.ReportID, n.Department, delivered, n.CreatedAt.Format(time.DateTime),
	)
	if err != nil {
		return Notification{}, fmt.Errorf("inserting notification: %w", err)
	}
	return n, nil
}

// GetByID retrieves a single notification.
func (s *Store) GetByID(ctx context.Context, id string) (*Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, severity, title, message, report_id, department, delivered, created_at
		FROM notifications WHERE id = ?`, id)

	n, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading notification %s: %w", id, err)
	}
	return n, nil
}

// List returns notifications matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Notification, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Severity != "" {
		clauses = append(clauses, "severity = ?")
		args = append(args, string(filter.Severity))
	}
	if filter.Department != "" {
		clauses = append(clauses, "department = ?")
		args = append(args, filter.Department)
	}
	if filter.ReportID != "" {
		clauses = append(clauses, "report_id = ?")
		args = append(args, filter.ReportID)
	}
	if filter.Delivered != nil {
		v := 0
		if *filter.Delivered {
			v = 1
		}
		clauses = append(clauses, "delivered = ?")
		args = append(args, v)
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}
	if !filter.Until.IsZero() {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, filter.Until.UTC().Format(time.DateTime))
	}

	query := "SELECT id, type, severity, title, message, report_id, department, delivered, created_at FROM notifications"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		n, err := scanInto(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		result = append(result, *n)
	}
	return result, rows.Err()
}

// MarkDelivered flags the given notification as delivered.
func (s *Store) MarkDelivered(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE notifications SET delivered = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking notification delivered: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// GetPending returns all undelivered notifications.
func (s *Store) GetPending(ctx context.Context) ([]Notification, error) {
	delivered := false
	return s.List(ctx, ListFilter{Delivered: &delivered})
}

// Subscribe upserts a department subscription.
func (s *Store) Subscribe(ctx context.Context, sub Subscription) error {
	var webhookURL sql.NullString
	if sub.WebhookURL != "" {
		webhookURL = sql.NullString{String: sub.WebhookURL, Valid: true}
	}
	if sub.SeverityFilter == "" {
		sub.SeverityFilter = SeverityInfo
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_subscriptions (department, channel, severity_filter, webhook_url)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(department, channel) DO UPDATE SET
			severity_filter = excluded.severity_filter,
			webhook_url = excluded.webhook_url`,
		sub.Department, sub.Channel, string(sub.SeverityFilter), webhookURL,
	)
	if err != nil {
		return fmt.Errorf("upserting subscription: %w", err)
	}
	return nil
}

// Unsubscribe removes a department's subscription on channel.
func (s *Store) Unsubscribe(ctx context.Context, department, channel string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM notification_subscriptions WHERE department = ? AND channel = ?",
		department, channel)
	if err != nil {
		return fmt.Errorf("deleting subscription: %w", err)
	}
	return nil
}

// Subscriptions returns the subscriptions for a department. Department
// names compare case-insensitively.
func (s *Store) Subscriptions(ctx context.Context, department string) ([]Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT department, channel, severity_filter, webhook_url
		FROM notification_subscriptions WHERE department = ?
		ORDER BY channel`, department)
	if err != nil {
		return nil, fmt.Errorf("querying subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var (
			sub        Subscription
			webhookURL sql.NullString
			sevFilter  string
		)
		if err := rows.Scan(&sub.Department, &sub.Channel, &sevFilter, &webhookURL); err != nil {
			return nil, fmt.Errorf("scanning subscription: %w", err)
		}
		sub.SeverityFilter = Severity(sevFilter)
		if webhookURL.Valid {
			sub.WebhookURL = webhookURL.String
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Notification, error) {
	var (
		n               Notification
		ntype, severity string
		delivered       int
		ts              string
	)

	err := sc.Scan(&n.ID, &ntype, &severity, &n.Title, &n.Message,
		&n.ReportID, &n.Department, &delivered, &ts)
	if err != nil {
		return nil, err
	}

	n.Type = NotificationType(ntype)
	n.Severity = Severity(severity)
	n.Delivered = delivered != 0

	if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		n.CreatedAt = t
	} else if t, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
		n.CreatedAt = t
	}

	return &n, nil
}

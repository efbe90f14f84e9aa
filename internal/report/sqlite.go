package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BhavyaPagadala/urbix/internal/db"
)

const collectionName = "reports"

// SQLiteRepository stores the collection in the reports table.
type SQLiteRepository struct {
	db *db.DB
}

func NewSQLiteRepository(d *db.DB) *SQLiteRepository {
	return &SQLiteRepository{db: d}
}

func (r *SQLiteRepository) LoadReports(ctx context.Context) ([]Report, error) {
	var savedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT saved_at FROM collection_state WHERE name = ?`, collectionName,
	).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("reading collection state: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, reporter, title, description, category, department, sentiment,
		       status, priority, lat, lng, address, locality, image, created_at,
		       ai_insights, history
		FROM reports ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}
	return out, nil
}

func scanReport(rows *sql.Rows) (Report, error) {
	var (
		rep                         Report
		category, sentiment, status string
		priority, createdAt, hist   string
		lat, lng                    sql.NullFloat64
	)
	err := rows.Scan(&rep.ID, &rep.Reporter, &rep.Title, &rep.Description,
		&category, &rep.Department, &sentiment, &status, &priority,
		&lat, &lng, &rep.Location.Address, &rep.Location.Locality, &rep.Image,
		&createdAt, &rep.AIInsights, &hist)
	if err != nil {
		return Report{}, fmt.Errorf("scanning report: %w", err)
	}

	rep.Category = Category(category)
	rep.Sentiment = Sentiment(sentiment)
	rep.Status = Status(status)
	rep.Priority = Priority(priority)
	if lat.Valid {
		rep.Location.Lat = &lat.Float64
	}
	if lng.Valid {
		rep.Location.Lng = &lng.Float64
	}

	rep.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Report{}, fmt.Errorf("%w: report %s created_at: %v", ErrCorrupt, rep.ID, err)
	}
	if err := json.Unmarshal([]byte(hist), &rep.History); err != nil {
		return Report{}, fmt.Errorf("%w: report %s history: %v", ErrCorrupt, rep.ID, err)
	}
	if err := repair(&rep); err != nil {
		return Report{}, err
	}
	return rep, nil
}

// SaveReports replaces the stored collection in a single transaction.
func (r *SQLiteRepository) SaveReports(ctx context.Context, reports []Report) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reports`); err != nil {
		return fmt.Errorf("clearing reports: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reports (id, position, reporter, title, description, category,
		    department, sentiment, status, priority, lat, lng, address, locality,
		    image, created_at, ai_insights, history)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rep := range reports {
		hist, err := json.Marshal(rep.History)
		if err != nil {
			return fmt.Errorf("encoding history for %s: %w", rep.ID, err)
		}
		_, err = stmt.ExecContext(ctx, rep.ID, i, rep.Reporter, rep.Title, rep.Description,
			string(rep.Category), rep.Department, string(rep.Sentiment), string(rep.Status),
			string(rep.Priority), nullFloat(rep.Location.Lat), nullFloat(rep.Location.Lng),
			rep.Location.Address, rep.Location.Locality, rep.Image,
			rep.CreatedAt.UTC().Format(time.RFC3339Nano), rep.AIInsights, string(hist))
		if err != nil {
			return fmt.Errorf("inserting report %s: %w", rep.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO collection_state (name, saved_at) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET saved_at = excluded.saved_at`,
		collectionName, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("updating collection state: %w", err)
	}

	return tx.Commit()
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

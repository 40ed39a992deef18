// Package journal records every upstream call the proxy makes. It is an
// audit trail only; nothing reads it back to answer a request.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Entry struct {
	ID        string        `json:"id"`
	Route     string        `json:"route"`
	Rover     string        `json:"rover,omitempty"`
	Endpoint  string        `json:"endpoint"`
	Status    int           `json:"status"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Record stores e, filling ID and CreatedAt when empty.
func (r *Repo) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO upstream_requests (id, route, rover, endpoint, status, duration_ms, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Route, e.Rover, e.Endpoint, e.Status, e.Duration.Milliseconds(), e.Error, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert upstream request: %w", err)
	}
	return nil
}

// Recent lists the newest entries first.
func (r *Repo) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, route, rover, endpoint, status, duration_ms, error, created_at
		FROM upstream_requests
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e          Entry
			durationMS int64
		)
		if err := rows.Scan(&e.ID, &e.Route, &e.Rover, &e.Endpoint, &e.Status, &durationMS, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recent: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent: %w", err)
	}
	return out, nil
}

// Count returns how many calls have been recorded.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM upstream_requests`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

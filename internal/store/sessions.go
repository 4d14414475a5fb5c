package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordSession inserts a finished session. An empty ID is replaced with a
// new UUID.
func (s *Store) RecordSession(ctx context.Context, rec *SessionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, day, process_name, title, start_time, end_time, duration, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Day, rec.ProcessName, rec.Title,
		rec.StartTime.UTC().Format(time.RFC3339),
		rec.EndTime.UTC().Format(time.RFC3339),
		rec.Duration,
		now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	rec.CreatedAt = now.Truncate(time.Second)
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, day, process_name, title, start_time, end_time, duration, created_at
		 FROM sessions WHERE id = ?`, id,
	)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return rec, nil
}

func (s *Store) ListSessions(ctx context.Context, f SessionFilter) ([]SessionRecord, error) {
	query := `SELECT id, day, process_name, title, start_time, end_time, duration, created_at FROM sessions WHERE 1=1`
	var args []any

	if f.Day != "" {
		query += ` AND day = ?`
		args = append(args, f.Day)
	}
	if f.ProcessName != "" {
		query += ` AND process_name = ?`
		args = append(args, f.ProcessName)
	}
	query += ` ORDER BY start_time, rowid`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *rec)
	}
	return sessions, rows.Err()
}

// ProcessTotals aggregates the sessions of day per process, largest first.
func (s *Store) ProcessTotals(ctx context.Context, day string) ([]ProcessTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT process_name, COALESCE(SUM(duration), 0), COUNT(*)
		FROM sessions
		WHERE day = ?
		GROUP BY process_name
		ORDER BY SUM(duration) DESC, process_name`,
		day,
	)
	if err != nil {
		return nil, fmt.Errorf("process totals: %w", err)
	}
	defer rows.Close()

	var totals []ProcessTotal
	for rows.Next() {
		var pt ProcessTotal
		if err := rows.Scan(&pt.ProcessName, &pt.TotalSeconds, &pt.SessionCount); err != nil {
			return nil, err
		}
		totals = append(totals, pt)
	}
	return totals, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*SessionRecord, error) {
	rec := &SessionRecord{}
	var startTime, endTime, createdAt string
	if err := row.Scan(&rec.ID, &rec.Day, &rec.ProcessName, &rec.Title, &startTime, &endTime, &rec.Duration, &createdAt); err != nil {
		return nil, err
	}
	rec.StartTime, _ = time.Parse(time.RFC3339, startTime)
	rec.EndTime, _ = time.Parse(time.RFC3339, endTime)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return rec, nil
}

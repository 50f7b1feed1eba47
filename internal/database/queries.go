package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StartRun inserts a new run and returns it
func (db *DB) StartRun(ctx context.Context, kind RunKind) (*Run, error) {
	r := &Run{
		ID:        uuid.New().String(),
		Kind:      kind,
		StartedAt: time.Now(),
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, started_at) VALUES (?, ?, ?)
	`, r.ID, r.Kind, r.StartedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// FinishRun stores the final counters of a run
func (db *DB) FinishRun(ctx context.Context, r *Run) error {
	now := time.Now()
	r.FinishedAt = &now

	result, err := db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, processed = ?, saved = ?, skipped = ?, failed = ?
		WHERE id = ?
	`, now, r.Processed, r.Saved, r.Skipped, r.Failed, r.ID)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("run not found: %s", r.ID)
	}
	return nil
}

// ListRuns returns the most recent runs first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, kind, started_at, finished_at, processed, saved, skipped, failed
		FROM runs ORDER BY started_at DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Kind, &r.StartedAt, &finished, &r.Processed, &r.Saved, &r.Skipped, &r.Failed); err != nil {
			return nil, err
		}
		if finished.Valid {
			r.FinishedAt = &finished.Time
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RecordMessage inserts or replaces the entry for m.MessageID
func (db *DB) RecordMessage(ctx context.Context, m *Message) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.ProcessedAt.IsZero() {
		m.ProcessedAt = time.Now()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO messages (
			id, message_id, run_id, provider, subject, sender, date_header,
			extractor, status, folder, booking_reference, raw_response, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			run_id = excluded.run_id,
			provider = excluded.provider,
			subject = excluded.subject,
			sender = excluded.sender,
			date_header = excluded.date_header,
			extractor = excluded.extractor,
			status = excluded.status,
			folder = excluded.folder,
			booking_reference = excluded.booking_reference,
			raw_response = excluded.raw_response,
			processed_at = excluded.processed_at
	`,
		m.ID, m.MessageID, NullString(m.RunID), m.Provider, NullString(m.Subject),
		NullString(m.Sender), NullString(m.DateHeader), m.Extractor, m.Status,
		NullString(m.Folder), NullString(m.BookingReference), NullString(m.RawResponse),
		m.ProcessedAt,
	)
	return err
}

const messageColumns = `
	id, message_id, run_id, provider, subject, sender, date_header,
	extractor, status, folder, booking_reference, raw_response, processed_at
`

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (*Message, error) {
	m := &Message{}
	var runID, subject, sender, dateHeader, folder, booking, raw sql.NullString
	if err := s.Scan(
		&m.ID, &m.MessageID, &runID, &m.Provider, &subject, &sender, &dateHeader,
		&m.Extractor, &m.Status, &folder, &booking, &raw, &m.ProcessedAt,
	); err != nil {
		return nil, err
	}
	m.RunID = StringPtr(runID)
	m.Subject = StringPtr(subject)
	m.Sender = StringPtr(sender)
	m.DateHeader = StringPtr(dateHeader)
	m.Folder = StringPtr(folder)
	m.BookingReference = StringPtr(booking)
	m.RawResponse = StringPtr(raw)
	return m, nil
}

// GetMessage returns the entry for a provider message id, or nil
func (db *DB) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	row := db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE message_id = ?`, messageID)
	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// IsSaved reports whether a message already produced a trip
func (db *DB) IsSaved(ctx context.Context, messageID string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE message_id = ? AND status = ?
	`, messageID, StatusSaved).Scan(&count)
	return count > 0, err
}

// ListMessages returns message history, newest first
func (db *DB) ListMessages(ctx context.Context, opts ListOptions) ([]Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE 1=1`
	args := []any{}

	if opts.Status != nil {
		query += " AND status = ?"
		args = append(args, *opts.Status)
	}
	if opts.Since != nil {
		query += " AND processed_at >= ?"
		args = append(args, *opts.Since)
	}

	query += " ORDER BY processed_at DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
		if opts.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", opts.Offset)
		}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// RecordDownload notes a photo written into a trip folder
func (db *DB) RecordDownload(ctx context.Context, d *PhotoDownload) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.DownloadedAt.IsZero() {
		d.DownloadedAt = time.Now()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO photo_downloads (id, photo_id, folder, path, run_id, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(photo_id, folder) DO UPDATE SET
			path = excluded.path,
			run_id = excluded.run_id,
			downloaded_at = excluded.downloaded_at
	`, d.ID, d.PhotoID, d.Folder, d.Path, NullString(d.RunID), d.DownloadedAt)
	return err
}

// ListDownloads returns the photos recorded for a folder, oldest first.
// An empty folder lists every download.
func (db *DB) ListDownloads(ctx context.Context, folder string) ([]PhotoDownload, error) {
	query := `SELECT id, photo_id, folder, path, run_id, downloaded_at FROM photo_downloads`
	args := []any{}
	if folder != "" {
		query += " WHERE folder = ?"
		args = append(args, folder)
	}
	query += " ORDER BY downloaded_at ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var downloads []PhotoDownload
	for rows.Next() {
		var d PhotoDownload
		var runID sql.NullString
		if err := rows.Scan(&d.ID, &d.PhotoID, &d.Folder, &d.Path, &runID, &d.DownloadedAt); err != nil {
			return nil, err
		}
		d.RunID = StringPtr(runID)
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}

// GetStats counts catalog entries
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	s := &Stats{}
	err := db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'saved' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'skipped' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'parse_failed' THEN 1 ELSE 0 END), 0)
		FROM messages
	`).Scan(&s.Messages, &s.Saved, &s.Skipped, &s.ParseFailed)
	if err != nil {
		return nil, err
	}

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM photo_downloads`).Scan(&s.Photos); err != nil {
		return nil, err
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&s.Runs); err != nil {
		return nil, err
	}
	return s, nil
}

package recognitionqueue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no enqueued recognition has the given id
var ErrNotFound = errors.New("enqueued recognition not found")

// Queue manages a persistent queue of recordings awaiting recognition
type Queue struct {
	db  *sql.DB
	now func() time.Time
}

// Enqueued is a recording in the queue
type Enqueued struct {
	ID           int64
	Title        string
	RecordFile   string
	CreationDate time.Time
	Result       Outcome   // Zero Type while pending
	ResultDate   time.Time // Zero while pending
}

// Pending reports whether the recording has not been recognized yet
func (e Enqueued) Pending() bool {
	return e.Result.Type == 0
}

// NewQueue creates a new recognition queue backed by SQLite
func NewQueue(dbPath string) (*Queue, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool size to 1 for in-memory databases to ensure consistency
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000", // Wait up to 10 seconds on lock
		"PRAGMA synchronous = NORMAL", // Balance between safety and performance
		"PRAGMA journal_mode = WAL",   // Write-Ahead Logging for concurrent access
		"PRAGMA temp_store = MEMORY",  // Use memory for temp tables
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS enqueued_recognitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL DEFAULT '',
			record_file TEXT NOT NULL,
			creation_date INTEGER NOT NULL,
			result_type INTEGER,
			result_track_id TEXT,
			result_message TEXT,
			result_date INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_pending ON enqueued_recognitions(result_type, creation_date);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Queue{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (q *Queue) Close() error {
	if q.db != nil {
		return q.db.Close()
	}
	return nil
}

// Add enqueues a recording and returns its id
func (q *Queue) Add(ctx context.Context, title, recordFile string) (int64, error) {
	if recordFile == "" {
		return 0, fmt.Errorf("record file is required")
	}

	result, err := q.db.ExecContext(ctx,
		`INSERT INTO enqueued_recognitions (title, record_file, creation_date) VALUES (?, ?, ?)`,
		title, recordFile, q.now().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert recognition: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}

	return id, nil
}

// Get returns one enqueued recognition
func (q *Queue) Get(ctx context.Context, id int64) (Enqueued, error) {
	row := q.db.QueryRowContext(ctx, selectEnqueued+` WHERE id = ?`, id)
	e, err := scanEnqueued(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Enqueued{}, ErrNotFound
	}
	if err != nil {
		return Enqueued{}, fmt.Errorf("failed to get recognition %d: %w", id, err)
	}
	return e, nil
}

// GetPending returns recordings without a result, oldest first.
// A limit of zero or less returns all of them.
func (q *Queue) GetPending(ctx context.Context, limit int) ([]Enqueued, error) {
	query := selectEnqueued + ` WHERE result_type IS NULL ORDER BY creation_date ASC, id ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	return q.query(ctx, query)
}

// GetAll returns every recording, newest first
func (q *Queue) GetAll(ctx context.Context) ([]Enqueued, error) {
	return q.query(ctx, selectEnqueued+` ORDER BY creation_date DESC, id DESC`)
}

// SetResult records the outcome of a recognition
func (q *Queue) SetResult(ctx context.Context, id int64, outcome Outcome) error {
	if outcome.Type == 0 {
		return fmt.Errorf("outcome has no result type")
	}

	return q.update(ctx, id,
		`UPDATE enqueued_recognitions
		SET result_type = ?, result_track_id = ?, result_message = ?, result_date = ?
		WHERE id = ?`,
		int(outcome.Type), nullString(outcome.TrackID), nullString(outcome.Message), q.now().UnixMilli(), id,
	)
}

// ResetResult clears the outcome so the recording is processed again
func (q *Queue) ResetResult(ctx context.Context, id int64) error {
	return q.update(ctx, id,
		`UPDATE enqueued_recognitions
		SET result_type = NULL, result_track_id = NULL, result_message = NULL, result_date = NULL
		WHERE id = ?`,
		id,
	)
}

// Delete removes a recording from the queue and returns it so the caller
// can remove the record file
func (q *Queue) Delete(ctx context.Context, id int64) (Enqueued, error) {
	e, err := q.Get(ctx, id)
	if err != nil {
		return Enqueued{}, err
	}

	if err := q.update(ctx, id, `DELETE FROM enqueued_recognitions WHERE id = ?`, id); err != nil {
		return Enqueued{}, err
	}
	return e, nil
}

// Count returns the number of recordings in the queue.
// If includeFinished is false, only pending recordings are counted.
func (q *Queue) Count(ctx context.Context, includeFinished bool) (int, error) {
	query := "SELECT COUNT(*) FROM enqueued_recognitions"
	if !includeFinished {
		query += " WHERE result_type IS NULL"
	}

	var count int
	if err := q.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recognitions: %w", err)
	}

	return count, nil
}

// Cleanup removes finished recognitions older than maxAge and returns them.
// Pending recordings are always kept.
func (q *Queue) Cleanup(ctx context.Context, maxAge time.Duration) ([]Enqueued, error) {
	cutoff := q.now().Add(-maxAge).UnixMilli()

	old, err := q.query(ctx, selectEnqueued+` WHERE result_type IS NOT NULL AND result_date < ?`, cutoff)
	if err != nil {
		return nil, err
	}

	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM enqueued_recognitions WHERE result_type IS NOT NULL AND result_date < ?`, cutoff); err != nil {
		return nil, fmt.Errorf("failed to cleanup old recognitions: %w", err)
	}

	return old, nil
}

const selectEnqueued = `
	SELECT id, title, record_file, creation_date,
		COALESCE(result_type, 0), COALESCE(result_track_id, ''),
		COALESCE(result_message, ''), COALESCE(result_date, 0)
	FROM enqueued_recognitions`

type scanner interface {
	Scan(dest ...any) error
}

func scanEnqueued(row scanner) (Enqueued, error) {
	var e Enqueued
	var created, resultDate int64
	var resultType int

	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.RecordFile,
		&created,
		&resultType,
		&e.Result.TrackID,
		&e.Result.Message,
		&resultDate,
	)
	if err != nil {
		return Enqueued{}, err
	}

	e.CreationDate = time.UnixMilli(created)
	e.Result.Type = ResultType(resultType)
	if resultDate != 0 {
		e.ResultDate = time.UnixMilli(resultDate)
	}
	return e, nil
}

func (q *Queue) query(ctx context.Context, query string, args ...any) ([]Enqueued, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recognitions: %w", err)
	}
	defer rows.Close()

	var list []Enqueued
	for rows.Next() {
		e, err := scanEnqueued(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recognition: %w", err)
		}
		list = append(list, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recognitions: %w", err)
	}

	return list, nil
}

func (q *Queue) update(ctx context.Context, id int64, query string, args ...any) error {
	result, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update recognition %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

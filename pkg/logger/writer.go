package logger

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteWriter writes log entries to SQLite asynchronously. Entries are
// buffered and flushed in batches; when the buffer is full, entries are
// dropped rather than blocking the caller.
type SQLiteWriter struct {
	db       *sql.DB
	buffer   chan LogEntry
	done     chan struct{}
	wg       sync.WaitGroup
	config   Config
	stopOnce sync.Once
}

// NewSQLiteWriter creates a new SQLite log writer.
func NewSQLiteWriter(cfg Config) (*SQLiteWriter, error) {
	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{`PRAGMA journal_mode=WAL`, `PRAGMA synchronous=NORMAL`} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	w := &SQLiteWriter{
		db:     db,
		buffer: make(chan LogEntry, cfg.AsyncBufferSize),
		done:   make(chan struct{}),
		config: cfg,
	}

	w.wg.Add(1)
	go w.worker()

	return w, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		caller TEXT,
		fields TEXT,
		request_id TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_logs_timestamp ON logs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_logs_level ON logs(level);
	`
	_, err := db.Exec(schema)
	return err
}

// Write queues a log entry for async writing.
func (w *SQLiteWriter) Write(entry LogEntry) error {
	select {
	case w.buffer <- entry:
	default:
		// Buffer full, drop the entry
	}
	return nil
}

// Close stops the writer and flushes remaining entries.
func (w *SQLiteWriter) Close() error {
	w.stopOnce.Do(func() {
		close(w.done)
		w.wg.Wait()
	})
	return w.db.Close()
}

func (w *SQLiteWriter) worker() {
	defer w.wg.Done()

	batch := make([]LogEntry, 0, w.config.BatchSize)
	ticker := time.NewTicker(w.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case entry := <-w.buffer:
			batch = append(batch, entry)
			if len(batch) >= w.config.BatchSize {
				w.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(batch)
				batch = batch[:0]
			}
		case <-w.done:
			for {
				select {
				case entry := <-w.buffer:
					batch = append(batch, entry)
				default:
					if len(batch) > 0 {
						w.flush(batch)
					}
					return
				}
			}
		}
	}
}

func (w *SQLiteWriter) flush(entries []LogEntry) {
	tx, err := w.db.Begin()
	if err != nil {
		return
	}

	stmt, err := tx.Prepare(`
		INSERT INTO logs (timestamp, level, message, caller, fields, request_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return
	}
	defer stmt.Close()

	for _, entry := range entries {
		var fieldsJSON []byte
		if len(entry.Fields) > 0 {
			fieldsJSON, _ = json.Marshal(entry.Fields)
		}
		stmt.Exec(
			entry.Timestamp,
			entry.Level,
			entry.Message,
			entry.Caller,
			string(fieldsJSON),
			entry.RequestID,
		)
	}

	tx.Commit()
}

// QueryFilter defines filters for querying stored logs.
type QueryFilter struct {
	Level  string
	Since  *time.Time
	Search string
	Limit  int
	Offset int
}

// Query retrieves stored log entries matching the filter, newest first.
func (w *SQLiteWriter) Query(ctx context.Context, filter QueryFilter) ([]LogEntry, int64, error) {
	baseQuery := `FROM logs WHERE 1=1`
	var args []any

	if filter.Level != "" {
		baseQuery += ` AND level = ?`
		args = append(args, filter.Level)
	}
	if filter.Since != nil {
		baseQuery += ` AND timestamp >= ?`
		args = append(args, filter.Since.UnixMilli())
	}
	if filter.Search != "" {
		baseQuery += ` AND message LIKE ?`
		args = append(args, "%"+filter.Search+"%")
	}

	var total int64
	if err := w.db.QueryRowContext(ctx, `SELECT COUNT(*) `+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	selectQuery := `SELECT timestamp, level, message, caller, fields, request_id ` +
		baseQuery + ` ORDER BY timestamp DESC LIMIT ? OFFSET ?`
	args = append(args, limit, filter.Offset)

	rows, err := w.db.QueryContext(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var entry LogEntry
		var caller, fieldsJSON, requestID sql.NullString

		if err := rows.Scan(&entry.Timestamp, &entry.Level, &entry.Message,
			&caller, &fieldsJSON, &requestID); err != nil {
			return nil, 0, err
		}

		entry.Caller = caller.String
		entry.RequestID = requestID.String
		if fieldsJSON.Valid && fieldsJSON.String != "" {
			json.Unmarshal([]byte(fieldsJSON.String), &entry.Fields)
		}

		entries = append(entries, entry)
	}

	return entries, total, rows.Err()
}

// DeleteOlderThan removes logs older than the given time.
func (w *SQLiteWriter) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result, err := w.db.ExecContext(ctx, `DELETE FROM logs WHERE timestamp < ?`, before.UnixMilli())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// StartCleanupJob starts a background job that prunes old logs hourly.
func (w *SQLiteWriter) StartCleanupJob(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		w.cleanup()

		for {
			select {
			case <-ticker.C:
				w.cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (w *SQLiteWriter) cleanup() {
	cutoff := time.Now().AddDate(0, 0, -w.config.RetentionDays)
	w.DeleteOlderThan(context.Background(), cutoff)
}

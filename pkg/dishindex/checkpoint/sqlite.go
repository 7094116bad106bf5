package checkpoint

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/cookbase/dishindex/pkg/dishindex/extract"
)

// SQLiteStore persists each classified batch as it completes, so a
// failed run can be resumed without re-classifying earlier batches.
// This is a deviation from the whole-run FileStore: partial progress is
// durable at batch granularity.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the batch checkpoint database with WAL
// mode enabled.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open sqlite: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS batches (
	run_id TEXT NOT NULL,
	batch_index INTEGER NOT NULL,
	extractions TEXT NOT NULL,
	completed_at TEXT NOT NULL,
	PRIMARY KEY (run_id, batch_index)
);
`
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("checkpoint: init schema: %w", err)
	}
	return nil
}

// SaveBatch records one completed batch. Re-saving the same index is an
// overwrite, so retries are harmless.
func (s *SQLiteStore) SaveBatch(ctx context.Context, runID string, index int, extractions []extract.DishExtraction) error {
	payload, err := json.Marshal(extractions)
	if err != nil {
		return fmt.Errorf("checkpoint: encode batch %d: %w", index, err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO batches (run_id, batch_index, extractions, completed_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(run_id, batch_index) DO UPDATE SET
	extractions = excluded.extractions,
	completed_at = excluded.completed_at`,
		runID, index, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("checkpoint: save batch %d: %w", index, err)
	}
	return nil
}

// CompletedBatches returns the set of batch indexes already persisted
// for a run.
func (s *SQLiteStore) CompletedBatches(ctx context.Context, runID string) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT batch_index FROM batches WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: query batches: %w", err)
	}
	defer rows.Close()

	done := make(map[int]bool)
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, err
		}
		done[idx] = true
	}
	return done, rows.Err()
}

// LoadBatches returns every persisted batch of a run keyed by batch
// index.
func (s *SQLiteStore) LoadBatches(ctx context.Context, runID string) (map[int][]extract.DishExtraction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT batch_index, extractions FROM batches WHERE run_id = ? ORDER BY batch_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: query batches: %w", err)
	}
	defer rows.Close()

	batches := make(map[int][]extract.DishExtraction)
	for rows.Next() {
		var (
			idx     int
			payload string
		)
		if err := rows.Scan(&idx, &payload); err != nil {
			return nil, err
		}
		var extractions []extract.DishExtraction
		if err := json.Unmarshal([]byte(payload), &extractions); err != nil {
			return nil, fmt.Errorf("checkpoint: decode batch %d: %w", idx, err)
		}
		batches[idx] = extractions
	}
	return batches, rows.Err()
}

// ClearRun drops all persisted batches of a run, for starting over.
func (s *SQLiteStore) ClearRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM batches WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("checkpoint: clear run: %w", err)
	}
	return nil
}

// Package sqlite stores the scalar series of training runs in a local SQLite
// database (pure Go driver, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/cmhash/tracking"
)

// Series is a tracking.Sink backed by SQLite.
type Series struct {
	db *sql.DB
}

var (
	_ tracking.Sink     = (*Series)(nil)
	_ tracking.Finisher = (*Series)(nil)
)

// Point is one value of a series.
type Point struct {
	Epoch int
	Value float64
}

// Open opens or creates a series database at path.
func Open(path string) (*Series, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Series{db: db}, nil
}

// Close closes the database connection.
func (s *Series) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS scalars (
			run TEXT NOT NULL,
			phase TEXT NOT NULL,
			tag TEXT NOT NULL,
			epoch INTEGER NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (run, phase, tag, epoch)
		);

		CREATE TABLE IF NOT EXISTS runs (
			run TEXT PRIMARY KEY,
			best_epoch INTEGER NOT NULL,
			best_score REAL NOT NULL,
			epochs INTEGER NOT NULL,
			persisted INTEGER NOT NULL,
			elapsed_seconds REAL NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// Record implements tracking.Sink. All scalars of the report are written in
// one transaction; re-recording an epoch replaces its values.
func (s *Series) Record(ctx context.Context, r tracking.EpochReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO scalars (run, phase, tag, epoch, value)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, sc := range r.Scalars() {
		if _, err := stmt.ExecContext(ctx, r.Run, sc.Phase, sc.Tag, r.Epoch, sc.Value); err != nil {
			return fmt.Errorf("inserting %s/%s: %w", sc.Phase, sc.Tag, err)
		}
	}

	return tx.Commit()
}

// Finish implements tracking.Finisher.
func (s *Series) Finish(ctx context.Context, sum tracking.Summary) error {
	persisted := 0
	if sum.Persisted {
		persisted = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (run, best_epoch, best_score, epochs, persisted, elapsed_seconds)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sum.Run, sum.BestEpoch, sum.BestScore, sum.Epochs, persisted, sum.Elapsed.Seconds())
	if err != nil {
		return fmt.Errorf("inserting run summary: %w", err)
	}
	return nil
}

// Query returns the series of one tag ordered by epoch.
func (s *Series) Query(ctx context.Context, run, phase, tag string) ([]Point, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT epoch, value FROM scalars
		WHERE run = ? AND phase = ? AND tag = ?
		ORDER BY epoch`, run, phase, tag)
	if err != nil {
		return nil, fmt.Errorf("querying series: %w", err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.Epoch, &p.Value); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Runs returns the names of all runs with at least one scalar, sorted.
func (s *Series) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT run FROM scalars ORDER BY run`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var run string
		if err := rows.Scan(&run); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// BestEpoch returns the recorded summary of run.
func (s *Series) BestEpoch(ctx context.Context, run string) (epoch int, score float64, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT best_epoch, best_score FROM runs WHERE run = ?`, run).Scan(&epoch, &score)
	return epoch, score, err
}

package renderrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/emersonart/printshop/internal/domain/render"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS render_runs (
	id          TEXT PRIMARY KEY,
	product_id  TEXT NOT NULL,
	title       TEXT NOT NULL,
	status      TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER,
	variants    TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS render_runs_started_at_idx ON render_runs (started_at DESC);
`

// SQLiteRepository is a file backed ledger for the batch CLI. Timestamps are
// stored as unix milliseconds.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the ledger at path.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect ledger: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Close releases the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Create inserts a new run row.
func (r *SQLiteRepository) Create(ctx context.Context, run render.Run) error {
	variants, err := encodeVariants(run.Variants)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO render_runs (id, product_id, title, status, started_at, finished_at, variants)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID.String(), run.ProductID, run.Title, string(run.Status), run.StartedAt.UnixMilli(), millis(run.FinishedAt), string(variants))
	return err
}

// Complete records the outcome of a run.
func (r *SQLiteRepository) Complete(ctx context.Context, run render.Run) error {
	variants, err := encodeVariants(run.Variants)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE render_runs SET status = ?, finished_at = ?, variants = ? WHERE id = ?
	`, string(run.Status), millis(run.FinishedAt), string(variants), run.ID.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}
	return nil
}

// Get fetches a run by id.
func (r *SQLiteRepository) Get(ctx context.Context, id uuid.UUID) (render.Run, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, product_id, title, status, started_at, finished_at, variants
		FROM render_runs WHERE id = ?
	`, id.String())
	run, err := scanSQLiteRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return render.Run{}, false, nil
	}
	if err != nil {
		return render.Run{}, false, err
	}
	return run, true, nil
}

// List returns the most recent runs first.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]render.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, title, status, started_at, finished_at, variants
		FROM render_runs ORDER BY started_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []render.Run
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func scanSQLiteRun(row rowScanner) (render.Run, error) {
	var (
		run      render.Run
		id       string
		status   string
		started  int64
		finished sql.NullInt64
		variants string
	)
	if err := row.Scan(&id, &run.ProductID, &run.Title, &status, &started, &finished, &variants); err != nil {
		return render.Run{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return render.Run{}, fmt.Errorf("decode run id: %w", err)
	}
	run.ID = parsed
	run.Status = render.RunStatus(status)
	run.StartedAt = time.UnixMilli(started).UTC()
	if finished.Valid {
		t := time.UnixMilli(finished.Int64).UTC()
		run.FinishedAt = &t
	}
	if err := json.Unmarshal([]byte(variants), &run.Variants); err != nil {
		return render.Run{}, fmt.Errorf("decode variants: %w", err)
	}
	return run, nil
}

func millis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

var _ render.RunRepository = (*SQLiteRepository)(nil)

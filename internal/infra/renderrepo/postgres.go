package renderrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emersonart/printshop/internal/domain/render"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS render_runs (
	id          UUID PRIMARY KEY,
	product_id  TEXT NOT NULL,
	title       TEXT NOT NULL,
	status      TEXT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	variants    JSONB NOT NULL DEFAULT '[]'::jsonb
);
CREATE INDEX IF NOT EXISTS render_runs_started_at_idx ON render_runs (started_at DESC);
`

// PostgresRepository persists runs in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate creates the render_runs table when missing.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate render_runs: %w", err)
	}
	return nil
}

// Create inserts a new run row.
func (r *PostgresRepository) Create(ctx context.Context, run render.Run) error {
	variants, err := encodeVariants(run.Variants)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO render_runs (id, product_id, title, status, started_at, finished_at, variants)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, run.ID, run.ProductID, run.Title, string(run.Status), run.StartedAt, run.FinishedAt, variants)
	return err
}

// Complete records the outcome of a run.
func (r *PostgresRepository) Complete(ctx context.Context, run render.Run) error {
	variants, err := encodeVariants(run.Variants)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE render_runs
		SET status = $2, finished_at = $3, variants = $4
		WHERE id = $1
	`, run.ID, string(run.Status), run.FinishedAt, variants)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}
	return nil
}

// Get fetches a run by id.
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (render.Run, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, product_id, title, status, started_at, finished_at, variants
		FROM render_runs
		WHERE id = $1
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return render.Run{}, false, nil
	}
	if err != nil {
		return render.Run{}, false, err
	}
	return run, true, nil
}

// List returns the most recent runs first.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]render.Run, error) {
	var max any
	if limit > 0 {
		max = limit
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, title, status, started_at, finished_at, variants
		FROM render_runs
		ORDER BY started_at DESC, id DESC
		LIMIT $1
	`, max)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []render.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (render.Run, error) {
	var (
		run      render.Run
		status   string
		finished *time.Time
		variants []byte
	)
	if err := row.Scan(&run.ID, &run.ProductID, &run.Title, &status, &run.StartedAt, &finished, &variants); err != nil {
		return render.Run{}, err
	}
	run.Status = render.RunStatus(status)
	if finished != nil {
		utc := finished.UTC()
		run.FinishedAt = &utc
	}
	run.StartedAt = run.StartedAt.UTC()
	if err := json.Unmarshal(variants, &run.Variants); err != nil {
		return render.Run{}, fmt.Errorf("decode variants: %w", err)
	}
	return run, nil
}

func encodeVariants(variants []render.VariantRecord) ([]byte, error) {
	if variants == nil {
		variants = []render.VariantRecord{}
	}
	data, err := json.Marshal(variants)
	if err != nil {
		return nil, fmt.Errorf("encode variants: %w", err)
	}
	return data, nil
}

var _ render.RunRepository = (*PostgresRepository)(nil)

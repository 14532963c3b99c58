// Package renderrepo persists the render run ledger.
package renderrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/emersonart/printshop/internal/domain/render"
)

// MemoryRepository keeps runs in memory for tests and local dev.
type MemoryRepository struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]render.Run
}

// NewMemoryRepository constructs the repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{runs: make(map[uuid.UUID]render.Run)}
}

// Create stores a new run.
func (r *MemoryRepository) Create(_ context.Context, run render.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[run.ID]; exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	r.runs[run.ID] = cloneRun(run)
	return nil
}

// Complete overwrites status, finish time and variant outcomes.
func (r *MemoryRepository) Complete(_ context.Context, run render.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.runs[run.ID]
	if !ok {
		return fmt.Errorf("run %s not found", run.ID)
	}
	existing.Status = run.Status
	existing.FinishedAt = run.FinishedAt
	existing.Variants = run.Variants
	r.runs[run.ID] = cloneRun(existing)
	return nil
}

// Get returns a run by id.
func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (render.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return render.Run{}, false, nil
	}
	return cloneRun(run), true, nil
}

// List returns the most recent runs first.
func (r *MemoryRepository) List(_ context.Context, limit int) ([]render.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]render.Run, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, cloneRun(run))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneRun(run render.Run) render.Run {
	run.Variants = append([]render.VariantRecord(nil), run.Variants...)
	if run.FinishedAt != nil {
		finished := *run.FinishedAt
		run.FinishedAt = &finished
	}
	return run
}

var _ render.RunRepository = (*MemoryRepository)(nil)

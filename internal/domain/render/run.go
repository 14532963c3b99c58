package render

import (
	"time"

	"github.com/google/uuid"

	"github.com/emersonart/printshop/pkg/util"
)

// RunStatus tracks a render run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusPartial   RunStatus = "partial"
	RunStatusFailed    RunStatus = "failed"
)

// VariantRecord is the persisted summary of one variant outcome.
type VariantRecord struct {
	Kind      Kind   `json:"kind"`
	FileName  string `json:"fileName,omitempty"`
	Location  string `json:"location,omitempty"`
	SizeBytes int64  `json:"sizeBytes,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Run is one RenderVariants invocation.
type Run struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  string          `json:"productId"`
	Title      string          `json:"title"`
	Status     RunStatus       `json:"status"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt *time.Time      `json:"finishedAt,omitempty"`
	Variants   []VariantRecord `json:"variants"`
}

func newRun(art Artwork) Run {
	return Run{
		ID:        uuid.New(),
		ProductID: art.ID,
		Title:     art.Title,
		Status:    RunStatusRunning,
		StartedAt: util.TruncateMillis(util.NowUTC()),
	}
}

func (r *Run) finish(result Result) {
	finished := util.TruncateMillis(util.NowUTC())
	r.FinishedAt = &finished
	r.Variants = r.Variants[:0]
	for _, v := range result.Variants {
		r.Variants = append(r.Variants, VariantRecord{
			Kind:      v.Kind,
			FileName:  v.FileName,
			Location:  v.Location,
			SizeBytes: int64(len(v.Data)),
		})
	}
	for _, f := range result.Failures {
		r.Variants = append(r.Variants, VariantRecord{
			Kind:      f.Kind,
			ErrorCode: f.Code(),
			Error:     f.Err.Error(),
		})
	}
	switch {
	case len(result.Failures) == 0:
		r.Status = RunStatusSucceeded
	case len(result.Variants) == 0:
		r.Status = RunStatusFailed
	default:
		r.Status = RunStatusPartial
	}
}

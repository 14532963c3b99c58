package render

import (
	"context"

	"github.com/google/uuid"
)

// Backend rasterizes a document into encoded bytes of doc.Format at doc.Quality.
type Backend interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// Sink receives every successful variant. It returns where the data ended up,
// or "" when the caller keeps the bytes in memory.
type Sink interface {
	Save(ctx context.Context, variant Variant) (string, error)
}

// WallAsset is the loaded wall photograph.
type WallAsset struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// WallLoader reads the wall photograph and probes its pixel size.
type WallLoader interface {
	LoadWall(ctx context.Context, path string) (WallAsset, error)
}

// CompressRequest bounds the re-encode loop.
type CompressRequest struct {
	Format       Format
	MaxBytes     int64
	StartQuality int
	Step         int
	MinQuality   int
}

// Compressed is the outcome of a compression pass.
type Compressed struct {
	Data         []byte
	Quality      int
	Attempts     int
	WithinBudget bool
}

// Compressor re-encodes an image at decreasing quality until it fits MaxBytes.
type Compressor interface {
	Compress(ctx context.Context, data []byte, req CompressRequest) (Compressed, error)
}

// RunRepository records render runs.
type RunRepository interface {
	Create(ctx context.Context, run Run) error
	Complete(ctx context.Context, run Run) error
	Get(ctx context.Context, id uuid.UUID) (Run, bool, error)
	List(ctx context.Context, limit int) ([]Run, error)
}

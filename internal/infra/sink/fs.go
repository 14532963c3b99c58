package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/emersonart/printshop/internal/domain/render"
)

var ErrUnsafeName = errors.New("variant file name escapes the output directory")

// FSSink writes variants into a directory.
type FSSink struct {
	dir    string
	logger *slog.Logger
}

// NewFSSink constructs the sink. The directory is created on first save.
func NewFSSink(dir string, logger *slog.Logger) *FSSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSSink{dir: dir, logger: logger.With("component", "sink.fs")}
}

// Save writes the variant and returns its path.
func (s *FSSink) Save(ctx context.Context, variant render.Variant) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := variant.FileName
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, variant.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	s.logger.Info("variant written", "path", path, "size", humanize.Bytes(uint64(len(variant.Data))))
	return path, nil
}

var _ render.Sink = (*FSSink)(nil)

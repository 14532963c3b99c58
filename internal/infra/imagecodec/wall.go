package imagecodec

import (
	"context"
	"fmt"
	"os"

	"github.com/emersonart/printshop/internal/domain/render"
)

// FileWallLoader reads the wall photograph from disk on every call.
type FileWallLoader struct{}

// NewFileWallLoader constructs the loader.
func NewFileWallLoader() *FileWallLoader {
	return &FileWallLoader{}
}

// LoadWall reads path and probes its dimensions.
func (FileWallLoader) LoadWall(ctx context.Context, path string) (render.WallAsset, error) {
	if err := ctx.Err(); err != nil {
		return render.WallAsset{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return render.WallAsset{}, fmt.Errorf("read wall image: %w", err)
	}
	width, height, mimeType, err := Probe(data)
	if err != nil {
		return render.WallAsset{}, err
	}
	return render.WallAsset{Data: data, MimeType: mimeType, Width: width, Height: height}, nil
}

var _ render.WallLoader = (*FileWallLoader)(nil)

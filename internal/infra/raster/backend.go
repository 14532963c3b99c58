// Package raster is a pure Go render backend. It reproduces the preview
// document (backdrop, stacked box shadows, centered artwork) without a browser.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	xdraw "golang.org/x/image/draw"

	"github.com/emersonart/printshop/internal/domain/render"
	"github.com/emersonart/printshop/internal/infra/imagecodec"
)

var ErrRemoteArtwork = errors.New("raster backend needs inline artwork bytes")

// Options bounds the work a single render may do.
type Options struct {
	// MaxPixels caps the decoded size of artwork and wall images; zero uses
	// imagecodec.DefaultMaxPixels.
	MaxPixels int64
}

// Backend implements render.Backend.
type Backend struct {
	opts   Options
	logger *slog.Logger
}

// New constructs the backend.
func New(opts Options, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{opts: opts, logger: logger.With("component", "raster.backend")}
}

// Render draws doc and encodes it in doc.Format.
func (b *Backend) Render(ctx context.Context, doc render.Document) ([]byte, error) {
	start := time.Now()
	if doc.CanvasWidth <= 0 || doc.CanvasHeight <= 0 {
		return nil, fmt.Errorf("invalid canvas %dx%d", doc.CanvasWidth, doc.CanvasHeight)
	}
	if len(doc.Artwork) == 0 {
		return nil, ErrRemoteArtwork
	}
	art, _, err := imagecodec.DecodeLimited(doc.Artwork, b.opts.MaxPixels)
	if err != nil {
		return nil, fmt.Errorf("artwork: %w", err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, doc.CanvasWidth, doc.CanvasHeight))
	if err := paintBackground(canvas, doc.Background, b.opts.MaxPixels); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	box := artworkBox(art.Bounds().Size(), doc)
	tr := newTransmittance(doc.CanvasWidth, doc.CanvasHeight)
	for _, layer := range doc.Shadow {
		tr.addBoxShadow(box, layer)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tr.apply(canvas, box)

	if !box.Empty() {
		scaled := imaging.Resize(art, box.Dx(), box.Dy(), imaging.Lanczos)
		draw.Draw(canvas, box, scaled, image.Point{}, draw.Over)
	}

	data, err := imagecodec.Encode(canvas, doc.Format, doc.Quality)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("raster render complete",
		"kind", doc.Kind,
		"size", humanize.Bytes(uint64(len(data))),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return data, nil
}

func paintBackground(canvas *image.RGBA, bg render.Background, maxPixels int64) error {
	switch bg.Kind {
	case render.BackgroundGradient:
		return fillLinearGradient(canvas, bg.Gradient)
	case render.BackgroundImage:
		wall, _, err := imagecodec.DecodeLimited(bg.Image, maxPixels)
		if err != nil {
			return fmt.Errorf("background: %w", err)
		}
		xdraw.CatmullRom.Scale(canvas, coverRect(wall.Bounds().Size(), canvas.Bounds().Size()), wall, wall.Bounds(), xdraw.Over, nil)
	}
	return nil
}

// coverRect scales src to cover dst entirely and centers it, like
// background-size: cover with background-position: center.
func coverRect(src, dst image.Point) image.Rectangle {
	if src.X <= 0 || src.Y <= 0 {
		return image.Rectangle{}
	}
	scale := math.Max(float64(dst.X)/float64(src.X), float64(dst.Y)/float64(src.Y))
	w := int(math.Ceil(float64(src.X) * scale))
	h := int(math.Ceil(float64(src.Y) * scale))
	x := (dst.X - w) / 2
	y := (dst.Y - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// artworkBox sizes the artwork inside the max-width/max-height box without
// upscaling and centers it on the placement point.
func artworkBox(size image.Point, doc render.Document) image.Rectangle {
	if size.X <= 0 || size.Y <= 0 {
		return image.Rectangle{}
	}
	cw, ch := float64(doc.CanvasWidth), float64(doc.CanvasHeight)
	maxW := cw * doc.Geometry.MaxWidthPercent / 100
	maxH := ch * doc.Geometry.MaxHeightPercent / 100
	scale := math.Min(1, math.Min(maxW/float64(size.X), maxH/float64(size.Y)))
	if !(scale > 0) {
		return image.Rectangle{}
	}
	w := max(1, int(math.Round(float64(size.X)*scale)))
	h := max(1, int(math.Round(float64(size.Y)*scale)))
	cx := cw * doc.Geometry.XPercent / 100
	cy := ch * doc.Geometry.YPercent / 100
	x := int(math.Round(cx - float64(w)/2))
	y := int(math.Round(cy - float64(h)/2))
	return image.Rect(x, y, x+w, y+h)
}

var _ render.Backend = (*Backend)(nil)

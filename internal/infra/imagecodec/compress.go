package imagecodec

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"

	"github.com/emersonart/printshop/internal/domain/render"
)

// Compressor lowers JPEG quality step by step until the image fits. PNG output
// is lossless, so it only gets maximum compression once.
type Compressor struct {
	maxPixels int64
	logger    *slog.Logger
}

// NewCompressor constructs the compressor. Inputs larger than maxPixels are
// rejected before decoding; zero uses DefaultMaxPixels.
func NewCompressor(maxPixels int64, logger *slog.Logger) *Compressor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compressor{maxPixels: maxPixels, logger: logger.With("component", "imagecodec.compressor")}
}

// Compress tries StartQuality, then StartQuality-Step and so on down to
// MinQuality inclusive. The smallest encoding is returned when none fits.
func (c *Compressor) Compress(ctx context.Context, data []byte, req render.CompressRequest) (render.Compressed, error) {
	img, _, err := DecodeLimited(data, c.maxPixels)
	if err != nil {
		return render.Compressed{}, err
	}
	if req.Format == render.FormatPNG {
		return c.compressPNG(img, data, req)
	}

	step := max(req.Step, 1)
	floor := min(max(req.MinQuality, 1), 100)
	best := render.Compressed{Data: data, Quality: 100}
	for quality := min(req.StartQuality, 100); quality >= floor; quality -= step {
		if err := ctx.Err(); err != nil {
			return best, err
		}
		encoded, err := Encode(img, render.FormatJPEG, quality)
		if err != nil {
			return render.Compressed{}, err
		}
		best.Attempts++
		if len(encoded) < len(best.Data) {
			best.Data, best.Quality = encoded, quality
		}
		c.logger.Debug("compression attempt", "quality", quality, "size", humanize.Bytes(uint64(len(encoded))))
		if int64(len(encoded)) <= req.MaxBytes {
			best.Data, best.Quality, best.WithinBudget = encoded, quality, true
			return best, nil
		}
	}
	return best, nil
}

func (c *Compressor) compressPNG(img image.Image, data []byte, req render.CompressRequest) (render.Compressed, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return render.Compressed{}, fmt.Errorf("encode png: %w", err)
	}
	out := render.Compressed{Data: data, Attempts: 1}
	if buf.Len() < len(data) {
		out.Data = buf.Bytes()
	}
	out.WithinBudget = int64(len(out.Data)) <= req.MaxBytes
	return out, nil
}

// Encode writes img in the requested format. JPEG output is flattened onto white.
func Encode(img image.Image, format render.Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case render.FormatPNG:
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	default:
		if err := imaging.Encode(&buf, Flatten(img), imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Flatten composites img over an opaque white canvas.
func Flatten(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	canvas := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1)
}

var _ render.Compressor = (*Compressor)(nil)

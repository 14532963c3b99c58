// Package imagecodec decodes, probes and re-encodes the rasters that flow
// through the render pipeline.
package imagecodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels bounds the area Decode will allocate for.
const DefaultMaxPixels int64 = 64_000_000

var ErrImageTooLarge = errors.New("image exceeds the pixel limit")

// Probe returns the pixel size and mime type of an encoded image without decoding it.
func Probe(data []byte) (width, height int, mimeType string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("probe image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, "", fmt.Errorf("probe image: empty %s", format)
	}
	return cfg.Width, cfg.Height, MimeType(format, data), nil
}

// CheckPixels reads only the header of data and fails with ErrImageTooLarge
// when width*height exceeds maxPixels. A non-positive maxPixels means
// DefaultMaxPixels. Undecodable headers pass; the real decode reports them.
func CheckPixels(data []byte, maxPixels int64) error {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	if area := int64(cfg.Width) * int64(cfg.Height); area > maxPixels {
		return fmt.Errorf("%w: %dx%d is over %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	return nil
}

// Decode decodes any registered format up to DefaultMaxPixels.
func Decode(data []byte) (image.Image, string, error) {
	return DecodeLimited(data, DefaultMaxPixels)
}

// DecodeLimited checks the header against maxPixels before decoding.
func DecodeLimited(data []byte, maxPixels int64) (image.Image, string, error) {
	if err := CheckPixels(data, maxPixels); err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// MimeType maps an image.Decode format name to a media type, sniffing data as a fallback.
func MimeType(format string, data []byte) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	}
	return http.DetectContentType(data)
}

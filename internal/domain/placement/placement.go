// Package placement maps physical artwork sizes onto canvas percentages.
package placement

import (
	"errors"
	"math"

	apperrors "github.com/emersonart/printshop/pkg/errors"
)

// DefaultBoxPercent bounds the artwork when no wall reference is available.
const DefaultBoxPercent = 85.0

var (
	ErrInvalidArtworkSize = errors.New("artwork width and height must be positive inches")
	ErrMissingWallHeight  = errors.New("wall reference needs a positive physical height")
	ErrInvalidWallPixels  = errors.New("wall reference needs positive pixel dimensions")
	ErrInvalidCanvas      = errors.New("canvas needs positive pixel dimensions to apply offsets")
	ErrUnknownAnchor      = errors.New("unknown anchor")
)

// WallReference describes the wall photograph the artwork is placed on.
type WallReference struct {
	PixelWidth           int
	PixelHeight          int
	PhysicalHeightInches float64
}

// Request carries everything Compute needs. Offsets are pixels. Canvas sizes
// are only read when Wall is nil.
type Request struct {
	ArtworkWidthInches  float64
	ArtworkHeightInches float64
	Wall                *WallReference
	Anchor              Anchor
	OffsetX             float64
	OffsetY             float64
	CanvasWidth         int
	CanvasHeight        int
}

// Geometry is percentage based: the artwork box is bounded by MaxWidthPercent
// and MaxHeightPercent and its center sits at (XPercent, YPercent).
type Geometry struct {
	MaxWidthPercent  float64 `json:"maxWidthPercent"`
	MaxHeightPercent float64 `json:"maxHeightPercent"`
	XPercent         float64 `json:"xPercent"`
	YPercent         float64 `json:"yPercent"`
}

// ValidateArtwork checks the physical dimensions shared by every variant.
func ValidateArtwork(widthInches, heightInches float64) error {
	if !positive(widthInches) || !positive(heightInches) {
		return apperrors.Wrap(apperrors.CodeInvalidConfig, "invalid artwork dimensions", ErrInvalidArtworkSize)
	}
	return nil
}

// Compute resolves the placement geometry. Without a wall reference the
// artwork is centered in a fixed 85% box. With one, both axes are scaled by
// the wall's vertical pixels-per-inch so the artwork keeps its real size
// relative to the photographed wall.
func Compute(req Request) (Geometry, error) {
	if err := ValidateArtwork(req.ArtworkWidthInches, req.ArtworkHeightInches); err != nil {
		return Geometry{}, err
	}
	if req.Wall == nil {
		return centered(req)
	}
	return onWall(req)
}

func centered(req Request) (Geometry, error) {
	geo := Geometry{
		MaxWidthPercent:  DefaultBoxPercent,
		MaxHeightPercent: DefaultBoxPercent,
		XPercent:         50,
		YPercent:         50,
	}
	if req.OffsetX == 0 && req.OffsetY == 0 {
		return geo, nil
	}
	if req.CanvasWidth <= 0 || req.CanvasHeight <= 0 {
		return Geometry{}, apperrors.Wrap(apperrors.CodeInvalidConfig, "invalid canvas", ErrInvalidCanvas)
	}
	geo.XPercent += req.OffsetX / float64(req.CanvasWidth) * 100
	geo.YPercent += req.OffsetY / float64(req.CanvasHeight) * 100
	return geo, nil
}

func onWall(req Request) (Geometry, error) {
	wall := req.Wall
	if !positive(wall.PhysicalHeightInches) {
		return Geometry{}, apperrors.Wrap(apperrors.CodeInvalidConfig, "invalid wall reference", ErrMissingWallHeight)
	}
	if wall.PixelWidth <= 0 || wall.PixelHeight <= 0 {
		return Geometry{}, apperrors.Wrap(apperrors.CodeInvalidConfig, "invalid wall reference", ErrInvalidWallPixels)
	}

	wallW := float64(wall.PixelWidth)
	wallH := float64(wall.PixelHeight)
	pixelsPerInch := wallH / wall.PhysicalHeightInches
	artW := req.ArtworkWidthInches * pixelsPerInch
	artH := req.ArtworkHeightInches * pixelsPerInch

	var x, y float64
	switch req.Anchor.Kind {
	case "", AnchorCenter:
		x, y = wallW/2, wallH/2
	case AnchorTop:
		x, y = wallW/2, artH/2
	case AnchorBottom:
		x, y = wallW/2, wallH-artH/2
	case AnchorExplicit:
		x, y = req.Anchor.X, req.Anchor.Y
	default:
		return Geometry{}, apperrors.Wrap(apperrors.CodeInvalidConfig, "invalid anchor "+string(req.Anchor.Kind), ErrUnknownAnchor)
	}
	x += req.OffsetX
	y += req.OffsetY

	geo := Geometry{
		MaxWidthPercent:  artW / wallW * 100,
		MaxHeightPercent: artH / wallH * 100,
		XPercent:         x / wallW * 100,
		YPercent:         y / wallH * 100,
	}
	if !geo.finite() {
		return Geometry{}, apperrors.Wrap(apperrors.CodeInvalidConfig, "placement overflowed", ErrInvalidArtworkSize)
	}
	return geo, nil
}

func (g Geometry) finite() bool {
	for _, v := range []float64{g.MaxWidthPercent, g.MaxHeightPercent, g.XPercent, g.YPercent} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

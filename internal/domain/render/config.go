package render

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/emersonart/printshop/internal/domain/placement"
	"github.com/emersonart/printshop/internal/domain/shadow"
	apperrors "github.com/emersonart/printshop/pkg/errors"
)

// Format is the raster encoding of a variant.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// ParseFormat accepts jpeg, jpg and png in any case.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unsupported format %q", raw)
}

// MimeType returns the IANA media type.
func (f Format) MimeType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/jpeg"
}

func (f Format) valid() bool {
	return f == FormatJPEG || f == FormatPNG
}

// Config lists every recognized render option with its default in DefaultConfig.
type Config struct {
	Format            Format
	Quality           int
	CanvasWidth       int
	CanvasHeight      int
	ShadowLayers      int
	ShadowIntensity   float64
	Gradient          Gradient
	WallImagePath     string
	WallHeightInches  float64
	Anchor            placement.Anchor
	OffsetX           float64
	OffsetY           float64
	MaxFileBytes      int64
	QualityStep       int
	MinQuality        int
	TransparentFormat Format
	// AllowedImageHosts lists the hosts artwork may be referenced from by URL.
	// Empty accepts inline image bytes only.
	AllowedImageHosts []string
}

// DefaultConfig mirrors the storefront preview settings.
func DefaultConfig() Config {
	return Config{
		Format:            FormatJPEG,
		Quality:           92,
		CanvasWidth:       2048,
		CanvasHeight:      2048,
		ShadowLayers:      shadow.DefaultLayerCount,
		ShadowIntensity:   shadow.DefaultIntensity,
		Gradient:          DefaultGradient(),
		WallHeightInches:  114,
		Anchor:            placement.Center(),
		QualityStep:       10,
		MinQuality:        10,
		TransparentFormat: FormatPNG,
		AllowedImageHosts: []string{"cdn.shopify.com"},
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if !c.Format.valid() {
		errs = append(errs, fmt.Errorf("format %q must be jpeg or png", c.Format))
	}
	if !c.TransparentFormat.valid() {
		errs = append(errs, fmt.Errorf("transparent format %q must be jpeg or png", c.TransparentFormat))
	}
	if c.Quality < 1 || c.Quality > 100 {
		errs = append(errs, fmt.Errorf("quality %d out of range 1-100", c.Quality))
	}
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		errs = append(errs, fmt.Errorf("canvas %dx%d must be positive", c.CanvasWidth, c.CanvasHeight))
	}
	if c.ShadowLayers < 1 {
		errs = append(errs, fmt.Errorf("shadow layers %d must be at least 1", c.ShadowLayers))
	}
	if math.IsNaN(c.ShadowIntensity) {
		errs = append(errs, errors.New("shadow intensity must be a number"))
	}
	if err := c.Gradient.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.WallImagePath != "" && !(c.WallHeightInches > 0) {
		errs = append(errs, placement.ErrMissingWallHeight)
	}
	if c.MaxFileBytes < 0 {
		errs = append(errs, errors.New("max file bytes must not be negative"))
	}
	if c.QualityStep < 1 {
		errs = append(errs, errors.New("quality step must be at least 1"))
	}
	if c.MinQuality < 1 || c.MinQuality > 100 {
		errs = append(errs, fmt.Errorf("min quality %d out of range 1-100", c.MinQuality))
	}
	if len(errs) == 0 {
		return nil
	}
	return apperrors.Wrap(apperrors.CodeInvalidConfig, "invalid render config", errors.Join(errs...))
}

// Options are per-call overrides. Nil fields fall back to Config.
type Options struct {
	Intensity *float64
	Anchor    *placement.Anchor
	OffsetX   *float64
	OffsetY   *float64
	Kinds     []Kind
}

type settings struct {
	intensity float64
	anchor    placement.Anchor
	offsetX   float64
	offsetY   float64
	kinds     []Kind
}

func (c Config) resolve(opts Options) (settings, error) {
	s := settings{
		intensity: c.ShadowIntensity,
		anchor:    c.Anchor,
		offsetX:   c.OffsetX,
		offsetY:   c.OffsetY,
		kinds:     AllKinds(),
	}
	if opts.Intensity != nil {
		if math.IsNaN(*opts.Intensity) {
			return settings{}, apperrors.Wrap(apperrors.CodeInvalidInput, "intensity must be a number", nil)
		}
		s.intensity = *opts.Intensity
	}
	if opts.Anchor != nil {
		s.anchor = *opts.Anchor
	}
	if opts.OffsetX != nil {
		s.offsetX = *opts.OffsetX
	}
	if opts.OffsetY != nil {
		s.offsetY = *opts.OffsetY
	}
	if len(opts.Kinds) > 0 {
		kinds, err := normalizeKinds(opts.Kinds)
		if err != nil {
			return settings{}, err
		}
		s.kinds = kinds
	}
	return s, nil
}

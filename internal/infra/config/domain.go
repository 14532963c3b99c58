package config

import (
	"fmt"
	"slices"

	"github.com/emersonart/printshop/internal/domain/catalog"
	"github.com/emersonart/printshop/internal/domain/placement"
	"github.com/emersonart/printshop/internal/domain/render"
)

// RenderDomain maps the render section onto a validated render.Config.
func (c *Config) RenderDomain() (render.Config, error) {
	rc := c.Render
	out := render.DefaultConfig()

	format, err := render.ParseFormat(rc.Format)
	if err != nil {
		return render.Config{}, fmt.Errorf("render.format: %w", err)
	}
	transparent, err := render.ParseFormat(rc.TransparentFormat)
	if err != nil {
		return render.Config{}, fmt.Errorf("render.transparentFormat: %w", err)
	}
	anchor, err := placement.ParseAnchor(rc.Anchor)
	if err != nil {
		return render.Config{}, fmt.Errorf("render.anchor: %w", err)
	}

	out.Format = format
	out.TransparentFormat = transparent
	out.Anchor = anchor
	out.Quality = rc.Quality
	out.CanvasWidth = rc.CanvasWidth
	out.CanvasHeight = rc.CanvasHeight
	out.ShadowLayers = rc.ShadowLayers
	out.ShadowIntensity = rc.ShadowIntensity
	out.WallImagePath = rc.WallImagePath
	out.WallHeightInches = rc.WallHeightInches
	out.OffsetX = rc.OffsetX
	out.OffsetY = rc.OffsetY
	out.MaxFileBytes = rc.MaxFileBytes
	out.QualityStep = rc.QualityStep
	out.MinQuality = rc.MinQuality
	if rc.AllowedImageHosts != nil {
		out.AllowedImageHosts = slices.Clone(rc.AllowedImageHosts)
	}
	if len(rc.Gradient.Stops) > 0 {
		g := render.Gradient{AngleDegrees: rc.Gradient.Angle}
		for _, s := range rc.Gradient.Stops {
			g.Stops = append(g.Stops, render.ColorStop{Color: s.Color, Position: s.Position})
		}
		out.Gradient = g
	}
	if err := out.Validate(); err != nil {
		return render.Config{}, err
	}
	return out, nil
}

// CatalogDomain returns the listing defaults.
func (c *Config) CatalogDomain() catalog.Config {
	return catalog.Config{
		Vendor:      c.Catalog.Vendor,
		ProductType: c.Catalog.ProductType,
		Status:      c.Catalog.Status,
	}
}

// SyncDomain returns the catalog image job settings.
func (c *Config) SyncDomain() catalog.SyncConfig {
	return catalog.SyncConfig{
		MaxExistingImages: c.Sync.MaxExistingImages,
		Delay:             c.Sync.Delay,
		Upload:            c.Sync.Upload,
	}
}

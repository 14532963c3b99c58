package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersonart/printshop/internal/domain/render"
	apperrors "github.com/emersonart/printshop/pkg/errors"
)

// SyncConfig tunes the catalog image job.
type SyncConfig struct {
	// MaxExistingImages skips products that already carry more images.
	MaxExistingImages int
	// Delay is the pause between products.
	Delay  time.Duration
	Upload bool
}

// DefaultSyncConfig processes products with at most one image and uploads the results.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{MaxExistingImages: 1, Delay: 500 * time.Millisecond, Upload: true}
}

// SyncFilter selects the products of a run. Empty ProductIDs means the whole catalog.
type SyncFilter struct {
	ProductIDs []string `json:"productIds,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

func (f SyncFilter) payload(jobID string) map[string]any {
	ids := make([]any, 0, len(f.ProductIDs))
	for _, id := range f.ProductIDs {
		ids = append(ids, id)
	}
	return map[string]any{"job_id": jobID, "product_ids": ids, "limit": f.Limit}
}

// FilterFromPayload decodes a queued job payload. Numbers arrive as float64
// after a JSON round trip.
func FilterFromPayload(payload map[string]any) (jobID string, filter SyncFilter) {
	jobID, _ = payload["job_id"].(string)
	switch ids := payload["product_ids"].(type) {
	case []string:
		filter.ProductIDs = ids
	case []any:
		for _, raw := range ids {
			if id, ok := raw.(string); ok && id != "" {
				filter.ProductIDs = append(filter.ProductIDs, id)
			}
		}
	}
	switch limit := payload["limit"].(type) {
	case int:
		filter.Limit = limit
	case float64:
		filter.Limit = int(limit)
	}
	return jobID, filter
}

// SyncStatus is the outcome of one product.
type SyncStatus string

const (
	SyncRendered SyncStatus = "rendered"
	SyncUploaded SyncStatus = "uploaded"
	SyncSkipped  SyncStatus = "skipped"
	SyncFailed   SyncStatus = "failed"
)

// SyncItem reports one product.
type SyncItem struct {
	ProductID string     `json:"productId"`
	Title     string     `json:"title"`
	Status    SyncStatus `json:"status"`
	Reason    string     `json:"reason,omitempty"`
	Files     []string   `json:"files,omitempty"`
}

// SyncReport aggregates a run.
type SyncReport struct {
	Processed int        `json:"processed"`
	Skipped   int        `json:"skipped"`
	Failed    int        `json:"failed"`
	Uploaded  int        `json:"uploaded"`
	Items     []SyncItem `json:"items"`
}

func (r *SyncReport) add(item SyncItem) {
	r.Items = append(r.Items, item)
	switch item.Status {
	case SyncSkipped:
		r.Skipped++
	case SyncFailed:
		r.Failed++
	default:
		r.Processed++
		if item.Status == SyncUploaded {
			r.Uploaded++
		}
	}
}

// SyncJob renders preview images for catalog products and uploads them back.
type SyncJob struct {
	cfg      SyncConfig
	catalog  Catalog
	fetcher  ImageFetcher
	renderer Renderer
	logger   *slog.Logger
	sleep    func(context.Context, time.Duration) error
}

// NewSyncJob wires the job collaborators.
func NewSyncJob(cfg SyncConfig, catalog Catalog, fetcher ImageFetcher, renderer Renderer, logger *slog.Logger) *SyncJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncJob{
		cfg:      cfg,
		catalog:  catalog,
		fetcher:  fetcher,
		renderer: renderer,
		logger:   logger.With("component", "catalog.sync"),
		sleep:    sleepContext,
	}
}

// Run processes the selected products one at a time. Per-product problems are
// reported in the SyncReport; only listing failures and cancellation return an error.
func (j *SyncJob) Run(ctx context.Context, filter SyncFilter) (SyncReport, error) {
	products, err := j.products(ctx, filter)
	if err != nil {
		return SyncReport{}, err
	}
	j.logger.Info("catalog image sync started", "products", len(products))

	report := SyncReport{Items: make([]SyncItem, 0, len(products))}
	for i, product := range products {
		if i > 0 && j.cfg.Delay > 0 {
			if err := j.sleep(ctx, j.cfg.Delay); err != nil {
				return report, err
			}
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		item := j.process(ctx, product)
		if item.Status == SyncFailed {
			j.logger.Warn("product sync failed", "product_id", product.ID, "reason", item.Reason)
		}
		report.add(item)
	}
	j.logger.Info("catalog image sync finished",
		"processed", report.Processed,
		"uploaded", report.Uploaded,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}

func (j *SyncJob) products(ctx context.Context, filter SyncFilter) ([]Product, error) {
	var products []Product
	if len(filter.ProductIDs) == 0 {
		listed, err := j.catalog.ListProducts(ctx, ListFilter{Limit: filter.Limit})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeCatalogError, "list products failed", err)
		}
		products = listed
	} else {
		for _, id := range filter.ProductIDs {
			product, found, err := j.catalog.GetProduct(ctx, id)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.CodeCatalogError, "get product "+id+" failed", err)
			}
			if !found {
				j.logger.Warn("product not found", "product_id", id)
				continue
			}
			products = append(products, product)
		}
	}
	if filter.Limit > 0 && len(products) > filter.Limit {
		products = products[:filter.Limit]
	}
	return products, nil
}

func (j *SyncJob) process(ctx context.Context, product Product) SyncItem {
	item := SyncItem{ProductID: product.ID, Title: product.Title}
	if product.ImageCount > j.cfg.MaxExistingImages {
		item.Status = SyncSkipped
		item.Reason = fmt.Sprintf("already has %d images", product.ImageCount)
		return item
	}
	if strings.TrimSpace(product.ImageURL) == "" {
		item.Status = SyncSkipped
		item.Reason = "no source image"
		return item
	}
	width, height, err := Dimensions(product.Metafields)
	if err != nil {
		j.logger.Warn("dimensions unavailable", "product_id", product.ID, "error", err)
		item.Status = SyncSkipped
		item.Reason = err.Error()
		return item
	}

	data, mimeType, err := j.fetcher.Fetch(ctx, product.ImageURL)
	if err != nil {
		item.Status = SyncFailed
		item.Reason = "fetch image: " + err.Error()
		return item
	}
	result, err := j.renderer.RenderVariants(ctx, render.Artwork{
		ID:           product.ID,
		Title:        product.Title,
		Image:        data,
		MimeType:     mimeType,
		WidthInches:  width,
		HeightInches: height,
	}, render.Options{})
	if err != nil {
		item.Status = SyncFailed
		item.Reason = err.Error()
		return item
	}
	if len(result.Variants) == 0 {
		item.Status = SyncFailed
		item.Reason = result.Err().Error()
		return item
	}

	images := make([]Image, 0, len(result.Variants))
	for _, v := range result.Variants {
		item.Files = append(item.Files, v.FileName)
		images = append(images, Image{FileName: v.FileName, MimeType: v.MimeType, Data: v.Data})
	}
	if failed := result.Err(); failed != nil {
		item.Reason = failed.Error()
	}
	item.Status = SyncRendered
	if !j.cfg.Upload {
		return item
	}
	if _, err := j.catalog.UploadImages(ctx, product.ID, images); err != nil {
		item.Status = SyncFailed
		item.Reason = "upload images: " + err.Error()
		return item
	}
	item.Status = SyncUploaded
	return item
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

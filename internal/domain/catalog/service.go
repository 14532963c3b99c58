package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/emersonart/printshop/pkg/errors"
)

// JobCatalogImages is the queue job name for SyncJob runs.
const JobCatalogImages = "catalog_images"

// Config holds listing defaults applied on create and update.
type Config struct {
	Vendor      string
	ProductType string
	Status      string
}

// DefaultConfig returns the storefront defaults.
func DefaultConfig() Config {
	return Config{Vendor: "Emerson", ProductType: "Artwork", Status: "ACTIVE"}
}

// Service validates admin requests and forwards them to the catalog.
type Service struct {
	cfg     Config
	catalog Catalog
	queue   JobQueue
	logger  *slog.Logger
}

// NewService constructs a Service. queue may be nil when background jobs are disabled.
func NewService(cfg Config, catalog Catalog, queue JobQueue, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cfg: cfg, catalog: catalog, queue: queue, logger: logger.With("component", "catalog.service")}
}

// ListProducts returns every product matching filter.
func (s *Service) ListProducts(ctx context.Context, filter ListFilter) ([]Product, error) {
	products, err := s.catalog.ListProducts(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCatalogError, "list products failed", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// CreateProduct creates the listing, then attaches any uploaded images.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	draft, err := s.draft("", in)
	if err != nil {
		return Product{}, err
	}
	product, err := s.catalog.CreateProduct(ctx, draft)
	if err != nil {
		return Product{}, apperrors.Wrap(apperrors.CodeCatalogError, "create product failed", err)
	}
	s.logger.Info("product created", "product_id", product.ID, "title", product.Title)
	return s.attachImages(ctx, product, in.Images)
}

// UpdateProduct rewrites the listing fields and appends new images.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, apperrors.Wrap(apperrors.CodeInvalidInput, "product id is required", nil)
	}
	draft, err := s.draft(id, in)
	if err != nil {
		return Product{}, err
	}
	product, err := s.catalog.UpdateProduct(ctx, draft)
	if err != nil {
		return Product{}, apperrors.Wrap(apperrors.CodeCatalogError, "update product failed", err)
	}
	s.logger.Info("product updated", "product_id", product.ID)
	return s.attachImages(ctx, product, in.Images)
}

// EnqueueImageSync schedules a SyncJob run and returns its job id.
func (s *Service) EnqueueImageSync(ctx context.Context, filter SyncFilter) (string, error) {
	if s.queue == nil {
		return "", apperrors.Wrap(apperrors.CodeInvalidConfig, "job queue not configured", nil)
	}
	jobID := uuid.NewString()
	if err := s.queue.Enqueue(ctx, JobCatalogImages, filter.payload(jobID)); err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorageError, "enqueue catalog images failed", err)
	}
	s.logger.Info("catalog image sync enqueued", "job_id", jobID, "products", len(filter.ProductIDs))
	return jobID, nil
}

func (s *Service) attachImages(ctx context.Context, product Product, images []Image) (Product, error) {
	valid := make([]Image, 0, len(images))
	for _, img := range images {
		if strings.TrimSpace(img.FileName) != "" && len(img.Data) > 0 {
			valid = append(valid, img)
		}
	}
	if len(valid) == 0 {
		return product, nil
	}
	ids, err := s.catalog.UploadImages(ctx, product.ID, valid)
	if err != nil {
		return Product{}, apperrors.Wrap(apperrors.CodeCatalogError, "upload images failed", err)
	}
	product.ImageCount += len(ids)
	return product, nil
}

func (s *Service) draft(id string, in ProductInput) (ProductDraft, error) {
	title := strings.TrimSpace(in.Title)
	var errs []error
	if title == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if p := strings.TrimSpace(in.Price); p != "" {
		if v, err := strconv.ParseFloat(p, 64); err != nil || v < 0 {
			errs = append(errs, errors.New("price must be a non-negative decimal"))
		}
	}
	if in.Quantity < 0 {
		errs = append(errs, errors.New("quantity must not be negative"))
	}
	metafields, err := detailMetafields(in.Details)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return ProductDraft{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid product", errors.Join(errs...))
	}
	return ProductDraft{
		ID:          id,
		Title:       title,
		Description: in.Description,
		Status:      s.cfg.Status,
		ProductType: s.cfg.ProductType,
		Vendor:      s.cfg.Vendor,
		Metafields:  metafields,
	}, nil
}

// detailMetafields skips empty fields so the platform keeps existing values.
func detailMetafields(d Details) ([]Metafield, error) {
	const text = "multi_line_text_field"
	var out []Metafield
	add := func(namespace, key, value, typ string) {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, Metafield{Namespace: namespace, Key: key, Value: value, Type: typ})
		}
	}
	add(NamespaceGlobal, "title_tag", d.TitleTag, text)
	add(NamespaceGlobal, "description_tag", d.DescriptionTag, text)
	add(NamespaceCustom, "medium", d.Medium, text)
	add(NamespaceCustom, "authentication", d.Authentication, text)

	var errs []error
	for _, dim := range []struct{ key, value string }{{KeyWidth, d.Width}, {KeyHeight, d.Height}} {
		raw := strings.TrimSpace(dim.value)
		if raw == "" {
			continue
		}
		inches, err := strconv.ParseFloat(raw, 64)
		if err != nil || !(inches > 0) {
			errs = append(errs, errors.New(dim.key+" must be a positive number of inches"))
			continue
		}
		add(NamespaceCustom, dim.key, DimensionValue(inches), "dimension")
	}
	add(NamespaceCustom, "dimensions", d.Dimensions, text)
	if year := strings.TrimSpace(d.Year); year != "" {
		if _, err := strconv.Atoi(year); err != nil {
			errs = append(errs, errors.New("year must be an integer"))
		} else {
			add(NamespaceCustom, "year", year, "number_integer")
		}
	}
	return out, errors.Join(errs...)
}

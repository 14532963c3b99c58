package catalog

import (
	"context"

	"github.com/emersonart/printshop/internal/domain/render"
)

// Catalog is the commerce platform port.
type Catalog interface {
	ListProducts(ctx context.Context, filter ListFilter) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, bool, error)
	CreateProduct(ctx context.Context, draft ProductDraft) (Product, error)
	UpdateProduct(ctx context.Context, draft ProductDraft) (Product, error)
	UploadImages(ctx context.Context, productID string, images []Image) ([]string, error)
}

// ImageFetcher downloads a product image.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// Renderer produces preview variants for an artwork.
type Renderer interface {
	RenderVariants(ctx context.Context, art render.Artwork, opts render.Options) (render.Result, error)
}

// JobQueue enqueues background jobs.
type JobQueue interface {
	Enqueue(ctx context.Context, name string, payload any) error
}

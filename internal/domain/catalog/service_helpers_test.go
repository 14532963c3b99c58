package catalog

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/emersonart/printshop/internal/domain/render"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubCatalog struct {
	products  []Product
	listErr   error
	drafts    []ProductDraft
	uploads   map[string][]Image
	uploadErr error
	createErr error
}

func (c *stubCatalog) ListProducts(_ context.Context, filter ListFilter) ([]Product, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	if filter.Limit > 0 && len(c.products) > filter.Limit {
		return c.products[:filter.Limit], nil
	}
	return c.products, nil
}

func (c *stubCatalog) GetProduct(_ context.Context, id string) (Product, bool, error) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return Product{}, false, nil
}

func (c *stubCatalog) CreateProduct(_ context.Context, draft ProductDraft) (Product, error) {
	if c.createErr != nil {
		return Product{}, c.createErr
	}
	c.drafts = append(c.drafts, draft)
	return Product{ID: "gid://shopify/Product/1", Title: draft.Title, Metafields: draft.Metafields}, nil
}

func (c *stubCatalog) UpdateProduct(_ context.Context, draft ProductDraft) (Product, error) {
	c.drafts = append(c.drafts, draft)
	return Product{ID: draft.ID, Title: draft.Title, ImageCount: 1}, nil
}

func (c *stubCatalog) UploadImages(_ context.Context, productID string, images []Image) ([]string, error) {
	if c.uploadErr != nil {
		return nil, c.uploadErr
	}
	if c.uploads == nil {
		c.uploads = map[string][]Image{}
	}
	c.uploads[productID] = append(c.uploads[productID], images...)
	ids := make([]string, len(images))
	for i := range images {
		ids[i] = "gid://shopify/MediaImage/" + images[i].FileName
	}
	return ids, nil
}

type stubFetcher struct {
	urls []string
	err  error
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, string, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, "", f.err
	}
	return []byte("image:" + url), "image/jpeg", nil
}

type stubRenderer struct {
	artworks []render.Artwork
	failAll  bool
	err      error
}

func (r *stubRenderer) RenderVariants(_ context.Context, art render.Artwork, _ render.Options) (render.Result, error) {
	if r.err != nil {
		return render.Result{}, r.err
	}
	r.artworks = append(r.artworks, art)
	var result render.Result
	for _, kind := range render.AllKinds() {
		if r.failAll {
			result.Failures = append(result.Failures, render.Failure{Kind: kind, Err: context.DeadlineExceeded})
			continue
		}
		result.Variants = append(result.Variants, render.Variant{
			Kind:     kind,
			FileName: render.FileName(art.ID, art.Title, kind, 2048, 2048, render.FormatJPEG),
			MimeType: "image/jpeg",
			Data:     []byte(kind),
		})
	}
	return result, nil
}

type stubQueue struct {
	names    []string
	payloads []any
	err      error
}

func (q *stubQueue) Enqueue(_ context.Context, name string, payload any) error {
	q.names = append(q.names, name)
	q.payloads = append(q.payloads, payload)
	return q.err
}

func noSleep(calls *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*calls = append(*calls, d)
		return ctx.Err()
	}
}

func sizedProduct(id string, images int, width, height float64) Product {
	return Product{
		ID:         id,
		Title:      "Print " + id,
		ImageURL:   "https://cdn.example.com/" + id + ".jpg",
		ImageCount: images,
		Metafields: []Metafield{
			{Namespace: NamespaceCustom, Key: KeyWidth, Value: DimensionValue(width)},
			{Namespace: NamespaceCustom, Key: KeyHeight, Value: DimensionValue(height)},
		},
	}
}

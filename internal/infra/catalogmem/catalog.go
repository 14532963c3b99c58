// Package catalogmem is an in-memory catalog for local development and tests.
package catalogmem

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/emersonart/printshop/internal/domain/catalog"
)

const idPrefix = "gid://printshop/Product/"

type entry struct {
	product catalog.Product
	images  []catalog.Image
}

// Catalog stores products in memory, ordered by creation.
type Catalog struct {
	mu       sync.RWMutex
	order    []string
	products map[string]*entry
}

// New constructs the catalog with optional seed products.
func New(seed ...catalog.Product) *Catalog {
	c := &Catalog{products: make(map[string]*entry)}
	for _, p := range seed {
		if p.ID == "" {
			p.ID = idPrefix + uuid.NewString()
		}
		c.order = append(c.order, p.ID)
		c.products[p.ID] = &entry{product: p}
	}
	return c
}

// ListProducts returns products whose title contains filter.Query.
func (c *Catalog) ListProducts(_ context.Context, filter catalog.ListFilter) ([]catalog.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]catalog.Product, 0, len(c.order))
	for _, id := range c.order {
		p := c.products[id].product
		if query != "" && !strings.Contains(strings.ToLower(p.Title), query) {
			continue
		}
		out = append(out, clone(p))
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// GetProduct returns a product by id.
func (c *Catalog) GetProduct(_ context.Context, id string) (catalog.Product, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.products[id]
	if !ok {
		return catalog.Product{}, false, nil
	}
	return clone(e.product), true, nil
}

// CreateProduct stores a new product.
func (c *Catalog) CreateProduct(_ context.Context, draft catalog.ProductDraft) (catalog.Product, error) {
	p := catalog.Product{
		ID:          idPrefix + uuid.NewString(),
		Title:       draft.Title,
		Handle:      handle(draft.Title),
		Description: draft.Description,
		Metafields:  append([]catalog.Metafield(nil), draft.Metafields...),
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = append(c.order, p.ID)
	c.products[p.ID] = &entry{product: p}
	return clone(p), nil
}

// UpdateProduct replaces title, description and the drafted metafields.
func (c *Catalog) UpdateProduct(_ context.Context, draft catalog.ProductDraft) (catalog.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.products[draft.ID]
	if !ok {
		return catalog.Product{}, fmt.Errorf("product %s not found", draft.ID)
	}
	e.product.Title = draft.Title
	e.product.Description = draft.Description
	for _, mf := range draft.Metafields {
		e.product.Metafields = upsert(e.product.Metafields, mf)
	}
	return clone(e.product), nil
}

// UploadImages attaches images and returns synthetic media ids.
func (c *Catalog) UploadImages(_ context.Context, productID string, images []catalog.Image) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %s not found", productID)
	}
	ids := make([]string, 0, len(images))
	for _, img := range images {
		img.Data = append([]byte(nil), img.Data...)
		e.images = append(e.images, img)
		ids = append(ids, fmt.Sprintf("gid://printshop/MediaImage/%d", len(e.images)))
	}
	e.product.ImageCount += len(images)
	return ids, nil
}

// Images returns the file names attached to a product, sorted.
func (c *Catalog) Images(productID string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.products[productID]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(e.images))
	for _, img := range e.images {
		names = append(names, img.FileName)
	}
	sort.Strings(names)
	return names
}

func upsert(fields []catalog.Metafield, mf catalog.Metafield) []catalog.Metafield {
	for i, existing := range fields {
		if existing.Namespace == mf.Namespace && existing.Key == mf.Key {
			fields[i] = mf
			return fields
		}
	}
	return append(fields, mf)
}

func clone(p catalog.Product) catalog.Product {
	p.Metafields = append([]catalog.Metafield(nil), p.Metafields...)
	return p
}

func handle(title string) string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "-")
}

var _ catalog.Catalog = (*Catalog)(nil)

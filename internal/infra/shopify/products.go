package shopify

import (
	"context"
	"fmt"

	"github.com/emersonart/printshop/internal/domain/catalog"
)

type productNode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	Description string `json:"description"`
	MediaCount  *struct {
		Count int `json:"count"`
	} `json:"mediaCount"`
	Images struct {
		Edges []struct {
			Node struct {
				URL     string `json:"url"`
				AltText string `json:"altText"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []struct {
			Node struct {
				ID    string `json:"id"`
				Price string `json:"price"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	Metafields struct {
		Edges []struct {
			Node catalog.Metafield `json:"node"`
		} `json:"edges"`
	} `json:"metafields"`
}

func (n productNode) toProduct() catalog.Product {
	p := catalog.Product{
		ID:          n.ID,
		Title:       n.Title,
		Handle:      n.Handle,
		Description: n.Description,
	}
	if len(n.Images.Edges) > 0 {
		p.ImageURL = n.Images.Edges[0].Node.URL
		p.ImageAlt = n.Images.Edges[0].Node.AltText
		p.ImageCount = 1
	}
	if n.MediaCount != nil {
		p.ImageCount = n.MediaCount.Count
	}
	if len(n.Variants.Edges) > 0 {
		p.Price = n.Variants.Edges[0].Node.Price
	}
	for _, edge := range n.Metafields.Edges {
		p.Metafields = append(p.Metafields, edge.Node)
	}
	return p
}

// ListProducts follows the products connection until it is exhausted or
// filter.Limit products have been read.
func (c *Client) ListProducts(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error) {
	var (
		products []catalog.Product
		cursor   *string
	)
	for {
		first := c.pageSize
		if filter.Limit > 0 {
			first = min(first, filter.Limit-len(products))
		}
		vars := map[string]any{"first": first, "cursor": cursor}
		if filter.Query != "" {
			vars["query"] = filter.Query
		}
		var out struct {
			Products struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Edges []struct {
					Node productNode `json:"node"`
				} `json:"edges"`
			} `json:"products"`
		}
		if err := c.do(ctx, productsQuery, vars, &out); err != nil {
			return nil, err
		}
		for _, edge := range out.Products.Edges {
			products = append(products, edge.Node.toProduct())
		}
		page := out.Products.PageInfo
		if !page.HasNextPage || page.EndCursor == "" {
			break
		}
		if filter.Limit > 0 && len(products) >= filter.Limit {
			break
		}
		next := page.EndCursor
		cursor = &next
	}
	c.logger.Debug("products listed", "count", len(products))
	return products, nil
}

// GetProduct loads one product. A null product means not found.
func (c *Client) GetProduct(ctx context.Context, id string) (catalog.Product, bool, error) {
	var out struct {
		Product *productNode `json:"product"`
	}
	if err := c.do(ctx, productQuery, map[string]any{"id": id}, &out); err != nil {
		return catalog.Product{}, false, err
	}
	if out.Product == nil {
		return catalog.Product{}, false, nil
	}
	return out.Product.toProduct(), true, nil
}

type metafieldInput struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type,omitempty"`
}

type productInput struct {
	ID              string           `json:"id,omitempty"`
	Title           string           `json:"title"`
	DescriptionHTML string           `json:"descriptionHtml"`
	Status          string           `json:"status,omitempty"`
	ProductType     string           `json:"productType,omitempty"`
	Vendor          string           `json:"vendor,omitempty"`
	Metafields      []metafieldInput `json:"metafields,omitempty"`
}

func draftInput(d catalog.ProductDraft) productInput {
	in := productInput{
		ID:              d.ID,
		Title:           d.Title,
		DescriptionHTML: d.Description,
		Status:          d.Status,
		ProductType:     d.ProductType,
		Vendor:          d.Vendor,
	}
	for _, mf := range d.Metafields {
		in.Metafields = append(in.Metafields, metafieldInput(mf))
	}
	return in
}

type productPayload struct {
	Product    *productNode `json:"product"`
	UserErrors UserErrors   `json:"userErrors"`
}

func (p productPayload) result(op string) (catalog.Product, error) {
	if len(p.UserErrors) > 0 {
		return catalog.Product{}, p.UserErrors
	}
	if p.Product == nil {
		return catalog.Product{}, fmt.Errorf("%s returned no product", op)
	}
	return p.Product.toProduct(), nil
}

// CreateProduct runs productCreate.
func (c *Client) CreateProduct(ctx context.Context, draft catalog.ProductDraft) (catalog.Product, error) {
	draft.ID = ""
	var out struct {
		ProductCreate productPayload `json:"productCreate"`
	}
	if err := c.do(ctx, productCreateMutation, map[string]any{"input": draftInput(draft)}, &out); err != nil {
		return catalog.Product{}, err
	}
	product, err := out.ProductCreate.result("productCreate")
	if err != nil {
		return catalog.Product{}, err
	}
	c.logger.Info("product created", "product_id", product.ID, "title", product.Title)
	return product, nil
}

// UpdateProduct runs productUpdate.
func (c *Client) UpdateProduct(ctx context.Context, draft catalog.ProductDraft) (catalog.Product, error) {
	if draft.ID == "" {
		return catalog.Product{}, fmt.Errorf("productUpdate requires an id")
	}
	var out struct {
		ProductUpdate productPayload `json:"productUpdate"`
	}
	if err := c.do(ctx, productUpdateMutation, map[string]any{"input": draftInput(draft)}, &out); err != nil {
		return catalog.Product{}, err
	}
	product, err := out.ProductUpdate.result("productUpdate")
	if err != nil {
		return catalog.Product{}, err
	}
	c.logger.Info("product updated", "product_id", product.ID)
	return product, nil
}

var _ catalog.Catalog = (*Client)(nil)

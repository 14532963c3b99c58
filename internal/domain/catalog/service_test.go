package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/emersonart/printshop/pkg/errors"
)

func TestCreateProductBuildsMetafields(t *testing.T) {
	cat := &stubCatalog{}
	svc := NewService(DefaultConfig(), cat, nil, discardLogger())

	product, err := svc.CreateProduct(context.Background(), ProductInput{
		Title:       "  Lemons ",
		Description: "<p>Oil on canvas</p>",
		Price:       "1200.00",
		Images: []Image{
			{FileName: "lemons.jpg", MimeType: "image/jpeg", Data: []byte("jpg")},
			{FileName: "", Data: []byte("ignored")},
			{FileName: "empty.jpg"},
		},
		Details: Details{
			TitleTag: "Lemons print",
			Medium:   "Oil",
			Width:    "30",
			Height:   "31.5",
			Year:     "2021",
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, product.ImageCount)
	require.Len(t, cat.uploads[product.ID], 1)

	require.Len(t, cat.drafts, 1)
	draft := cat.drafts[0]
	require.Equal(t, "Lemons", draft.Title)
	require.Equal(t, "ACTIVE", draft.Status)
	require.Equal(t, "Artwork", draft.ProductType)
	require.Equal(t, "Emerson", draft.Vendor)
	require.Equal(t, []Metafield{
		{Namespace: NamespaceGlobal, Key: "title_tag", Value: "Lemons print", Type: "multi_line_text_field"},
		{Namespace: NamespaceCustom, Key: "medium", Value: "Oil", Type: "multi_line_text_field"},
		{Namespace: NamespaceCustom, Key: KeyWidth, Value: `{"value":30,"unit":"in"}`, Type: "dimension"},
		{Namespace: NamespaceCustom, Key: KeyHeight, Value: `{"value":31.5,"unit":"in"}`, Type: "dimension"},
		{Namespace: NamespaceCustom, Key: "year", Value: "2021", Type: "number_integer"},
	}, draft.Metafields)
}

func TestCreateProductValidates(t *testing.T) {
	cat := &stubCatalog{}
	svc := NewService(DefaultConfig(), cat, nil, discardLogger())

	_, err := svc.CreateProduct(context.Background(), ProductInput{
		Price:   "abc",
		Details: Details{Width: "-3", Year: "twenty"},
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	for _, frag := range []string{"title is required", "price", "width", "year"} {
		require.ErrorContains(t, err, frag)
	}
	require.Empty(t, cat.drafts)
}

func TestCreateProductCatalogFailures(t *testing.T) {
	svc := NewService(DefaultConfig(), &stubCatalog{createErr: errors.New("userErrors: title taken")}, nil, discardLogger())
	_, err := svc.CreateProduct(context.Background(), ProductInput{Title: "Lemons"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeCatalogError))

	svc = NewService(DefaultConfig(), &stubCatalog{uploadErr: errors.New("staged upload rejected")}, nil, discardLogger())
	_, err = svc.CreateProduct(context.Background(), ProductInput{Title: "Lemons", Images: []Image{{FileName: "a.jpg", Data: []byte{1}}}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeCatalogError))
	require.ErrorContains(t, err, "staged upload rejected")
}

func TestUpdateProductRequiresID(t *testing.T) {
	cat := &stubCatalog{}
	svc := NewService(DefaultConfig(), cat, nil, discardLogger())

	_, err := svc.UpdateProduct(context.Background(), " ", ProductInput{Title: "Lemons"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	product, err := svc.UpdateProduct(context.Background(), "gid://shopify/Product/9", ProductInput{Title: "Lemons"})
	require.NoError(t, err)
	require.Equal(t, "gid://shopify/Product/9", product.ID)
	require.Equal(t, "gid://shopify/Product/9", cat.drafts[0].ID)
}

func TestListProducts(t *testing.T) {
	svc := NewService(DefaultConfig(), &stubCatalog{}, nil, discardLogger())
	products, err := svc.ListProducts(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.NotNil(t, products)

	svc = NewService(DefaultConfig(), &stubCatalog{listErr: errors.New("throttled")}, nil, discardLogger())
	_, err = svc.ListProducts(context.Background(), ListFilter{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeCatalogError))
}

func TestEnqueueImageSync(t *testing.T) {
	queue := &stubQueue{}
	svc := NewService(DefaultConfig(), &stubCatalog{}, queue, discardLogger())

	jobID, err := svc.EnqueueImageSync(context.Background(), SyncFilter{ProductIDs: []string{"1", "2"}, Limit: 5})
	require.NoError(t, err)
	require.NotEmpty(t, jobID)
	require.Equal(t, []string{JobCatalogImages}, queue.names)

	payload, ok := queue.payloads[0].(map[string]any)
	require.True(t, ok)
	gotID, filter := FilterFromPayload(payload)
	require.Equal(t, jobID, gotID)
	require.Equal(t, SyncFilter{ProductIDs: []string{"1", "2"}, Limit: 5}, filter)

	noQueue := NewService(DefaultConfig(), &stubCatalog{}, nil, discardLogger())
	_, err = noQueue.EnqueueImageSync(context.Background(), SyncFilter{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidConfig))
}

func TestFilterFromJSONPayload(t *testing.T) {
	jobID, filter := FilterFromPayload(map[string]any{
		"job_id":      "abc",
		"product_ids": []any{"7", 8, ""},
		"limit":       float64(3),
	})
	require.Equal(t, "abc", jobID)
	require.Equal(t, SyncFilter{ProductIDs: []string{"7"}, Limit: 3}, filter)
}

package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emersonart/printshop/internal/domain/catalog"
	apperrors "github.com/emersonart/printshop/pkg/errors"
)

// ListProducts returns catalog products filtered by ?q= and ?limit=.
func (h *Handler) ListProducts(c *gin.Context) {
	filter := catalog.ListFilter{Query: strings.TrimSpace(c.Query("q"))}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer", err))
			return
		}
		filter.Limit = limit
	}
	products, err := h.catalogSvc.ListProducts(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, fromDomainError(err, apperrors.CodeCatalogError))
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// CreateProduct handles the multipart product form.
func (h *Handler) CreateProduct(c *gin.Context) {
	in, err := parseProductForm(c)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	product, err := h.catalogSvc.CreateProduct(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, fromDomainError(err, apperrors.CodeCatalogError))
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// UpdateProduct handles the multipart form plus productId.
func (h *Handler) UpdateProduct(c *gin.Context) {
	in, err := parseProductForm(c)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	id := strings.TrimSpace(c.PostForm("productId"))
	product, err := h.catalogSvc.UpdateProduct(c.Request.Context(), id, in)
	if err != nil {
		abortWithError(c, fromDomainError(err, apperrors.CodeCatalogError))
		return
	}
	h.logger.Info("product updated", "product_id", product.ID, "requested_by", requester(c))
	c.JSON(http.StatusOK, gin.H{"product": product})
}

type syncRequest struct {
	ProductIDs []string `json:"productIds"`
	Limit      int      `json:"limit"`
}

// EnqueueCatalogImages schedules the catalog image job.
func (h *Handler) EnqueueCatalogImages(c *gin.Context) {
	var req syncRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
	}
	if req.Limit < 0 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must not be negative", nil))
		return
	}
	jobID, err := h.catalogSvc.EnqueueImageSync(c.Request.Context(), catalog.SyncFilter{ProductIDs: req.ProductIDs, Limit: req.Limit})
	if err != nil {
		abortWithError(c, fromDomainError(err, apperrors.CodeStorageError))
		return
	}
	h.logger.Info("catalog image job enqueued", "job_id", jobID, "requested_by", requester(c))
	c.JSON(http.StatusAccepted, gin.H{"jobId": jobID})
}

var metafieldTargets = map[string]func(*catalog.Details) *string{
	"title_tag":       func(d *catalog.Details) *string { return &d.TitleTag },
	"description_tag": func(d *catalog.Details) *string { return &d.DescriptionTag },
	"medium":          func(d *catalog.Details) *string { return &d.Medium },
	"authentication":  func(d *catalog.Details) *string { return &d.Authentication },
	"width":           func(d *catalog.Details) *string { return &d.Width },
	"height":          func(d *catalog.Details) *string { return &d.Height },
	"dimensions":      func(d *catalog.Details) *string { return &d.Dimensions },
	"year":            func(d *catalog.Details) *string { return &d.Year },
}

// parseProductForm reads title, description, price, trackQuantity, quantity,
// images[n] files and metafields[key] fields.
func parseProductForm(c *gin.Context) (catalog.ProductInput, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return catalog.ProductInput{}, fmt.Errorf("parse multipart form: %w", err)
	}
	in := catalog.ProductInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Price:       c.PostForm("price"),
	}
	if raw := c.PostForm("trackQuantity"); raw != "" {
		track, err := strconv.ParseBool(raw)
		if err != nil {
			return catalog.ProductInput{}, fmt.Errorf("trackQuantity must be a boolean")
		}
		in.TrackQuantity = track
	}
	if raw := c.PostForm("quantity"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return catalog.ProductInput{}, fmt.Errorf("quantity must be an integer")
		}
		in.Quantity = qty
	}
	for key, values := range form.Value {
		name, ok := strings.CutPrefix(key, "metafields[")
		if !ok || !strings.HasSuffix(name, "]") || len(values) == 0 {
			continue
		}
		if target, known := metafieldTargets[strings.TrimSuffix(name, "]")]; known {
			*target(&in.Details) = values[0]
		}
	}
	images, err := readImages(form)
	if err != nil {
		return catalog.ProductInput{}, err
	}
	in.Images = images
	return in, nil
}

// readImages collects files posted as images[n] (ordered by n) or images.
func readImages(form *multipart.Form) ([]catalog.Image, error) {
	type indexed struct {
		index  int
		header *multipart.FileHeader
	}
	var files []indexed
	for key, headers := range form.File {
		index := -1
		if key != "images" {
			raw, ok := strings.CutPrefix(key, "images[")
			if !ok || !strings.HasSuffix(raw, "]") {
				continue
			}
			n, err := strconv.Atoi(strings.TrimSuffix(raw, "]"))
			if err != nil {
				continue
			}
			index = n
		}
		for _, fh := range headers {
			files = append(files, indexed{index: index, header: fh})
		}
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].index < files[j].index })

	images := make([]catalog.Image, 0, len(files))
	for _, f := range files {
		data, err := readFile(f.header)
		if err != nil {
			return nil, err
		}
		images = append(images, catalog.Image{
			FileName: f.header.Filename,
			MimeType: f.header.Header.Get("Content-Type"),
			Data:     data,
		})
	}
	return images, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return data, nil
}

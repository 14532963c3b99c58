package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emersonart/printshop/internal/domain/catalog"
	"github.com/emersonart/printshop/internal/domain/render"
)

// RenderService is the render orchestrator as seen by the transport.
type RenderService interface {
	RenderVariants(ctx context.Context, art render.Artwork, opts render.Options) (render.Result, error)
	ListRuns(ctx context.Context, limit int) ([]render.Run, error)
}

// CatalogService is the listing workflow as seen by the transport.
type CatalogService interface {
	ListProducts(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error)
	CreateProduct(ctx context.Context, in catalog.ProductInput) (catalog.Product, error)
	UpdateProduct(ctx context.Context, id string, in catalog.ProductInput) (catalog.Product, error)
	EnqueueImageSync(ctx context.Context, filter catalog.SyncFilter) (string, error)
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	renderSvc  RenderService
	catalogSvc CatalogService
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(renderSvc RenderService, catalogSvc CatalogService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		renderSvc:  renderSvc,
		catalogSvc: catalogSvc,
		logger:     logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emersonart/printshop/internal/domain/auth"
	"github.com/emersonart/printshop/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
// A nil authSvc leaves the API open.
func NewRouter(cfg *config.Config, handler *Handler, authSvc auth.Service) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	logger := handler.logger

	router := gin.New()
	if cfg.HTTP.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = cfg.HTTP.MaxUploadBytes
	}
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, logger),
	)

	router.GET("/healthz", handler.Health)

	api := router.Group("/api/v1")
	if authSvc != nil {
		api.Use(authMiddleware(authSvc))
	}
	{
		api.POST("/renders", handler.Render)
		api.GET("/runs", handler.ListRuns)
		api.GET("/products", handler.ListProducts)
		api.POST("/products", handler.CreateProduct)
		api.POST("/products/update", handler.UpdateProduct)
		api.POST("/jobs/catalog-images", handler.EnqueueCatalogImages)
	}

	var root http.Handler = router
	if cfg.HTTP.MaxUploadBytes > 0 {
		root = limitBody(root, cfg.HTTP.MaxUploadBytes)
	}
	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        root,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func limitBody(next http.Handler, max int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, max)
		}
		next.ServeHTTP(w, r)
	})
}

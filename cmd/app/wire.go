//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/emersonart/printshop/internal/bootstrap"
	"github.com/emersonart/printshop/internal/domain/catalog"
	"github.com/emersonart/printshop/internal/domain/render"
	"github.com/emersonart/printshop/internal/infra/config"
	httpiface "github.com/emersonart/printshop/internal/interface/http"
	"github.com/emersonart/printshop/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideRenderConfig,
		provideBackend,
		provideWallLoader,
		provideCompressor,
		provideRunRepository,
		provideRenderService,
		provideSink,
		provideCatalog,
		provideSyncJob,
		provideJobQueue,
		provideCatalogService,
		provideAuthService,
		wire.Bind(new(httpiface.RenderService), new(*render.Service)),
		wire.Bind(new(httpiface.CatalogService), new(*catalog.Service)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}

package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/emersonart/printshop/internal/domain/auth"
	"github.com/emersonart/printshop/internal/domain/catalog"
	"github.com/emersonart/printshop/internal/domain/render"
	"github.com/emersonart/printshop/internal/infra/catalogmem"
	"github.com/emersonart/printshop/internal/infra/chromium"
	"github.com/emersonart/printshop/internal/infra/config"
	"github.com/emersonart/printshop/internal/infra/imagecodec"
	"github.com/emersonart/printshop/internal/infra/queue"
	"github.com/emersonart/printshop/internal/infra/raster"
	"github.com/emersonart/printshop/internal/infra/renderrepo"
	"github.com/emersonart/printshop/internal/infra/shopify"
	"github.com/emersonart/printshop/internal/infra/sink"
)

func provideRenderConfig(cfg *config.Config) (render.Config, error) {
	return cfg.RenderDomain()
}

func provideBackend(cfg *config.Config, logger *slog.Logger) (render.Backend, func()) {
	if cfg.Render.Backend == "raster" {
		logger.Info("using raster render backend")
		return raster.New(raster.Options{MaxPixels: cfg.Render.MaxImagePixels}, logger), func() {}
	}
	backend := chromium.New(chromium.Options{
		ExecPath:  cfg.Render.Chromium.ExecPath,
		NoSandbox: cfg.Render.Chromium.NoSandbox,
		Timeout:   cfg.Render.Chromium.Timeout,
		MaxPixels: cfg.Render.MaxImagePixels,
	}, logger)
	logger.Info("using chromium render backend", "exec_path", cfg.Render.Chromium.ExecPath)
	return backend, backend.Close
}

func provideWallLoader() render.WallLoader {
	return imagecodec.NewFileWallLoader()
}

func provideCompressor(cfg *config.Config, logger *slog.Logger) render.Compressor {
	return imagecodec.NewCompressor(cfg.Render.MaxImagePixels, logger)
}

func provideRunRepository(cfg *config.Config, logger *slog.Logger) (render.RunRepository, func()) {
	fallback := renderrepo.NewMemoryRepository()
	noop := func() {}
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory run repository")
		return fallback, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory run repository", "error", err)
		return fallback, noop
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory run repository", "error", err)
		return fallback, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory run repository", "error", err)
		pool.Close()
		return fallback, noop
	}
	repo := renderrepo.NewPostgresRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		logger.Error("run ledger migration failed, using memory run repository", "error", err)
		pool.Close()
		return fallback, noop
	}
	logger.Info("postgres run repository enabled")
	return repo, pool.Close
}

// provideRenderService builds the interactive renderer. It has no sink: the
// API returns variants inline as data URLs.
func provideRenderService(cfg render.Config, backend render.Backend, walls render.WallLoader, compressor render.Compressor, runs render.RunRepository, logger *slog.Logger) (*render.Service, error) {
	return render.NewService(cfg, backend, nil, walls, compressor, runs, logger)
}

func provideSink(cfg *config.Config, logger *slog.Logger) (render.Sink, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return sink.NewMemorySink(), nil
	case "s3":
		s3 := cfg.Storage.S3
		return sink.NewObjectSink(sink.ObjectOptions{
			Endpoint:      s3.Endpoint,
			AccessKey:     s3.AccessKey,
			SecretKey:     s3.SecretKey,
			Bucket:        s3.Bucket,
			Region:        s3.Region,
			Prefix:        s3.Prefix,
			PublicBaseURL: s3.PublicBaseURL,
		}, logger)
	default:
		return sink.NewFSSink(cfg.Storage.Dir, logger), nil
	}
}

func provideCatalog(cfg *config.Config, logger *slog.Logger) (catalog.Catalog, error) {
	if strings.TrimSpace(cfg.Shopify.ShopDomain) == "" {
		logger.Info("shopify shop domain not set, using in-memory catalog")
		return catalogmem.New(), nil
	}
	client, err := shopify.NewClient(shopify.Options{
		ShopDomain:  cfg.Shopify.ShopDomain,
		AccessToken: cfg.Shopify.AccessToken,
		APIVersion:  cfg.Shopify.APIVersion,
		Timeout:     cfg.Shopify.Timeout,
		PageSize:    cfg.Shopify.PageSize,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("shopify catalog enabled", "shop", cfg.Shopify.ShopDomain)
	return client, nil
}

// provideSyncJob renders through a copy of the interactive service that
// persists every variant into the configured sink.
func provideSyncJob(cfg *config.Config, cat catalog.Catalog, renderSvc *render.Service, out render.Sink, logger *slog.Logger) *catalog.SyncJob {
	fetcher := imagecodec.NewHTTPFetcher(cfg.Sync.FetchTimeout)
	return catalog.NewSyncJob(cfg.SyncDomain(), cat, fetcher, renderSvc.WithSink(out), logger)
}

func provideJobQueue(cfg *config.Config, job *catalog.SyncJob, logger *slog.Logger) (queue.HandlerQueue, func()) {
	mux := queue.NewMux(logger)
	mux.Handle(catalog.JobCatalogImages, func(ctx context.Context, _ string, payload map[string]any) {
		jobID, filter := catalog.FilterFromPayload(payload)
		report, err := job.Run(ctx, filter)
		if err != nil {
			logger.Error("catalog image job failed", "job_id", jobID, "error", err)
			return
		}
		logger.Info("catalog image job finished", "job_id", jobID, "uploaded", report.Uploaded, "failed", report.Failed)
	})

	if cfg.Queue.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to immediate queue", "error", err)
		} else if client, err := valkey.NewClient(opt); err != nil {
			logger.Error("failed to create valkey client, falling back to immediate queue", "error", err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
				logger.Error("valkey ping failed, falling back to immediate queue", "error", err)
				client.Close()
			} else {
				q := queue.NewValkeyQueue(client, cfg.Queue.Valkey.Key, logger)
				q.SetHandler(mux.Dispatch)
				logger.Info("valkey job queue enabled", "addr", cfg.Queue.Valkey.Addr)
				return q, func() {
					q.Close()
					client.Close()
				}
			}
		}
	}
	q := queue.NewImmediateQueue(mux.Dispatch)
	return q, q.Wait
}

func provideCatalogService(cfg *config.Config, cat catalog.Catalog, jobs queue.HandlerQueue, logger *slog.Logger) *catalog.Service {
	return catalog.NewService(cfg.CatalogDomain(), cat, jobs, logger)
}

// provideAuthService returns nil when no secret is configured, which leaves
// the admin API open.
func provideAuthService(cfg *config.Config, logger *slog.Logger) (auth.Service, error) {
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Warn("auth.jwtSecret not set, admin api is unauthenticated")
		return nil, nil
	}
	return auth.NewService(auth.Config{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		TokenTTL: cfg.Auth.TokenTTL,
	}, logger)
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Queue.Valkey.Addr, "://") {
		return valkey.ParseURL(cfg.Queue.Valkey.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Queue.Valkey.Addr}}, nil
}

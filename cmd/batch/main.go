// Command batch renders preview images outside the HTTP server: either for
// catalog products (the image sync job) or for a single local artwork file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/emersonart/printshop/internal/domain/auth"
	"github.com/emersonart/printshop/internal/domain/catalog"
	"github.com/emersonart/printshop/internal/domain/render"
	"github.com/emersonart/printshop/internal/infra/catalogmem"
	"github.com/emersonart/printshop/internal/infra/chromium"
	"github.com/emersonart/printshop/internal/infra/config"
	"github.com/emersonart/printshop/internal/infra/imagecodec"
	"github.com/emersonart/printshop/internal/infra/raster"
	"github.com/emersonart/printshop/internal/infra/renderrepo"
	"github.com/emersonart/printshop/internal/infra/shopify"
	"github.com/emersonart/printshop/internal/infra/sink"
	"github.com/emersonart/printshop/pkg/logger"
)

const defaultLedgerPath = "data/render-runs.db"

type options struct {
	configPath string
	productIDs string
	limit      int
	noUpload   bool
	outDir     string
	ledger     string
	backend    string
	issueToken string

	image  string
	id     string
	title  string
	width  float64
	height float64
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "config file (overrides CONFIG_PATH)")
	flag.StringVar(&o.productIDs, "products", "", "comma separated product ids, empty for the whole catalog")
	flag.IntVar(&o.limit, "limit", 0, "maximum number of products")
	flag.BoolVar(&o.noUpload, "no-upload", false, "render only, do not attach images to products")
	flag.StringVar(&o.outDir, "out", "", "output directory for the fs storage driver")
	flag.StringVar(&o.ledger, "ledger", "", "sqlite run ledger path")
	flag.StringVar(&o.backend, "backend", "", "render backend: chromium or raster")
	flag.StringVar(&o.issueToken, "issue-token", "", "print an admin api token for this subject and exit")
	flag.StringVar(&o.image, "image", "", "render a single local artwork file instead of the catalog")
	flag.StringVar(&o.id, "id", "local", "artwork id for -image")
	flag.StringVar(&o.title, "title", "", "artwork title for -image")
	flag.Float64Var(&o.width, "width", 0, "artwork width in inches for -image")
	flag.Float64Var(&o.height, "height", 0, "artwork height in inches for -image")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()
	if opts.configPath != "" {
		os.Setenv("CONFIG_PATH", opts.configPath)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	applyFlags(cfg, opts)
	logger := logger.New().With("component", "batch")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var out any
	if opts.issueToken != "" {
		out, err = issueToken(ctx, cfg, opts.issueToken, logger)
	} else {
		out, err = run(ctx, cfg, opts, logger)
	}
	if err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("write report: %v", err)
	}
}

func applyFlags(cfg *config.Config, opts options) {
	if opts.backend != "" {
		cfg.Render.Backend = opts.backend
	}
	if opts.outDir != "" {
		cfg.Storage.Driver = "fs"
		cfg.Storage.Dir = opts.outDir
	}
	if opts.noUpload {
		cfg.Sync.Upload = false
	}
	if opts.ledger != "" {
		cfg.SQLite.Path = opts.ledger
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = defaultLedgerPath
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) (any, error) {
	rc, err := cfg.RenderDomain()
	if err != nil {
		return nil, err
	}
	backend, closeBackend := newBackend(cfg, logger)
	defer closeBackend()

	out, err := newSink(cfg, logger)
	if err != nil {
		return nil, err
	}
	ledger, err := renderrepo.OpenSQLite(cfg.SQLite.Path)
	if err != nil {
		return nil, err
	}
	defer ledger.Close()

	svc, err := render.NewService(rc, backend, out, imagecodec.NewFileWallLoader(), imagecodec.NewCompressor(cfg.Render.MaxImagePixels, logger), ledger, logger)
	if err != nil {
		return nil, err
	}

	if opts.image != "" {
		return renderFile(ctx, svc, opts)
	}

	cat, err := newCatalog(cfg, logger)
	if err != nil {
		return nil, err
	}
	job := catalog.NewSyncJob(cfg.SyncDomain(), cat, imagecodec.NewHTTPFetcher(cfg.Sync.FetchTimeout), svc, logger)
	filter := catalog.SyncFilter{Limit: opts.limit}
	for _, id := range strings.Split(opts.productIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			filter.ProductIDs = append(filter.ProductIDs, id)
		}
	}
	return job.Run(ctx, filter)
}

type fileReport struct {
	Variants []render.Variant `json:"variants"`
	Failures []string         `json:"failures,omitempty"`
}

func renderFile(ctx context.Context, svc *render.Service, opts options) (fileReport, error) {
	data, err := os.ReadFile(opts.image)
	if err != nil {
		return fileReport{}, fmt.Errorf("read artwork: %w", err)
	}
	_, _, mimeType, err := imagecodec.Probe(data)
	if err != nil {
		return fileReport{}, fmt.Errorf("probe artwork: %w", err)
	}
	result, err := svc.RenderVariants(ctx, render.Artwork{
		ID:           opts.id,
		Title:        opts.title,
		Image:        data,
		MimeType:     mimeType,
		WidthInches:  opts.width,
		HeightInches: opts.height,
	}, render.Options{})
	if err != nil {
		return fileReport{}, err
	}
	report := fileReport{Variants: result.Variants}
	for _, f := range result.Failures {
		report.Failures = append(report.Failures, f.Error())
	}
	if len(result.Variants) == 0 {
		return report, result.Err()
	}
	return report, nil
}

func issueToken(ctx context.Context, cfg *config.Config, subject string, logger *slog.Logger) (auth.Token, error) {
	svc, err := auth.NewService(auth.Config{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		TokenTTL: cfg.Auth.TokenTTL,
	}, logger)
	if err != nil {
		return auth.Token{}, err
	}
	return svc.Issue(ctx, subject)
}

func newBackend(cfg *config.Config, logger *slog.Logger) (render.Backend, func()) {
	if cfg.Render.Backend == "raster" {
		return raster.New(raster.Options{MaxPixels: cfg.Render.MaxImagePixels}, logger), func() {}
	}
	backend := chromium.New(chromium.Options{
		ExecPath:  cfg.Render.Chromium.ExecPath,
		NoSandbox: cfg.Render.Chromium.NoSandbox,
		Timeout:   cfg.Render.Chromium.Timeout,
		MaxPixels: cfg.Render.MaxImagePixels,
	}, logger)
	return backend, backend.Close
}

func newSink(cfg *config.Config, logger *slog.Logger) (render.Sink, error) {
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

func newCatalog(cfg *config.Config, logger *slog.Logger) (catalog.Catalog, error) {
	if strings.TrimSpace(cfg.Shopify.ShopDomain) == "" {
		logger.Warn("shopify shop domain not set, the in-memory catalog is empty")
		return catalogmem.New(), nil
	}
	return shopify.NewClient(shopify.Options{
		ShopDomain:  cfg.Shopify.ShopDomain,
		AccessToken: cfg.Shopify.AccessToken,
		APIVersion:  cfg.Shopify.APIVersion,
		Timeout:     cfg.Shopify.Timeout,
		PageSize:    cfg.Shopify.PageSize,
	}, logger)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emersonart/printshop/internal/domain/placement"
	"github.com/emersonart/printshop/internal/domain/render"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.Error(t, err)

	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "chromium", cfg.Render.Backend)
	require.True(t, cfg.HTTP.RateLimit.Enabled)

	rc, err := cfg.RenderDomain()
	require.NoError(t, err)
	require.Equal(t, render.DefaultConfig(), rc)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
render:
  backend: raster
  quality: 80
  anchor: top
  wallImagePath: static/background-images/blank-wall.jpg
  gradient:
    angle: 90
    stops:
      - color: "#000000"
        position: 0
      - color: "#ffffff"
        position: 100
storage:
  driver: memory
sync:
  delay: 2s
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("RENDER_QUALITY", "75")
	t.Setenv("HTTP_RATE_LIMIT_ENABLED", "false")
	t.Setenv("SHOPIFY_SHOP_DOMAIN", "emerson.myshopify.com")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "shpat_test")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.False(t, cfg.HTTP.RateLimit.Enabled)
	require.Equal(t, 75, cfg.Render.Quality)
	require.Equal(t, 2*time.Second, cfg.Sync.Delay)
	require.Equal(t, "emerson.myshopify.com", cfg.Shopify.ShopDomain)

	rc, err := cfg.RenderDomain()
	require.NoError(t, err)
	require.Equal(t, 75, rc.Quality)
	require.Equal(t, placement.AnchorTop, rc.Anchor.Kind)
	require.Equal(t, "linear-gradient(90deg, #000000 0%, #ffffff 100%)", rc.Gradient.CSS())
	require.Equal(t, 2*time.Second, cfg.SyncDomain().Delay)
}

func TestImageHostsFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("RENDER_ALLOWED_IMAGE_HOSTS", "cdn.shopify.com, .r2.dev")
	t.Setenv("RENDER_MAX_IMAGE_PIXELS", "1000000")
	cfg, err := Load()
	require.NoError(t, err)
	require.EqualValues(t, 1_000_000, cfg.Render.MaxImagePixels)
	rc, err := cfg.RenderDomain()
	require.NoError(t, err)
	require.Equal(t, []string{"cdn.shopify.com", ".r2.dev"}, rc.AllowedImageHosts)

	t.Setenv("RENDER_ALLOWED_IMAGE_HOSTS", "")
	cfg, err = Load()
	require.NoError(t, err)
	rc, err = cfg.RenderDomain()
	require.NoError(t, err)
	require.Empty(t, rc.AllowedImageHosts)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"backend":     func(c *Config) { c.Render.Backend = "gpu" },
		"wall height": func(c *Config) { c.Render.WallImagePath = "wall.jpg"; c.Render.WallHeightInches = 0 },
		"token":       func(c *Config) { c.Shopify.ShopDomain = "x.myshopify.com" },
		"driver":      func(c *Config) { c.Storage.Driver = "ftp" },
		"s3":          func(c *Config) { c.Storage.Driver = "s3" },
		"valkey":      func(c *Config) { c.Queue.Valkey.Enabled = true },
		"rate limit":  func(c *Config) { c.HTTP.RateLimit.Burst = 0 },
		"max pixels":  func(c *Config) { c.Render.MaxImagePixels = -1 },
	}
	for name, mutate := range cases {
		cfg := defaultConfig()
		mutate(cfg)
		require.Error(t, cfg.Validate(), name)
	}
}

func TestRenderDomainRejectsBadValues(t *testing.T) {
	cfg := defaultConfig()
	cfg.Render.Format = "gif"
	_, err := cfg.RenderDomain()
	require.Error(t, err)

	cfg = defaultConfig()
	cfg.Render.Anchor = "left"
	_, err = cfg.RenderDomain()
	require.Error(t, err)

	cfg = defaultConfig()
	cfg.Render.Quality = 0
	_, err = cfg.RenderDomain()
	require.Error(t, err)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Render   RenderConfig   `yaml:"render"`
	Shopify  ShopifyConfig  `yaml:"shopify"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Storage  StorageConfig  `yaml:"storage"`
	Queue    QueueConfig    `yaml:"queue"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Sync     SyncConfig     `yaml:"sync"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	MaxUploadBytes int64           `yaml:"maxUploadBytes"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// AuthConfig enables bearer token checks on the admin API when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwtSecret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"tokenTtl"`
}

// RenderConfig mirrors render.Config plus backend selection.
type RenderConfig struct {
	Backend           string         `yaml:"backend"`
	Format            string         `yaml:"format"`
	Quality           int            `yaml:"quality"`
	CanvasWidth       int            `yaml:"canvasWidth"`
	CanvasHeight      int            `yaml:"canvasHeight"`
	ShadowLayers      int            `yaml:"shadowLayers"`
	ShadowIntensity   float64        `yaml:"shadowIntensity"`
	Gradient          GradientConfig `yaml:"gradient"`
	WallImagePath     string         `yaml:"wallImagePath"`
	WallHeightInches  float64        `yaml:"wallHeightInches"`
	Anchor            string         `yaml:"anchor"`
	OffsetX           float64        `yaml:"offsetX"`
	OffsetY           float64        `yaml:"offsetY"`
	MaxFileBytes      int64          `yaml:"maxFileBytes"`
	QualityStep       int            `yaml:"qualityStep"`
	MinQuality        int            `yaml:"minQuality"`
	TransparentFormat string         `yaml:"transparentFormat"`
	AllowedImageHosts []string       `yaml:"allowedImageHosts"`
	MaxImagePixels    int64          `yaml:"maxImagePixels"`
	Chromium          ChromiumConfig `yaml:"chromium"`
}

// GradientConfig describes the backdrop of the gradient variant. Empty Stops keeps the default.
type GradientConfig struct {
	Angle float64      `yaml:"angle"`
	Stops []StopConfig `yaml:"stops"`
}

// StopConfig is one gradient color stop.
type StopConfig struct {
	Color    string  `yaml:"color"`
	Position float64 `yaml:"position"`
}

// ChromiumConfig controls the headless browser backend.
type ChromiumConfig struct {
	ExecPath  string        `yaml:"execPath"`
	NoSandbox bool          `yaml:"noSandbox"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ShopifyConfig holds the Admin API credentials. Empty ShopDomain selects the in-memory catalog.
type ShopifyConfig struct {
	ShopDomain  string        `yaml:"shopDomain"`
	AccessToken string        `yaml:"accessToken"`
	APIVersion  string        `yaml:"apiVersion"`
	Timeout     time.Duration `yaml:"timeout"`
	PageSize    int           `yaml:"pageSize"`
}

// CatalogConfig sets listing defaults.
type CatalogConfig struct {
	Vendor      string `yaml:"vendor"`
	ProductType string `yaml:"productType"`
	Status      string `yaml:"status"`
}

// StorageConfig selects where batch renders are written.
type StorageConfig struct {
	Driver string   `yaml:"driver"`
	Dir    string   `yaml:"dir"`
	S3     S3Config `yaml:"s3"`
}

// S3Config contains S3 compatible object storage settings.
type S3Config struct {
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"accessKey"`
	SecretKey     string `yaml:"secretKey"`
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	Prefix        string `yaml:"prefix"`
	PublicBaseURL string `yaml:"publicBaseUrl"`
}

// QueueConfig configures background job delivery.
type QueueConfig struct {
	Valkey ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the job queue.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Key     string `yaml:"key"`
}

// PostgresConfig contains DSN and pooling settings for the run ledger.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// SQLiteConfig points the batch CLI at a local run ledger.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// SyncConfig tunes the catalog image job.
type SyncConfig struct {
	MaxExistingImages int           `yaml:"maxExistingImages"`
	Delay             time.Duration `yaml:"delay"`
	Upload            bool          `yaml:"upload"`
	FetchTimeout      time.Duration `yaml:"fetchTimeout"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.HTTP.Address, "HTTP_ADDRESS")
	setBool(&cfg.HTTP.RateLimit.Enabled, "HTTP_RATE_LIMIT_ENABLED")
	setInt(&cfg.HTTP.RateLimit.RequestsPerMinute, "HTTP_RATE_LIMIT_RPM")
	setInt(&cfg.HTTP.RateLimit.Burst, "HTTP_RATE_LIMIT_BURST")
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}

	setString(&cfg.Auth.JWTSecret, "AUTH_JWT_SECRET")
	setString(&cfg.Auth.Issuer, "AUTH_ISSUER")

	setString(&cfg.Render.Backend, "RENDER_BACKEND")
	setString(&cfg.Render.Format, "RENDER_FORMAT")
	setInt(&cfg.Render.Quality, "RENDER_QUALITY")
	setInt(&cfg.Render.CanvasWidth, "RENDER_CANVAS_WIDTH")
	setInt(&cfg.Render.CanvasHeight, "RENDER_CANVAS_HEIGHT")
	setFloat(&cfg.Render.ShadowIntensity, "RENDER_SHADOW_INTENSITY")
	setString(&cfg.Render.WallImagePath, "RENDER_WALL_IMAGE_PATH")
	setFloat(&cfg.Render.WallHeightInches, "RENDER_WALL_HEIGHT_INCHES")
	setString(&cfg.Render.Anchor, "RENDER_ANCHOR")
	if v := os.Getenv("RENDER_MAX_FILE_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Render.MaxFileBytes = parsed
		}
	}
	if v, ok := os.LookupEnv("RENDER_ALLOWED_IMAGE_HOSTS"); ok {
		cfg.Render.AllowedImageHosts = append([]string{}, splitList(v)...)
	}
	if v := os.Getenv("RENDER_MAX_IMAGE_PIXELS"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Render.MaxImagePixels = parsed
		}
	}
	setString(&cfg.Render.Chromium.ExecPath, "CHROMIUM_EXEC_PATH")
	setBool(&cfg.Render.Chromium.NoSandbox, "CHROMIUM_NO_SANDBOX")

	setString(&cfg.Shopify.ShopDomain, "SHOPIFY_SHOP_DOMAIN")
	setString(&cfg.Shopify.AccessToken, "SHOPIFY_ACCESS_TOKEN")
	setString(&cfg.Shopify.APIVersion, "SHOPIFY_API_VERSION")

	setString(&cfg.Storage.Driver, "STORAGE_DRIVER")
	setString(&cfg.Storage.Dir, "STORAGE_DIR")
	setString(&cfg.Storage.S3.Endpoint, "S3_ENDPOINT")
	setString(&cfg.Storage.S3.AccessKey, "S3_ACCESS_KEY")
	setString(&cfg.Storage.S3.SecretKey, "S3_SECRET_KEY")
	setString(&cfg.Storage.S3.Bucket, "S3_BUCKET")
	setString(&cfg.Storage.S3.Region, "S3_REGION")
	setString(&cfg.Storage.S3.PublicBaseURL, "S3_PUBLIC_BASE_URL")

	setBool(&cfg.Queue.Valkey.Enabled, "VALKEY_ENABLED")
	setString(&cfg.Queue.Valkey.Addr, "VALKEY_ADDR")

	setString(&cfg.Postgres.DSN, "POSTGRES_DSN")
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	setString(&cfg.SQLite.Path, "SQLITE_PATH")

	setInt(&cfg.Sync.MaxExistingImages, "SYNC_MAX_EXISTING_IMAGES")
	setDuration(&cfg.Sync.Delay, "SYNC_DELAY")
	setBool(&cfg.Sync.Upload, "SYNC_UPLOAD")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   90 * time.Second,
			MaxUploadBytes: 32 << 20,
			AllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		Auth: AuthConfig{
			Issuer:   "printshop",
			TokenTTL: 12 * time.Hour,
		},
		Render: RenderConfig{
			Backend:           "chromium",
			Format:            "jpeg",
			Quality:           92,
			CanvasWidth:       2048,
			CanvasHeight:      2048,
			ShadowLayers:      7,
			ShadowIntensity:   0.4,
			WallHeightInches:  114,
			Anchor:            "center",
			QualityStep:       10,
			MinQuality:        10,
			TransparentFormat: "png",
			AllowedImageHosts: []string{"cdn.shopify.com"},
			MaxImagePixels:    64_000_000,
			Chromium: ChromiumConfig{
				Timeout: 60 * time.Second,
			},
		},
		Shopify: ShopifyConfig{
			APIVersion: "2024-07",
			Timeout:    30 * time.Second,
			PageSize:   250,
		},
		Catalog: CatalogConfig{
			Vendor:      "Emerson",
			ProductType: "Artwork",
			Status:      "ACTIVE",
		},
		Storage: StorageConfig{
			Driver: "fs",
			Dir:    "static/output-images",
		},
		Queue: QueueConfig{
			Valkey: ValkeyConfig{Key: "printshop:jobs"},
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Sync: SyncConfig{
			MaxExistingImages: 1,
			Delay:             500 * time.Millisecond,
			Upload:            true,
			FetchTimeout:      30 * time.Second,
		},
	}
}

// Validate ensures the configuration is safe to use. Render fields are
// checked again by render.Config.Validate once mapped.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return errors.New("http.maxUploadBytes must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	switch c.Render.Backend {
	case "chromium", "raster":
	default:
		return fmt.Errorf("render.backend %q must be chromium or raster", c.Render.Backend)
	}
	if c.Render.MaxImagePixels < 0 {
		return errors.New("render.maxImagePixels cannot be negative")
	}
	if c.Render.WallImagePath != "" && c.Render.WallHeightInches <= 0 {
		return errors.New("render.wallHeightInches must be positive when render.wallImagePath is set")
	}
	if c.Shopify.ShopDomain != "" && strings.TrimSpace(c.Shopify.AccessToken) == "" {
		return errors.New("shopify.accessToken cannot be empty when shopify.shopDomain is set")
	}
	if c.Shopify.PageSize <= 0 || c.Shopify.PageSize > 250 {
		return errors.New("shopify.pageSize must be between 1 and 250")
	}
	switch c.Storage.Driver {
	case "memory":
	case "fs":
		if strings.TrimSpace(c.Storage.Dir) == "" {
			return errors.New("storage.dir cannot be empty for the fs driver")
		}
	case "s3":
		if c.Storage.S3.Endpoint == "" || c.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.endpoint and storage.s3.bucket are required for the s3 driver")
		}
	default:
		return fmt.Errorf("storage.driver %q must be memory, fs or s3", c.Storage.Driver)
	}
	if c.Queue.Valkey.Enabled && strings.TrimSpace(c.Queue.Valkey.Addr) == "" {
		return errors.New("queue.valkey.addr cannot be empty when valkey is enabled")
	}
	if c.Sync.MaxExistingImages < 0 {
		return errors.New("sync.maxExistingImages cannot be negative")
	}
	if c.Sync.Delay < 0 {
		return errors.New("sync.delay cannot be negative")
	}
	return nil
}

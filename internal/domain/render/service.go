package render

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/emersonart/printshop/internal/domain/placement"
	"github.com/emersonart/printshop/internal/domain/shadow"
	apperrors "github.com/emersonart/printshop/pkg/errors"
	"github.com/emersonart/printshop/pkg/metrics"
)

// CompressStartQuality is the first quality tried when a variant is over budget.
const CompressStartQuality = 90

var ErrNoWallImage = errors.New("no wall image configured")

// Service renders the preview variants of an artwork.
type Service struct {
	cfg        Config
	backend    Backend
	sink       Sink
	walls      WallLoader
	compressor Compressor
	runs       RunRepository
	logger     *slog.Logger
}

// NewService validates cfg and wires the collaborators. walls, compressor and
// runs may be nil: the product variant then fails, compression is skipped and
// runs are not recorded.
func NewService(cfg Config, backend Backend, sink Sink, walls WallLoader, compressor Compressor, runs RunRepository, logger *slog.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidConfig, "render backend is required", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:        cfg,
		backend:    backend,
		sink:       sink,
		walls:      walls,
		compressor: compressor,
		runs:       runs,
		logger:     logger.With("component", "render.service"),
	}, nil
}

// Config returns the validated configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// WithSink returns a copy of the service that saves variants into sink.
func (s *Service) WithSink(sink Sink) *Service {
	clone := *s
	clone.sink = sink
	return &clone
}

// RenderVariants renders every requested variant concurrently. Invalid artwork
// aborts the whole call; any other failure is recorded against its variant
// and leaves the others untouched.
func (s *Service) RenderVariants(ctx context.Context, art Artwork, opts Options) (Result, error) {
	st, err := s.cfg.resolve(opts)
	if err != nil {
		return Result{}, err
	}
	if err := validateArtwork(art, s.cfg.AllowedImageHosts); err != nil {
		return Result{}, err
	}

	start := time.Now()
	run := newRun(art)
	s.recordStart(ctx, run)

	layers := shadow.ArtworkShadow(s.cfg.ShadowLayers, st.intensity)
	outcomes := make([]outcome, len(st.kinds))
	var wg sync.WaitGroup
	for i, kind := range st.kinds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.renderVariant(ctx, art, kind, st, slices.Clone(layers))
			outcomes[i] = outcome{variant: v, err: err}
		}()
	}
	wg.Wait()

	var (
		result Result
		usage  metrics.RenderUsage
	)
	for i, o := range outcomes {
		usage.Observe(len(o.variant.Data), o.err)
		if o.err != nil {
			s.logger.Warn("variant failed", "product_id", art.ID, "kind", st.kinds[i], "error", o.err)
			result.Failures = append(result.Failures, Failure{Kind: st.kinds[i], Err: o.err})
			continue
		}
		result.Variants = append(result.Variants, o.variant)
	}
	usage.Finish(start)
	s.logger.Info("render finished",
		"product_id", art.ID,
		"succeeded", usage.Succeeded,
		"failed", usage.Failed,
		"bytes", humanize.Bytes(uint64(usage.Bytes)),
		"duration_ms", usage.DurationMs,
	)

	run.finish(result)
	s.recordFinish(ctx, run)
	return result, nil
}

type outcome struct {
	variant Variant
	err     error
}

// validateArtwork checks the shared preconditions. Remote artwork is only
// accepted from hosts, since backends fetch it server side.
func validateArtwork(art Artwork, hosts []string) error {
	var errs []error
	code := apperrors.CodeInvalidInput
	if err := placement.ValidateArtwork(art.WidthInches, art.HeightInches); err != nil {
		errs = append(errs, err)
		code = apperrors.CodeInvalidConfig
	}
	switch {
	case len(art.Image) > 0:
	case strings.TrimSpace(art.ImageURL) == "":
		errs = append(errs, errors.New("artwork image is required"))
	default:
		if err := checkImageURL(art.ImageURL, hosts); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return apperrors.Wrap(code, "invalid artwork", errors.Join(errs...))
}

func (s *Service) renderVariant(ctx context.Context, art Artwork, kind Kind, st settings, layers []shadow.Layer) (Variant, error) {
	if err := ctx.Err(); err != nil {
		return Variant{}, apperrors.Wrap(apperrors.CodeRenderError, "render cancelled", err)
	}
	format := s.cfg.Format
	if kind == KindTransparent {
		format = s.cfg.TransparentFormat
	}
	req := placement.Request{
		ArtworkWidthInches:  art.WidthInches,
		ArtworkHeightInches: art.HeightInches,
		Anchor:              st.anchor,
		OffsetX:             st.offsetX,
		OffsetY:             st.offsetY,
		CanvasWidth:         s.cfg.CanvasWidth,
		CanvasHeight:        s.cfg.CanvasHeight,
	}
	doc := Document{
		Kind:         kind,
		CanvasWidth:  s.cfg.CanvasWidth,
		CanvasHeight: s.cfg.CanvasHeight,
		Artwork:      art.Image,
		ArtworkMime:  art.MimeType,
		ArtworkURL:   art.ImageURL,
		Shadow:       layers,
		Format:       format,
		Quality:      s.cfg.Quality,
	}

	switch kind {
	case KindGradient:
		doc.Background = Background{Kind: BackgroundGradient, Gradient: s.cfg.Gradient}
	case KindTransparent:
		doc.Background = Background{Kind: BackgroundTransparent}
		doc.Transparent = true
	case KindProduct:
		wall, err := s.loadWall(ctx)
		if err != nil {
			return Variant{}, err
		}
		doc.Background = Background{Kind: BackgroundImage, Image: wall.Data, ImageMime: wall.MimeType}
		req.Wall = &placement.WallReference{
			PixelWidth:           wall.Width,
			PixelHeight:          wall.Height,
			PhysicalHeightInches: s.cfg.WallHeightInches,
		}
	}

	geo, err := placement.Compute(req)
	if err != nil {
		return Variant{}, err
	}
	doc.Geometry = geo

	data, err := s.backend.Render(ctx, doc)
	if err != nil {
		return Variant{}, apperrors.Wrap(apperrors.CodeRenderError, "backend render failed", err)
	}
	if len(data) == 0 {
		return Variant{}, apperrors.Wrap(apperrors.CodeRenderError, "backend returned an empty image", nil)
	}
	data = s.compress(ctx, kind, format, data)

	variant := Variant{
		Kind:     kind,
		FileName: FileName(art.ID, art.Title, kind, s.cfg.CanvasWidth, s.cfg.CanvasHeight, format),
		MimeType: format.MimeType(),
		Data:     data,
		Width:    s.cfg.CanvasWidth,
		Height:   s.cfg.CanvasHeight,
	}
	if s.sink != nil {
		location, err := s.sink.Save(ctx, variant)
		if err != nil {
			return Variant{}, apperrors.Wrap(apperrors.CodeStorageError, "save variant failed", err)
		}
		variant.Location = location
	}
	return variant, nil
}

func (s *Service) loadWall(ctx context.Context) (WallAsset, error) {
	if s.cfg.WallImagePath == "" || s.walls == nil {
		return WallAsset{}, apperrors.Wrap(apperrors.CodeAssetError, "wall image unavailable", ErrNoWallImage)
	}
	wall, err := s.walls.LoadWall(ctx, s.cfg.WallImagePath)
	if err != nil {
		return WallAsset{}, apperrors.Wrap(apperrors.CodeAssetError, "load wall image "+s.cfg.WallImagePath, err)
	}
	if len(wall.Data) == 0 {
		return WallAsset{}, apperrors.Wrap(apperrors.CodeAssetError, "wall image is empty", nil)
	}
	return wall, nil
}

// compress never fails the variant: on error or when the floor is reached the
// best available bytes are kept.
func (s *Service) compress(ctx context.Context, kind Kind, format Format, data []byte) []byte {
	if s.cfg.MaxFileBytes <= 0 || int64(len(data)) <= s.cfg.MaxFileBytes || s.compressor == nil {
		return data
	}
	out, err := s.compressor.Compress(ctx, data, CompressRequest{
		Format:       format,
		MaxBytes:     s.cfg.MaxFileBytes,
		StartQuality: min(CompressStartQuality, s.cfg.Quality),
		Step:         s.cfg.QualityStep,
		MinQuality:   s.cfg.MinQuality,
	})
	if err != nil {
		s.logger.Warn("compression failed, keeping original", "kind", kind, "size", humanize.Bytes(uint64(len(data))), "error", err)
		return data
	}
	if !out.WithinBudget {
		s.logger.Warn("compression floor reached",
			"kind", kind,
			"size", humanize.Bytes(uint64(len(out.Data))),
			"budget", humanize.Bytes(uint64(s.cfg.MaxFileBytes)),
			"quality", out.Quality,
		)
	}
	if len(out.Data) == 0 || len(out.Data) > len(data) {
		return data
	}
	return out.Data
}

func (s *Service) recordStart(ctx context.Context, run Run) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.logger.Warn("record run start failed", "run_id", run.ID, "error", err)
	}
}

func (s *Service) recordFinish(ctx context.Context, run Run) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Complete(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn("record run finish failed", "run_id", run.ID, "error", err)
	}
}

// ListRuns returns the most recent runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s.runs == nil {
		return []Run{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageError, "list runs failed", err)
	}
	return runs, nil
}

// Package chromium renders preview documents in headless Chrome through the
// DevTools protocol and captures the canvas as a screenshot.
package chromium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/dustin/go-humanize"

	"github.com/emersonart/printshop/internal/domain/render"
	"github.com/emersonart/printshop/internal/infra/imagecodec"
)

const defaultTimeout = 60 * time.Second

// waitForImages resolves once the artwork has loaded (or failed) and two
// frames have been painted.
const waitForImages = `new Promise((resolve) => {
  const paint = () => requestAnimationFrame(() => requestAnimationFrame(() => resolve(true)));
  const img = document.getElementById("artwork");
  if (!img || img.complete) { paint(); return; }
  img.addEventListener("load", paint, { once: true });
  img.addEventListener("error", paint, { once: true });
})`

var ErrClosed = errors.New("chromium backend is closed")

// Options configures the browser process.
type Options struct {
	ExecPath  string
	NoSandbox bool
	Timeout   time.Duration
	// MaxPixels caps inline artwork size; zero uses imagecodec.DefaultMaxPixels.
	MaxPixels int64
}

// Backend implements render.Backend. One browser is shared; every render
// gets its own tab.
type Backend struct {
	opts   Options
	logger *slog.Logger

	allocCtx    context.Context
	cancelAlloc context.CancelFunc

	mu            sync.Mutex
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	closed        bool

	launch func() (context.Context, context.CancelFunc, error)
}

// New prepares the allocator. The browser starts on the first render.
func New(opts Options, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts)...)
	b := &Backend{
		opts:        opts,
		logger:      logger.With("component", "chromium.backend"),
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
	}
	b.launch = b.startBrowser
	return b
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	out := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	out = append(out,
		chromedp.DisableGPU,
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("force-color-profile", "srgb"),
	)
	if opts.ExecPath != "" {
		out = append(out, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.NoSandbox {
		out = append(out, chromedp.NoSandbox)
	}
	return out
}

func (b *Backend) browser() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	if b.browserCtx != nil {
		if b.browserCtx.Err() == nil {
			return b.browserCtx, nil
		}
		// the process crashed or was killed; drop it and start a new one
		b.logger.Warn("browser exited, relaunching", "error", context.Cause(b.browserCtx))
		b.cancelBrowser()
		b.browserCtx, b.cancelBrowser = nil, nil
	}
	ctx, cancel, err := b.launch()
	if err != nil {
		return nil, err
	}
	b.browserCtx, b.cancelBrowser = ctx, cancel
	b.logger.Info("browser started")
	return ctx, nil
}

func (b *Backend) startBrowser() (context.Context, context.CancelFunc, error) {
	ctx, cancel := chromedp.NewContext(b.allocCtx)
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("start browser: %w", err)
	}
	return ctx, cancel, nil
}

// Render loads doc into a fresh tab and screenshots the canvas.
func (b *Backend) Render(ctx context.Context, doc render.Document) ([]byte, error) {
	if doc.CanvasWidth <= 0 || doc.CanvasHeight <= 0 {
		return nil, fmt.Errorf("invalid canvas %dx%d", doc.CanvasWidth, doc.CanvasHeight)
	}
	if len(doc.Artwork) > 0 {
		if err := imagecodec.CheckPixels(doc.Artwork, b.opts.MaxPixels); err != nil {
			return nil, fmt.Errorf("artwork: %w", err)
		}
	}
	html, err := doc.HTML()
	if err != nil {
		return nil, fmt.Errorf("build document: %w", err)
	}
	parent, err := b.browser()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tabCtx, cancelTab := chromedp.NewContext(parent)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.opts.Timeout)
	defer cancelTimeout()

	var shot []byte
	err = chromedp.Run(tabCtx, captureActions(doc, html, &shot)...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("capture %s: %w", doc.Kind, err)
	}

	data, err := finish(doc, shot)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("chromium render complete",
		"kind", doc.Kind,
		"size", humanize.Bytes(uint64(len(data))),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return data, nil
}

func captureActions(doc render.Document, html string, shot *[]byte) []chromedp.Action {
	width, height := int64(doc.CanvasWidth), int64(doc.CanvasHeight)
	var ready bool
	actions := []chromedp.Action{
		emulation.SetDeviceMetricsOverride(width, height, 1, false),
	}
	if doc.Transparent {
		actions = append(actions, emulation.SetDefaultBackgroundColorOverride().WithColor(&cdp.RGBA{A: 0}))
	}
	actions = append(actions,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.Evaluate(waitForImages, &ready, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			format, quality := captureFormat(doc)
			capture := page.CaptureScreenshot().
				WithFormat(format).
				WithClip(&page.Viewport{X: 0, Y: 0, Width: float64(width), Height: float64(height), Scale: 1})
			if format == page.CaptureScreenshotFormatJpeg {
				capture = capture.WithQuality(quality)
			}
			data, err := capture.Do(ctx)
			if err != nil {
				return err
			}
			*shot = data
			return nil
		}),
	)
	return actions
}

// captureFormat picks the screenshot encoding. Transparent captures are
// always PNG so the alpha channel survives until the final encode.
func captureFormat(doc render.Document) (page.CaptureScreenshotFormat, int64) {
	if doc.Format == render.FormatJPEG && !doc.Transparent {
		return page.CaptureScreenshotFormatJpeg, int64(doc.Quality)
	}
	return page.CaptureScreenshotFormatPng, 0
}

func finish(doc render.Document, shot []byte) ([]byte, error) {
	if doc.Format != render.FormatJPEG || !doc.Transparent {
		return shot, nil
	}
	img, _, err := imagecodec.Decode(shot)
	if err != nil {
		return nil, fmt.Errorf("decode capture: %w", err)
	}
	return imagecodec.Encode(img, doc.Format, doc.Quality)
}

// Close shuts the browser down.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.cancelBrowser != nil {
		b.cancelBrowser()
	}
	b.cancelAlloc()
}

var _ render.Backend = (*Backend)(nil)

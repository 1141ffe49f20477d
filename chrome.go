package qrpdf

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod/lib/launcher"
)

// ChromeRenderer renders through a headless Chrome instance using the
// Chrome DevTools Protocol print-to-PDF command.
//
// The browser process is started by [NewChromeRenderer] and reused across
// renders. It is safe for concurrent use. Call [ChromeRenderer.Close] to
// release the browser.
type ChromeRenderer struct {
	cfg           chromeConfig
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewChromeRenderer starts a headless browser configured by opts.
func NewChromeRenderer(opts ...ChromeOption) (*ChromeRenderer, error) {
	cfg := defaultChromeConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.chromePath == "" && cfg.autoDownload {
		// Cached under ~/.cache/rod/browser, or %APPDATA%\rod\browser on Windows.
		path, err := launcher.NewBrowser().Get()
		if err != nil {
			return nil, newError("chrome", KindRender, fmt.Errorf("downloading browser: %w", err))
		}
		cfg.chromePath = path
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, newError("chrome", KindRender, fmt.Errorf("starting browser: %w", err))
	}

	return &ChromeRenderer{
		cfg:           cfg,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close releases the browser process. Close is idempotent.
func (c *ChromeRenderer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.browserCancel()
	c.allocCancel()
	return nil
}

// Render implements [Renderer].
func (c *ChromeRenderer) Render(ctx context.Context, png []byte, size int, pg PageConfig) ([]byte, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	pl := pg.place(float64(size))

	f, err := os.CreateTemp("", "qrpdf-*.html")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.WriteString(pageHTML(png, pl)); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing temp file: %w", err)
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	tabCtx, tabCancel := chromedp.NewContext(c.browserCtx)
	defer tabCancel()

	// Tie the tab to the caller's context.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	var buf []byte
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate("file://"+abs),
		chromedp.WaitReady("img", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPaperWidth(pl.PageWidth / pointsPerInch).
				WithPaperHeight(pl.PageHeight / pointsPerInch).
				WithMarginTop(0).
				WithMarginRight(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithScale(1).
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	return buf, nil
}

func (c *ChromeRenderer) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

// pageHTML lays the image out with CSS points so one CSS pt equals one
// PDF pt in the printed page.
func pageHTML(png []byte, pl placement) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
@page { size: %.2fpt %.2fpt; margin: 0; }
html, body { margin: 0; padding: 0; width: %.2fpt; height: %.2fpt; overflow: hidden; background: #fff; }
img { position: absolute; left: %.2fpt; top: %.2fpt; width: %.2fpt; height: %.2fpt; image-rendering: pixelated; }
</style>
</head>
<body><img alt="" src="data:image/png;base64,%s"></body>
</html>`,
		pl.PageWidth, pl.PageHeight,
		pl.PageWidth, pl.PageHeight,
		pl.X, pl.Y, pl.Size, pl.Size,
		base64.StdEncoding.EncodeToString(png))
}

// chromeConfig holds internal configuration for a ChromeRenderer.
type chromeConfig struct {
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	autoDownload bool
	headless     string
}

func defaultChromeConfig() chromeConfig {
	return chromeConfig{
		timeout:  30 * time.Second,
		headless: "new",
	}
}

// ChromeOption configures a [ChromeRenderer].
type ChromeOption func(*chromeConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default chromedp searches standard locations.
func WithChromePath(path string) ChromeOption {
	return func(c *chromeConfig) {
		c.chromePath = path
	}
}

// WithTimeout sets the maximum duration of a single render.
// Defaults to 30 seconds. A zero or negative value disables the timeout.
func WithTimeout(d time.Duration) ChromeOption {
	return func(c *chromeConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() ChromeOption {
	return func(c *chromeConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload fetches a compatible Chromium build when no executable
// path is configured.
func WithAutoDownload() ChromeOption {
	return func(c *chromeConfig) {
		c.autoDownload = true
	}
}

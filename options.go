package qrpdf

import (
	"log/slog"
	"os"
)

// config holds internal configuration for a Generator.
type config struct {
	encoder    Encoder
	level      ECLevel
	margin     int
	resolution int
	renderer   Renderer
	page       PageConfig
	verify     bool
	fileMode   os.FileMode
	logger     *slog.Logger
}

func defaultConfig() config {
	return config{
		encoder:    ZXingEncoder{},
		level:      ECLevelL,
		margin:     1,
		resolution: DefaultResolution,
		renderer:   GoPDFRenderer{},
		page:       DefaultPageConfig(),
		fileMode:   0o644,
		logger:     slog.Default(),
	}
}

func (c *config) validate() error {
	if c.encoder == nil {
		return invalidArgf("config", "encoder is nil")
	}
	if c.renderer == nil {
		return invalidArgf("config", "renderer is nil")
	}
	if !c.level.valid() {
		return invalidArgf("config", "invalid error correction level %v", c.level)
	}
	if c.margin < 0 {
		return invalidArgf("config", "margin must not be negative, got %d", c.margin)
	}
	return c.page.validate()
}

// Option configures a [Generator].
type Option func(*config)

// WithEncoder sets the QR encoder. Defaults to [ZXingEncoder].
func WithEncoder(e Encoder) Option {
	return func(c *config) {
		c.encoder = e
	}
}

// WithErrorCorrection sets the error-correction level. Defaults to
// [ECLevelL].
func WithErrorCorrection(l ECLevel) Option {
	return func(c *config) {
		c.level = l
	}
}

// WithMargin sets the quiet zone around the symbol, in modules.
// Defaults to 1.
func WithMargin(modules int) Option {
	return func(c *config) {
		c.margin = modules
	}
}

// WithResolution sets the raster resolution hint in pixels. The raster is
// scaled by the largest whole number of pixels per module that fits the
// hint. Zero or a negative value renders one pixel per module.
// Defaults to [DefaultResolution].
func WithResolution(px int) Option {
	return func(c *config) {
		c.resolution = px
	}
}

// WithRenderer sets the PDF renderer. Defaults to [GoPDFRenderer].
// A renderer implementing io.Closer is closed by [Generator.Close].
func WithRenderer(r Renderer) Option {
	return func(c *config) {
		c.renderer = r
	}
}

// WithPageConfig sets the page the code is placed on.
func WithPageConfig(p PageConfig) Option {
	return func(c *config) {
		c.page = p.resolved()
	}
}

// WithVerify decodes every raster before rendering and fails with
// [ErrVerify] unless it yields the input content.
func WithVerify() Option {
	return func(c *config) {
		c.verify = true
	}
}

// WithFileMode sets the permissions of written files. Defaults to 0644.
func WithFileMode(m os.FileMode) Option {
	return func(c *config) {
		c.fileMode = m
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

package qrpdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
)

// Generator turns text payloads into single-page PDF files holding a QR
// code. It is safe for concurrent use.
type Generator struct {
	cfg    config
	closed atomic.Bool
}

// New creates a Generator with the given options.
func New(opts ...Option) (*Generator, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg}, nil
}

// Close releases the renderer if it holds resources. Close is idempotent.
func (g *Generator) Close() error {
	if !g.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c, ok := g.cfg.renderer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Render encodes content and lays it out as a size×size point image on a
// PDF page, without touching the filesystem.
func (g *Generator) Render(ctx context.Context, content string, size int) (*Result, error) {
	if err := g.checkArgs("render", content, size); err != nil {
		return nil, err
	}
	return g.render(ctx, content, size)
}

// Generate renders content and writes it to outputDir as
// [FileName](content). The directory must already exist. On failure no
// file is created or replaced.
func (g *Generator) Generate(ctx context.Context, content string, size int, outputDir string) (*Result, error) {
	if err := g.checkArgs("generate", content, size); err != nil {
		return nil, err
	}
	if err := checkDir(outputDir); err != nil {
		return nil, err
	}

	res, err := g.render(ctx, content, size)
	if err != nil {
		return nil, err
	}

	name := FileName(content)
	path, err := writeAtomic(outputDir, name, res.data, g.cfg.fileMode)
	if err != nil {
		return nil, newError("write", KindIO, err)
	}
	res.path = path
	g.cfg.logger.DebugContext(ctx, "qr pdf written", "path", path, "bytes", len(res.data))
	return res, nil
}

// GenerateOrLog calls [Generator.Generate] and reports a failure as a
// single error-level log line instead of returning it. Callers cannot
// tell success from failure; prefer Generate.
func (g *Generator) GenerateOrLog(ctx context.Context, content string, size int, outputDir string) {
	if _, err := g.Generate(ctx, content, size, outputDir); err != nil {
		g.cfg.logger.ErrorContext(ctx, "qr creation failed", "error", err, "kind", KindOf(err).String())
	}
}

func (g *Generator) checkArgs(op, content string, size int) error {
	if g.closed.Load() {
		return newError(op, KindClosed, ErrClosed)
	}
	if size <= 0 {
		return invalidArgf(op, "size must be positive, got %d", size)
	}
	if content == "" {
		return invalidArgf(op, "content is empty")
	}
	return nil
}

func (g *Generator) render(ctx context.Context, content string, size int) (*Result, error) {
	log := g.cfg.logger.With("size", size)

	m, err := g.cfg.encoder.Encode(content, g.cfg.level, g.cfg.margin)
	if err != nil {
		return nil, newError("encode", KindEncode, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, newError("render", KindRender, err)
	}

	img := Rasterize(m, g.cfg.resolution)
	log.DebugContext(ctx, "qr rasterized", "modules", m.Size(), "dark_modules", m.Dark(), "raster_px", img.Bounds().Dx())

	if g.cfg.verify {
		got, err := Decode(img)
		if err != nil {
			return nil, newError("verify", KindVerify, err)
		}
		if got != content {
			return nil, newError("verify", KindVerify, fmt.Errorf("decoded %q, want %q", got, content))
		}
	}

	png, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}

	pdf, err := g.cfg.renderer.Render(ctx, png, size, g.cfg.page)
	if err != nil {
		if errors.Is(err, ErrClosed) {
			return nil, newError("render", KindClosed, err)
		}
		return nil, newError("render", KindRender, err)
	}
	log.DebugContext(ctx, "qr pdf rendered", "bytes", len(pdf), "layout", g.cfg.page.place(float64(size)).String())

	return &Result{
		data:        pdf,
		modules:     m.Size(),
		rasterWidth: img.Bounds().Dx(),
		size:        size,
	}, nil
}

func checkDir(dir string) error {
	if dir == "" {
		return invalidArgf("generate", "output directory is empty")
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return newError("generate", KindIO, err)
	}
	if !fi.IsDir() {
		return newError("generate", KindIO, fmt.Errorf("%s is not a directory", dir))
	}
	return nil
}

// writeAtomic writes data to dir/name through a temporary file in dir so
// readers never observe a partial file. Concurrent writers of the same
// name race; the last rename wins.
func writeAtomic(dir, name string, data []byte, perm os.FileMode) (path string, err error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("file name %q escapes %s", name, dir)
	}
	path = filepath.Join(dir, name)

	f, err := os.CreateTemp(dir, ".qrpdf-*.tmp")
	if err != nil {
		return "", err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		f.Close()
		return "", err
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", err
	}
	if err = os.Chmod(tmp, perm); err != nil {
		return "", err
	}
	if err = os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}

// --- Package-level convenience functions ---

// Generate writes content as a QR code PDF into outputDir using a
// temporary [Generator]. For repeated use, create a Generator with [New].
func Generate(ctx context.Context, content string, size int, outputDir string, opts ...Option) (*Result, error) {
	g, err := New(opts...)
	if err != nil {
		return nil, err
	}
	defer g.Close()
	return g.Generate(ctx, content, size, outputDir)
}

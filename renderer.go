package qrpdf

import (
	"bytes"
	"context"
	"time"

	"github.com/signintech/gopdf"
)

// A Renderer places a PNG image on a single PDF page.
//
// The image must be drawn size×size points at the top-left corner of the
// page's printable area, as computed from page.
type Renderer interface {
	Render(ctx context.Context, png []byte, size int, page PageConfig) ([]byte, error)
}

// Renderer names accepted by configuration.
const (
	RendererGoPDF  = "gopdf"
	RendererChrome = "chrome"
)

const producer = "go-qr-pdf"

// GoPDFRenderer renders with signintech/gopdf. It needs no external
// programs and is the default renderer.
type GoPDFRenderer struct {
	// Now returns the document creation time. Defaults to time.Now.
	Now func() time.Time
}

// Render implements [Renderer].
func (r GoPDFRenderer) Render(ctx context.Context, png []byte, size int, page PageConfig) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	pl := page.place(float64(size))

	doc := gopdf.GoPdf{}
	doc.Start(gopdf.Config{
		Unit:     gopdf.UnitPT,
		PageSize: gopdf.Rect{W: pl.PageWidth, H: pl.PageHeight},
	})
	doc.SetInfo(gopdf.PdfInfo{
		Creator:      producer,
		Producer:     producer,
		CreationDate: now(),
	})
	doc.AddPage()

	holder, err := gopdf.ImageHolderByBytes(png)
	if err != nil {
		return nil, err
	}
	if err := doc.ImageByHolder(holder, pl.X, pl.Y, &gopdf.Rect{W: pl.Size, H: pl.Size}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

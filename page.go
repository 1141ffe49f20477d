package qrpdf

import (
	"fmt"
	"strings"
)

// PageSize represents paper dimensions in centimeters.
type PageSize struct {
	Width  float64 // Width in centimeters.
	Height float64 // Height in centimeters.
}

// Standard paper sizes.
var (
	A3      = PageSize{Width: 29.7, Height: 42.0}
	A4      = PageSize{Width: 21.0, Height: 29.7}
	A5      = PageSize{Width: 14.8, Height: 21.0}
	Letter  = PageSize{Width: 21.59, Height: 27.94}
	Legal   = PageSize{Width: 21.59, Height: 35.56}
	Tabloid = PageSize{Width: 27.94, Height: 43.18}
)

var pageSizesByName = map[string]PageSize{
	"a3":      A3,
	"a4":      A4,
	"a5":      A5,
	"letter":  Letter,
	"legal":   Legal,
	"tabloid": Tabloid,
}

// ParsePageSize returns the standard paper size with the given
// case-insensitive name, e.g. "A4" or "letter".
func ParsePageSize(name string) (PageSize, error) {
	s, ok := pageSizesByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return PageSize{}, invalidArgf("page", "unknown page size %q", name)
	}
	return s, nil
}

// Orientation represents the page orientation.
type Orientation int

const (
	// Portrait is the default vertical orientation.
	Portrait Orientation = iota
	// Landscape rotates the page to horizontal orientation.
	Landscape
)

// ParseOrientation accepts "portrait" or "landscape".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "portrait":
		return Portrait, nil
	case "landscape":
		return Landscape, nil
	}
	return Portrait, invalidArgf("page", "unknown orientation %q", s)
}

func (o Orientation) String() string {
	if o == Landscape {
		return "landscape"
	}
	return "portrait"
}

// Margin represents page margins in centimeters.
//
// A zero Margin literal means "use the default". Margins built with
// [UniformMargin] or [Margins] are always taken as given, so
// UniformMargin(0) places the code flush with the page corner.
type Margin struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64

	explicit bool
}

// UniformMargin returns a Margin with the same value on all sides.
func UniformMargin(cm float64) Margin {
	return Margins(cm, cm, cm, cm)
}

// Margins returns a Margin with the given sides, in centimeters.
func Margins(top, right, bottom, left float64) Margin {
	return Margin{Top: top, Right: right, Bottom: bottom, Left: left, explicit: true}
}

// PageConfig controls the page the QR code is placed on.
//
// Zero-value fields use the defaults: A4 paper,
// portrait orientation and 1.27 cm (36 pt) margins. The image is placed at
// the top-left corner of the printable area.
type PageConfig struct {
	// Size specifies the paper size. Defaults to A4.
	Size PageSize

	// Orientation specifies portrait or landscape. Defaults to Portrait.
	Orientation Orientation

	// Margin specifies page margins in centimeters. Defaults to 1.27 cm on
	// all sides when left as a zero literal; use UniformMargin(0) for none.
	Margin Margin
}

// DefaultPageConfig returns a PageConfig with the default values.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Size:        A4,
		Orientation: Portrait,
		Margin:      UniformMargin(1.27),
	}
}

// resolved returns a PageConfig with all zero values replaced by defaults.
func (p *PageConfig) resolved() PageConfig {
	d := DefaultPageConfig()
	if p == nil {
		return d
	}
	r := *p
	if r.Size == (PageSize{}) {
		r.Size = d.Size
	}
	if r.Margin == (Margin{}) {
		r.Margin = d.Margin
	}
	return r
}

func (p *PageConfig) validate() error {
	r := p.resolved()
	if r.Size.Width <= 0 || r.Size.Height <= 0 {
		return invalidArgf("page", "page size must be positive, got %vx%v cm", r.Size.Width, r.Size.Height)
	}
	m := r.Margin
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return invalidArgf("page", "margins must not be negative: top %v right %v bottom %v left %v cm", m.Top, m.Right, m.Bottom, m.Left)
	}
	return nil
}

const pointsPerInch = 72.0

// cmToInches converts centimeters to inches.
func cmToInches(cm float64) float64 {
	return cm / 2.54
}

// cmToPoints converts centimeters to PDF points.
func cmToPoints(cm float64) float64 {
	return cmToInches(cm) * pointsPerInch
}

// paperPoints returns the paper width and height in points, accounting
// for orientation.
func (p *PageConfig) paperPoints() (width, height float64) {
	r := p.resolved()
	w := cmToPoints(r.Size.Width)
	h := cmToPoints(r.Size.Height)
	if r.Orientation == Landscape {
		return h, w
	}
	return w, h
}

// marginPoints returns margins converted to points.
func (p *PageConfig) marginPoints() (top, right, bottom, left float64) {
	r := p.resolved()
	return cmToPoints(r.Margin.Top),
		cmToPoints(r.Margin.Right),
		cmToPoints(r.Margin.Bottom),
		cmToPoints(r.Margin.Left)
}

// placement describes where an image of a given size lands on the page.
type placement struct {
	PageWidth, PageHeight float64 // points
	X, Y                  float64 // top-left corner of the image, from the page's top-left
	Size                  float64
}

// place positions a square image of size points at the top-left of the
// printable area. The page grows in any dimension the image would not fit.
func (p *PageConfig) place(size float64) placement {
	w, h := p.paperPoints()
	top, right, bottom, left := p.marginPoints()
	if need := left + size + right; need > w {
		w = need
	}
	if need := top + size + bottom; need > h {
		h = need
	}
	return placement{PageWidth: w, PageHeight: h, X: left, Y: top, Size: size}
}

func (pl placement) String() string {
	return fmt.Sprintf("%.2fx%.2fpt at (%.2f,%.2f) on %.2fx%.2fpt", pl.Size, pl.Size, pl.X, pl.Y, pl.PageWidth, pl.PageHeight)
}

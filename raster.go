package qrpdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
)

// DefaultResolution is the raster width, in pixels, the rasterizer aims
// for when no resolution is configured.
const DefaultResolution = 250

// ModuleScale returns the number of pixels per module used to rasterize a
// matrix of the given size for a resolution hint: the largest integer
// factor that keeps the raster within resolution, and at least 1.
func ModuleScale(modules, resolution int) int {
	if modules <= 0 || resolution <= 0 {
		return 1
	}
	if s := resolution / modules; s > 1 {
		return s
	}
	return 1
}

// Rasterize paints m onto a white grayscale image, dark modules in black.
// The raster is m.Size()*ModuleScale(m.Size(), resolution) pixels square.
func Rasterize(m *Matrix, resolution int) *image.Gray {
	n := m.Size()
	native := image.NewGray(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			c := color.Gray{Y: 0xff}
			if m.At(x, y) {
				c = color.Gray{Y: 0x00}
			}
			native.SetGray(x, y, c)
		}
	}

	scale := ModuleScale(n, resolution)
	if scale == 1 {
		return native
	}
	out := image.NewGray(image.Rect(0, 0, n*scale, n*scale))
	draw.NearestNeighbor.Scale(out, out.Bounds(), native, native.Bounds(), draw.Src, nil)
	return out
}

// EncodePNG serializes img losslessly.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, newError("png", KindImage, err)
	}
	return buf.Bytes(), nil
}

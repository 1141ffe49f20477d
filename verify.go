package qrpdf

import (
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/porticus-lab/go-qr-pdf/internal/pdf"
)

// Decode reads the QR code in img and returns its text. Clean rasters are
// read in pure-barcode mode first; anything else goes through the full
// detector.
func Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", newError("decode", KindVerify, fmt.Errorf("creating bitmap: %w", err))
	}

	reader := qrcode.NewQRCodeReader()
	pure := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_PURE_BARCODE: true,
		gozxing.DecodeHintType_TRY_HARDER:   true,
	}
	result, err := reader.Decode(bmp, pure)
	if err != nil {
		result, err = reader.Decode(bmp, map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		})
	}
	if err != nil {
		return "", newError("decode", KindVerify, fmt.Errorf("no QR code found in image: %w", err))
	}
	return result.GetText(), nil
}

// Report describes the layout of a PDF as seen by [Inspect].
type Report struct {
	Version string       `json:"version"`
	Pages   []PageReport `json:"pages"`
}

// PageReport describes one page. Sizes are in points.
type PageReport struct {
	Number   int           `json:"number"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Rotation int           `json:"rotation,omitempty"`
	Images   []ImageReport `json:"images"`
}

// ImageReport describes one placed image. X, Y, Width and Height are in
// points; PixelWidth and PixelHeight are the size of the embedded raster.
type ImageReport struct {
	Name             string  `json:"name"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	PixelWidth       int     `json:"pixel_width"`
	PixelHeight      int     `json:"pixel_height"`
	ColorSpace       string  `json:"color_space"`
	BitsPerComponent int     `json:"bits_per_component"`
}

// Inspect parses data as a PDF and lists its pages and the images drawn
// on them.
func Inspect(data []byte) (*Report, error) {
	doc, pages, err := loadPDF("inspect", data)
	if err != nil {
		return nil, err
	}

	rep := &Report{Version: doc.Version()}
	for i, page := range pages {
		info := doc.GetPageInfo(page)
		pr := PageReport{
			Number:   i + 1,
			Width:    info.Width,
			Height:   info.Height,
			Rotation: info.Rotation,
			Images:   []ImageReport{},
		}
		imgs, err := doc.Images(page)
		if err != nil {
			return nil, newError("inspect", KindInvalidArgument, fmt.Errorf("page %d: %w", i+1, err))
		}
		for _, im := range imgs {
			pr.Images = append(pr.Images, ImageReport{
				Name:             im.Name,
				X:                im.X,
				Y:                im.Y,
				Width:            im.Width,
				Height:           im.Height,
				PixelWidth:       im.PixelWidth,
				PixelHeight:      im.PixelHeight,
				ColorSpace:       im.ColorSpace,
				BitsPerComponent: im.BitsPerComponent,
			})
		}
		rep.Pages = append(rep.Pages, pr)
	}
	return rep, nil
}

// DecodePDF decodes the QR code held by the first image on the first page
// of a PDF.
func DecodePDF(data []byte) (string, error) {
	doc, pages, err := loadPDF("decode", data)
	if err != nil {
		return "", err
	}
	if len(pages) == 0 {
		return "", newError("decode", KindVerify, errors.New("document has no pages"))
	}
	imgs, err := doc.Images(pages[0])
	if err != nil {
		return "", newError("decode", KindVerify, err)
	}
	if len(imgs) == 0 {
		return "", newError("decode", KindVerify, errors.New("first page has no images"))
	}
	img, err := doc.DecodeImage(imgs[0])
	if err != nil {
		return "", newError("decode", KindImage, err)
	}
	return Decode(img)
}

func loadPDF(op string, data []byte) (*pdf.Document, []pdf.Dict, error) {
	doc, err := pdf.Load(data)
	if err != nil {
		return nil, nil, newError(op, KindInvalidArgument, err)
	}
	pages, err := doc.Pages()
	if err != nil {
		return nil, nil, newError(op, KindInvalidArgument, err)
	}
	return doc, pages, nil
}

package qrpdf

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/boombuler/barcode/qr"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode/decoder"
	skip2 "github.com/skip2/go-qrcode"
)

// An Encoder turns text into a QR module matrix. Implementations must
// return a matrix at module resolution whose border is margin light modules
// wide, and must fail when content does not fit the chosen level.
type Encoder interface {
	Encode(content string, level ECLevel, margin int) (*Matrix, error)
}

// Encoder names accepted by [EncoderByName].
const (
	EncoderZXing   = "zxing"
	EncoderBarcode = "barcode"
	EncoderSkip2   = "skip2"
)

// EncoderByName returns the encoder registered under name.
func EncoderByName(name string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncoderZXing:
		return ZXingEncoder{}, nil
	case EncoderBarcode:
		return BarcodeEncoder{}, nil
	case EncoderSkip2:
		return Skip2Encoder{}, nil
	}
	return nil, invalidArgf("encode", "unknown encoder %q", name)
}

// ZXingEncoder encodes with gozxing using UTF-8 as character set.
type ZXingEncoder struct{}

var zxingLevels = map[ECLevel]decoder.ErrorCorrectionLevel{
	ECLevelL: decoder.ErrorCorrectionLevel_L,
	ECLevelM: decoder.ErrorCorrectionLevel_M,
	ECLevelQ: decoder.ErrorCorrectionLevel_Q,
	ECLevelH: decoder.ErrorCorrectionLevel_H,
}

func (ZXingEncoder) Encode(content string, level ECLevel, margin int) (*Matrix, error) {
	hints := map[gozxing.EncodeHintType]interface{}{
		gozxing.EncodeHintType_ERROR_CORRECTION: zxingLevels[level],
		gozxing.EncodeHintType_CHARACTER_SET:    "UTF-8",
		gozxing.EncodeHintType_MARGIN:           margin,
	}
	// A 0x0 request keeps the writer from scaling: one cell per module.
	bm, err := qrcode.NewQRCodeWriter().Encode(content, gozxing.BarcodeFormat_QR_CODE, 0, 0, hints)
	if err != nil {
		return nil, fmt.Errorf("zxing: %w", err)
	}
	w, h := bm.GetWidth(), bm.GetHeight()
	if w != h {
		return nil, fmt.Errorf("zxing: non-square matrix %dx%d", w, h)
	}
	m := NewMatrix(w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if bm.Get(x, y) {
				m.Set(x, y, true)
			}
		}
	}
	return m, nil
}

// BarcodeEncoder encodes with boombuler/barcode, picking the densest mode
// for the content and falling back to UTF-8 bytes.
type BarcodeEncoder struct{}

var barcodeLevels = map[ECLevel]qr.ErrorCorrectionLevel{
	ECLevelL: qr.L,
	ECLevelM: qr.M,
	ECLevelQ: qr.Q,
	ECLevelH: qr.H,
}

func (BarcodeEncoder) Encode(content string, level ECLevel, margin int) (*Matrix, error) {
	code, err := qr.Encode(content, barcodeLevels[level], qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("barcode: %w", err)
	}
	b := code.Bounds()
	if b.Dx() != b.Dy() {
		return nil, fmt.Errorf("barcode: non-square symbol %dx%d", b.Dx(), b.Dy())
	}
	return withMargin(b.Dx(), margin, func(x, y int) bool {
		return isDark(code.At(b.Min.X+x, b.Min.Y+y))
	}), nil
}

// Skip2Encoder encodes with skip2/go-qrcode.
type Skip2Encoder struct{}

var skip2Levels = map[ECLevel]skip2.RecoveryLevel{
	ECLevelL: skip2.Low,
	ECLevelM: skip2.Medium,
	ECLevelQ: skip2.High,
	ECLevelH: skip2.Highest,
}

func (Skip2Encoder) Encode(content string, level ECLevel, margin int) (*Matrix, error) {
	q, err := skip2.New(content, skip2Levels[level])
	if err != nil {
		return nil, fmt.Errorf("skip2: %w", err)
	}
	q.DisableBorder = true
	bitmap := q.Bitmap()
	n := len(bitmap)
	return withMargin(n, margin, func(x, y int) bool {
		return x < len(bitmap[y]) && bitmap[y][x]
	}), nil
}

func isDark(c color.Color) bool {
	g := color.GrayModel.Convert(c).(color.Gray)
	return g.Y < 0x80
}

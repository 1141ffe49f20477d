package qrpdf

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleScale(t *testing.T) {
	tests := []struct {
		modules, resolution, want int
	}{
		{23, 250, 10},
		{25, 250, 10},
		{29, 250, 8},
		{23, 0, 1},
		{23, -5, 1},
		{300, 250, 1},
		{0, 250, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ModuleScale(tt.modules, tt.resolution), "%d modules at %d px", tt.modules, tt.resolution)
	}
}

func TestRasterize(t *testing.T) {
	m := NewMatrix(3)
	m.Set(0, 0, true)
	m.Set(2, 1, true)

	img := Rasterize(m, 30)
	require.Equal(t, 30, img.Bounds().Dx())
	require.Equal(t, 30, img.Bounds().Dy())

	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			want := uint8(0xff)
			if m.At(x/10, y/10) {
				want = 0
			}
			if img.GrayAt(x, y).Y != want {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, img.GrayAt(x, y).Y, want)
			}
		}
	}
}

func TestRasterizeNativeResolution(t *testing.T) {
	m, err := ZXingEncoder{}.Encode("HELLO", ECLevelL, 1)
	require.NoError(t, err)
	img := Rasterize(m, 0)
	assert.Equal(t, m.Size(), img.Bounds().Dx())
}

func TestEncodePNG(t *testing.T) {
	m, err := ZXingEncoder{}.Encode("HELLO", ECLevelL, 1)
	require.NoError(t, err)
	img := Rasterize(m, DefaultResolution)

	data, err := EncodePNG(img)
	require.NoError(t, err)

	back, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, img.Bounds(), back.Bounds())
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			r, _, _, _ := back.At(x, y).RGBA()
			if uint8(r>>8) != img.GrayAt(x, y).Y {
				t.Fatalf("pixel (%d,%d) changed in PNG round trip", x, y)
			}
		}
	}
}

package qrpdf

import (
	"fmt"
	"strings"
)

// ECLevel is a QR error-correction level.
type ECLevel int

const (
	// ECLevelL recovers about 7% of the symbol. It is the default.
	ECLevelL ECLevel = iota
	// ECLevelM recovers about 15%.
	ECLevelM
	// ECLevelQ recovers about 25%.
	ECLevelQ
	// ECLevelH recovers about 30%.
	ECLevelH
)

func (l ECLevel) String() string {
	switch l {
	case ECLevelL:
		return "L"
	case ECLevelM:
		return "M"
	case ECLevelQ:
		return "Q"
	case ECLevelH:
		return "H"
	}
	return fmt.Sprintf("ECLevel(%d)", int(l))
}

func (l ECLevel) valid() bool { return l >= ECLevelL && l <= ECLevelH }

// ParseECLevel parses "L", "M", "Q" or "H" (case-insensitive).
func ParseECLevel(s string) (ECLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L", "":
		return ECLevelL, nil
	case "M":
		return ECLevelM, nil
	case "Q":
		return ECLevelQ, nil
	case "H":
		return ECLevelH, nil
	}
	return ECLevelL, invalidArgf("encode", "unknown error correction level %q", s)
}

// Matrix is a square grid of QR modules including the quiet-zone margin.
// A true cell is a dark module.
type Matrix struct {
	size int
	bits []bool
}

// NewMatrix returns an all-light matrix of size×size modules.
func NewMatrix(size int) *Matrix {
	if size < 0 {
		size = 0
	}
	return &Matrix{size: size, bits: make([]bool, size*size)}
}

// Size returns the number of modules along one side.
func (m *Matrix) Size() int { return m.size }

// At reports whether the module at (x, y) is dark. Coordinates outside the
// matrix are light.
func (m *Matrix) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.size || y >= m.size {
		return false
	}
	return m.bits[y*m.size+x]
}

// Set marks the module at (x, y).
func (m *Matrix) Set(x, y int, dark bool) {
	if x < 0 || y < 0 || x >= m.size || y >= m.size {
		return
	}
	m.bits[y*m.size+x] = dark
}

// Dark returns the number of dark modules.
func (m *Matrix) Dark() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// withMargin copies a margin-less symbol of n×n modules into a new matrix
// surrounded by margin light modules on every side.
func withMargin(n, margin int, dark func(x, y int) bool) *Matrix {
	m := NewMatrix(n + 2*margin)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if dark(x, y) {
				m.Set(x+margin, y+margin, true)
			}
		}
	}
	return m
}

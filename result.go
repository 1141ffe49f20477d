package qrpdf

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
)

// Result holds a generated PDF and facts about how it was produced.
//
// A Result is returned by every generation method. It is safe to call
// its methods multiple times; the underlying data is never modified.
type Result struct {
	data        []byte
	path        string
	modules     int
	rasterWidth int
	size        int
}

// Bytes returns the raw PDF content.
func (r *Result) Bytes() []byte {
	return r.data
}

// Base64 returns the PDF encoded as a standard base64 string (RFC 4648).
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns an [*bytes.Reader] over the PDF content.
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full PDF content to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the PDF to the file at path through a temporary
// file in the same directory, replacing any existing file.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	if _, err := writeAtomic(filepath.Dir(path), filepath.Base(path), r.data, perm); err != nil {
		return newError("write", KindIO, err)
	}
	return nil
}

// Len returns the size of the PDF in bytes.
func (r *Result) Len() int {
	return len(r.data)
}

// Path returns the file the PDF was written to, or "" when the result
// was only rendered in memory.
func (r *Result) Path() string {
	return r.path
}

// Modules returns the side length of the QR matrix, quiet zone included.
func (r *Result) Modules() int {
	return r.modules
}

// RasterWidth returns the side length of the embedded image in pixels.
func (r *Result) RasterWidth() int {
	return r.rasterWidth
}

// Size returns the side length of the placed image in points.
func (r *Result) Size() int {
	return r.size
}

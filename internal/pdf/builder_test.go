package pdf

import (
	"bytes"
	"compress/zlib"
	"fmt"
)

// testPDF assembles small PDF files object by object for tests.
type testPDF struct {
	objs [][]byte
}

// reserve allocates an object number to be filled in with set.
func (b *testPDF) reserve() int {
	b.objs = append(b.objs, nil)
	return len(b.objs)
}

func (b *testPDF) set(n int, body string) {
	b.objs[n-1] = []byte(body)
}

func (b *testPDF) add(body string) int {
	n := b.reserve()
	b.set(n, body)
	return n
}

// addStream adds a stream object; dict is the dictionary body without
// the surrounding << >> and without /Length.
func (b *testPDF) addStream(dict string, data []byte) int {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<< %s /Length %d >>\nstream\n", dict, len(data))
	buf.Write(data)
	buf.WriteString("\nendstream")
	n := b.reserve()
	b.objs[n-1] = buf.Bytes()
	return n
}

// bytes serializes the objects with a classic xref table.
func (b *testPDF) bytes(root int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, len(b.objs))
	for i, body := range b.objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		buf.Write(body)
		buf.WriteString("\nendobj\n")
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(b.objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(b.objs)+1, root, xref)
	return buf.Bytes()
}

// onePage builds a document with a single page whose dictionary body
// (without Type, Parent and Contents) is pageDict and whose content stream
// is content.
func onePage(b *testPDF, pageDict, content string) []byte {
	pages := b.reserve()
	cs := b.addStream("", []byte(content))
	page := b.add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /Contents %d 0 R %s >>", pages, cs, pageDict))
	b.set(pages, fmt.Sprintf("<< /Type /Pages /Kids [%d 0 R] /Count 1 >>", page))
	root := b.add(fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pages))
	return b.bytes(root)
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

// grayImage4x2 is a 4x2 8-bit gray image, checkerboard of black and
// white, stored with PNG Sub and Up row predictors.
var (
	grayImage4x2Pixels = []byte{
		0, 255, 0, 255,
		255, 0, 255, 0,
	}
	grayImage4x2Predicted = []byte{
		1, 0, 255, 1, 255,
		2, 255, 1, 255, 1,
	}
)

func addGrayImage(b *testPDF) int {
	return b.addStream(
		"/Type /XObject /Subtype /Image /Width 4 /Height 2 /ColorSpace /DeviceGray /BitsPerComponent 8"+
			" /Filter /FlateDecode /DecodeParms << /Predictor 15 /Colors 1 /BitsPerComponent 8 /Columns 4 >>",
		deflate(grayImage4x2Predicted))
}

package pdf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// maxDecompressedSize bounds memory use for a single stream (256 MB).
const maxDecompressedSize = 256 << 20

// Image filters whose data is returned undecoded; the caller interprets
// the bytes (for example as JPEG).
var imageFilters = map[string]bool{
	"DCTDecode": true, "DCT": true,
	"JPXDecode":      true,
	"JBIG2Decode":    true,
	"CCITTFaxDecode": true, "CCF": true,
}

// DecodeStream applies the filter chain of a stream dictionary to data.
// It returns the decoded bytes and the name of a trailing image filter
// that was left in place, if any.
func DecodeStream(dict Dict, data []byte) ([]byte, string, error) {
	filters, params := streamFilters(dict)
	cur := data
	for i, f := range filters {
		if imageFilters[f] {
			if i != len(filters)-1 {
				return nil, "", fmt.Errorf("image filter %s is not last in chain", f)
			}
			return cur, f, nil
		}
		var err error
		cur, err = applyFilter(f, params[i], cur)
		if err != nil {
			return nil, "", fmt.Errorf("applying filter %s: %w", f, err)
		}
	}
	return cur, "", nil
}

func streamFilters(dict Dict) ([]string, []Dict) {
	fObj, ok := dict["Filter"]
	if !ok {
		return nil, nil
	}
	pObj := dict["DecodeParms"]

	var filters []string
	var params []Dict
	switch fObj.Type {
	case ObjName:
		filters = []string{fObj.Name}
		if pObj != nil && pObj.Type == ObjDict {
			params = []Dict{pObj.Dict}
		}
	case ObjArray:
		for _, f := range fObj.Array {
			if f.Type == ObjName {
				filters = append(filters, f.Name)
			}
		}
		if pObj != nil && pObj.Type == ObjArray {
			for _, p := range pObj.Array {
				var d Dict
				if p != nil && p.Type == ObjDict {
					d = p.Dict
				}
				params = append(params, d)
			}
		}
	}
	for len(params) < len(filters) {
		params = append(params, nil)
	}
	return filters, params
}

func applyFilter(filter string, parms Dict, data []byte) ([]byte, error) {
	switch filter {
	case "FlateDecode", "Fl":
		return flateDecode(parms, data)
	case "ASCIIHexDecode", "AHx":
		return asciiHexDecode(data), nil
	case "Crypt":
		return data, nil
	}
	return nil, fmt.Errorf("unsupported filter: %s", filter)
}

func flateDecode(parms Dict, data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, maxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("zlib read: %w", err)
	}
	if len(out) > maxDecompressedSize {
		return nil, fmt.Errorf("decompressed size exceeds 256 MB limit")
	}
	if parms == nil {
		return out, nil
	}

	predictor, _ := parms.GetInt("Predictor")
	switch {
	case predictor == 2:
		return undoTIFFPredictor(parms, out), nil
	case predictor >= 10 && predictor <= 15:
		return undoPNGPredictor(parms, out), nil
	}
	return out, nil
}

// predictorGeometry returns bytes per pixel and bytes per row.
func predictorGeometry(parms Dict) (bpp, rowBytes int) {
	colors, ok := parms.GetInt("Colors")
	if !ok || colors < 1 {
		colors = 1
	}
	bpc, ok := parms.GetInt("BitsPerComponent")
	if !ok || bpc < 1 {
		bpc = 8
	}
	columns, ok := parms.GetInt("Columns")
	if !ok || columns < 1 {
		columns = 1
	}
	bpp = int((colors*bpc + 7) / 8)
	rowBytes = int((columns*colors*bpc + 7) / 8)
	return bpp, rowBytes
}

func undoTIFFPredictor(parms Dict, data []byte) []byte {
	bpp, rowBytes := predictorGeometry(parms)
	out := append([]byte(nil), data...)
	for start := 0; start < len(out); start += rowBytes {
		end := min(start+rowBytes, len(out))
		for i := start + bpp; i < end; i++ {
			out[i] += out[i-bpp]
		}
	}
	return out
}

// undoPNGPredictor reverses per-row PNG filters (Predictor 10-15).
func undoPNGPredictor(parms Dict, data []byte) []byte {
	bpp, rowBytes := predictorGeometry(parms)
	stride := rowBytes + 1
	rows := len(data) / stride
	out := make([]byte, rows*rowBytes)
	prev := make([]byte, rowBytes)

	for r := 0; r < rows; r++ {
		src := data[r*stride+1 : (r+1)*stride]
		dst := out[r*rowBytes : (r+1)*rowBytes]
		for i := range dst {
			var a, c byte
			if i >= bpp {
				a = dst[i-bpp]
				c = prev[i-bpp]
			}
			b := prev[i]
			switch data[r*stride] {
			case 1: // Sub
				dst[i] = src[i] + a
			case 2: // Up
				dst[i] = src[i] + b
			case 3: // Average
				dst[i] = src[i] + byte((int(a)+int(b))/2)
			case 4: // Paeth
				dst[i] = src[i] + paeth(a, b, c)
			default:
				dst[i] = src[i]
			}
		}
		prev = dst
	}
	return out
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func asciiHexDecode(data []byte) []byte {
	if i := bytes.IndexByte(data, '>'); i >= 0 {
		data = data[:i]
	}
	var digits []byte
	for _, c := range data {
		if !isWhitespace(c) {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		out[i] = hexVal(digits[2*i])<<4 | hexVal(digits[2*i+1])
	}
	return out
}

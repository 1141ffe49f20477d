package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
)

// PlacedImage is an image XObject drawn on a page.
type PlacedImage struct {
	// Name is the resource name the content stream used, without the
	// leading slash.
	Name string
	// X and Y locate the lower-left corner in default user space (points).
	X, Y float64
	// Width and Height are the drawn size in points.
	Width, Height float64

	PixelWidth       int
	PixelHeight      int
	ColorSpace       string
	BitsPerComponent int

	stream *Object
}

// maxFormDepth limits how deeply nested Form XObjects are followed.
const maxFormDepth = 8

// maxImageSide bounds the pixel width and height DecodeImage accepts.
const maxImageSide = 1 << 16

// Images returns every image XObject painted by the page, including those
// inside Form XObjects, in drawing order.
func (doc *Document) Images(page Dict) ([]PlacedImage, error) {
	content, err := doc.ContentStream(page)
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	var out []PlacedImage
	err = doc.collectImages(content, doc.resolveDict(page["Resources"]), Identity, &out, 0)
	return out, err
}

func (doc *Document) collectImages(content []byte, res Dict, ctm Matrix, out *[]PlacedImage, depth int) error {
	if depth > maxFormDepth {
		return nil
	}
	xobjects := doc.resolveDict(res["XObject"])
	var stack []Matrix

	return ScanContent(content, func(op Op) error {
		switch op.Name {
		case "q":
			stack = append(stack, ctm)
		case "Q":
			if n := len(stack); n > 0 {
				ctm = stack[n-1]
				stack = stack[:n-1]
			}
		case "cm":
			if m, ok := matrixOperands(op.Operands); ok {
				ctm = m.Mul(ctm)
			}
		case "Do":
			if len(op.Operands) == 0 || op.Operands[0].Type != ObjName || xobjects == nil {
				return nil
			}
			name := op.Operands[0].Name
			xo, err := doc.Resolve(xobjects[name])
			if err != nil || xo.Type != ObjStream {
				return nil
			}
			switch sub, _ := xo.Dict.GetName("Subtype"); sub {
			case "Image":
				*out = append(*out, doc.placeImage(name, xo, ctm))
			case "Form":
				return doc.collectForm(xo, res, ctm, out, depth)
			}
		}
		return nil
	})
}

func (doc *Document) collectForm(form *Object, parentRes Dict, ctm Matrix, out *[]PlacedImage, depth int) error {
	data, _, err := DecodeStream(form.Dict, form.Stream)
	if err != nil {
		return fmt.Errorf("form content: %w", err)
	}
	res := doc.resolveDict(form.Dict["Resources"])
	if res == nil {
		res = parentRes
	}
	if mobj, err := doc.Resolve(form.Dict["Matrix"]); err == nil && mobj.Type == ObjArray {
		if m, ok := matrixOperands(mobj.Array); ok {
			ctm = m.Mul(ctm)
		}
	}
	return doc.collectImages(data, res, ctm, out, depth+1)
}

// placeImage maps the unit square through ctm to get the drawn geometry.
func (doc *Document) placeImage(name string, xo *Object, ctm Matrix) PlacedImage {
	w, _ := xo.Dict.GetInt("Width")
	h, _ := xo.Dict.GetInt("Height")
	bpc, _ := xo.Dict.GetInt("BitsPerComponent")
	if mask, _ := doc.Resolve(xo.Dict["ImageMask"]); mask != nil && mask.Type == ObjBool && mask.Bool {
		bpc = 1
	}
	cs, _ := doc.colorSpace(xo.Dict)

	x := math.Min(ctm[4], ctm[4]+ctm[0]+ctm[2])
	y := math.Min(ctm[5], ctm[5]+ctm[1]+ctm[3])
	return PlacedImage{
		Name:             name,
		X:                x,
		Y:                y,
		Width:            math.Hypot(ctm[0], ctm[1]),
		Height:           math.Hypot(ctm[2], ctm[3]),
		PixelWidth:       int(w),
		PixelHeight:      int(h),
		ColorSpace:       cs.name,
		BitsPerComponent: int(bpc),
		stream:           xo,
	}
}

type colorSpace struct {
	name    string
	comps   int
	palette []byte // Indexed lookup table, base-space samples
	base    *colorSpace
}

func (doc *Document) colorSpace(dict Dict) (colorSpace, error) {
	if mask, _ := doc.Resolve(dict["ImageMask"]); mask != nil && mask.Type == ObjBool && mask.Bool {
		return colorSpace{name: "DeviceGray", comps: 1}, nil
	}
	obj, err := doc.Resolve(dict["ColorSpace"])
	if err != nil {
		return colorSpace{}, err
	}
	return doc.parseColorSpace(obj, 0)
}

func (doc *Document) parseColorSpace(obj *Object, depth int) (colorSpace, error) {
	if depth > 4 {
		return colorSpace{}, fmt.Errorf("color space nested too deeply")
	}
	switch obj.Type {
	case ObjName:
		switch obj.Name {
		case "DeviceGray", "CalGray", "G":
			return colorSpace{name: "DeviceGray", comps: 1}, nil
		case "DeviceRGB", "CalRGB", "RGB":
			return colorSpace{name: "DeviceRGB", comps: 3}, nil
		case "DeviceCMYK", "CMYK":
			return colorSpace{name: "DeviceCMYK", comps: 4}, nil
		}
		return colorSpace{name: obj.Name}, fmt.Errorf("unsupported color space %s", obj.Name)
	case ObjArray:
		if len(obj.Array) == 0 {
			break
		}
		family, _ := doc.Resolve(obj.Array[0])
		switch family.Name {
		case "CalGray", "CalRGB":
			return doc.parseColorSpace(family, depth+1)
		case "ICCBased":
			if len(obj.Array) < 2 {
				break
			}
			prof, err := doc.Resolve(obj.Array[1])
			if err != nil || prof.Type != ObjStream {
				break
			}
			n, _ := prof.Dict.GetInt("N")
			switch n {
			case 1:
				return colorSpace{name: "DeviceGray", comps: 1}, nil
			case 3:
				return colorSpace{name: "DeviceRGB", comps: 3}, nil
			case 4:
				return colorSpace{name: "DeviceCMYK", comps: 4}, nil
			}
		case "Indexed", "I":
			if len(obj.Array) < 4 {
				break
			}
			baseObj, _ := doc.Resolve(obj.Array[1])
			base, err := doc.parseColorSpace(baseObj, depth+1)
			if err != nil {
				return colorSpace{}, err
			}
			lookup, err := doc.Resolve(obj.Array[3])
			if err != nil {
				return colorSpace{}, err
			}
			var table []byte
			switch lookup.Type {
			case ObjString:
				table = lookup.Str
			case ObjStream:
				if table, _, err = DecodeStream(lookup.Dict, lookup.Stream); err != nil {
					return colorSpace{}, err
				}
			}
			return colorSpace{name: "Indexed", comps: 1, palette: table, base: &base}, nil
		}
	}
	return colorSpace{}, fmt.Errorf("unsupported color space")
}

// DecodeImage decodes the pixels of a placed image. Gray images come back
// as *image.Gray, RGB as *image.RGBA, CMYK as *image.CMYK and indexed
// images as *image.Paletted. JPEG data is decoded with image/jpeg.
func (doc *Document) DecodeImage(img PlacedImage) (image.Image, error) {
	if img.stream == nil {
		return nil, fmt.Errorf("image %s has no stream", img.Name)
	}
	dict := img.stream.Dict
	data, filter, err := DecodeStream(dict, img.stream.Stream)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", img.Name, err)
	}
	switch filter {
	case "":
	case "DCTDecode", "DCT":
		return jpeg.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("image %s: unsupported filter %s", img.Name, filter)
	}

	cs, err := doc.colorSpace(dict)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", img.Name, err)
	}
	w, h, bpc := img.PixelWidth, img.PixelHeight, img.BitsPerComponent
	switch bpc {
	case 1, 2, 4, 8, 16:
	default:
		return nil, fmt.Errorf("image %s: unsupported bits per component %d", img.Name, bpc)
	}
	if w <= 0 || h <= 0 || w > maxImageSide || h > maxImageSide {
		return nil, fmt.Errorf("image %s: invalid dimensions %dx%d", img.Name, w, h)
	}

	// Both sides are capped, so the row size cannot overflow; the row
	// count is compared by division.
	stride := (w*cs.comps*bpc + 7) / 8
	if len(data)/stride < h {
		return nil, fmt.Errorf("image %s: short sample data: %d bytes for %d rows of %d", img.Name, len(data), h, stride)
	}
	r := sampleReader{data: data, stride: stride, bpc: bpc}
	invert := doc.decodeInverted(dict)
	rect := image.Rect(0, 0, w, h)

	switch {
	case cs.palette != nil:
		out := image.NewPaletted(rect, cs.paletteColors())
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Pix[y*out.Stride+x] = uint8(r.raw(y, x))
			}
		}
		return out, nil
	case cs.comps == 1:
		out := image.NewGray(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := r.scaled(y, x)
				if invert {
					v = 255 - v
				}
				out.Pix[y*out.Stride+x] = v
			}
		}
		return out, nil
	case cs.comps == 3:
		out := image.NewRGBA(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*out.Stride + x*4
				out.Pix[i] = r.scaled(y, x*3)
				out.Pix[i+1] = r.scaled(y, x*3+1)
				out.Pix[i+2] = r.scaled(y, x*3+2)
				out.Pix[i+3] = 0xff
			}
		}
		return out, nil
	case cs.comps == 4:
		out := image.NewCMYK(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				for c := 0; c < 4; c++ {
					out.Pix[y*out.Stride+x*4+c] = r.scaled(y, x*4+c)
				}
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("image %s: unsupported color space %s", img.Name, cs.name)
}

// decodeInverted reports whether a /Decode [1 0] array flips a
// one-component image.
func (doc *Document) decodeInverted(dict Dict) bool {
	dec, err := doc.Resolve(dict["Decode"])
	if err != nil || dec.Type != ObjArray || len(dec.Array) < 2 {
		return false
	}
	lo, _ := dec.Array[0].Number()
	hi, _ := dec.Array[1].Number()
	return lo > hi
}

func (cs colorSpace) paletteColors() color.Palette {
	n := 1
	if cs.base != nil {
		n = cs.base.comps
	}
	var pal color.Palette
	for i := 0; i+n <= len(cs.palette) && len(pal) < 256; i += n {
		e := cs.palette[i : i+n]
		switch n {
		case 1:
			pal = append(pal, color.Gray{Y: e[0]})
		case 3:
			pal = append(pal, color.RGBA{R: e[0], G: e[1], B: e[2], A: 0xff})
		case 4:
			pal = append(pal, color.CMYK{C: e[0], M: e[1], Y: e[2], K: e[3]})
		}
	}
	for len(pal) < 256 {
		pal = append(pal, color.Black)
	}
	return pal
}

// sampleReader pulls packed samples out of row-aligned image data.
type sampleReader struct {
	data   []byte
	stride int
	bpc    int
}

// raw returns sample i of row y as stored.
func (r sampleReader) raw(y, i int) int {
	row := r.data[y*r.stride:]
	switch r.bpc {
	case 8:
		return int(row[i])
	case 16:
		return int(row[2*i])<<8 | int(row[2*i+1])
	}
	bit := i * r.bpc
	shift := 8 - r.bpc - bit%8
	return int(row[bit/8]>>shift) & (1<<r.bpc - 1)
}

// scaled returns sample i of row y stretched to 0-255.
func (r sampleReader) scaled(y, i int) uint8 {
	v := r.raw(y, i)
	switch r.bpc {
	case 8:
		return uint8(v)
	case 16:
		return uint8(v >> 8)
	}
	return uint8(v * 255 / (1<<r.bpc - 1))
}

package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// XRefEntry describes one entry in the cross-reference table.
type XRefEntry struct {
	Offset     int64
	Generation int
	InUse      bool
	// For objects stored inside an object stream (PDF 1.5+).
	Compressed  bool
	StreamObjID int
	IndexInStrm int
}

// Document represents a loaded PDF file.
type Document struct {
	data    []byte
	xref    map[int]XRefEntry
	trailer Dict
	cache   map[int]*Object
}

// Open reads a PDF file from disk.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return Load(data)
}

// Load parses a PDF from raw bytes.
func Load(data []byte) (*Document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("not a PDF file")
	}
	doc := &Document{
		data:  data,
		xref:  make(map[int]XRefEntry),
		cache: make(map[int]*Object),
	}
	offset, err := doc.findStartXRef()
	if err != nil {
		return nil, fmt.Errorf("loading xref: %w", err)
	}
	if err := doc.loadXRefAt(offset, 0); err != nil {
		return nil, fmt.Errorf("loading xref: %w", err)
	}
	return doc, nil
}

// Version returns the PDF version string (e.g. "1.7").
func (doc *Document) Version() string {
	line := doc.data[5:min(len(doc.data), 20)]
	if i := bytes.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(string(line))
}

// findStartXRef locates "startxref" near the end of the file and reads the
// offset that follows it.
func (doc *Document) findStartXRef() (int64, error) {
	from := max(len(doc.data)-1024, 0)
	idx := bytes.LastIndex(doc.data[from:], []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("startxref not found")
	}
	p := NewParser(doc.data, from+idx+len("startxref"))
	p.skipWhitespace()
	offset, err := strconv.ParseInt(p.readToken(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing startxref: %w", err)
	}
	return offset, nil
}

// maxXRefChain bounds /Prev chains so a cyclic file cannot loop forever.
const maxXRefChain = 64

// loadXRefAt loads the xref section (table or stream) at offset and then
// any earlier sections it links to. Entries seen first win, so newer
// revisions shadow older ones.
func (doc *Document) loadXRefAt(offset int64, depth int) error {
	if depth > maxXRefChain {
		return fmt.Errorf("xref chain too long")
	}
	if offset < 0 || int(offset) >= len(doc.data) {
		return fmt.Errorf("xref offset out of bounds: %d", offset)
	}

	p := NewParser(doc.data, int(offset))
	p.skipWhitespace()

	var section Dict
	var err error
	if p.match("xref") {
		section, err = doc.parseXRefTable(p)
	} else {
		section, err = doc.parseXRefStream(p)
	}
	if err != nil {
		return err
	}
	if doc.trailer == nil {
		doc.trailer = section
	}
	if prev, ok := section.GetInt("Prev"); ok && prev > 0 {
		return doc.loadXRefAt(prev, depth+1)
	}
	return nil
}

// parseXRefTable parses the classic "xref" subsections and the trailer
// dictionary that follows them.
func (doc *Document) parseXRefTable(p *Parser) (Dict, error) {
	for {
		p.skipWhitespace()
		if p.pos >= len(doc.data) || p.match("trailer") {
			break
		}
		first, err1 := strconv.Atoi(p.readToken())
		p.skipWhitespace()
		count, err2 := strconv.Atoi(p.readToken())
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("malformed xref subsection at offset %d", p.pos)
		}
		for i := 0; i < count; i++ {
			p.skipWhitespace()
			off, _ := strconv.ParseInt(p.readToken(), 10, 64)
			p.skipWhitespace()
			gen, _ := strconv.Atoi(p.readToken())
			p.skipWhitespace()
			kind := p.readToken()
			id := first + i
			if _, seen := doc.xref[id]; !seen {
				doc.xref[id] = XRefEntry{Offset: off, Generation: gen, InUse: kind == "n"}
			}
		}
	}

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("parsing trailer: %w", err)
	}
	if obj.Type != ObjDict {
		return nil, fmt.Errorf("trailer is not a dictionary")
	}
	return obj.Dict, nil
}

// parseXRefStream handles a cross-reference stream object (PDF 1.5+).
func (doc *Document) parseXRefStream(p *Parser) (Dict, error) {
	if err := p.parseIndirectHeader(); err != nil {
		return nil, err
	}
	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("parsing xref stream object: %w", err)
	}
	if obj.Type != ObjStream {
		return nil, fmt.Errorf("xref at offset is not a stream")
	}
	data, _, err := DecodeStream(obj.Dict, obj.Stream)
	if err != nil {
		return nil, fmt.Errorf("decompressing xref stream: %w", err)
	}

	w, _ := obj.Dict.GetArray("W")
	if len(w) < 3 {
		return nil, fmt.Errorf("xref stream missing /W")
	}
	w1, w2, w3 := int(w[0].Int), int(w[1].Int), int(w[2].Int)
	entrySize := w1 + w2 + w3
	if entrySize == 0 {
		return nil, fmt.Errorf("xref stream zero entry size")
	}

	size, _ := obj.Dict.GetInt("Size")
	subsections := [][2]int{{0, int(size)}}
	if index, ok := obj.Dict.GetArray("Index"); ok {
		subsections = subsections[:0]
		for i := 0; i+1 < len(index); i += 2 {
			subsections = append(subsections, [2]int{int(index[i].Int), int(index[i+1].Int)})
		}
	}

	pos := 0
	for _, sub := range subsections {
		for i := 0; i < sub[1] && pos+entrySize <= len(data); i++ {
			typ := 1 // a zero-width type field defaults to 1
			if w1 > 0 {
				typ = readBigEndian(data[pos:], w1)
			}
			f2 := readBigEndian(data[pos+w1:], w2)
			f3 := readBigEndian(data[pos+w1+w2:], w3)
			pos += entrySize

			id := sub[0] + i
			if _, seen := doc.xref[id]; seen {
				continue
			}
			switch typ {
			case 0:
				doc.xref[id] = XRefEntry{Generation: f3}
			case 1:
				doc.xref[id] = XRefEntry{Offset: int64(f2), Generation: f3, InUse: true}
			case 2:
				doc.xref[id] = XRefEntry{Compressed: true, StreamObjID: f2, IndexInStrm: f3, InUse: true}
			}
		}
	}
	return obj.Dict, nil
}

func readBigEndian(data []byte, n int) int {
	v := 0
	for i := 0; i < n && i < len(data); i++ {
		v = v<<8 | int(data[i])
	}
	return v
}

// ResolveRef follows an indirect reference. Missing or free objects
// resolve to null, as the format requires.
func (doc *Document) ResolveRef(ref Reference) (*Object, error) {
	if obj, ok := doc.cache[ref.Number]; ok {
		return obj, nil
	}
	entry, ok := doc.xref[ref.Number]
	if !ok || !entry.InUse {
		return null, nil
	}
	// Guard against reference cycles while resolving.
	doc.cache[ref.Number] = null

	var obj *Object
	var err error
	if entry.Compressed {
		obj, err = doc.resolveCompressed(ref.Number, entry)
	} else {
		obj, err = doc.resolveAtOffset(entry.Offset)
	}
	if err != nil {
		delete(doc.cache, ref.Number)
		return nil, fmt.Errorf("object %d: %w", ref.Number, err)
	}
	doc.cache[ref.Number] = obj
	return obj, nil
}

// resolveAtOffset parses "N G obj ... endobj" at the given byte offset.
func (doc *Document) resolveAtOffset(offset int64) (*Object, error) {
	if offset < 0 || int(offset) >= len(doc.data) {
		return nil, fmt.Errorf("offset %d out of bounds", offset)
	}
	p := NewParser(doc.data, int(offset))
	p.length = doc.indirectLength
	if err := p.parseIndirectHeader(); err != nil {
		return nil, err
	}
	return p.ParseObject()
}

func (doc *Document) indirectLength(ref Reference) (int64, bool) {
	obj, err := doc.ResolveRef(ref)
	if err != nil || obj.Type != ObjInt {
		return 0, false
	}
	return obj.Int, true
}

// ContentStream returns the decoded, concatenated content streams of a
// page.
func (doc *Document) ContentStream(page Dict) ([]byte, error) {
	obj, ok := page["Contents"]
	if !ok {
		return nil, nil
	}
	contents, err := doc.Resolve(obj)
	if err != nil {
		return nil, err
	}
	streams := []*Object{contents}
	if contents.Type == ObjArray {
		streams = contents.Array
	}

	var out []byte
	for _, s := range streams {
		s, err := doc.Resolve(s)
		if err != nil {
			return nil, err
		}
		if s.Type != ObjStream {
			continue
		}
		data, _, err := DecodeStream(s.Dict, s.Stream)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
		out = append(out, '\n')
	}
	return out, nil
}

// resolveCompressed reads object id from inside an object stream.
func (doc *Document) resolveCompressed(id int, entry XRefEntry) (*Object, error) {
	strm, err := doc.ResolveRef(Reference{Number: entry.StreamObjID})
	if err != nil {
		return nil, err
	}
	if strm.Type != ObjStream {
		return nil, fmt.Errorf("object stream %d is not a stream", entry.StreamObjID)
	}
	data, _, err := DecodeStream(strm.Dict, strm.Stream)
	if err != nil {
		return nil, err
	}

	n, _ := strm.Dict.GetInt("N")
	first, _ := strm.Dict.GetInt("First")

	p := NewParser(data, 0)
	off := -1
	for i := 0; i < int(n); i++ {
		p.skipWhitespace()
		num, _ := strconv.Atoi(p.readToken())
		p.skipWhitespace()
		o, _ := strconv.Atoi(p.readToken())
		if num == id || (off < 0 && i == entry.IndexInStrm) {
			off = o
			if num == id {
				break
			}
		}
	}
	if off < 0 || int(first)+off > len(data) {
		return nil, fmt.Errorf("object %d not found in object stream %d", id, entry.StreamObjID)
	}
	return NewParser(data, int(first)+off).ParseObject()
}

// Resolve returns obj, following it if it is an indirect reference.
func (doc *Document) Resolve(obj *Object) (*Object, error) {
	if obj == nil {
		return null, nil
	}
	if obj.Type != ObjRef {
		return obj, nil
	}
	return doc.ResolveRef(obj.Ref)
}

// resolveDict resolves obj and returns its dictionary, if it has one.
func (doc *Document) resolveDict(obj *Object) Dict {
	r, err := doc.Resolve(obj)
	if err != nil || r == nil {
		return nil
	}
	if r.Type == ObjDict || r.Type == ObjStream {
		return r.Dict
	}
	return nil
}

// Catalog returns the document catalog dictionary.
func (doc *Document) Catalog() (Dict, error) {
	root, ok := doc.trailer["Root"]
	if !ok {
		return nil, fmt.Errorf("no /Root in trailer")
	}
	cat := doc.resolveDict(root)
	if cat == nil {
		return nil, fmt.Errorf("root is not a dict")
	}
	return cat, nil
}

// inheritable lists page attributes a page takes from its ancestors when
// it does not define them itself.
var inheritable = []string{"Resources", "MediaBox", "CropBox", "Rotate"}

// Pages returns all page dictionaries in order, with inherited
// attributes copied in.
func (doc *Document) Pages() ([]Dict, error) {
	cat, err := doc.Catalog()
	if err != nil {
		return nil, err
	}
	root := doc.resolveDict(cat["Pages"])
	if root == nil {
		return nil, fmt.Errorf("no /Pages in catalog")
	}
	var pages []Dict
	doc.collectPages(root, Dict{}, &pages, 0)
	return pages, nil
}

func (doc *Document) collectPages(node, inherited Dict, pages *[]Dict, depth int) {
	if depth > maxNesting {
		return
	}
	attrs := Dict{}
	for _, k := range inheritable {
		if v, ok := node[k]; ok {
			attrs[k] = v
		} else if v, ok := inherited[k]; ok {
			attrs[k] = v
		}
	}

	if typ, _ := node.GetName("Type"); typ == "Page" {
		page := make(Dict, len(node)+len(attrs))
		for k, v := range node {
			page[k] = v
		}
		for k, v := range attrs {
			page[k] = v
		}
		*pages = append(*pages, page)
		return
	}

	kids, err := doc.Resolve(node["Kids"])
	if err != nil || kids.Type != ObjArray {
		return
	}
	for _, k := range kids.Array {
		if kid := doc.resolveDict(k); kid != nil {
			doc.collectPages(kid, attrs, pages, depth+1)
		}
	}
}

// PageInfo holds metadata about a single page.
type PageInfo struct {
	Width    float64
	Height   float64
	Rotation int
}

// GetPageInfo extracts dimensions and rotation for a page.
func (doc *Document) GetPageInfo(page Dict) PageInfo {
	var info PageInfo
	if mb, err := doc.Resolve(page["MediaBox"]); err == nil && mb.Type == ObjArray && len(mb.Array) >= 4 {
		var box [4]float64
		for i := range box {
			v, _ := doc.Resolve(mb.Array[i])
			box[i], _ = v.Number()
		}
		info.Width = box[2] - box[0]
		info.Height = box[3] - box[1]
	}
	if rot, err := doc.Resolve(page["Rotate"]); err == nil && rot.Type == ObjInt {
		info.Rotation = int(rot.Int)
	}
	return info
}

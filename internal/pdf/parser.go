package pdf

import (
	"bytes"
	"fmt"
	"strconv"
)

const maxNesting = 100

// Parser is a recursive-descent PDF object parser over an in-memory
// buffer. It is also used to scan content streams, where objects are
// interleaved with operator keywords.
type Parser struct {
	data  []byte
	pos   int
	depth int

	// length resolves an indirect /Length of a stream dictionary.
	length func(Reference) (int64, bool)
}

// NewParser creates a parser for data starting at pos.
func NewParser(data []byte, pos int) *Parser {
	return &Parser{data: data, pos: pos}
}

// Pos returns the current parse position.
func (p *Parser) Pos() int { return p.pos }

// EOF reports whether only whitespace and comments remain.
func (p *Parser) EOF() bool {
	p.skipWhitespace()
	return p.pos >= len(p.data)
}

// skipWhitespace skips PDF whitespace and comments.
func (p *Parser) skipWhitespace() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == '%':
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
		case isWhitespace(c):
			p.pos++
		default:
			return
		}
	}
}

// match advances past s if the input continues with it.
func (p *Parser) match(s string) bool {
	if bytes.HasPrefix(p.data[p.pos:], []byte(s)) {
		p.pos += len(s)
		return true
	}
	return false
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

// startsObject reports whether c can begin a PDF object (as opposed to a
// content-stream operator).
func startsObject(c byte) bool {
	switch {
	case c == '(', c == '<', c == '/', c == '[':
		return true
	case c == '+', c == '-', c == '.', c >= '0' && c <= '9':
		return true
	}
	return false
}

// readToken reads a run of regular characters.
func (p *Parser) readToken() string {
	start := p.pos
	for p.pos < len(p.data) && !isWhitespace(p.data[p.pos]) && !isDelim(p.data[p.pos]) {
		p.pos++
	}
	return string(p.data[start:p.pos])
}

// ParseObject parses one PDF object at the current position.
func (p *Parser) ParseObject() (*Object, error) {
	if p.depth > maxNesting {
		return nil, fmt.Errorf("exceeded maximum nesting depth")
	}
	p.depth++
	defer func() { p.depth-- }()

	p.skipWhitespace()
	if p.pos >= len(p.data) {
		return null, nil
	}

	switch c := p.data[p.pos]; {
	case c == '(':
		return p.parseLiteralString(), nil
	case c == '<' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '<':
		return p.parseDict()
	case c == '<':
		return p.parseHexString(), nil
	case c == '/':
		return p.parseName(), nil
	case c == '[':
		return p.parseArray()
	case startsObject(c):
		return p.parseNumberOrRef(), nil
	}

	switch p.readToken() {
	case "true":
		return &Object{Type: ObjBool, Bool: true}, nil
	case "false":
		return &Object{Type: ObjBool}, nil
	case "":
		// Stray delimiter such as ')' or '>': step over it.
		p.pos++
	}
	return null, nil
}

func (p *Parser) parseLiteralString() *Object {
	p.pos++ // '('
	var buf bytes.Buffer
	depth := 1
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		p.pos++
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return &Object{Type: ObjString, Str: buf.Bytes()}
			}
		case '\\':
			p.readEscape(&buf)
			continue
		}
		buf.WriteByte(c)
	}
	return &Object{Type: ObjString, Str: buf.Bytes()}
}

func (p *Parser) readEscape(buf *bytes.Buffer) {
	if p.pos >= len(p.data) {
		return
	}
	esc := p.data[p.pos]
	p.pos++
	switch esc {
	case 'n':
		buf.WriteByte('\n')
	case 'r':
		buf.WriteByte('\r')
	case 't':
		buf.WriteByte('\t')
	case 'b':
		buf.WriteByte('\b')
	case 'f':
		buf.WriteByte('\f')
	case '\r':
		p.match("\n")
	case '\n':
	default:
		if esc < '0' || esc > '7' {
			buf.WriteByte(esc)
			return
		}
		v := int(esc - '0')
		for i := 0; i < 2 && p.pos < len(p.data); i++ {
			d := p.data[p.pos]
			if d < '0' || d > '7' {
				break
			}
			v = v*8 + int(d-'0')
			p.pos++
		}
		buf.WriteByte(byte(v))
	}
}

func (p *Parser) parseHexString() *Object {
	p.pos++ // '<'
	var digits []byte
	for p.pos < len(p.data) && p.data[p.pos] != '>' {
		if c := p.data[p.pos]; !isWhitespace(c) {
			digits = append(digits, c)
		}
		p.pos++
	}
	p.match(">")
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		out[i] = hexVal(digits[2*i])<<4 | hexVal(digits[2*i+1])
	}
	return &Object{Type: ObjString, Str: out}
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}

func (p *Parser) parseName() *Object {
	p.pos++ // '/'
	raw := p.readToken()
	if !bytes.ContainsRune([]byte(raw), '#') {
		return &Object{Type: ObjName, Name: raw}
	}
	var buf bytes.Buffer
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) {
			buf.WriteByte(hexVal(raw[i+1])<<4 | hexVal(raw[i+2]))
			i += 2
			continue
		}
		buf.WriteByte(raw[i])
	}
	return &Object{Type: ObjName, Name: buf.String()}
}

func (p *Parser) parseArray() (*Object, error) {
	p.pos++ // '['
	arr := &Object{Type: ObjArray}
	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return arr, nil
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return arr, nil
		}
		obj, err := p.ParseObject()
		if err != nil {
			return nil, err
		}
		arr.Array = append(arr.Array, obj)
	}
}

// parseDict parses <<...>> and a following stream body, if any.
func (p *Parser) parseDict() (*Object, error) {
	p.pos += 2 // '<<'
	d := make(Dict)
	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) || p.match(">>") {
			break
		}
		if p.data[p.pos] != '/' {
			p.pos++ // malformed key
			continue
		}
		key := p.parseName().Name
		val, err := p.ParseObject()
		if err != nil {
			return nil, err
		}
		d[key] = val
	}

	save := p.pos
	p.skipWhitespace()
	if !p.match("stream") {
		p.pos = save
		return &Object{Type: ObjDict, Dict: d}, nil
	}
	p.match("\r")
	p.match("\n")

	start := p.pos
	end := -1
	if n, ok := p.streamLength(d); ok && n >= 0 && start+int(n) <= len(p.data) {
		end = start + int(n)
	}
	if end < 0 {
		i := bytes.Index(p.data[start:], []byte("endstream"))
		if i < 0 {
			i = len(p.data) - start
		}
		end = start + i
	}
	p.pos = end
	p.skipWhitespace()
	p.match("endstream")
	return &Object{Type: ObjStream, Dict: d, Stream: p.data[start:end]}, nil
}

func (p *Parser) streamLength(d Dict) (int64, bool) {
	n, ok := d["Length"]
	switch {
	case !ok:
		return 0, false
	case n.Type == ObjInt:
		return n.Int, true
	case n.Type == ObjRef && p.length != nil:
		return p.length(n.Ref)
	}
	return 0, false
}

// parseNumberOrRef parses a number or an indirect reference (N G R).
func (p *Parser) parseNumberOrRef() *Object {
	tok := p.readToken()
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return null
		}
		return &Object{Type: ObjFloat, Float: f}
	}

	after := p.pos
	p.skipWhitespace()
	if g, err := strconv.ParseInt(p.readToken(), 10, 64); err == nil {
		p.skipWhitespace()
		if p.pos < len(p.data) && p.data[p.pos] == 'R' &&
			(p.pos+1 == len(p.data) || isWhitespace(p.data[p.pos+1]) || isDelim(p.data[p.pos+1])) {
			p.pos++
			return &Object{Type: ObjRef, Ref: Reference{Number: int(n), Gen: int(g)}}
		}
	}
	p.pos = after
	return &Object{Type: ObjInt, Int: n}
}

// parseIndirectHeader consumes "N G obj".
func (p *Parser) parseIndirectHeader() error {
	p.skipWhitespace()
	p.readToken()
	p.skipWhitespace()
	p.readToken()
	p.skipWhitespace()
	if !p.match("obj") {
		return fmt.Errorf("expected 'obj' at offset %d", p.pos)
	}
	return nil
}

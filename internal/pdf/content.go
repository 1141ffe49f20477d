package pdf

import (
	"bytes"
	"fmt"
)

// Matrix is a PDF transformation matrix [a b c d e f].
type Matrix [6]float64

// Identity is the identity transformation.
var Identity = Matrix{1, 0, 0, 1, 0, 0}

// Mul returns m×n, i.e. m applied first and then n.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

// Op is one content-stream operator with its operands.
type Op struct {
	Name     string
	Operands []*Object
}

// maxOperands bounds the operand stack so garbage input cannot grow it
// without limit.
const maxOperands = 64

// ScanContent calls fn for every operator in a content stream, in order.
// Inline images (BI ... ID ... EI) are reported as a single "BI" operator
// without operands. Scanning stops at the first error returned by fn.
func ScanContent(data []byte, fn func(Op) error) error {
	p := NewParser(data, 0)
	var operands []*Object
	for !p.EOF() {
		if startsObject(p.data[p.pos]) {
			obj, err := p.ParseObject()
			if err != nil {
				return fmt.Errorf("content operand at %d: %w", p.pos, err)
			}
			if len(operands) < maxOperands {
				operands = append(operands, obj)
			}
			continue
		}

		name := p.readToken()
		switch name {
		case "":
			p.pos++ // stray delimiter
			continue
		case "true", "false":
			operands = append(operands, &Object{Type: ObjBool, Bool: name == "true"})
			continue
		case "null":
			operands = append(operands, null)
			continue
		}
		if name == "BI" {
			skipInlineImage(p)
			operands = operands[:0]
		}
		if err := fn(Op{Name: name, Operands: operands}); err != nil {
			return err
		}
		operands = nil
	}
	return nil
}

// skipInlineImage moves p past the "EI" that ends an inline image.
func skipInlineImage(p *Parser) {
	i := bytes.Index(p.data[p.pos:], []byte("ID"))
	if i < 0 {
		p.pos = len(p.data)
		return
	}
	p.pos += i + 2
	for {
		j := bytes.Index(p.data[p.pos:], []byte("EI"))
		if j < 0 {
			p.pos = len(p.data)
			return
		}
		at := p.pos + j
		p.pos = at + 2
		before := at == 0 || isWhitespace(p.data[at-1])
		after := p.pos >= len(p.data) || isWhitespace(p.data[p.pos]) || isDelim(p.data[p.pos])
		if before && after {
			return
		}
	}
}

// matrixOperands reads six numeric operands as a Matrix.
func matrixOperands(ops []*Object) (Matrix, bool) {
	if len(ops) < 6 {
		return Matrix{}, false
	}
	var m Matrix
	ops = ops[len(ops)-6:]
	for i := range m {
		v, ok := ops[i].Number()
		if !ok {
			return Matrix{}, false
		}
		m[i] = v
	}
	return m, true
}

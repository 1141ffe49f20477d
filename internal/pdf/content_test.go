package pdf

import (
	"errors"
	"reflect"
	"testing"
)

func TestScanContentOperators(t *testing.T) {
	content := []byte("q 1 0 0 1 10 20 cm /Im1 Do Q % comment\nBT /F1 12 Tf (x) Tj ET")

	var names []string
	var ops []Op
	err := ScanContent(content, func(op Op) error {
		names = append(names, op.Name)
		ops = append(ops, op)
		return nil
	})
	if err != nil {
		t.Fatalf("ScanContent: %v", err)
	}
	want := []string{"q", "cm", "Do", "Q", "BT", "Tf", "Tj", "ET"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("operators = %v, want %v", names, want)
	}
	if m, ok := matrixOperands(ops[1].Operands); !ok || m != (Matrix{1, 0, 0, 1, 10, 20}) {
		t.Errorf("cm operands = %v", m)
	}
	if ops[2].Operands[0].Name != "Im1" {
		t.Errorf("Do operand = %+v", ops[2].Operands[0])
	}
}

func TestScanContentSkipsInlineImage(t *testing.T) {
	content := []byte("q BI /W 2 /H 1 /BPC 8 /CS /G ID \x00EI\xff EI Q")

	var names []string
	err := ScanContent(content, func(op Op) error {
		names = append(names, op.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("ScanContent: %v", err)
	}
	if want := []string{"q", "BI", "Q"}; !reflect.DeepEqual(names, want) {
		t.Errorf("operators = %v, want %v", names, want)
	}
}

func TestScanContentStopsOnError(t *testing.T) {
	stop := errors.New("stop")
	n := 0
	err := ScanContent([]byte("q q q"), func(Op) error {
		n++
		return stop
	})
	if !errors.Is(err, stop) || n != 1 {
		t.Errorf("err = %v after %d calls", err, n)
	}
}

func TestMatrixMul(t *testing.T) {
	scale := Matrix{2, 0, 0, 2, 0, 0}
	move := Matrix{1, 0, 0, 1, 10, 5}

	// Scale first, then translate.
	if got := scale.Mul(move); got != (Matrix{2, 0, 0, 2, 10, 5}) {
		t.Errorf("scale×move = %v", got)
	}
	// Translate first, then scale: the offset is scaled too.
	if got := move.Mul(scale); got != (Matrix{2, 0, 0, 2, 20, 10}) {
		t.Errorf("move×scale = %v", got)
	}
	if got := Identity.Mul(move); got != move {
		t.Errorf("identity×move = %v", got)
	}
}

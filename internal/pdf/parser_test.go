package pdf

import (
	"testing"
)

func TestParserBasicTypes(t *testing.T) {
	data := []byte("null true false 42 3.14 (hello) <48454C4C4F> /Name [1 2 3] 7 0 R")
	p := NewParser(data, 0)

	// null
	obj, err := p.ParseObject()
	if err != nil || obj.Type != ObjNull {
		t.Errorf("expected null, got %v (err=%v)", obj.Type, err)
	}
	// true
	obj, err = p.ParseObject()
	if err != nil || obj.Type != ObjBool || !obj.Bool {
		t.Errorf("expected true, got %v %v", obj.Type, obj.Bool)
	}
	// false
	obj, err = p.ParseObject()
	if err != nil || obj.Type != ObjBool || obj.Bool {
		t.Errorf("expected false, got %v %v", obj.Type, obj.Bool)
	}
	// 42
	obj, err = p.ParseObject()
	if err != nil || obj.Type != ObjInt || obj.Int != 42 {
		t.Errorf("expected int 42, got %v %v", obj.Type, obj.Int)
	}
	// 3.14
	obj, err = p.ParseObject()
	if err != nil || obj.Type != ObjFloat || obj.Float != 3.14 {
		t.Errorf("expected float 3.14, got %v", obj.Type)
	}
	// (hello)
	obj, err = p.ParseObject()
	if err != nil || obj.Type != ObjString || string(obj.Str) != "hello" {
		t.Errorf("expected string 'hello', got %v %q", obj.Type, obj.Str)
	}
	// <48454C4C4F> = "HELLO"
	obj, err = p.ParseObject()
	if err != nil || obj.Type != ObjString || string(obj.Str) != "HELLO" {
		t.Errorf("expected hex string 'HELLO', got %v %q", obj.Type, obj.Str)
	}
	// /Name
	obj, err = p.ParseObject()
	if err != nil || obj.Type != ObjName || obj.Name != "Name" {
		t.Errorf("expected name 'Name', got %v %q", obj.Type, obj.Name)
	}
	// [1 2 3]
	obj, err = p.ParseObject()
	if err != nil || obj.Type != ObjArray || len(obj.Array) != 3 {
		t.Errorf("expected array of 3, got %v len=%d", obj.Type, len(obj.Array))
	}
	// 7 0 R
	obj, err = p.ParseObject()
	if err != nil || obj.Type != ObjRef || obj.Ref != (Reference{Number: 7}) {
		t.Errorf("expected ref 7 0 R, got %v %+v", obj.Type, obj.Ref)
	}
	if !p.EOF() {
		t.Errorf("expected EOF at %d", p.Pos())
	}
}

func TestParserStringEscapes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`(a\nb)`, "a\nb"},
		{`(\(nested\))`, "(nested)"},
		{`(outer (inner) done)`, "outer (inner) done"},
		{`(\101\102)`, "AB"},
		{"(line\\\ncontinued)", "linecontinued"},
	}
	for _, tt := range tests {
		obj, err := NewParser([]byte(tt.in), 0).ParseObject()
		if err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		if string(obj.Str) != tt.want {
			t.Errorf("%s: got %q, want %q", tt.in, obj.Str, tt.want)
		}
	}
}

func TestParserNameEscapes(t *testing.T) {
	obj, _ := NewParser([]byte("/A#20B"), 0).ParseObject()
	if obj.Name != "A B" {
		t.Errorf("expected 'A B', got %q", obj.Name)
	}
	obj, _ = NewParser([]byte("/NoEscapes"), 0).ParseObject()
	if obj.Name != "NoEscapes" {
		t.Errorf("expected 'NoEscapes', got %q", obj.Name)
	}
}

func TestParserDictAndStream(t *testing.T) {
	data := []byte("<< /Type /XObject /Length 5 /Sub << /K 1 >> >>\nstream\nabcde\nendstream")
	obj, err := NewParser(data, 0).ParseObject()
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	if obj.Type != ObjStream {
		t.Fatalf("expected stream, got %v", obj.Type)
	}
	if string(obj.Stream) != "abcde" {
		t.Errorf("stream = %q, want abcde", obj.Stream)
	}
	if name, _ := obj.Dict.GetName("Type"); name != "XObject" {
		t.Errorf("Type = %q", name)
	}
	if obj.Dict["Sub"].Dict["K"].Int != 1 {
		t.Error("nested dict not parsed")
	}
}

func TestParserStreamWithoutLength(t *testing.T) {
	data := []byte("<< /Length 99 0 R >>\nstream\nxyz\nendstream")
	obj, err := NewParser(data, 0).ParseObject()
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	if string(obj.Stream) != "xyz\n" {
		t.Errorf("stream = %q, want fallback to endstream", obj.Stream)
	}

	p := NewParser(data, 0)
	p.length = func(ref Reference) (int64, bool) {
		if ref.Number != 99 {
			t.Errorf("resolved ref %d", ref.Number)
		}
		return 3, true
	}
	obj, err = p.ParseObject()
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	if string(obj.Stream) != "xyz" {
		t.Errorf("stream = %q, want xyz", obj.Stream)
	}
}

func TestParserNestingLimit(t *testing.T) {
	deep := make([]byte, 0, 2*(maxNesting+10))
	for i := 0; i < maxNesting+10; i++ {
		deep = append(deep, '[')
	}
	if _, err := NewParser(deep, 0).ParseObject(); err == nil {
		t.Error("expected nesting error")
	}
}

// Package pdf reads just enough of a PDF file to find the images placed on
// each page, measure them and decode their pixels. It understands classic
// xref tables, cross-reference streams, object streams and the Flate
// filter with PNG and TIFF predictors.
package pdf

// ObjectType identifies the kind of a PDF object.
type ObjectType int

const (
	ObjNull ObjectType = iota
	ObjBool
	ObjInt
	ObjFloat
	ObjString
	ObjName
	ObjArray
	ObjDict
	ObjStream
	ObjRef
)

// Object holds any PDF object value.
type Object struct {
	Type   ObjectType
	Bool   bool
	Int    int64
	Float  float64
	Str    []byte
	Name   string
	Array  []*Object
	Dict   Dict
	Stream []byte // raw, still-encoded stream data
	Ref    Reference
}

// Number returns the numeric value of an int or float object.
func (o *Object) Number() (float64, bool) {
	if o == nil {
		return 0, false
	}
	switch o.Type {
	case ObjInt:
		return float64(o.Int), true
	case ObjFloat:
		return o.Float, true
	}
	return 0, false
}

var null = &Object{Type: ObjNull}

// Reference is an indirect object reference (N G R).
type Reference struct {
	Number int
	Gen    int
}

// Dict is a PDF dictionary (name -> object).
type Dict map[string]*Object

// GetInt returns the integer value of a Dict entry.
func (d Dict) GetInt(key string) (int64, bool) {
	f, ok := d[key].Number()
	return int64(f), ok
}

// GetName returns the name value of a Dict entry.
func (d Dict) GetName(key string) (string, bool) {
	obj, ok := d[key]
	if !ok {
		return "", false
	}
	switch obj.Type {
	case ObjName:
		return obj.Name, true
	case ObjString:
		return string(obj.Str), true
	}
	return "", false
}

// GetArray returns the array value of a Dict entry. A single object is
// treated as a 1-element array.
func (d Dict) GetArray(key string) ([]*Object, bool) {
	obj, ok := d[key]
	if !ok {
		return nil, false
	}
	if obj.Type == ObjArray {
		return obj.Array, true
	}
	return []*Object{obj}, true
}

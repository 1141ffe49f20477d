package qrpdf

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the library. Every failure produced by a
// [Generator] matches exactly one of them with [errors.Is].
var (
	// ErrInvalidArgument is returned for a non-positive size, empty content
	// or an unknown encoder, renderer or error-correction name.
	ErrInvalidArgument = errors.New("qrpdf: invalid argument")

	// ErrEncode is returned when the payload cannot be encoded, usually
	// because it exceeds the capacity of the chosen error-correction level.
	ErrEncode = errors.New("qrpdf: encoding failed")

	// ErrImage is returned when the raster cannot be serialized.
	ErrImage = errors.New("qrpdf: image failed")

	// ErrRender is returned when the PDF document cannot be produced.
	ErrRender = errors.New("qrpdf: rendering failed")

	// ErrIO is returned when the output directory is unusable or the file
	// cannot be written.
	ErrIO = errors.New("qrpdf: i/o failed")

	// ErrVerify is returned when the rendered code does not decode back to
	// the input content.
	ErrVerify = errors.New("qrpdf: verification failed")

	// ErrClosed is returned when attempting to use a closed [Generator] or
	// [ChromeRenderer].
	ErrClosed = errors.New("qrpdf: closed")
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindEncode
	KindImage
	KindRender
	KindIO
	KindVerify
	KindClosed
)

var kindSentinels = map[Kind]error{
	KindInvalidArgument: ErrInvalidArgument,
	KindEncode:          ErrEncode,
	KindImage:           ErrImage,
	KindRender:          ErrRender,
	KindIO:              ErrIO,
	KindVerify:          ErrVerify,
	KindClosed:          ErrClosed,
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindEncode:
		return "encode"
	case KindImage:
		return "image"
	case KindRender:
		return "render"
	case KindIO:
		return "io"
	case KindVerify:
		return "verify"
	case KindClosed:
		return "closed"
	}
	return "unknown"
}

// Error describes a failed pipeline step.
type Error struct {
	Op   string // pipeline step, e.g. "encode" or "write"
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("qrpdf: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("qrpdf: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the kind of the first [*Error] in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrClosed) {
		return KindClosed
	}
	return KindUnknown
}

func newError(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

func invalidArgf(op, format string, args ...any) *Error {
	return newError(op, KindInvalidArgument, fmt.Errorf(format, args...))
}

// Package command describes the commands a stream can carry.
//
// Every command has a static [Descriptor]: a numeric code, a name, the
// ordered argument [Type] list and an optional return slot. Descriptors
// are collected in a [Registry], which both the encoder and the decoder
// consult read-only.
//
// # Types
//
// Argument types form a closed set identified by [Kind]:
//
//   - Scalar: fixed-width numbers (int8 ... float64), see [Elem]
//   - Boolean: one byte, decoded to a Go bool
//   - Ref: a 4-byte handle id standing in for a live object
//   - Location: a 4-byte handle id for uniform locations
//   - ArrayBuffer: a typed numeric array of any length
//   - String: text of any length
//   - Image: width*height RGBA8 pixels
//
// Fixed-width types have a static byte width. Variable-width types
// (ArrayBuffer, String, Image) carry their size in header words of the
// command-code stream instead.
package command

import "fmt"

// Kind identifies the variant of an argument type.
type Kind uint8

const (
	// KindInvalid is the zero Kind. No valid Type has it.
	KindInvalid Kind = iota
	KindScalar
	KindBoolean
	KindRef
	KindLocation
	KindArrayBuffer
	KindString
	KindImage
)

// kindNames maps Kind values to their string representation.
var kindNames = [...]string{
	KindInvalid:     "invalid",
	KindScalar:      "scalar",
	KindBoolean:     "bool",
	KindRef:         "ref",
	KindLocation:    "location",
	KindArrayBuffer: "arraybuffer",
	KindString:      "string",
	KindImage:       "image",
}

// String returns the string representation of a Kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Elem is the numeric representation of a scalar argument or of the
// elements of an array buffer. Its value doubles as the element-type
// tag written into the command-code stream.
type Elem uint8

const (
	ElemInvalid Elem = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
	Float64
)

var elemNames = [...]string{
	ElemInvalid: "invalid",
	Int8:        "int8",
	Uint8:       "uint8",
	Int16:       "int16",
	Uint16:      "uint16",
	Int32:       "int32",
	Uint32:      "uint32",
	Float32:     "float32",
	Float64:     "float64",
}

var elemSizes = [...]int{
	Int8:    1,
	Uint8:   1,
	Int16:   2,
	Uint16:  2,
	Int32:   4,
	Uint32:  4,
	Float32: 4,
	Float64: 8,
}

// String returns the string representation of an Elem.
func (e Elem) String() string {
	if int(e) < len(elemNames) {
		return elemNames[e]
	}
	return "Unknown"
}

// IsValid reports whether e names a known numeric representation.
func (e Elem) IsValid() bool {
	return e > ElemInvalid && e <= Float64
}

// Size returns the width of one element in bytes, or 0 for an invalid Elem.
func (e Elem) Size() int {
	if !e.IsValid() {
		return 0
	}
	return elemSizes[e]
}

// IsFloat reports whether e is a floating-point representation.
func (e Elem) IsFloat() bool {
	return e == Float32 || e == Float64
}

// RefSize is the encoded width of a Ref or Location id.
const RefSize = 4

// Type describes one argument (or the return slot) of a command.
// Elem is meaningful for KindScalar and KindArrayBuffer only; for an
// array buffer it is the nominal element type, the concrete one travels
// in the stream.
//
// Type is a comparable value; the predefined variables below cover every
// fixed-width type.
type Type struct {
	Kind Kind
	Elem Elem
}

// Predefined types.
var (
	TypeInt8     = Scalar(Int8)
	TypeUint8    = Scalar(Uint8)
	TypeInt16    = Scalar(Int16)
	TypeUint16   = Scalar(Uint16)
	TypeInt32    = Scalar(Int32)
	TypeUint32   = Scalar(Uint32)
	TypeFloat32  = Scalar(Float32)
	TypeFloat64  = Scalar(Float64)
	TypeBool     = Type{Kind: KindBoolean}
	TypeRef      = Type{Kind: KindRef}
	TypeLocation = Type{Kind: KindLocation}
	TypeString   = Type{Kind: KindString}
	TypeImage    = Type{Kind: KindImage}
)

// Scalar returns the fixed-width numeric type for e.
func Scalar(e Elem) Type {
	return Type{Kind: KindScalar, Elem: e}
}

// ArrayBuffer returns the variable-length array type with nominal element e.
func ArrayBuffer(e Elem) Type {
	return Type{Kind: KindArrayBuffer, Elem: e}
}

// IsValid reports whether t is a well-formed type.
func (t Type) IsValid() bool {
	switch t.Kind {
	case KindScalar, KindArrayBuffer:
		return t.Elem.IsValid()
	case KindBoolean, KindRef, KindLocation, KindString, KindImage:
		return t.Elem == ElemInvalid
	default:
		return false
	}
}

// Fixed reports whether t has a static byte width.
func (t Type) Fixed() bool {
	switch t.Kind {
	case KindScalar, KindBoolean, KindRef, KindLocation:
		return true
	default:
		return false
	}
}

// IsHandle reports whether t encodes an object handle (Ref or Location).
func (t Type) IsHandle() bool {
	return t.Kind == KindRef || t.Kind == KindLocation
}

// Width returns the static byte width of a fixed-width type and 0 for
// variable-width types.
func (t Type) Width() int {
	switch t.Kind {
	case KindScalar:
		return t.Elem.Size()
	case KindBoolean:
		return 1
	case KindRef, KindLocation:
		return RefSize
	default:
		return 0
	}
}

// HeaderWords returns how many words of the command-code stream describe
// a value of type t.
func (t Type) HeaderWords() int {
	switch t.Kind {
	case KindArrayBuffer, KindImage:
		return 2
	case KindString:
		return 1
	default:
		return 0
	}
}

// String returns a short human-readable form such as "int32" or
// "arraybuffer<float32>".
func (t Type) String() string {
	switch t.Kind {
	case KindScalar:
		return t.Elem.String()
	case KindArrayBuffer:
		return fmt.Sprintf("arraybuffer<%s>", t.Elem)
	default:
		return t.Kind.String()
	}
}

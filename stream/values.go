package stream

import (
	"encoding/binary"
	"errors"
	"image"
	"math"
	"reflect"
	"unicode/utf8"

	"fortio.org/safecast"

	"github.com/gogpu/glstream/command"
)

var (
	errNotNumber  = errors.New("not a number")
	errNotBool    = errors.New("not a bool")
	errNotArray   = errors.New("not a typed numeric slice")
	errNotString  = errors.New("not a string")
	errBadUTF8    = errors.New("invalid UTF-8 text")
	errNotPixels  = errors.New("not a pixel buffer or image")
	errNotList    = errors.New("return placeholder is not a slice")
	errBadElement = errors.New("invalid element type")
)

// scalarBits converts v to the bit pattern of e. Integer targets are
// range-checked; float targets accept any number.
func scalarBits(v any, e command.Elem) (uint64, error) {
	if f, ok := v.(float32); ok && e == command.Float32 {
		return uint64(math.Float32bits(f)), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intBits(rv.Int(), e)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return intBits(rv.Uint(), e)
	case reflect.Float32, reflect.Float64:
		return floatBits(rv.Float(), e)
	default:
		return 0, errNotNumber
	}
}

func intBits[T int64 | uint64](x T, e command.Elem) (uint64, error) {
	switch e {
	case command.Int8:
		n, err := safecast.Conv[int8](x)
		return uint64(uint8(n)), err
	case command.Uint8:
		n, err := safecast.Conv[uint8](x)
		return uint64(n), err
	case command.Int16:
		n, err := safecast.Conv[int16](x)
		return uint64(uint16(n)), err
	case command.Uint16:
		n, err := safecast.Conv[uint16](x)
		return uint64(n), err
	case command.Int32:
		n, err := safecast.Conv[int32](x)
		return uint64(uint32(n)), err
	case command.Uint32:
		n, err := safecast.Conv[uint32](x)
		return uint64(n), err
	case command.Float32:
		return uint64(math.Float32bits(float32(x))), nil
	case command.Float64:
		return math.Float64bits(float64(x)), nil
	default:
		return 0, errBadElement
	}
}

// floatBits rejects fractional or out-of-range values for integer
// targets.
func floatBits(x float64, e command.Elem) (uint64, error) {
	switch e {
	case command.Int8:
		n, err := safecast.Convert[int8](x)
		return uint64(uint8(n)), err
	case command.Uint8:
		n, err := safecast.Convert[uint8](x)
		return uint64(n), err
	case command.Int16:
		n, err := safecast.Convert[int16](x)
		return uint64(uint16(n)), err
	case command.Uint16:
		n, err := safecast.Convert[uint16](x)
		return uint64(n), err
	case command.Int32:
		n, err := safecast.Convert[int32](x)
		return uint64(uint32(n)), err
	case command.Uint32:
		n, err := safecast.Convert[uint32](x)
		return uint64(n), err
	case command.Float32:
		return uint64(math.Float32bits(float32(x))), nil
	case command.Float64:
		return math.Float64bits(x), nil
	default:
		return 0, errBadElement
	}
}

// scalarValue turns a bit pattern back into the Go value for e.
func scalarValue(bits uint64, e command.Elem) any {
	switch e {
	case command.Int8:
		return int8(uint8(bits))
	case command.Uint8:
		return uint8(bits)
	case command.Int16:
		return int16(uint16(bits))
	case command.Uint16:
		return uint16(bits)
	case command.Int32:
		return int32(uint32(bits))
	case command.Uint32:
		return uint32(bits)
	case command.Float32:
		return math.Float32frombits(uint32(bits))
	case command.Float64:
		return math.Float64frombits(bits)
	default:
		return nil
	}
}

// boolBits accepts a bool, or an integer 0/1 as GL's GLboolean.
func boolBits(v any) (uint64, error) {
	if b, ok := v.(bool); ok {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n := rv.Int(); n == 0 || n == 1 {
			return uint64(n), nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n := rv.Uint(); n <= 1 {
			return n, nil
		}
	}
	return 0, errNotBool
}

// putBits writes the low size bytes of bits in native byte order.
func putBits(dst []byte, size int, bits uint64) {
	switch size {
	case 1:
		dst[0] = byte(bits)
	case 2:
		binary.NativeEndian.PutUint16(dst, uint16(bits))
	case 4:
		binary.NativeEndian.PutUint32(dst, uint32(bits))
	case 8:
		binary.NativeEndian.PutUint64(dst, bits)
	}
}

// readBits reads a size-byte native-endian value from src.
func readBits(src []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(src[0])
	case 2:
		return uint64(binary.NativeEndian.Uint16(src))
	case 4:
		return uint64(binary.NativeEndian.Uint32(src))
	case 8:
		return binary.NativeEndian.Uint64(src)
	default:
		return 0
	}
}

// arrayElem returns the element type of a typed numeric slice.
func arrayElem(v any) (command.Elem, int, bool) {
	switch a := v.(type) {
	case []int8:
		return command.Int8, len(a), true
	case []uint8:
		return command.Uint8, len(a), true
	case []int16:
		return command.Int16, len(a), true
	case []uint16:
		return command.Uint16, len(a), true
	case []int32:
		return command.Int32, len(a), true
	case []uint32:
		return command.Uint32, len(a), true
	case []float32:
		return command.Float32, len(a), true
	case []float64:
		return command.Float64, len(a), true
	default:
		return command.ElemInvalid, 0, false
	}
}

// arrayBytes returns the raw native-endian bytes of a typed numeric slice.
func arrayBytes(v any) (command.Elem, []byte, error) {
	e, n, ok := arrayElem(v)
	if !ok {
		return command.ElemInvalid, nil, errNotArray
	}
	buf := make([]byte, n*e.Size())
	if n == 0 {
		return e, buf, nil
	}
	if _, err := binary.Encode(buf, binary.NativeEndian, v); err != nil {
		return command.ElemInvalid, nil, err
	}
	return e, buf, nil
}

// arrayValue decodes raw bytes into a new slice of element type e.
// len(b) must be a multiple of e.Size().
func arrayValue(b []byte, e command.Elem) (any, error) {
	n := len(b) / e.Size()
	var out any
	switch e {
	case command.Int8:
		out = make([]int8, n)
	case command.Uint8:
		return append(make([]uint8, 0, n), b...), nil
	case command.Int16:
		out = make([]int16, n)
	case command.Uint16:
		out = make([]uint16, n)
	case command.Int32:
		out = make([]int32, n)
	case command.Uint32:
		out = make([]uint32, n)
	case command.Float32:
		out = make([]float32, n)
	case command.Float64:
		out = make([]float64, n)
	default:
		return nil, errBadElement
	}
	if n == 0 {
		return out, nil
	}
	if _, err := binary.Decode(b, binary.NativeEndian, out); err != nil {
		return nil, err
	}
	return out, nil
}

// stringValue accepts a string or raw bytes holding valid UTF-8.
func stringValue(v any) (string, error) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return "", errNotString
	}
	if !utf8.ValidString(s) {
		return "", errBadUTF8
	}
	return s, nil
}

// pixelsValue accepts *Pixels, Pixels or any image.Image.
func pixelsValue(v any) (*Pixels, error) {
	switch p := v.(type) {
	case *Pixels:
		if p == nil {
			return nil, errNotPixels
		}
		return p, p.Validate()
	case Pixels:
		return &p, p.Validate()
	case image.Image:
		return PixelsFromImage(p), nil
	default:
		return nil, errNotPixels
	}
}

// listValues flattens a return placeholder for a list-returning command.
func listValues(v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	if list, ok := v.([]any); ok {
		return list, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errNotList
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

package stream

import (
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// TextCodec converts String arguments to and from bytes. Only the encoded
// byte length is written to the stream, so both ends of a stream must use
// the same codec.
//
// The zero TextCodec behaves like UTF8.
type TextCodec struct {
	name string
	enc  encoding.Encoding
}

var (
	// UTF8 is the preferred codec.
	UTF8 = TextCodec{name: "utf-8", enc: unicode.UTF8}

	// UTF16 is the fallback codec: two bytes per UTF-16 code unit in
	// native byte order, no byte order mark.
	UTF16 = TextCodec{name: "utf-16", enc: unicode.UTF16(nativeEndianness(), unicode.IgnoreBOM)}
)

// TextCodecByName returns the codec for "utf-8"/"utf8" or
// "utf-16"/"utf16", ignoring case.
func TextCodecByName(name string) (TextCodec, bool) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return UTF8, true
	case "utf-16", "utf16":
		return UTF16, true
	default:
		return TextCodec{}, false
	}
}

// Name returns the codec name.
func (c TextCodec) Name() string {
	if c.enc == nil {
		return UTF8.name
	}
	return c.name
}

func (c TextCodec) encoding() encoding.Encoding {
	if c.enc == nil {
		return unicode.UTF8
	}
	return c.enc
}

// Encode returns the encoded bytes of s. Invalid UTF-8 in s is an error
// rather than being replaced.
func (c TextCodec) Encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, errBadUTF8
	}
	return c.encoding().NewEncoder().Bytes([]byte(s))
}

// Decode returns the string encoded in b.
func (c TextCodec) Decode(b []byte) (string, error) {
	out, err := c.encoding().NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func nativeEndianness() unicode.Endianness {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	if b[0] == 1 {
		return unicode.LittleEndian
	}
	return unicode.BigEndian
}

// Package archive stores recorded command streams on disk.
//
// An archive is a small envelope around one [stream.WireData]:
//
//	{magic: "GLST", version: 1, wire: {prefix, words, values}}
//
// encoded as CBOR or MessagePack. CBOR output uses canonical encoding,
// so the same stream always produces the same bytes.
//
//	w := stream.NewWriter(webgl.Registry())
//	// ... record ...
//	err := archive.WriteFile("frame.glst", w.Buffer())
//
//	wire, err := archive.ReadFile("frame.glst")
//	p := stream.NewPlayer(webgl.Registry())
//	err = p.AddBuffer(wire)
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/gogpu/glstream"
	"github.com/gogpu/glstream/stream"
)

// Envelope identification.
const (
	Magic   = "GLST"
	Version = 1
)

// Archive errors.
var (
	ErrUnknownFormat      = errors.New("archive: unknown format")
	ErrBadMagic           = errors.New("archive: not a glstream archive")
	ErrUnsupportedVersion = errors.New("archive: unsupported version")
)

// Format selects the archive encoding.
type Format uint8

const (
	// CBOR is the default format (extensions .glst and .cbor).
	CBOR Format = iota + 1
	// MessagePack is selected by the .msgpack and .mp extensions.
	MessagePack
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case CBOR:
		return "cbor"
	case MessagePack:
		return "msgpack"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glst", ".cbor":
		return CBOR, nil
	case ".msgpack", ".mp":
		return MessagePack, nil
	default:
		return 0, fmt.Errorf("%w: extension of %q", ErrUnknownFormat, path)
	}
}

// envelope is the on-disk record.
type envelope struct {
	Magic   string          `cbor:"magic" msgpack:"magic"`
	Version uint32          `cbor:"version" msgpack:"version"`
	Wire    stream.WireData `cbor:"wire" msgpack:"wire"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("archive: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Encode writes wire to w in format f.
func Encode(w io.Writer, wire stream.WireData, f Format) error {
	env := envelope{Magic: Magic, Version: Version, Wire: wire}
	var err error
	switch f {
	case CBOR:
		err = cborEncMode.NewEncoder(w).Encode(&env)
	case MessagePack:
		err = msgpack.NewEncoder(w).Encode(&env)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	if err != nil {
		return fmt.Errorf("archive: encode %v: %w", f, err)
	}
	return nil
}

// Decode reads one archive in format f from r.
func Decode(r io.Reader, f Format) (stream.WireData, error) {
	var env envelope
	var err error
	switch f {
	case CBOR:
		err = cbor.NewDecoder(r).Decode(&env)
	case MessagePack:
		err = msgpack.NewDecoder(r).Decode(&env)
	default:
		return stream.WireData{}, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	if err != nil {
		return stream.WireData{}, fmt.Errorf("archive: decode %v: %w", f, err)
	}
	if env.Magic != Magic {
		return stream.WireData{}, fmt.Errorf("%w: magic %q", ErrBadMagic, env.Magic)
	}
	if env.Version != Version {
		return stream.WireData{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	return env.Wire, nil
}

// Marshal returns the encoding of wire in format f.
func Marshal(wire stream.WireData, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, wire, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes an archive held in memory.
func Unmarshal(data []byte, f Format) (stream.WireData, error) {
	return Decode(bytes.NewReader(data), f)
}

// WriteFile writes wire to path, choosing the format from the extension.
// The file is written to a temporary name first and renamed into place.
func WriteFile(path string, wire stream.WireData) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".glstream-*")
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := Encode(tmp, wire, f); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	glstream.Logger().Debug("archive: wrote", "path", path, "format", f,
		"commands", wire.Len(), "bytes", wire.Size())
	return nil
}

// ReadFile reads the archive at path, choosing the format from the
// extension.
func ReadFile(path string) (stream.WireData, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return stream.WireData{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return stream.WireData{}, fmt.Errorf("archive: %w", err)
	}
	defer func() { _ = file.Close() }()

	wire, err := Decode(file, f)
	if err != nil {
		return stream.WireData{}, fmt.Errorf("archive: %s: %w", path, err)
	}
	return wire, nil
}

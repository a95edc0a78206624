package stream

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/gogpu/glstream"
	"github.com/gogpu/glstream/command"
	"github.com/gogpu/glstream/reftable"
)

// Writer records API calls into a command-code stream and value buffers.
//
// Example:
//
//	w := stream.NewWriter(webgl.Registry())
//	buf := &Handle{}
//	_ = w.AddCommand("createBuffer", buf) // placeholder for the result
//	_ = w.AddCommand("bindBuffer", webgl.ArrayBuffer, buf)
//	wire := w.Buffer()
//
// The Writer is not safe for concurrent use. Use one Writer per producer.
type Writer struct {
	registry *command.Registry
	refs     *reftable.Table
	cfg      config

	words  []uint32
	values [][]byte
}

// NewWriter creates a Writer for the commands in reg.
func NewWriter(reg *command.Registry, opts ...Option) *Writer {
	return &Writer{
		registry: reg,
		refs:     reftable.New(),
		cfg:      newConfig(opts),
		words:    make([]uint32, 0, 256),
		values:   make([][]byte, 0, 64),
	}
}

// AddCommand encodes one call.
//
// Commands the registry does not know are skipped and logged at debug
// level; AddCommand returns nil for them. For commands with a declared
// return, the caller passes the placeholder object(s) that stand for the
// result as a trailing argument: a single object, or a slice of objects
// for list returns. Later calls refer to the result through the same
// placeholder.
//
// Nothing is committed if encoding fails.
func (w *Writer) AddCommand(name string, args ...any) error {
	desc, ok := w.registry.LookupName(name)
	if !ok {
		glstream.Logger().Debug("stream: skipping unknown command", "name", name)
		return nil
	}
	if len(args) != desc.Arity() {
		return &ArgumentCountError{Name: name, Want: desc.Arity(), Got: len(args)}
	}

	mark := w.refs.Next()
	words, value, err := w.encode(desc, args)
	if err != nil {
		w.refs.Rollback(mark)
		return err
	}
	w.words = append(w.words, words...)
	w.values = append(w.values, value)
	return nil
}

// slot is the layout of one argument inside the value buffer.
type slot struct {
	width int
	fixed bool
	bits  uint64 // fixed-width payload
	data  []byte // variable-width payload
}

// encode runs the layout pass and then the write pass for one command.
func (w *Writer) encode(desc *command.Descriptor, args []any) ([]uint32, []byte, error) {
	words := make([]uint32, 1, 1+desc.HeaderWords())
	words[0] = desc.Code

	// Layout pass: widths, header words and ref ids.
	slots := make([]slot, len(desc.Args))
	total := 0
	for i, t := range desc.Args {
		s, hdr, err := w.layout(t, args[i])
		if err != nil {
			return nil, nil, &ArgumentTypeError{Name: desc.Name, Index: i, Type: t, Value: args[i], Err: err}
		}
		slots[i] = s
		words = append(words, hdr...)
		total += s.width
	}

	var ret []uint32
	if desc.Return.Declared() {
		ids, err := w.returnIDs(desc.Return, args[len(args)-1])
		if err != nil {
			return nil, nil, &ArgumentTypeError{
				Name: desc.Name, Index: len(desc.Args), Type: desc.Return.Type,
				Value: args[len(args)-1], Err: err,
			}
		}
		ret = ids
		total += len(ret) * command.RefSize
	}

	// Write pass.
	value := make([]byte, total)
	off := 0
	for _, s := range slots {
		if s.fixed {
			putBits(value[off:], s.width, s.bits)
		} else {
			copy(value[off:], s.data)
		}
		off += s.width
	}
	for _, id := range ret {
		putBits(value[off:], command.RefSize, uint64(id))
		off += command.RefSize
	}
	return words, value, nil
}

// layout measures one argument and converts it to its stored form.
func (w *Writer) layout(t command.Type, v any) (slot, []uint32, error) {
	switch t.Kind {
	case command.KindScalar:
		bits, err := scalarBits(v, t.Elem)
		return slot{width: t.Width(), fixed: true, bits: bits}, nil, err

	case command.KindBoolean:
		bits, err := boolBits(v)
		return slot{width: t.Width(), fixed: true, bits: bits}, nil, err

	case command.KindRef, command.KindLocation:
		id, err := w.refs.IDFor(v)
		return slot{width: t.Width(), fixed: true, bits: uint64(id)}, nil, err

	case command.KindArrayBuffer:
		elem, data, err := arrayBytes(v)
		if err != nil {
			return slot{}, nil, err
		}
		n, err := safecast.Conv[uint32](len(data))
		if err != nil {
			return slot{}, nil, err
		}
		return slot{width: len(data), data: data}, []uint32{uint32(elem), n}, nil

	case command.KindString:
		s, err := stringValue(v)
		if err != nil {
			return slot{}, nil, err
		}
		data, err := w.cfg.text.Encode(s)
		if err != nil {
			return slot{}, nil, err
		}
		n, err := safecast.Conv[uint32](len(data))
		if err != nil {
			return slot{}, nil, err
		}
		return slot{width: len(data), data: data}, []uint32{n}, nil

	case command.KindImage:
		px, err := pixelsValue(v)
		if err != nil {
			return slot{}, nil, err
		}
		return slot{width: len(px.Data), data: px.Data}, []uint32{px.Width, px.Height}, nil

	default:
		return slot{}, nil, fmt.Errorf("unsupported type %v", t)
	}
}

// returnIDs assigns ids to the placeholder(s) of a declared return.
func (w *Writer) returnIDs(r command.Return, v any) ([]uint32, error) {
	if r.Shape == command.ReturnSingle {
		id, err := w.refs.IDFor(v)
		if err != nil {
			return nil, err
		}
		return []uint32{id}, nil
	}

	objs, err := listValues(v)
	if err != nil {
		return nil, err
	}
	ids := make([]uint32, len(objs))
	for i, obj := range objs {
		if ids[i], err = w.refs.IDFor(obj); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// Buffer returns a snapshot of the recorded session. The
// snapshot shares no memory with the Writer.
func (w *Writer) Buffer() WireData {
	return WireData{
		RefPrefix: w.cfg.prefix,
		Words:     w.words,
		Values:    w.values,
	}.Clone()
}

// Len returns the number of recorded commands.
func (w *Writer) Len() int {
	return len(w.values)
}

// RefPrefix returns the prefix stamped on this Writer's buffers.
func (w *Writer) RefPrefix() string {
	return w.cfg.prefix
}

// Table returns the Writer's reference table.
func (w *Writer) Table() *reftable.Table {
	return w.refs
}

// ClearCommands drops the recorded commands but keeps the reference
// table, so later buffers may keep referring to earlier handles.
func (w *Writer) ClearCommands() {
	w.words = w.words[:0]
	w.values = w.values[:0]
}

// Reset drops the recorded commands and the reference table, starting a
// new session whose ids begin again at 1.
func (w *Writer) Reset() {
	w.ClearCommands()
	w.refs = reftable.New()
}

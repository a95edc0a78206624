package stream

import (
	"fmt"
	"reflect"

	"github.com/gogpu/glstream"
	"github.com/gogpu/glstream/command"
	"github.com/gogpu/glstream/reftable"
)

// Target is a live implementation of the recorded API.
// Invoke performs the named call with already-resolved arguments and
// returns its result; the result matters only for commands that declare
// a return.
//
// The target package provides adapters and a registry of named targets.
type Target interface {
	Invoke(name string, args []any) (any, error)
}

// Interceptor sees every call right before it reaches the target. It may
// return a replacement argument list; returning nil keeps args.
type Interceptor func(name string, args []any) []any

// Record is one decoded command.
//
// Values holds one decoded value per argument: int8 ... float64 for
// scalars, bool for booleans, uint32 ids for Ref and Location, typed
// slices for array buffers, string, and *Pixels for images.
type Record struct {
	Name   string
	Code   uint32
	Args   []command.Type
	Values []any
	Return command.Return
	// Ref holds the ids the result is bound to: none, one, or one per
	// list element. A zero id means the result is not tracked.
	Ref []uint32
	// Prefix is the ref prefix of the buffer the record came from.
	Prefix string
}

// Player decodes recorded buffers and replays them against a Target.
//
// Example:
//
//	p := stream.NewPlayer(webgl.Registry())
//	if err := p.AddBuffer(wire); err != nil {
//	    return err
//	}
//	if err := p.Playback(target.Methods(gl), nil); err != nil {
//	    return err
//	}
//
// The Player is not safe for concurrent use.
type Player struct {
	registry *command.Registry
	refs     *reftable.Table
	cfg      config

	records []Record
	played  int
}

// NewPlayer creates a Player for the commands in reg.
func NewPlayer(reg *command.Registry, opts ...Option) *Player {
	return &Player{
		registry: reg,
		refs:     reftable.New(),
		cfg:      newConfig(opts),
		records:  make([]Record, 0, 64),
	}
}

// AddBuffer decodes wire and appends its records to the pending list.
// The buffer is decoded completely before anything is appended: on error
// the command list is unchanged.
func (p *Player) AddBuffer(wire WireData) error {
	records, err := p.decode(wire)
	if err != nil {
		return err
	}
	p.records = append(p.records, records...)
	glstream.Logger().Debug("stream: buffer added",
		"prefix", wire.RefPrefix, "commands", len(records), "bytes", wire.Size())
	return nil
}

// reader walks the code stream and the value buffer of one command.
type reader struct {
	index int
	name  string
	words []uint32
	wpos  int
	value []byte
	off   int
}

func (r *reader) word() (uint32, error) {
	if r.wpos >= len(r.words) {
		return 0, &TruncatedBufferError{
			Command: r.index, Name: r.name, Section: SectionWords,
			Offset: r.wpos, Need: 1, Len: len(r.words),
		}
	}
	w := r.words[r.wpos]
	r.wpos++
	return w, nil
}

func (r *reader) take(n uint64) ([]byte, error) {
	if n > uint64(len(r.value)-r.off) {
		return nil, &TruncatedBufferError{
			Command: r.index, Name: r.name, Section: SectionValues,
			Offset: r.off, Need: n, Len: len(r.value),
		}
	}
	b := r.value[r.off : r.off+int(n)]
	r.off += int(n)
	return b, nil
}

func (r *reader) malformed(format string, args ...any) error {
	return &MalformedBufferError{Command: r.index, Reason: fmt.Sprintf(format, args...)}
}

func (p *Player) decode(wire WireData) ([]Record, error) {
	var records []Record
	r := &reader{words: wire.Words}
	for r.wpos < len(r.words) {
		r.index = len(records)
		code := r.words[r.wpos]
		r.wpos++
		desc, ok := p.registry.LookupCode(code)
		if !ok {
			return nil, r.malformed("unknown command code %d", code)
		}
		if r.index >= len(wire.Values) {
			return nil, r.malformed("no value buffer for %s", desc.Name)
		}
		r.name = desc.Name
		r.value = wire.Values[r.index]
		r.off = 0

		rec, err := p.decodeCommand(r, desc)
		if err != nil {
			return nil, err
		}
		rec.Prefix = wire.RefPrefix
		records = append(records, rec)
	}
	if len(records) != len(wire.Values) {
		return nil, &MalformedBufferError{
			Command: len(records),
			Reason:  fmt.Sprintf("%d value buffers for %d commands", len(wire.Values), len(records)),
		}
	}
	return records, nil
}

// decodeCommand mirrors Writer.encode: every width is computed from the
// descriptor and the header words exactly as the layout pass did.
func (p *Player) decodeCommand(r *reader, desc *command.Descriptor) (Record, error) {
	rec := Record{
		Name:   desc.Name,
		Code:   desc.Code,
		Args:   desc.Args,
		Values: make([]any, len(desc.Args)),
		Return: desc.Return,
	}
	for i, t := range desc.Args {
		v, err := p.decodeValue(r, t)
		if err != nil {
			return Record{}, err
		}
		rec.Values[i] = v
	}

	switch desc.Return.Shape {
	case command.ReturnSingle:
		b, err := r.take(command.RefSize)
		if err != nil {
			return Record{}, err
		}
		rec.Ref = []uint32{uint32(readBits(b, command.RefSize))}
	case command.ReturnList:
		rest := len(r.value) - r.off
		if rest%command.RefSize != 0 {
			return Record{}, r.malformed("%s: list return slot of %d bytes", desc.Name, rest)
		}
		rec.Ref = make([]uint32, rest/command.RefSize)
		for i := range rec.Ref {
			b, _ := r.take(command.RefSize)
			rec.Ref[i] = uint32(readBits(b, command.RefSize))
		}
	}

	if r.off != len(r.value) {
		return Record{}, r.malformed("%s: %d trailing bytes in value buffer", desc.Name, len(r.value)-r.off)
	}
	return rec, nil
}

func (p *Player) decodeValue(r *reader, t command.Type) (any, error) {
	switch t.Kind {
	case command.KindScalar:
		b, err := r.take(uint64(t.Width()))
		if err != nil {
			return nil, err
		}
		return scalarValue(readBits(b, t.Width()), t.Elem), nil

	case command.KindBoolean:
		b, err := r.take(1)
		if err != nil {
			return nil, err
		}
		return b[0] != 0, nil

	case command.KindRef, command.KindLocation:
		b, err := r.take(command.RefSize)
		if err != nil {
			return nil, err
		}
		return uint32(readBits(b, command.RefSize)), nil

	case command.KindArrayBuffer:
		tag, err := r.word()
		if err != nil {
			return nil, err
		}
		n, err := r.word()
		if err != nil {
			return nil, err
		}
		et, ok := p.registry.ArrayElementType(tag)
		if !ok {
			return nil, r.malformed("%s: invalid element type tag %d", r.name, tag)
		}
		if uint64(n)%uint64(et.Width()) != 0 {
			return nil, r.malformed("%s: %d bytes is not a whole number of %v", r.name, n, et)
		}
		b, err := r.take(uint64(n))
		if err != nil {
			return nil, err
		}
		return arrayValue(b, et.Elem)

	case command.KindString:
		n, err := r.word()
		if err != nil {
			return nil, err
		}
		b, err := r.take(uint64(n))
		if err != nil {
			return nil, err
		}
		s, err := p.cfg.text.Decode(b)
		if err != nil {
			return nil, r.malformed("%s: %v", r.name, err)
		}
		return s, nil

	case command.KindImage:
		width, err := r.word()
		if err != nil {
			return nil, err
		}
		height, err := r.word()
		if err != nil {
			return nil, err
		}
		b, err := r.take(pixelBytes(width, height))
		if err != nil {
			return nil, err
		}
		return &Pixels{Width: width, Height: height, Data: append([]byte(nil), b...)}, nil

	default:
		return nil, r.malformed("%s: unsupported type %v", r.name, t)
	}
}

// Playback replays every pending record, in order, against t.
//
// Ref and Location arguments are resolved through the Player's reference
// table under the prefix of the buffer they came from. If ic is non-nil
// it may patch each call's arguments. Results of commands with a declared
// return are bound under the recorded id(s), which is how later records
// find handles created during this playback.
//
// Playback stops at the first failure and returns a *PlaybackError.
// Records replayed before the failure are no longer pending; the failing
// record and everything after it are, so a later Playback resumes there.
func (p *Player) Playback(t Target, ic Interceptor) error {
	start := p.played
	for p.played < len(p.records) {
		rec := &p.records[p.played]
		if err := p.execute(t, rec, ic); err != nil {
			return &PlaybackError{Index: p.played, Name: rec.Name, Err: err}
		}
		p.played++
	}
	glstream.Logger().Debug("stream: playback finished", "records", p.played-start)
	return nil
}

func (p *Player) execute(t Target, rec *Record, ic Interceptor) error {
	args := make([]any, len(rec.Values))
	for i, typ := range rec.Args {
		if !typ.IsHandle() {
			args[i] = rec.Values[i]
			continue
		}
		key := reftable.Key{Prefix: rec.Prefix, ID: rec.Values[i].(uint32)}
		obj, ok := p.refs.Resolve(key)
		if !ok {
			return &UnresolvedRefError{Key: key}
		}
		args[i] = obj
	}

	if ic != nil {
		if patched := ic(rec.Name, args); patched != nil {
			args = patched
		}
	}

	result, err := t.Invoke(rec.Name, args)
	if err != nil {
		return err
	}
	return p.bind(rec, result)
}

// bind stores a call's result under the record's return id(s).
func (p *Player) bind(rec *Record, result any) error {
	switch rec.Return.Shape {
	case command.ReturnSingle:
		if id := rec.Ref[0]; id != reftable.None {
			p.refs.Bind(reftable.Key{Prefix: rec.Prefix, ID: id}, result)
		}
	case command.ReturnList:
		if len(rec.Ref) == 0 {
			return nil
		}
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return fmt.Errorf("%w: got %T", ErrReturnShape, result)
		}
		if rv.Len() != len(rec.Ref) {
			glstream.Logger().Warn("stream: list result length differs from recording",
				"name", rec.Name, "recorded", len(rec.Ref), "got", rv.Len())
		}
		for i, id := range rec.Ref {
			if i >= rv.Len() {
				break
			}
			if id != reftable.None {
				p.refs.Bind(reftable.Key{Prefix: rec.Prefix, ID: id}, rv.Index(i).Interface())
			}
		}
	}
	return nil
}

// Commands returns all decoded records, played and pending.
func (p *Player) Commands() []Record {
	out := make([]Record, len(p.records))
	copy(out, p.records)
	return out
}

// Pending returns the number of records not yet replayed.
func (p *Player) Pending() int {
	return len(p.records) - p.played
}

// Table returns the Player's reference table. Bind pre-existing handles
// here before playback.
func (p *Player) Table() *reftable.Table {
	return p.refs
}

// ClearCommands drops all records but keeps the reference table.
func (p *Player) ClearCommands() {
	p.records = p.records[:0]
	p.played = 0
}

// Reset drops all records and the reference table.
func (p *Player) Reset() {
	p.ClearCommands()
	p.refs = reftable.New()
}

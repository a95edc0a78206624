package stream

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/gogpu/glstream/reftable"
	"github.com/gogpu/glstream/webgl"
)

// roundTrip encodes one command and decodes it back.
func roundTrip(t *testing.T, name string, args ...any) Record {
	t.Helper()
	w := NewWriter(testRegistry())
	if err := w.AddCommand(name, args...); err != nil {
		t.Fatalf("AddCommand(%s) error: %v", name, err)
	}
	p := NewPlayer(testRegistry())
	if err := p.AddBuffer(w.Buffer()); err != nil {
		t.Fatalf("AddBuffer error: %v", err)
	}
	recs := p.Commands()
	if len(recs) != 1 {
		t.Fatalf("decoded %d records, want 1", len(recs))
	}
	if recs[0].Name != name {
		t.Errorf("record name = %q, want %q", recs[0].Name, name)
	}
	return recs[0]
}

func TestRoundTrip_Scalars(t *testing.T) {
	rec := roundTrip(t, "scalars",
		int8(-128), uint8(255), int16(-32768), uint16(65535),
		int32(math.MinInt32), uint32(math.MaxUint32), float32(1.5), math.Pi)

	want := []any{
		int8(-128), uint8(255), int16(-32768), uint16(65535),
		int32(math.MinInt32), uint32(math.MaxUint32), float32(1.5), math.Pi,
	}
	for i, w := range want {
		if rec.Values[i] != w {
			t.Errorf("Values[%d] = %v (%T), want %v (%T)", i, rec.Values[i], rec.Values[i], w, w)
		}
	}
}

func TestRoundTrip_ScalarConversion(t *testing.T) {
	// Untyped constants arrive as int/float64 and are converted.
	rec := roundTrip(t, "scalars", 1, 2, 3, 4, 5, 6, 0.25, float32(-2))
	if rec.Values[0] != int8(1) || rec.Values[5] != uint32(6) {
		t.Errorf("integer conversion: got %v, %v", rec.Values[0], rec.Values[5])
	}
	if rec.Values[6] != float32(0.25) || rec.Values[7] != float64(-2) {
		t.Errorf("float conversion: got %v, %v", rec.Values[6], rec.Values[7])
	}
}

func TestRoundTrip_FloatBitExact(t *testing.T) {
	nan := math.Float32frombits(0x7fc00001)
	rec := roundTrip(t, "scalars", 0, 0, 0, 0, 0, 0, nan, math.Inf(-1))
	got, ok := rec.Values[6].(float32)
	if !ok || math.Float32bits(got) != 0x7fc00001 {
		t.Errorf("float32 NaN payload lost: %#x", math.Float32bits(got))
	}
	if !math.IsInf(rec.Values[7].(float64), -1) {
		t.Errorf("Values[7] = %v, want -Inf", rec.Values[7])
	}
}

func TestRoundTrip_Booleans(t *testing.T) {
	rec := roundTrip(t, "flags", true, 0)
	if rec.Values[0] != true || rec.Values[1] != false {
		t.Errorf("Values = %v, want [true false]", rec.Values)
	}
}

func TestRoundTrip_ArrayBuffers(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"int8", []int8{-1, 0, 1}},
		{"uint8", []uint8{1, 2, 3, 255}},
		{"int16", []int16{-300, 300}},
		{"uint16", []uint16{0, 65535}},
		{"int32", []int32{math.MinInt32, 7}},
		{"uint32", []uint32{1 << 31}},
		{"float32", []float32{0.5, -1, 3.25}},
		{"float64", []float64{math.E, math.Pi}},
		{"empty", []float32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := roundTrip(t, "upload", tt.value)
			if !reflect.DeepEqual(rec.Values[0], tt.value) {
				t.Errorf("decoded %v (%T), want %v (%T)", rec.Values[0], rec.Values[0], tt.value, tt.value)
			}
		})
	}
}

func TestRoundTrip_Strings(t *testing.T) {
	for _, s := range []string{"", "attribute vec2 pos;", "uniform 世界 🎨"} {
		rec := roundTrip(t, "label", nil, s)
		if rec.Values[1] != s {
			t.Errorf("decoded %q, want %q", rec.Values[1], s)
		}
	}
}

func TestRoundTrip_StringFallback(t *testing.T) {
	const src = "precision mediump float; // ∑ 🎨"
	w := NewWriter(testRegistry(), WithTextCodec(UTF16))
	if err := w.AddCommand("label", nil, src); err != nil {
		t.Fatalf("AddCommand error: %v", err)
	}
	buf := w.Buffer()

	units := 0
	for _, r := range src {
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	if got := buf.Words[1]; got != uint32(units*2) {
		t.Errorf("string byte length header = %d, want %d (2 bytes per code unit)", got, units*2)
	}

	p := NewPlayer(testRegistry(), WithTextCodec(UTF16))
	if err := p.AddBuffer(buf); err != nil {
		t.Fatalf("AddBuffer error: %v", err)
	}
	if got := p.Commands()[0].Values[1]; got != src {
		t.Errorf("decoded %q, want %q", got, src)
	}
}

func TestRoundTrip_Image(t *testing.T) {
	px := NewPixels(4, 4)
	for i := range px.Data {
		px.Data[i] = byte(i * 3)
	}

	w := NewWriter(webgl.Registry())
	err := w.AddCommand("texImage2D", webgl.Texture2D, 0, webgl.RGBA, webgl.RGBA, webgl.UnsignedByte, px)
	if err != nil {
		t.Fatalf("texImage2D error: %v", err)
	}
	buf := w.Buffer()
	if len(buf.Words) != 3 || buf.Words[1] != 4 || buf.Words[2] != 4 {
		t.Errorf("Words = %v, want [code 4 4]", buf.Words)
	}
	if got := len(buf.Values[0]); got != 5*4+64 {
		t.Errorf("value buffer = %d bytes, want %d", got, 5*4+64)
	}

	p := NewPlayer(webgl.Registry())
	if err := p.AddBuffer(buf); err != nil {
		t.Fatalf("AddBuffer error: %v", err)
	}
	got, ok := p.Commands()[0].Values[5].(*Pixels)
	if !ok {
		t.Fatalf("Values[5] is %T, want *Pixels", p.Commands()[0].Values[5])
	}
	if got.Width != 4 || got.Height != 4 {
		t.Errorf("decoded size = %dx%d, want 4x4", got.Width, got.Height)
	}
	if !bytes.Equal(got.Data, px.Data) {
		t.Error("decoded pixels differ from original")
	}
}

func TestRoundTrip_Handles(t *testing.T) {
	a, loc := &handle{"a"}, &handle{"loc"}
	rec := roundTrip(t, "use", a, loc)
	if rec.Values[0] != uint32(1) || rec.Values[1] != uint32(2) {
		t.Errorf("handle ids = %v, want [1 2]", rec.Values)
	}
	rec = roundTrip(t, "use", nil, nil)
	if rec.Values[0] != uint32(0) || rec.Values[1] != uint32(0) {
		t.Errorf("nil handle ids = %v, want [0 0]", rec.Values)
	}
}

func TestRoundTrip_ReturnIDs(t *testing.T) {
	rec := roundTrip(t, "create", &handle{})
	if !reflect.DeepEqual(rec.Ref, []uint32{1}) {
		t.Errorf("Ref = %v, want [1]", rec.Ref)
	}
	rec = roundTrip(t, "children", &handle{}, []*handle{{}, {}})
	if !reflect.DeepEqual(rec.Ref, []uint32{2, 3}) {
		t.Errorf("Ref = %v, want [2 3]", rec.Ref)
	}
	rec = roundTrip(t, "noop")
	if len(rec.Ref) != 0 {
		t.Errorf("Ref = %v, want none", rec.Ref)
	}
}

func TestPlayer_TruncatedBuffer(t *testing.T) {
	w := NewWriter(testRegistry())
	_ = w.AddCommand("label", nil, "vertex shader")
	good := w.Buffer()

	tests := []struct {
		name    string
		mutate  func(*WireData)
		section string
	}{
		{"short value buffer", func(d *WireData) { d.Values[0] = d.Values[0][:6] }, SectionValues},
		{"inflated length header", func(d *WireData) { d.Words[1] = 1 << 30 }, SectionValues},
		{"missing header word", func(d *WireData) { d.Words = d.Words[:1] }, SectionWords},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := good.Clone()
			tt.mutate(&d)
			p := NewPlayer(testRegistry())
			err := p.AddBuffer(d)
			var tbe *TruncatedBufferError
			if !errors.As(err, &tbe) {
				t.Fatalf("AddBuffer error = %v, want *TruncatedBufferError", err)
			}
			if tbe.Section != tt.section {
				t.Errorf("Section = %q, want %q", tbe.Section, tt.section)
			}
			if !errors.Is(err, ErrTruncatedBuffer) {
				t.Error("errors.Is(err, ErrTruncatedBuffer) = false")
			}
			if len(p.Commands()) != 0 {
				t.Error("failed AddBuffer should not append records")
			}
		})
	}
}

func TestPlayer_TruncatedImage(t *testing.T) {
	w := NewWriter(testRegistry())
	_ = w.AddCommand("image", 1, NewPixels(2, 2))
	d := w.Buffer()
	d.Words[1] = 0xFFFFFFFF // width
	d.Words[2] = 0xFFFFFFFF // height
	err := NewPlayer(testRegistry()).AddBuffer(d)
	if !errors.Is(err, ErrTruncatedBuffer) {
		t.Errorf("AddBuffer error = %v, want ErrTruncatedBuffer", err)
	}
}

func TestPlayer_MalformedBuffer(t *testing.T) {
	w := NewWriter(testRegistry())
	_ = w.AddCommand("upload", []uint16{1, 2})
	good := w.Buffer()

	tests := []struct {
		name   string
		mutate func(*WireData)
	}{
		{"unknown code", func(d *WireData) { d.Words[0] = 999 }},
		{"bad element tag", func(d *WireData) { d.Words[1] = 42 }},
		{"partial element", func(d *WireData) { d.Words[2] = 3 }},
		{"trailing bytes", func(d *WireData) { d.Values[0] = append(d.Values[0], 0) }},
		{"missing value buffer", func(d *WireData) { d.Values = nil }},
		{"extra value buffer", func(d *WireData) { d.Values = append(d.Values, []byte{}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := good.Clone()
			tt.mutate(&d)
			p := NewPlayer(testRegistry())
			err := p.AddBuffer(d)
			if !errors.Is(err, ErrMalformedBuffer) {
				t.Fatalf("AddBuffer error = %v, want ErrMalformedBuffer", err)
			}
			if len(p.Commands()) != 0 {
				t.Error("failed AddBuffer should not append records")
			}
		})
	}
}

func TestPlayer_Playback(t *testing.T) {
	w := NewWriter(testRegistry())
	obj, loc := &handle{"obj"}, &handle{"loc"}
	_ = w.AddCommand("create", obj)
	_ = w.AddCommand("locate", obj, "u_color", loc)
	_ = w.AddCommand("use", obj, loc)
	_ = w.AddCommand("flags", true, false)

	p := NewPlayer(testRegistry())
	if err := p.AddBuffer(w.Buffer()); err != nil {
		t.Fatalf("AddBuffer error: %v", err)
	}
	if p.Pending() != 4 {
		t.Errorf("Pending() = %d, want 4", p.Pending())
	}

	target := &mockTarget{}
	if err := p.Playback(target, nil); err != nil {
		t.Fatalf("Playback error: %v", err)
	}
	if p.Pending() != 0 {
		t.Errorf("Pending() after playback = %d, want 0", p.Pending())
	}

	wantNames := []string{"create", "locate", "use", "flags"}
	if !reflect.DeepEqual(target.names(), wantNames) {
		t.Fatalf("calls = %v, want %v", target.names(), wantNames)
	}

	created := target.calls[1].args[0].(*liveObject)
	if created.kind != "create" {
		t.Errorf("locate received %v, want the created object", created)
	}
	use := target.calls[2].args
	if use[0] != created {
		t.Errorf("use arg 0 = %v, want created object", use[0])
	}
	if l, ok := use[1].(*liveObject); !ok || l.kind != "location" {
		t.Errorf("use arg 1 = %v, want location object", use[1])
	}
	if target.calls[3].args[0] != true {
		t.Errorf("flags arg 0 = %v, want true", target.calls[3].args[0])
	}

	// Pending records are consumed: a second playback is a no-op.
	if err := p.Playback(target, nil); err != nil {
		t.Fatalf("second Playback error: %v", err)
	}
	if len(target.calls) != 4 {
		t.Errorf("second Playback replayed records again: %d calls", len(target.calls))
	}
}

func TestPlayer_PlaybackListReturn(t *testing.T) {
	w := NewWriter(testRegistry())
	parent := &handle{"parent"}
	kids := []*handle{{"k1"}, {"k2"}}
	_ = w.AddCommand("create", parent)
	_ = w.AddCommand("children", parent, kids)
	_ = w.AddCommand("use", kids[1], kids[0])

	p := NewPlayer(testRegistry())
	if err := p.AddBuffer(w.Buffer()); err != nil {
		t.Fatalf("AddBuffer error: %v", err)
	}
	target := &mockTarget{}
	if err := p.Playback(target, nil); err != nil {
		t.Fatalf("Playback error: %v", err)
	}
	use := target.calls[2].args
	k2, ok := use[0].(*liveObject)
	if !ok || k2.seq != 3 {
		t.Errorf("use arg 0 = %v, want second child (seq 3)", use[0])
	}
	k1, ok := use[1].(*liveObject)
	if !ok || k1.seq != 2 {
		t.Errorf("use arg 1 = %v, want first child (seq 2)", use[1])
	}
}

func TestPlayer_PlaybackListReturnShape(t *testing.T) {
	w := NewWriter(testRegistry())
	_ = w.AddCommand("children", nil, []*handle{{}})
	p := NewPlayer(testRegistry())
	_ = p.AddBuffer(w.Buffer())

	err := p.Playback(funcTarget(func(string, []any) (any, error) { return 7, nil }), nil)
	if !errors.Is(err, ErrReturnShape) {
		t.Errorf("Playback error = %v, want ErrReturnShape", err)
	}
}

type funcTarget func(name string, args []any) (any, error)

func (f funcTarget) Invoke(name string, args []any) (any, error) { return f(name, args) }

func TestPlayer_Interceptor(t *testing.T) {
	w := NewWriter(testRegistry())
	_ = w.AddCommand("flags", true, true)
	_ = w.AddCommand("noop")

	p := NewPlayer(testRegistry())
	_ = p.AddBuffer(w.Buffer())

	var seen []string
	ic := func(name string, args []any) []any {
		seen = append(seen, name)
		if name == "flags" {
			return []any{false, false}
		}
		return nil
	}
	target := &mockTarget{}
	if err := p.Playback(target, ic); err != nil {
		t.Fatalf("Playback error: %v", err)
	}
	if !reflect.DeepEqual(seen, []string{"flags", "noop"}) {
		t.Errorf("interceptor saw %v", seen)
	}
	if !reflect.DeepEqual(target.calls[0].args, []any{false, false}) {
		t.Errorf("flags args = %v, want patched [false false]", target.calls[0].args)
	}
	if len(target.calls[1].args) != 0 {
		t.Errorf("noop args = %v, want unchanged empty list", target.calls[1].args)
	}
}

func TestPlayer_PlaybackFailFast(t *testing.T) {
	w := NewWriter(testRegistry())
	_ = w.AddCommand("noop")
	_ = w.AddCommand("flags", true, false)
	_ = w.AddCommand("noop")

	p := NewPlayer(testRegistry())
	_ = p.AddBuffer(w.Buffer())

	target := &mockTarget{failOn: "flags"}
	err := p.Playback(target, nil)
	var pe *PlaybackError
	if !errors.As(err, &pe) {
		t.Fatalf("Playback error = %v, want *PlaybackError", err)
	}
	if pe.Index != 1 || pe.Name != "flags" {
		t.Errorf("PlaybackError = {%d %s}, want {1 flags}", pe.Index, pe.Name)
	}
	if !errors.Is(err, errMockFailure) {
		t.Error("PlaybackError should wrap the target error")
	}
	if len(target.calls) != 2 {
		t.Errorf("target saw %d calls, want 2 (remaining records not executed)", len(target.calls))
	}
	if p.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2 (failed record stays pending)", p.Pending())
	}

	target.failOn = ""
	if err := p.Playback(target, nil); err != nil {
		t.Fatalf("resumed Playback error: %v", err)
	}
	if got := target.names(); !reflect.DeepEqual(got, []string{"noop", "flags", "flags", "noop"}) {
		t.Errorf("calls after resume = %v", got)
	}
}

func TestPlayer_UnknownOperation(t *testing.T) {
	w := NewWriter(testRegistry())
	_ = w.AddCommand("noop")
	p := NewPlayer(testRegistry())
	_ = p.AddBuffer(w.Buffer())

	err := p.Playback(&mockTarget{unknown: map[string]bool{"noop": true}}, nil)
	var pe *PlaybackError
	if !errors.As(err, &pe) || pe.Name != "noop" {
		t.Errorf("Playback error = %v, want *PlaybackError for noop", err)
	}
}

func TestPlayer_UnresolvedRef(t *testing.T) {
	w := NewWriter(testRegistry())
	_ = w.AddCommand("use", &handle{}, nil)
	p := NewPlayer(testRegistry())
	_ = p.AddBuffer(w.Buffer())

	err := p.Playback(&mockTarget{}, nil)
	var ure *UnresolvedRefError
	if !errors.As(err, &ure) {
		t.Fatalf("Playback error = %v, want *UnresolvedRefError", err)
	}
	if ure.Key.ID != 1 {
		t.Errorf("unresolved key = %v, want id 1", ure.Key)
	}
}

func TestPlayer_PreSeededHandles(t *testing.T) {
	w := NewWriter(testRegistry(), WithRefPrefix("ext"))
	canvas := &handle{"canvas"}
	_ = w.AddCommand("use", canvas, nil)

	p := NewPlayer(testRegistry())
	live := &liveObject{kind: "default framebuffer"}
	p.Table().Bind(reftable.Key{Prefix: "ext", ID: 1}, live)
	_ = p.AddBuffer(w.Buffer())

	target := &mockTarget{}
	if err := p.Playback(target, nil); err != nil {
		t.Fatalf("Playback error: %v", err)
	}
	if target.calls[0].args[0] != live {
		t.Errorf("use arg 0 = %v, want pre-seeded object", target.calls[0].args[0])
	}
}

func TestPlayer_RefPrefixIsolation(t *testing.T) {
	record := func(prefix string) WireData {
		w := NewWriter(testRegistry(), WithRefPrefix(prefix))
		obj := &handle{prefix}
		_ = w.AddCommand("create", obj)
		_ = w.AddCommand("use", obj, nil)
		return w.Buffer()
	}

	p := NewPlayer(testRegistry())
	_ = p.AddBuffer(record("a"))
	_ = p.AddBuffer(record("b"))

	target := &mockTarget{}
	if err := p.Playback(target, nil); err != nil {
		t.Fatalf("Playback error: %v", err)
	}
	// Both sessions allocated id 1; each use must see its own object.
	useA := target.calls[1].args[0].(*liveObject)
	useB := target.calls[3].args[0].(*liveObject)
	if useA.seq != 1 || useB.seq != 2 {
		t.Errorf("use resolved seq %d and %d, want 1 and 2", useA.seq, useB.seq)
	}
}

func TestPlayer_Determinism(t *testing.T) {
	w := NewWriter(webgl.Registry())
	prog, buf := &handle{"prog"}, &handle{"buf"}
	_ = w.AddCommand("createProgram", prog)
	_ = w.AddCommand("createBuffer", buf)
	_ = w.AddCommand("bindBuffer", webgl.ArrayBuffer, buf)
	_ = w.AddCommand("bufferData", webgl.ArrayBuffer, []float32{0, 1, 1, 0}, webgl.StaticDraw)
	_ = w.AddCommand("useProgram", prog)
	_ = w.AddCommand("drawArrays", webgl.Triangles, 0, 3)
	wire := w.Buffer()

	replay := func() *mockTarget {
		p := NewPlayer(webgl.Registry())
		if err := p.AddBuffer(wire); err != nil {
			t.Fatalf("AddBuffer error: %v", err)
		}
		target := &mockTarget{}
		if err := p.Playback(target, nil); err != nil {
			t.Fatalf("Playback error: %v", err)
		}
		return target
	}
	a, b := replay(), replay()
	if !reflect.DeepEqual(a.calls, b.calls) {
		t.Error("identical buffers replayed into equivalent targets produced different calls")
	}
}

func TestPlayer_ResetIdempotence(t *testing.T) {
	w := NewWriter(testRegistry())
	obj := &handle{}
	_ = w.AddCommand("create", obj)
	_ = w.AddCommand("use", obj, nil)
	wire := w.Buffer()

	p := NewPlayer(testRegistry())
	_ = p.AddBuffer(wire)
	first := &mockTarget{}
	if err := p.Playback(first, nil); err != nil {
		t.Fatalf("Playback error: %v", err)
	}

	p.Reset()
	if len(p.Commands()) != 0 {
		t.Errorf("Commands() after Reset = %d records, want 0", len(p.Commands()))
	}
	if p.Table().Bound() != 0 {
		t.Errorf("Table().Bound() after Reset = %d, want 0", p.Table().Bound())
	}

	// A buffer that only uses id 1 must not see the previous session's object.
	w2 := NewWriter(testRegistry())
	_ = w2.AddCommand("use", &handle{}, nil)
	_ = p.AddBuffer(w2.Buffer())
	if err := p.Playback(&mockTarget{}, nil); !errors.Is(err, ErrUnresolvedRef) {
		t.Errorf("Playback after Reset error = %v, want ErrUnresolvedRef", err)
	}

	p.Reset()
	_ = p.AddBuffer(wire)
	again := &mockTarget{}
	if err := p.Playback(again, nil); err != nil {
		t.Fatalf("Playback after Reset error: %v", err)
	}
	if !reflect.DeepEqual(first.calls, again.calls) {
		t.Error("replay after Reset differs from replay on a fresh player")
	}
}

func TestPlayer_ClearCommandsKeepsTable(t *testing.T) {
	w := NewWriter(testRegistry())
	obj := &handle{}
	_ = w.AddCommand("create", obj)

	p := NewPlayer(testRegistry())
	_ = p.AddBuffer(w.Buffer())
	_ = p.Playback(&mockTarget{}, nil)
	p.ClearCommands()
	if len(p.Commands()) != 0 || p.Pending() != 0 {
		t.Errorf("after ClearCommands: %d records, %d pending", len(p.Commands()), p.Pending())
	}

	w.ClearCommands()
	_ = w.AddCommand("use", obj, nil)
	_ = p.AddBuffer(w.Buffer())
	target := &mockTarget{}
	if err := p.Playback(target, nil); err != nil {
		t.Fatalf("Playback error: %v", err)
	}
	if _, ok := target.calls[0].args[0].(*liveObject); !ok {
		t.Errorf("use arg 0 = %v, want object created before ClearCommands", target.calls[0].args[0])
	}
}

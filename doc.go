// Package glstream records GL-style API calls into a compact binary
// command stream and replays them against a live implementation.
//
// # Overview
//
// A recording session turns method calls such as createBuffer,
// bindBuffer or texImage2D into two parallel structures:
//
//   - a command-code stream: a flat []uint32 holding each command's code
//     followed by size headers for its variable-width arguments
//   - value buffers: one []byte per command holding the serialized
//     arguments and, for handle-producing calls, the ids of the result
//
// The stream can be handed to another goroutine, written to disk with
// the archive package, or shipped to another process. A Player on the
// other side decodes it and invokes each call on a live target,
// rebinding the handles created along the way.
//
// # Packages
//
//   - command: argument types, command descriptors and the catalog registry
//   - webgl: the built-in WebGL 1.0 command catalog and enum values
//   - reftable: the id <-> object table used on both sides of the stream
//   - stream: Writer (encoder) and Player (decoder + executor)
//   - target: playback targets and the target registry
//   - archive: CBOR and MessagePack persistence of recorded streams
//
// # Quick Start
//
//	w := stream.NewWriter(webgl.Registry())
//	buf := new(glHandle)
//	_ = w.AddCommand("createBuffer", buf)
//	_ = w.AddCommand("bindBuffer", webgl.ArrayBuffer, buf)
//
//	p := stream.NewPlayer(webgl.Registry())
//	_ = p.AddBuffer(w.Buffer())
//	_ = p.Playback(target.Methods(gl), nil)
//
// # Logging
//
// glstream is silent by default. Use [SetLogger] to route diagnostics to
// a [log/slog.Logger].
package glstream

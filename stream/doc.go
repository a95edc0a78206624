// Package stream encodes GL-style API calls into a binary command stream
// and replays decoded streams against a live target.
//
// # Wire Format
//
// A recorded buffer ([WireData]) has two parts:
//
//   - Words, a flat []uint32 command-code stream. Each command contributes
//     its code followed by header words for its variable-width arguments,
//     in argument order: ArrayBuffer writes an element-type tag and a byte
//     length, String a byte length, Image a pixel width and height.
//     Fixed-width arguments contribute no words.
//   - Values, one []byte per command: every argument's bytes in order,
//     followed by the return slot (one 4-byte id, or one per element for
//     list returns). Scalars are stored in native byte order.
//
// A decoder derives every argument's width from the descriptor and the
// header words alone, exactly as the encoder did from the concrete values.
// Reads past the end of either part fail with a [TruncatedBufferError].
//
// # Handles
//
// Objects never cross the boundary. The [Writer] assigns each object an id
// on first sight, and commands that create objects carry the id their
// result will be known by. The [Player] binds the live result of such a
// command to that id during playback, so later commands resolve it. Ids
// are namespaced by the buffer's RefPrefix, which lets independently
// recorded sessions share one Player.
//
// # Sessions
//
// ClearCommands drops recorded or decoded commands but keeps the
// reference table; Reset drops both and starts a fresh id space.
//
// # Thread Safety
//
// Writer and Player are NOT safe for concurrent use. WireData snapshots
// returned by [Writer.Buffer] share nothing with the Writer and may be
// handed to other goroutines.
package stream

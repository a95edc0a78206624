package stream

import (
	"errors"
	"fmt"

	"github.com/gogpu/glstream/command"
	"github.com/gogpu/glstream/reftable"
)

// Sentinel errors. The typed errors below match them with errors.Is.
var (
	// ErrArgumentCount is matched by *ArgumentCountError.
	ErrArgumentCount = errors.New("stream: wrong argument count")

	// ErrArgumentType is matched by *ArgumentTypeError.
	ErrArgumentType = errors.New("stream: argument type mismatch")

	// ErrTruncatedBuffer is matched by *TruncatedBufferError.
	ErrTruncatedBuffer = errors.New("stream: truncated buffer")

	// ErrMalformedBuffer is matched by *MalformedBufferError.
	ErrMalformedBuffer = errors.New("stream: malformed buffer")

	// ErrUnresolvedRef is matched by *UnresolvedRefError.
	ErrUnresolvedRef = errors.New("stream: unresolved reference")

	// ErrReturnShape is returned when a list-returning call does not
	// produce a slice.
	ErrReturnShape = errors.New("stream: result is not a list")

	// ErrPixelSize is returned when a pixel buffer's data length does not
	// match width*height*4.
	ErrPixelSize = errors.New("stream: pixel data does not match dimensions")
)

// ArgumentCountError reports a recorded call whose argument count does not
// match its descriptor. Want includes the trailing return placeholder.
type ArgumentCountError struct {
	Name string
	Want int
	Got  int
}

func (e *ArgumentCountError) Error() string {
	return fmt.Sprintf("stream: %s: got %d arguments, want %d", e.Name, e.Got, e.Want)
}

// Is reports whether target is ErrArgumentCount.
func (e *ArgumentCountError) Is(target error) bool { return target == ErrArgumentCount }

// ArgumentTypeError reports a value that cannot be encoded as the declared
// argument type. Index equals the descriptor's argument count for the
// return placeholder.
type ArgumentTypeError struct {
	Name  string
	Index int
	Type  command.Type
	Value any
	Err   error
}

func (e *ArgumentTypeError) Error() string {
	msg := fmt.Sprintf("stream: %s argument %d: cannot encode %T as %v", e.Name, e.Index, e.Value, e.Type)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is ErrArgumentType.
func (e *ArgumentTypeError) Is(target error) bool { return target == ErrArgumentType }

// Unwrap returns the underlying conversion error, if any.
func (e *ArgumentTypeError) Unwrap() error { return e.Err }

// Buffer sections named by TruncatedBufferError.
const (
	SectionWords  = "words"
	SectionValues = "values"
)

// TruncatedBufferError reports a read past the end of the command-code
// stream or of a value buffer. Nothing beyond Len is ever read.
type TruncatedBufferError struct {
	Command int    // index of the command within the buffer
	Name    string // command name
	Section string // SectionWords or SectionValues
	Offset  int    // read position within the section
	Need    uint64 // bytes (or words) the read required
	Len     int    // section length
}

func (e *TruncatedBufferError) Error() string {
	return fmt.Sprintf("stream: command %d (%s): need %d %s at offset %d, have %d",
		e.Command, e.Name, e.Need, e.Section, e.Offset, e.Len)
}

// Is reports whether target is ErrTruncatedBuffer.
func (e *TruncatedBufferError) Is(target error) bool { return target == ErrTruncatedBuffer }

// MalformedBufferError reports a structurally invalid buffer: an unknown
// command code, a bad element tag, a missing or oversized value buffer.
type MalformedBufferError struct {
	Command int
	Reason  string
}

func (e *MalformedBufferError) Error() string {
	return fmt.Sprintf("stream: command %d: %s", e.Command, e.Reason)
}

// Is reports whether target is ErrMalformedBuffer.
func (e *MalformedBufferError) Is(target error) bool { return target == ErrMalformedBuffer }

// UnresolvedRefError reports a handle id that no earlier command (and no
// pre-seeded binding) has produced.
type UnresolvedRefError struct {
	Key reftable.Key
}

func (e *UnresolvedRefError) Error() string {
	return fmt.Sprintf("stream: unresolved reference %s", e.Key)
}

// Is reports whether target is ErrUnresolvedRef.
func (e *UnresolvedRefError) Is(target error) bool { return target == ErrUnresolvedRef }

// PlaybackError wraps the failure of one replayed record.
type PlaybackError struct {
	Index int // position of the record in Commands()
	Name  string
	Err   error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("stream: playback of %s (record %d): %v", e.Name, e.Index, e.Err)
}

// Unwrap returns the target or resolution error.
func (e *PlaybackError) Unwrap() error { return e.Err }

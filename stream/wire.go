package stream

// WireData is one self-contained recorded buffer: the command-code stream
// and its value buffers, one per command, in the same order.
//
// WireData holds no pointers into a Writer; it may be handed to another
// goroutine or serialized with the archive package.
type WireData struct {
	// RefPrefix namespaces the handle ids of this recording on the
	// player side.
	RefPrefix string `cbor:"prefix,omitempty" msgpack:"prefix,omitempty"`
	// Words is the command-code stream: per command, the code followed
	// by the header words of its variable-width arguments.
	Words []uint32 `cbor:"words" msgpack:"words"`
	// Values holds one value buffer per command.
	Values [][]byte `cbor:"values" msgpack:"values"`
}

// Len returns the number of commands in the buffer.
func (d WireData) Len() int {
	return len(d.Values)
}

// Size returns the total payload size in bytes, counting 4 bytes per word.
func (d WireData) Size() int {
	n := len(d.Words) * 4
	for _, v := range d.Values {
		n += len(v)
	}
	return n
}

// Clone returns a deep copy of d.
func (d WireData) Clone() WireData {
	c := WireData{
		RefPrefix: d.RefPrefix,
		Words:     make([]uint32, len(d.Words)),
		Values:    make([][]byte, len(d.Values)),
	}
	copy(c.Words, d.Words)
	for i, v := range d.Values {
		c.Values[i] = append([]byte(nil), v...)
	}
	return c
}

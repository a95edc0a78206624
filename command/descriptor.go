package command

import "strings"

// ReturnShape says whether a command produces handles and how many.
type ReturnShape uint8

const (
	// ReturnNone means the command produces nothing worth tracking.
	ReturnNone ReturnShape = iota
	// ReturnSingle means the command produces exactly one handle.
	ReturnSingle
	// ReturnList means the command produces a homogeneous list of handles.
	ReturnList
)

// Return describes the return slot of a command. Type is Ref or Location
// whenever Shape is not ReturnNone.
type Return struct {
	Shape ReturnShape
	Type  Type
}

// NoReturn is the return slot of commands that produce nothing.
var NoReturn = Return{}

// Returns declares a single returned handle of type t.
func Returns(t Type) Return {
	return Return{Shape: ReturnSingle, Type: t}
}

// ReturnsList declares a returned list of handles of type t.
func ReturnsList(t Type) Return {
	return Return{Shape: ReturnList, Type: t}
}

// Declared reports whether the command has a return slot.
func (r Return) Declared() bool {
	return r.Shape != ReturnNone
}

// String returns "none", the element type, or the element type in brackets
// for lists.
func (r Return) String() string {
	switch r.Shape {
	case ReturnSingle:
		return r.Type.String()
	case ReturnList:
		return "[]" + r.Type.String()
	default:
		return "none"
	}
}

// Descriptor is the static metadata of one command.
// Descriptors held by a Registry must not be modified.
type Descriptor struct {
	// Code identifies the command in the command-code stream. Zero is
	// not a valid code.
	Code uint32
	// Name is the API method name, for example "bindBuffer".
	Name string
	// Args lists the argument types in call order.
	Args []Type
	// Return describes the produced handle(s), if any.
	Return Return
}

// Arity returns the number of values a caller passes when recording the
// command. A declared return slot adds one trailing pseudo-argument: the
// placeholder object(s) standing in for the result.
func (d *Descriptor) Arity() int {
	if d.Return.Declared() {
		return len(d.Args) + 1
	}
	return len(d.Args)
}

// HeaderWords returns the number of header words the command writes after
// its code.
func (d *Descriptor) HeaderWords() int {
	n := 0
	for _, t := range d.Args {
		n += t.HeaderWords()
	}
	return n
}

// String returns a signature such as "bindBuffer(uint32, ref)".
func (d *Descriptor) String() string {
	var sb strings.Builder
	sb.WriteString(d.Name)
	sb.WriteByte('(')
	for i, t := range d.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.String())
	}
	sb.WriteByte(')')
	if d.Return.Declared() {
		sb.WriteString(" ")
		sb.WriteString(d.Return.String())
	}
	return sb.String()
}

// clone returns a copy of d that shares nothing mutable with it.
func (d *Descriptor) clone() *Descriptor {
	c := *d
	if d.Args != nil {
		c.Args = make([]Type, len(d.Args))
		copy(c.Args, d.Args)
	}
	return &c
}

package command

import (
	"errors"
	"fmt"
	"sort"
)

// Registry errors.
var (
	// ErrInvalidDescriptor is returned for descriptors with a zero code,
	// an empty name, an invalid argument type or an illegal return slot.
	ErrInvalidDescriptor = errors.New("command: invalid descriptor")

	// ErrDuplicate is returned when two descriptors share a name or a code.
	ErrDuplicate = errors.New("command: duplicate descriptor")
)

// Registry is an immutable, bidirectional catalog of command descriptors.
// It is safe for concurrent use once constructed.
type Registry struct {
	byName map[string]*Descriptor
	byCode map[uint32]*Descriptor
	sorted []*Descriptor
}

// NewRegistry validates descs and builds a Registry from them.
// Descriptors are copied, so callers may reuse their slices afterwards.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*Descriptor, len(descs)),
		byCode: make(map[uint32]*Descriptor, len(descs)),
		sorted: make([]*Descriptor, 0, len(descs)),
	}
	for i := range descs {
		d := descs[i].clone()
		if err := validate(d); err != nil {
			return nil, err
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("%w: name %q", ErrDuplicate, d.Name)
		}
		if prev, dup := r.byCode[d.Code]; dup {
			return nil, fmt.Errorf("%w: code %d used by %q and %q", ErrDuplicate, d.Code, prev.Name, d.Name)
		}
		r.byName[d.Name] = d
		r.byCode[d.Code] = d
		r.sorted = append(r.sorted, d)
	}
	sort.Slice(r.sorted, func(i, j int) bool { return r.sorted[i].Code < r.sorted[j].Code })
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
// It is intended for package-level catalogs built from static tables.
func MustRegistry(descs ...Descriptor) *Registry {
	r, err := NewRegistry(descs...)
	if err != nil {
		panic(err)
	}
	return r
}

func validate(d *Descriptor) error {
	if d.Code == 0 {
		return fmt.Errorf("%w: %q has code 0", ErrInvalidDescriptor, d.Name)
	}
	if d.Name == "" {
		return fmt.Errorf("%w: code %d has no name", ErrInvalidDescriptor, d.Code)
	}
	for i, t := range d.Args {
		if !t.IsValid() {
			return fmt.Errorf("%w: %q argument %d has invalid type %v", ErrInvalidDescriptor, d.Name, i, t)
		}
	}
	switch d.Return.Shape {
	case ReturnNone:
	case ReturnSingle, ReturnList:
		if !d.Return.Type.IsHandle() {
			return fmt.Errorf("%w: %q returns %v, want ref or location", ErrInvalidDescriptor, d.Name, d.Return.Type)
		}
	default:
		return fmt.Errorf("%w: %q has unknown return shape %d", ErrInvalidDescriptor, d.Name, d.Return.Shape)
	}
	return nil
}

// LookupName returns the descriptor registered under name.
func (r *Registry) LookupName(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// LookupCode returns the descriptor registered under code.
func (r *Registry) LookupCode(code uint32) (*Descriptor, bool) {
	d, ok := r.byCode[code]
	return d, ok
}

// ArrayElementType maps an element-type tag read from the command-code
// stream to its scalar type.
func (r *Registry) ArrayElementType(tag uint32) (Type, bool) {
	e := Elem(tag)
	if tag > uint32(Float64) || !e.IsValid() {
		return Type{}, false
	}
	return Scalar(e), true
}

// Descriptors returns all descriptors ordered by code.
// The returned slice is a copy; the descriptors themselves are shared.
func (r *Registry) Descriptors() []*Descriptor {
	out := make([]*Descriptor, len(r.sorted))
	copy(out, r.sorted)
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.sorted)
}

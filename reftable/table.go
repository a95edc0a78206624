// Package reftable maps opaque integer ids to live objects and back.
//
// A command stream never carries objects, only ids. The encoding side
// hands out ids lazily with [Table.IDFor]; the decoding side learns which
// live object stands behind an id when the command that produced it has
// been replayed, and records that with [Table.Bind].
//
// Ids are positive and allocated by a counter starting at 1. Id 0 ([None])
// is reserved for "no object" and always resolves to nil. Ids are never
// reused within one Table.
package reftable

import (
	"errors"
	"math"
	"reflect"
	"strconv"
)

// None is the reserved id meaning "no object".
const None uint32 = 0

// Table errors.
var (
	// ErrNotComparable is returned by IDFor for objects that cannot be used
	// as identity keys (slices, maps, funcs, and structs containing them).
	ErrNotComparable = errors.New("reftable: object is not comparable")

	// ErrExhausted is returned by IDFor when the id space is used up.
	ErrExhausted = errors.New("reftable: id space exhausted")
)

// Key identifies a bound object on the decoding side: an id read from a
// stream, namespaced by the ref prefix of the session that recorded it.
type Key struct {
	Prefix string
	ID     uint32
}

// String returns the prefix and id joined together, e.g. "a1b2:7".
func (k Key) String() string {
	if k.Prefix == "" {
		return strconv.FormatUint(uint64(k.ID), 10)
	}
	return k.Prefix + ":" + strconv.FormatUint(uint64(k.ID), 10)
}

// Table is a per-session reference table.
//
// The encoding side uses IDFor and HasID; the decoding side uses Bind and
// Resolve. A single Table may serve both roles.
//
// Table is not safe for concurrent use. If concurrent access is needed,
// external synchronization must be provided.
type Table struct {
	ids     map[any]uint32
	objects map[Key]any
	next    uint32
}

// New creates an empty table whose first allocated id is 1.
func New() *Table {
	return &Table{
		ids:     make(map[any]uint32, 64),
		objects: make(map[Key]any, 64),
		next:    1,
	}
}

// IDFor returns the id assigned to obj, allocating the next id on first
// use. Objects are keyed by identity: pointers compare by address, so two
// distinct handles never share an id. A nil obj or nil pointer maps to None.
func (t *Table) IDFor(obj any) (uint32, error) {
	if isNil(obj) {
		return None, nil
	}
	id, ok, err := t.lookup(obj)
	if err != nil || ok {
		return id, err
	}
	if t.next == math.MaxUint32 {
		return None, ErrExhausted
	}
	id = t.next
	t.next++
	t.ids[obj] = id
	return id, nil
}

// lookup finds obj in the identity map. Struct values whose interface
// fields hold slices, maps or funcs pass the static Comparable check but
// panic when hashed; that panic becomes ErrNotComparable.
func (t *Table) lookup(obj any) (id uint32, ok bool, err error) {
	if !reflect.TypeOf(obj).Comparable() {
		return None, false, ErrNotComparable
	}
	defer func() {
		if r := recover(); r != nil {
			id, ok, err = None, false, ErrNotComparable
		}
	}()
	id, ok = t.ids[obj]
	return id, ok, nil
}

// HasID reports whether obj has already been assigned an id.
func (t *Table) HasID(obj any) bool {
	if isNil(obj) {
		return false
	}
	_, ok, err := t.lookup(obj)
	return ok && err == nil
}

// Rollback forgets every id allocated at or after mark, a value
// previously returned by Next. The next allocation hands out mark again.
func (t *Table) Rollback(mark uint32) {
	if mark == None || mark >= t.next {
		return
	}
	for obj, id := range t.ids {
		if id >= mark {
			delete(t.ids, obj)
		}
	}
	t.next = mark
}

// Bind records obj as the live object behind k, replacing any previous
// binding.
func (t *Table) Bind(k Key, obj any) {
	t.objects[k] = obj
}

// Resolve returns the object bound to k. The reserved id None resolves to
// (nil, true) regardless of prefix.
func (t *Table) Resolve(k Key) (any, bool) {
	if k.ID == None {
		return nil, true
	}
	obj, ok := t.objects[k]
	return obj, ok
}

// Next returns the id the next IDFor allocation will hand out.
func (t *Table) Next() uint32 {
	return t.next
}

// Assigned returns the number of objects that have been given ids.
func (t *Table) Assigned() int {
	return len(t.ids)
}

// Bound returns the number of bound keys.
func (t *Table) Bound() int {
	return len(t.objects)
}

func isNil(obj any) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

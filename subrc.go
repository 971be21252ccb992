// Package subrc provides Subrc, a reference-counted pointer to one
// sub-region (typically a field) of a value held in an Rc. The handle keeps
// the whole parent alive while exposing only the part it points at.
package subrc

import (
	"github.com/pkg/errors"

	"github.com/hillin/subrc/internal/layout"
)

// Subrc points at a U stored inside the T owned by an Rc. Only the byte
// offset of the U is kept; the pointer is rebuilt from the parent's address
// on every access.
type Subrc[T, U any] struct {
	rc     Rc[T]
	offset uintptr
}

// New builds a handle to the part of rc's value returned by accessor and
// takes over rc's share. accessor is called once, with the value held by
// rc, and must return a pointer into that same value. Anything else is a
// programming error and New panics with a *ContainmentError.
func New[T, U any](rc Rc[T], accessor func(*T) *U) Subrc[T, U] {
	h, err := TryNew(rc, accessor)
	if err != nil {
		panic(err)
	}
	return h
}

// TryNew is New returning the containment failure instead of panicking.
// rc's share is consumed either way.
func TryNew[T, U any](rc Rc[T], accessor func(*T) *U) (Subrc[T, U], error) {
	p := rc.Get()
	off, err := contain(p, accessor(p))
	if err != nil {
		rc.Release()
		return Subrc[T, U]{}, err
	}
	return Subrc[T, U]{rc: rc, offset: off}, nil
}

func contain[T, U any](parent *T, field *U) (uintptr, error) {
	pa, fa := layout.Addr(parent), layout.Addr(field)
	ps, fs := layout.Sizeof[T](), layout.Sizeof[U]()
	off, reason := layout.Contain(pa, fa, ps, fs)
	if reason != layout.Contained {
		return 0, errors.WithStack(&ContainmentError{
			Parent:     pa,
			Field:      fa,
			Offset:     off,
			ParentSize: ps,
			FieldSize:  fs,
			Reason:     reason,
		})
	}
	return off, nil
}

// Get returns the pointer to the sub-region. It stays valid while h holds
// its share. Writing through it is outside what Subrc supports.
func (h Subrc[T, U]) Get() *U {
	return layout.At[T, U](h.rc.Get(), h.offset)
}

// Deref returns a copy of the sub-region's value.
func (h Subrc[T, U]) Deref() U {
	return *h.Get()
}

// Offset is the byte distance from the parent's start to the sub-region.
func (h Subrc[T, U]) Offset() uintptr {
	return h.offset
}

// Parent returns the underlying Rc without taking a new share.
func (h Subrc[T, U]) Parent() Rc[T] {
	return h.rc
}

func (h Subrc[T, U]) Valid() bool {
	return h.rc.Valid()
}

// Clone returns a second handle to the same sub-region sharing h's parent.
func (h Subrc[T, U]) Clone() Subrc[T, U] {
	return Subrc[T, U]{rc: h.rc.Clone(), offset: h.offset}
}

// Release gives up h's share of the parent.
func (h *Subrc[T, U]) Release() {
	h.rc.Release()
}

// EqualFunc reports whether h and other sit at the same offset of parents
// that eq considers equal.
func (h Subrc[T, U]) EqualFunc(other Subrc[T, U], eq func(a, b *T) bool) bool {
	return h.offset == other.offset && eq(h.rc.Get(), other.rc.Get())
}

// Equal reports whether a and b sit at the same offset of parents with
// equal values. The parents need not be the same allocation.
func Equal[T comparable, U any](a, b Subrc[T, U]) bool {
	return a.EqualFunc(b, func(x, y *T) bool { return *x == *y })
}

// Project narrows h to a part of its sub-region. The result is checked
// against the whole parent and holds its own share; h is left untouched.
func Project[T, U, V any](h Subrc[T, U], accessor func(*U) *V) Subrc[T, V] {
	p := h.rc.Get()
	off, err := contain(p, accessor(h.Get()))
	if err != nil {
		panic(err)
	}
	return Subrc[T, V]{rc: h.rc.Clone(), offset: off}
}

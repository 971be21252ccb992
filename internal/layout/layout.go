package layout

import "unsafe"

// Reason classifies why a field address is not contained in a parent extent.
type Reason uint8

const (
	Contained Reason = iota
	Nil               // field pointer is nil
	Before            // field starts below the parent
	PastEnd           // field starts at or beyond the parent's end
	Overflow          // field starts inside the parent but runs past its end
)

func (r Reason) String() string {
	switch r {
	case Contained:
		return "contained"
	case Nil:
		return "nil field"
	case Before:
		return "field starts before parent"
	case PastEnd:
		return "field starts past parent end"
	case Overflow:
		return "field extends past parent end"
	default:
		return "unknown"
	}
}

// Addr returns the raw address of p. The result must not be turned back
// into a pointer.
func Addr[T any](p *T) uintptr {
	return uintptr(unsafe.Pointer(p))
}

// Sizeof returns the in-memory size of T.
func Sizeof[T any]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

// Contain computes the byte offset of a field of fieldSize bytes at address
// field relative to a parent of parentSize bytes at address parent.
// The offset is meaningful only when the returned Reason is Contained.
func Contain(parent, field, parentSize, fieldSize uintptr) (uintptr, Reason) {
	if field == 0 {
		return 0, Nil
	}
	if field < parent {
		return 0, Before
	}
	off := field - parent
	if off >= parentSize {
		return off, PastEnd
	}
	// off < parentSize here, so the subtraction cannot wrap
	if fieldSize > parentSize-off {
		return off, Overflow
	}
	return off, Contained
}

// At rebuilds a *U located off bytes into the allocation that base points at.
// The caller guarantees off was produced by Contain against the same base.
func At[T, U any](base *T, off uintptr) *U {
	return (*U)(unsafe.Add(unsafe.Pointer(base), off))
}

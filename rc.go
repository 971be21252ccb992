package subrc

type rcBox[T any] struct {
	count int
	drop  func(*T)
	value T
}

// Rc is a reference-counted slot holding one T on the heap. Copies made by
// assignment do not count as owners; use Clone. The count is not atomic, so
// an Rc and everything cloned from it belong to one goroutine at a time.
type Rc[T any] struct {
	box *rcBox[T]
}

func NewRc[T any](v T) Rc[T] {
	return NewRcWithDrop(v, nil)
}

// NewRcWithDrop is NewRc with a hook run on the value when the last owner
// releases it.
func NewRcWithDrop[T any](v T, drop func(*T)) Rc[T] {
	return Rc[T]{box: &rcBox[T]{count: 1, drop: drop, value: v}}
}

func (r Rc[T]) live() *rcBox[T] {
	if r.box == nil || r.box.count == 0 {
		panic(ErrReleased)
	}
	return r.box
}

// Get returns the address of the shared value. The address is stable until
// the last owner releases it.
func (r Rc[T]) Get() *T {
	return &r.live().value
}

func (r Rc[T]) Clone() Rc[T] {
	b := r.live()
	b.count++
	return Rc[T]{box: b}
}

// Release gives up this owner's share. The value is dropped and zeroed once
// no owners remain. r is unusable afterwards.
func (r *Rc[T]) Release() {
	b := r.live()
	r.box = nil
	b.count--
	if b.count > 0 {
		return
	}
	if b.drop != nil {
		b.drop(&b.value)
	}
	var zero T
	b.value = zero
}

// Count reports the number of owners, or 0 for a released Rc.
func (r Rc[T]) Count() int {
	if r.box == nil {
		return 0
	}
	return r.box.count
}

func (r Rc[T]) Valid() bool {
	return r.Count() > 0
}

// Same reports whether r and other share one allocation.
func (r Rc[T]) Same(other Rc[T]) bool {
	return r.box != nil && r.box == other.box
}

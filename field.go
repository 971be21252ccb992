package subrc

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/hillin/subrc/internal/layout"
)

var fields = layout.NewResolver()

// NewField builds a handle to the field of rc's value named by path, e.g.
// "Bar" or "Bar.Value". The offset comes from the struct layout, so no
// accessor runs. Unexported fields are allowed. rc's share is consumed
// either way.
func NewField[T, U any](rc Rc[T], path string) (Subrc[T, U], error) {
	rc.live()
	h, err := newField[T, U](rc, path)
	if err != nil {
		rc.Release()
		return Subrc[T, U]{}, err
	}
	return h, nil
}

func newField[T, U any](rc Rc[T], path string) (Subrc[T, U], error) {
	plan, err := fields.Resolve(reflect.TypeOf((*T)(nil)).Elem(), path)
	if err != nil {
		return Subrc[T, U]{}, err
	}
	if want := reflect.TypeOf((*U)(nil)).Elem(); plan.Type != want {
		return Subrc[T, U]{}, errors.Wrapf(ErrFieldType, "%s.%s is %s, not %s",
			reflect.TypeOf((*T)(nil)).Elem(), path, plan.Type, want)
	}
	return Subrc[T, U]{rc: rc, offset: plan.Offset}, nil
}

// MustField is NewField panicking on error.
func MustField[T, U any](rc Rc[T], path string) Subrc[T, U] {
	h, err := NewField[T, U](rc, path)
	if err != nil {
		panic(err)
	}
	return h
}

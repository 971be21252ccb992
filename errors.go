package subrc

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/hillin/subrc/internal/layout"
)

var (
	ErrContainment = errors.New("accessor did not return a portion of the parent")
	ErrReleased    = errors.New("use of released reference")
	ErrNotStruct   = layout.ErrNotStruct
	ErrNoField     = layout.ErrNoField
	ErrFieldType   = errors.New("field type mismatch")
)

// Reason says which containment check failed.
type Reason = layout.Reason

const (
	ReasonNil      = layout.Nil
	ReasonBefore   = layout.Before
	ReasonPastEnd  = layout.PastEnd
	ReasonOverflow = layout.Overflow
)

// ContainmentError describes a field pointer that does not lie inside its
// parent. It unwraps to ErrContainment.
type ContainmentError struct {
	Parent     uintptr
	Field      uintptr
	Offset     uintptr
	ParentSize uintptr
	FieldSize  uintptr
	Reason     Reason
}

func (e *ContainmentError) Error() string {
	return fmt.Sprintf("%v: %v (parent %#x size %d, field %#x size %d)",
		ErrContainment, e.Reason, e.Parent, e.ParentSize, e.Field, e.FieldSize)
}

func (e *ContainmentError) Unwrap() error { return ErrContainment }

package layout

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContain(t *testing.T) {
	cases := []struct {
		name       string
		parent     uintptr
		field      uintptr
		parentSize uintptr
		fieldSize  uintptr
		off        uintptr
		want       Reason
	}{
		{"first byte", 0x1000, 0x1000, 16, 4, 0, Contained},
		{"last field", 0x1000, 0x100c, 16, 4, 12, Contained},
		{"zero sized inside", 0x1000, 0x1008, 16, 0, 8, Contained},
		{"nil", 0x1000, 0, 16, 4, 0, Nil},
		{"before", 0x1000, 0x0ff8, 16, 4, 0, Before},
		{"at end", 0x1000, 0x1010, 16, 4, 16, PastEnd},
		{"zero sized at end", 0x1000, 0x1010, 16, 0, 16, PastEnd},
		{"far away", 0x1000, 0x9000, 16, 4, 0x8000, PastEnd},
		{"tail overflow", 0x1000, 0x100c, 16, 8, 12, Overflow},
		{"empty parent", 0x1000, 0x1000, 0, 0, 0, PastEnd},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			off, reason := Contain(c.parent, c.field, c.parentSize, c.fieldSize)
			assert.Equal(t, c.want, reason, reason.String())
			assert.Equal(t, c.off, off)
		})
	}
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "contained", Contained.String())
	assert.Equal(t, "field extends past parent end", Overflow.String())
	assert.Equal(t, "unknown", Reason(99).String())
}

func TestAtRoundTrip(t *testing.T) {
	type pair struct {
		A int32
		B [2]int64
	}
	p := &pair{B: [2]int64{3, 4}}
	off, reason := Contain(Addr(p), Addr(&p.B[1]), Sizeof[pair](), Sizeof[int64]())
	require.Equal(t, Contained, reason)
	got := At[pair, int64](p, off)
	require.Same(t, &p.B[1], got)
	assert.Equal(t, int64(4), *got)
	assert.Equal(t, unsafe.Sizeof(pair{}), Sizeof[pair]())
}

type leaf struct {
	X uint8
	Y uint64
}

type base struct {
	Tag string
}

type node struct {
	base
	*leaf
	Leaf  leaf
	items []leaf
}

func TestResolve(t *testing.T) {
	r := NewResolver()
	nt := reflect.TypeOf((*node)(nil)).Elem()

	p, err := r.Resolve(nt, "Leaf.Y")
	require.NoError(t, err)
	assert.Equal(t, unsafe.Offsetof(node{}.Leaf)+unsafe.Offsetof(leaf{}.Y), p.Offset)
	assert.Equal(t, reflect.TypeOf((*uint64)(nil)).Elem(), p.Type)

	p, err = r.Resolve(nt, "Tag")
	require.NoError(t, err)
	assert.Equal(t, uintptr(0), p.Offset)
	assert.Equal(t, reflect.TypeOf((*string)(nil)).Elem(), p.Type)

	_, err = r.Resolve(nt, "X")
	require.ErrorIs(t, err, ErrNoField, "promoted through an embedded pointer")

	_, err = r.Resolve(nt, "items.X")
	require.ErrorIs(t, err, ErrNotStruct)

	_, err = r.Resolve(reflect.TypeOf((*int)(nil)).Elem(), "X")
	require.ErrorIs(t, err, ErrNotStruct)
}

func TestResolveCaches(t *testing.T) {
	r := NewResolver()
	nt := reflect.TypeOf((*node)(nil)).Elem()
	first, err := r.Resolve(nt, "Leaf.X")
	require.NoError(t, err)
	require.Len(t, r.plan, 1)
	again, err := r.Resolve(nt, "Leaf.X")
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Len(t, r.plan, 1)

	_, err = r.Resolve(nt, "Nope")
	require.Error(t, err)
	assert.Len(t, r.plan, 1, "failures are not cached")
}

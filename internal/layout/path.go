package layout

import (
	"reflect"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrNotStruct = errors.New("expected struct")
	ErrNoField   = errors.New("no such field")
)

// FieldPlan is a resolved dotted field path.
type FieldPlan struct {
	Offset uintptr
	Type   reflect.Type
}

type planKey struct {
	t    reflect.Type
	path string
}

// Resolver caches field paths per struct type.
type Resolver struct {
	mu   sync.RWMutex
	plan map[planKey]FieldPlan
}

func NewResolver() *Resolver {
	return &Resolver{plan: make(map[planKey]FieldPlan)}
}

// Resolve returns the offset and type of the field named by path ("A" or
// "A.B.C") inside t. Every hop must stay inside t's own storage, so paths
// through pointers, slices or maps are rejected.
func (r *Resolver) Resolve(t reflect.Type, path string) (FieldPlan, error) {
	key := planKey{t: t, path: path}
	r.mu.RLock()
	if p, ok := r.plan[key]; ok {
		r.mu.RUnlock()
		return p, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check
	if p, ok := r.plan[key]; ok {
		return p, nil
	}
	p, err := resolve(t, path)
	if err != nil {
		return FieldPlan{}, err
	}
	r.plan[key] = p
	return p, nil
}

func resolve(t reflect.Type, path string) (FieldPlan, error) {
	if t.Kind() != reflect.Struct {
		return FieldPlan{}, errors.Wrapf(ErrNotStruct, "%s", t)
	}
	if path == "" {
		return FieldPlan{}, errors.Wrap(ErrNoField, "empty field path")
	}
	cur := t
	var off uintptr
	for _, name := range strings.Split(path, ".") {
		if cur.Kind() != reflect.Struct {
			return FieldPlan{}, errors.Wrapf(ErrNotStruct, "%q: %s is not stored inline", path, cur)
		}
		sf, ok := cur.FieldByName(name)
		if !ok {
			return FieldPlan{}, errors.Wrapf(ErrNoField, "%s has no field %q", cur, name)
		}
		// promoted fields carry the whole embedding chain in Index
		inner := cur
		for i, idx := range sf.Index {
			if i > 0 && inner.Kind() != reflect.Struct {
				return FieldPlan{}, errors.Wrapf(ErrNoField, "%q is promoted through %s", name, inner)
			}
			f := inner.Field(idx)
			off += f.Offset
			inner = f.Type
		}
		cur = inner
	}
	return FieldPlan{Offset: off, Type: cur}, nil
}

package path

import (
	"fmt"

	"github.com/jaf-ql/jaf/internal/value"
)

// ResultKind identifies the variant held by a Result.
type ResultKind uint8

const (
	// KindSingle is a single resolved value, possibly null.
	KindSingle ResultKind = iota
	// KindNotFound means an all-specific path failed to resolve.
	KindNotFound
	// KindMulti is an ordered, possibly empty, possibly duplicated
	// collection produced by a multi-match component.
	KindMulti
)

// Result is the outcome of a path evaluation.
type Result struct {
	kind   ResultKind
	single value.Value
	multi  []value.Value
}

func Single(v value.Value) Result {
	return Result{kind: KindSingle, single: v}
}

func NotFound() Result {
	return Result{kind: KindNotFound}
}

func Multi(values []value.Value) Result {
	if values == nil {
		values = []value.Value{}
	}
	return Result{kind: KindMulti, multi: values}
}

func (r Result) Kind() ResultKind {
	return r.kind
}

// Exists reports whether the path resolved to anything. A resolved null
// exists; an empty multi-match does not.
func (r Result) Exists() bool {
	switch r.kind {
	case KindSingle:
		return true
	case KindMulti:
		return len(r.multi) > 0
	default:
		return false
	}
}

// Value returns the single resolved value.
func (r Result) Value() (value.Value, bool) {
	if r.kind != KindSingle {
		return value.Value{}, false
	}
	return r.single, true
}

// Values returns the collection for multi results, a one-element slice for
// single results and nil for not-found.
func (r Result) Values() []value.Value {
	switch r.kind {
	case KindSingle:
		return []value.Value{r.single}
	case KindMulti:
		return r.multi
	default:
		return nil
	}
}

// First returns the first resolved value in discovery order.
func (r Result) First() (value.Value, bool) {
	values := r.Values()
	if len(values) == 0 {
		return value.Value{}, false
	}
	return values[0], true
}

// One returns the resolved value if there is exactly one.
func (r Result) One() (value.Value, error) {
	values := r.Values()
	switch len(values) {
	case 1:
		return values[0], nil
	case 0:
		return value.Value{}, fmt.Errorf("path resolved to no values; expected exactly one")
	default:
		return value.Value{}, fmt.Errorf("path resolved to %d values; expected exactly one", len(values))
	}
}

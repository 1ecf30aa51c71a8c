package operator

import (
	"fmt"
	"strings"

	"github.com/jaf-ql/jaf/internal/value"
)

func (r *Registry) registerComparison() {
	r.register("eq?", Predicate, 2, 2, func(args []value.Value) (value.Value, error) {
		return value.Bool(value.Equal(args[0], args[1])), nil
	})

	r.register("neq?", Predicate, 2, 2, func(args []value.Value) (value.Value, error) {
		return value.Bool(!value.Equal(args[0], args[1])), nil
	})

	r.register("gt?", Predicate, 2, 2, ordering("gt?", func(c int) bool { return c > 0 }))
	r.register("gte?", Predicate, 2, 2, ordering("gte?", func(c int) bool { return c >= 0 }))
	r.register("lt?", Predicate, 2, 2, ordering("lt?", func(c int) bool { return c < 0 }))
	r.register("lte?", Predicate, 2, 2, ordering("lte?", func(c int) bool { return c <= 0 }))

	r.register("in?", Predicate, 2, 2, func(args []value.Value) (value.Value, error) {
		return evaluateMembership("in?", args[0], args[1])
	})

	r.register("contains?", Predicate, 2, 2, func(args []value.Value) (value.Value, error) {
		return evaluateMembership("contains?", args[1], args[0])
	})
}

func ordering(name string, accept func(int) bool) Func {
	return func(args []value.Value) (value.Value, error) {
		c, err := value.Compare(args[0], args[1])
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: %q: %v", ErrType, name, err)
		}
		return value.Bool(accept(c)), nil
	}
}

// evaluateMembership checks item against container: array membership, string
// containment, or object key presence.
func evaluateMembership(name string, item, container value.Value) (value.Value, error) {
	switch container.Kind() {
	case value.KindSequence:
		for _, candidate := range container.Items() {
			if value.Equal(item, candidate) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case value.KindString:
		needle, ok := item.AsString()
		if !ok {
			return value.Value{}, fmt.Errorf("%w: %q requires a string needle for string containers, got %s", ErrType, name, item.TypeName())
		}
		haystack, _ := container.AsString()
		return value.Bool(strings.Contains(haystack, needle)), nil
	case value.KindMap:
		key, ok := item.AsString()
		if !ok {
			return value.Value{}, fmt.Errorf("%w: %q requires a string key for object containers, got %s", ErrType, name, item.TypeName())
		}
		_, present := container.Get(key)
		return value.Bool(present), nil
	default:
		return value.Value{}, fmt.Errorf("%w: %q requires an array, string or object container, got %s", ErrType, name, container.TypeName())
	}
}

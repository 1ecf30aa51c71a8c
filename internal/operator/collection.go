package operator

import (
	"fmt"
	"sort"

	"github.com/jaf-ql/jaf/internal/value"
)

func (r *Registry) registerCollections() {
	r.register("length", Transformer, 1, 1, func(args []value.Value) (value.Value, error) {
		length, ok := args[0].Len()
		if !ok {
			return value.Value{}, fmt.Errorf("%w: %q requires an array, object or string, got %s", ErrType, "length", args[0].TypeName())
		}
		return value.Number(float64(length)), nil
	})

	r.register("keys", Transformer, 1, 1, func(args []value.Value) (value.Value, error) {
		obj, err := requireMap("keys", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		keys := obj.Keys()
		items := make([]value.Value, 0, len(keys))
		for _, key := range keys {
			items = append(items, value.String(key))
		}
		return value.Sequence(items...), nil
	})

	r.register("values", Transformer, 1, 1, func(args []value.Value) (value.Value, error) {
		obj, err := requireMap("values", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		keys := obj.Keys()
		items := make([]value.Value, 0, len(keys))
		for _, key := range keys {
			item, _ := obj.Get(key)
			items = append(items, item)
		}
		return value.Sequence(items...), nil
	})

	r.register("first", Transformer, 1, 1, func(args []value.Value) (value.Value, error) {
		items, err := requireSequence("first", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		if len(items) == 0 {
			return value.Value{}, fmt.Errorf("%w: %q on an empty array", ErrType, "first")
		}
		return items[0], nil
	})

	r.register("last", Transformer, 1, 1, func(args []value.Value) (value.Value, error) {
		items, err := requireSequence("last", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		if len(items) == 0 {
			return value.Value{}, fmt.Errorf("%w: %q on an empty array", ErrType, "last")
		}
		return items[len(items)-1], nil
	})

	r.register("nth", Transformer, 2, 2, func(args []value.Value) (value.Value, error) {
		items, err := requireSequence("nth", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		n, err := requireNumber("nth", args, 1)
		if err != nil {
			return value.Value{}, err
		}
		idx := int(n)
		if idx < 0 {
			idx += len(items)
		}
		if idx < 0 || idx >= len(items) {
			return value.Value{}, fmt.Errorf("%w: %q index %d out of range for length %d", ErrType, "nth", int(n), len(items))
		}
		return items[idx], nil
	})

	r.register("unique", Transformer, 1, 1, func(args []value.Value) (value.Value, error) {
		items, err := requireSequence("unique", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		var out []value.Value
		for _, item := range items {
			duplicate := false
			for _, seen := range out {
				if value.Equal(item, seen) {
					duplicate = true
					break
				}
			}
			if !duplicate {
				out = append(out, item)
			}
		}
		return value.Sequence(out...), nil
	})

	r.register("sort", Transformer, 1, 1, func(args []value.Value) (value.Value, error) {
		items, err := requireSequence("sort", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		out := make([]value.Value, len(items))
		copy(out, items)
		var sortErr error
		sort.SliceStable(out, func(i, j int) bool {
			c, err := value.Compare(out[i], out[j])
			if err != nil && sortErr == nil {
				sortErr = err
			}
			return c < 0
		})
		if sortErr != nil {
			return value.Value{}, fmt.Errorf("%w: %q: %v", ErrType, "sort", sortErr)
		}
		return value.Sequence(out...), nil
	})

	r.register("reverse", Transformer, 1, 1, func(args []value.Value) (value.Value, error) {
		items, err := requireSequence("reverse", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		out := make([]value.Value, len(items))
		for i, item := range items {
			out[len(items)-1-i] = item
		}
		return value.Sequence(out...), nil
	})
}

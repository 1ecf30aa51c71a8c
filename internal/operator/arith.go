package operator

import (
	"fmt"
	"math"

	"github.com/jaf-ql/jaf/internal/value"
)

func (r *Registry) registerArithmetic() {
	// Variadic identities: (+) = 0, (+ a) = a, (-) = 0, (- a) = -a,
	// (* ) = 1, (/) is an arity error, (/ a) = 1/a.
	r.register("+", Transformer, 0, -1, func(args []value.Value) (value.Value, error) {
		total := 0.0
		for pos := range args {
			n, err := requireNumber("+", args, pos)
			if err != nil {
				return value.Value{}, err
			}
			total += n
		}
		return value.Number(total), nil
	})

	r.register("-", Transformer, 0, -1, func(args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Number(0), nil
		}
		first, err := requireNumber("-", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		if len(args) == 1 {
			return value.Number(-first), nil
		}
		total := first
		for pos := 1; pos < len(args); pos++ {
			n, err := requireNumber("-", args, pos)
			if err != nil {
				return value.Value{}, err
			}
			total -= n
		}
		return value.Number(total), nil
	})

	r.register("*", Transformer, 0, -1, func(args []value.Value) (value.Value, error) {
		total := 1.0
		for pos := range args {
			n, err := requireNumber("*", args, pos)
			if err != nil {
				return value.Value{}, err
			}
			total *= n
		}
		return value.Number(total), nil
	})

	r.register("/", Transformer, 1, -1, func(args []value.Value) (value.Value, error) {
		first, err := requireNumber("/", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		if len(args) == 1 {
			if first == 0 {
				return value.Value{}, fmt.Errorf("%w: %q division by zero", ErrType, "/")
			}
			return value.Number(1 / first), nil
		}
		total := first
		for pos := 1; pos < len(args); pos++ {
			n, err := requireNumber("/", args, pos)
			if err != nil {
				return value.Value{}, err
			}
			if n == 0 {
				return value.Value{}, fmt.Errorf("%w: %q division by zero", ErrType, "/")
			}
			total /= n
		}
		return value.Number(total), nil
	})

	r.register("%", Transformer, 2, 2, func(args []value.Value) (value.Value, error) {
		a, err := requireNumber("%", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		b, err := requireNumber("%", args, 1)
		if err != nil {
			return value.Value{}, err
		}
		if b == 0 {
			return value.Value{}, fmt.Errorf("%w: %q division by zero", ErrType, "%")
		}
		return value.Number(math.Mod(a, b)), nil
	})

	r.register("abs", Transformer, 1, 1, func(args []value.Value) (value.Value, error) {
		n, err := requireNumber("abs", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		return value.Number(math.Abs(n)), nil
	})

	r.register("round", Transformer, 1, 2, func(args []value.Value) (value.Value, error) {
		n, err := requireNumber("round", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		digits := 0.0
		if len(args) == 2 {
			digits, err = requireNumber("round", args, 1)
			if err != nil {
				return value.Value{}, err
			}
		}
		scale := math.Pow(10, digits)
		return value.Number(math.Round(n*scale) / scale), nil
	})

	r.register("sum", Transformer, 1, 1, aggregate("sum", func(total, n float64) float64 { return total + n }, 0, false))
	r.register("min", Transformer, 1, 1, aggregate("min", math.Min, 0, true))
	r.register("max", Transformer, 1, 1, aggregate("max", math.Max, 0, true))
}

// aggregate folds a numeric sequence. seeded=false starts from init; true
// starts from the first element and rejects empty input.
func aggregate(name string, fold func(float64, float64) float64, init float64, seeded bool) Func {
	return func(args []value.Value) (value.Value, error) {
		items, err := requireSequence(name, args, 0)
		if err != nil {
			return value.Value{}, err
		}
		if seeded && len(items) == 0 {
			return value.Value{}, fmt.Errorf("%w: %q on an empty array", ErrType, name)
		}

		total := init
		for i, item := range items {
			n, ok := item.AsNumber()
			if !ok {
				return value.Value{}, fmt.Errorf("%w: %q requires numeric elements, element %d is %s", ErrType, name, i, item.TypeName())
			}
			if seeded && i == 0 {
				total = n
				continue
			}
			total = fold(total, n)
		}
		return value.Number(total), nil
	}
}

package operator

import (
	"github.com/jaf-ql/jaf/internal/value"
)

func (r *Registry) registerTypes() {
	r.register("is-null?", Predicate, 1, 1, kindPredicate(value.KindNull))
	r.register("is-boolean?", Predicate, 1, 1, kindPredicate(value.KindBool))
	r.register("is-number?", Predicate, 1, 1, kindPredicate(value.KindNumber))
	r.register("is-string?", Predicate, 1, 1, kindPredicate(value.KindString))
	r.register("is-array?", Predicate, 1, 1, kindPredicate(value.KindSequence))
	r.register("is-object?", Predicate, 1, 1, kindPredicate(value.KindMap))

	r.register("empty?", Predicate, 1, 1, func(args []value.Value) (value.Value, error) {
		length, ok := args[0].Len()
		if !ok {
			return value.Bool(args[0].IsNull()), nil
		}
		return value.Bool(length == 0), nil
	})

	r.register("type", Transformer, 1, 1, func(args []value.Value) (value.Value, error) {
		return value.String(args[0].TypeName()), nil
	})
}

func kindPredicate(kind value.Kind) Func {
	return func(args []value.Value) (value.Value, error) {
		return value.Bool(args[0].Kind() == kind), nil
	}
}

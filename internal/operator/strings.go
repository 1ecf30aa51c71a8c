package operator

import (
	"fmt"
	"strings"

	"github.com/jaf-ql/jaf/internal/fuzzy"
	"github.com/jaf-ql/jaf/internal/value"
)

// defaultFuzzyMatchCutoff is the score fuzzy-match? requires when no cutoff
// argument is supplied.
const defaultFuzzyMatchCutoff = 0.9

func (r *Registry) registerStrings() {
	r.register("starts-with?", Predicate, 2, 2, func(args []value.Value) (value.Value, error) {
		prefix, err := requireString("starts-with?", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		s, err := requireString("starts-with?", args, 1)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(strings.HasPrefix(s, prefix)), nil
	})

	r.register("ends-with?", Predicate, 2, 2, func(args []value.Value) (value.Value, error) {
		suffix, err := requireString("ends-with?", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		s, err := requireString("ends-with?", args, 1)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(strings.HasSuffix(s, suffix)), nil
	})

	r.register("regex-match?", Predicate, 2, 2, func(args []value.Value) (value.Value, error) {
		pattern, err := requireString("regex-match?", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		s, err := requireString("regex-match?", args, 1)
		if err != nil {
			return value.Value{}, err
		}
		compiled, err := r.regexes.compile(pattern)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(compiled.MatchString(s)), nil
	})

	r.register("fuzzy-match?", Predicate, 2, 4, func(args []value.Value) (value.Value, error) {
		target, err := requireString("fuzzy-match?", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		s, err := requireString("fuzzy-match?", args, 1)
		if err != nil {
			return value.Value{}, err
		}

		cutoff := defaultFuzzyMatchCutoff
		if len(args) >= 3 {
			parsed, err := requireNumber("fuzzy-match?", args, 2)
			if err != nil {
				return value.Value{}, err
			}
			if parsed < 0 || parsed > 1 {
				return value.Value{}, fmt.Errorf("%w: %q cutoff %v must be within [0, 1]", ErrType, "fuzzy-match?", parsed)
			}
			cutoff = parsed
		}

		algorithm := fuzzy.AlgorithmDefault
		if len(args) == 4 {
			name, err := requireString("fuzzy-match?", args, 3)
			if err != nil {
				return value.Value{}, err
			}
			algorithm, err = fuzzy.ParseAlgorithm(name)
			if err != nil {
				return value.Value{}, fmt.Errorf("%w: %v", ErrType, err)
			}
		}

		score, err := r.scorer.Similarity(s, target, algorithm)
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: %v", ErrType, err)
		}
		return value.Bool(score >= cutoff), nil
	})

	r.register("fuzzy-score", Transformer, 2, 3, func(args []value.Value) (value.Value, error) {
		target, err := requireString("fuzzy-score", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		s, err := requireString("fuzzy-score", args, 1)
		if err != nil {
			return value.Value{}, err
		}
		algorithm := fuzzy.AlgorithmDefault
		if len(args) == 3 {
			name, err := requireString("fuzzy-score", args, 2)
			if err != nil {
				return value.Value{}, err
			}
			algorithm, err = fuzzy.ParseAlgorithm(name)
			if err != nil {
				return value.Value{}, fmt.Errorf("%w: %v", ErrType, err)
			}
		}
		score, err := r.scorer.Similarity(s, target, algorithm)
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: %v", ErrType, err)
		}
		return value.Number(score), nil
	})

	r.register("lower-case", Transformer, 1, 1, stringTransform("lower-case", strings.ToLower))
	r.register("upper-case", Transformer, 1, 1, stringTransform("upper-case", strings.ToUpper))
	r.register("trim", Transformer, 1, 1, stringTransform("trim", strings.TrimSpace))

	r.register("split", Transformer, 2, 2, func(args []value.Value) (value.Value, error) {
		s, err := requireString("split", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		sep, err := requireString("split", args, 1)
		if err != nil {
			return value.Value{}, err
		}
		parts := strings.Split(s, sep)
		items := make([]value.Value, 0, len(parts))
		for _, part := range parts {
			items = append(items, value.String(part))
		}
		return value.Sequence(items...), nil
	})

	r.register("join", Transformer, 2, 2, func(args []value.Value) (value.Value, error) {
		items, err := requireSequence("join", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		sep, err := requireString("join", args, 1)
		if err != nil {
			return value.Value{}, err
		}
		parts := make([]string, 0, len(items))
		for i, item := range items {
			s, ok := item.AsString()
			if !ok {
				return value.Value{}, fmt.Errorf("%w: %q requires string elements, element %d is %s", ErrType, "join", i, item.TypeName())
			}
			parts = append(parts, s)
		}
		return value.String(strings.Join(parts, sep)), nil
	})

	r.register("concat", Transformer, 1, 1, func(args []value.Value) (value.Value, error) {
		items, err := requireSequence("concat", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		var b strings.Builder
		for i, item := range items {
			s, ok := item.AsString()
			if !ok {
				return value.Value{}, fmt.Errorf("%w: %q requires string elements, element %d is %s", ErrType, "concat", i, item.TypeName())
			}
			b.WriteString(s)
		}
		return value.String(b.String()), nil
	})
}

func stringTransform(name string, transform func(string) string) Func {
	return func(args []value.Value) (value.Value, error) {
		s, err := requireString(name, args, 0)
		if err != nil {
			return value.Value{}, err
		}
		return value.String(transform(s)), nil
	}
}

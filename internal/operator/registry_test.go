package operator

import (
	"errors"
	"testing"

	"github.com/jaf-ql/jaf/internal/value"
)

func apply(t *testing.T, r *Registry, name string, args ...any) (value.Value, error) {
	t.Helper()
	entry, err := r.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%q) error = %v", name, err)
	}
	if err := entry.CheckArity(len(args)); err != nil {
		return value.Value{}, err
	}
	converted := make([]value.Value, 0, len(args))
	for _, arg := range args {
		converted = append(converted, value.MustFrom(arg))
	}
	return entry.Apply(converted)
}

func wantBool(t *testing.T, got value.Value, err error, want bool) {
	t.Helper()
	if err != nil {
		t.Fatalf("apply error = %v", err)
	}
	b, ok := got.AsBool()
	if !ok {
		t.Fatalf("result = %s, want boolean", got)
	}
	if b != want {
		t.Errorf("result = %v, want %v", b, want)
	}
}

func wantNumber(t *testing.T, got value.Value, err error, want float64) {
	t.Helper()
	if err != nil {
		t.Fatalf("apply error = %v", err)
	}
	n, ok := got.AsNumber()
	if !ok {
		t.Fatalf("result = %s, want number", got)
	}
	if n != want {
		t.Errorf("result = %v, want %v", n, want)
	}
}

func TestLookupUnknown(t *testing.T) {
	r := NewRegistry(nil)
	if _, err := r.Lookup("frobnicate?"); !errors.Is(err, ErrUnknown) {
		t.Errorf("Lookup() error = %v, want ErrUnknown", err)
	}
}

func TestCheckArity(t *testing.T) {
	r := NewRegistry(nil)

	tests := []struct {
		name     string
		operator string
		count    int
		wantErr  bool
	}{
		{"eq? exact", "eq?", 2, false},
		{"eq? too few", "eq?", 1, true},
		{"eq? too many", "eq?", 3, true},
		{"+ zero args", "+", 0, false},
		{"+ many args", "+", 9, false},
		{"/ zero args", "/", 0, true},
		{"round one arg", "round", 1, false},
		{"round two args", "round", 2, false},
		{"round three args", "round", 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := r.Lookup(tt.operator)
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			err = entry.CheckArity(tt.count)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckArity(%d) error = %v, wantErr %v", tt.count, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrArity) {
				t.Errorf("CheckArity() error = %v, want ErrArity", err)
			}
		})
	}
}

func TestComparisonOperators(t *testing.T) {
	r := NewRegistry(nil)

	tests := []struct {
		name     string
		operator string
		args     []any
		want     bool
		wantErr  bool
	}{
		{"eq numbers", "eq?", []any{1, 1.0}, true, false},
		{"eq mixed kinds", "eq?", []any{1, "1"}, false, false},
		{"eq deep", "eq?", []any{[]any{1, 2}, []any{1, 2}}, true, false},
		{"neq", "neq?", []any{1, 2}, true, false},
		{"gt numbers", "gt?", []any{2, 1}, true, false},
		{"gt strings", "gt?", []any{"b", "a"}, true, false},
		{"gt mismatch is type error", "gt?", []any{2, "1"}, false, true},
		{"lte equal", "lte?", []any{2, 2}, true, false},
		{"in array", "in?", []any{"dev", []any{"dev", "qa"}}, true, false},
		{"in array miss", "in?", []any{"ops", []any{"dev", "qa"}}, false, false},
		{"in string", "in?", []any{"ell", "hello"}, true, false},
		{"in object keys", "in?", []any{"a", map[string]any{"a": 1}}, true, false},
		{"in scalar container", "in?", []any{"a", 5}, false, true},
		{"contains reversed args", "contains?", []any{[]any{"dev"}, "dev"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := apply(t, r, tt.operator, tt.args...)
			if tt.wantErr {
				if !errors.Is(err, ErrType) {
					t.Fatalf("error = %v, want ErrType", err)
				}
				return
			}
			wantBool(t, got, err, tt.want)
		})
	}
}

func TestStringOperators(t *testing.T) {
	r := NewRegistry(nil)

	t.Run("starts-with", func(t *testing.T) {
		got, err := apply(t, r, "starts-with?", "he", "hello")
		wantBool(t, got, err, true)
	})
	t.Run("ends-with", func(t *testing.T) {
		got, err := apply(t, r, "ends-with?", "lo", "hello")
		wantBool(t, got, err, true)
	})
	t.Run("regex-match", func(t *testing.T) {
		got, err := apply(t, r, "regex-match?", "^h.*o$", "hello")
		wantBool(t, got, err, true)
	})
	t.Run("regex-match invalid pattern", func(t *testing.T) {
		if _, err := apply(t, r, "regex-match?", "(", "hello"); !errors.Is(err, ErrType) {
			t.Errorf("error = %v, want ErrType", err)
		}
	})
	t.Run("fuzzy-match exact", func(t *testing.T) {
		got, err := apply(t, r, "fuzzy-match?", "hello", "hello")
		wantBool(t, got, err, true)
	})
	t.Run("fuzzy-match below cutoff", func(t *testing.T) {
		got, err := apply(t, r, "fuzzy-match?", "hello", "zzz")
		wantBool(t, got, err, false)
	})
	t.Run("fuzzy-match custom cutoff", func(t *testing.T) {
		got, err := apply(t, r, "fuzzy-match?", "hello", "hallo", 0.5)
		wantBool(t, got, err, true)
	})
	t.Run("fuzzy-score", func(t *testing.T) {
		got, err := apply(t, r, "fuzzy-score", "same", "same")
		wantNumber(t, got, err, 1)
	})
	t.Run("lower-case", func(t *testing.T) {
		got, err := apply(t, r, "lower-case", "HeLLo")
		if err != nil {
			t.Fatal(err)
		}
		if s, _ := got.AsString(); s != "hello" {
			t.Errorf("lower-case = %q", s)
		}
	})
	t.Run("split and join", func(t *testing.T) {
		parts, err := apply(t, r, "split", "a,b,c", ",")
		if err != nil {
			t.Fatal(err)
		}
		if len(parts.Items()) != 3 {
			t.Fatalf("split yielded %d parts", len(parts.Items()))
		}
		joined, err := apply(t, r, "join", parts.Interface(), "-")
		if err != nil {
			t.Fatal(err)
		}
		if s, _ := joined.AsString(); s != "a-b-c" {
			t.Errorf("join = %q", s)
		}
	})
	t.Run("concat rejects non-strings", func(t *testing.T) {
		if _, err := apply(t, r, "concat", []any{"a", 1}); !errors.Is(err, ErrType) {
			t.Errorf("error = %v, want ErrType", err)
		}
	})
}

func TestTypeOperators(t *testing.T) {
	r := NewRegistry(nil)

	tests := []struct {
		name     string
		operator string
		arg      any
		want     bool
	}{
		{"null", "is-null?", nil, true},
		{"not null", "is-null?", 0, false},
		{"boolean", "is-boolean?", true, true},
		{"number", "is-number?", 3.2, true},
		{"string", "is-string?", "x", true},
		{"array", "is-array?", []any{}, true},
		{"object", "is-object?", map[string]any{}, true},
		{"empty array", "empty?", []any{}, true},
		{"nonempty array", "empty?", []any{1}, false},
		{"empty string", "empty?", "", true},
		{"null counts empty", "empty?", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := apply(t, r, tt.operator, tt.arg)
			wantBool(t, got, err, tt.want)
		})
	}

	t.Run("type names", func(t *testing.T) {
		got, err := apply(t, r, "type", []any{1})
		if err != nil {
			t.Fatal(err)
		}
		if s, _ := got.AsString(); s != "array" {
			t.Errorf("type = %q, want array", s)
		}
	})
}

func TestCollectionOperators(t *testing.T) {
	r := NewRegistry(nil)

	t.Run("length", func(t *testing.T) {
		got, err := apply(t, r, "length", []any{1, 2, 3})
		wantNumber(t, got, err, 3)
	})
	t.Run("length of scalar", func(t *testing.T) {
		if _, err := apply(t, r, "length", 5); !errors.Is(err, ErrType) {
			t.Errorf("error = %v, want ErrType", err)
		}
	})
	t.Run("keys in order", func(t *testing.T) {
		got, err := apply(t, r, "keys", map[string]any{"b": 1, "a": 2})
		if err != nil {
			t.Fatal(err)
		}
		items := got.Items()
		if len(items) != 2 {
			t.Fatalf("keys yielded %d items", len(items))
		}
		// From sorts plain Go map keys.
		if s, _ := items[0].AsString(); s != "a" {
			t.Errorf("first key = %q, want a", s)
		}
	})
	t.Run("first last nth", func(t *testing.T) {
		seq := []any{10, 20, 30}
		got, err := apply(t, r, "first", seq)
		wantNumber(t, got, err, 10)
		got, err = apply(t, r, "last", seq)
		wantNumber(t, got, err, 30)
		got, err = apply(t, r, "nth", seq, -1)
		wantNumber(t, got, err, 30)
		if _, err := apply(t, r, "nth", seq, 7); !errors.Is(err, ErrType) {
			t.Errorf("nth out of range error = %v, want ErrType", err)
		}
		if _, err := apply(t, r, "first", []any{}); !errors.Is(err, ErrType) {
			t.Errorf("first on empty error = %v, want ErrType", err)
		}
	})
	t.Run("unique", func(t *testing.T) {
		got, err := apply(t, r, "unique", []any{1, 2, 1, 3, 2})
		if err != nil {
			t.Fatal(err)
		}
		if !value.Equal(got, value.MustFrom([]any{1, 2, 3})) {
			t.Errorf("unique = %s", got)
		}
	})
	t.Run("sort", func(t *testing.T) {
		got, err := apply(t, r, "sort", []any{3, 1, 2})
		if err != nil {
			t.Fatal(err)
		}
		if !value.Equal(got, value.MustFrom([]any{1, 2, 3})) {
			t.Errorf("sort = %s", got)
		}
		if _, err := apply(t, r, "sort", []any{1, "a"}); !errors.Is(err, ErrType) {
			t.Errorf("sort mixed error = %v, want ErrType", err)
		}
	})
	t.Run("reverse", func(t *testing.T) {
		got, err := apply(t, r, "reverse", []any{1, 2, 3})
		if err != nil {
			t.Fatal(err)
		}
		if !value.Equal(got, value.MustFrom([]any{3, 2, 1})) {
			t.Errorf("reverse = %s", got)
		}
	})
}

func TestArithmeticOperators(t *testing.T) {
	r := NewRegistry(nil)

	tests := []struct {
		name     string
		operator string
		args     []any
		want     float64
		wantErr  bool
	}{
		{"sum identity", "+", nil, 0, false},
		{"unary plus", "+", []any{5}, 5, false},
		{"addition", "+", []any{1, 2, 3.5}, 6.5, false},
		{"minus identity", "-", nil, 0, false},
		{"unary minus", "-", []any{5}, -5, false},
		{"subtraction", "-", []any{10, 3, 2}, 5, false},
		{"product identity", "*", nil, 1, false},
		{"multiplication", "*", []any{2, 3, 4}, 24, false},
		{"reciprocal", "/", []any{4}, 0.25, false},
		{"division", "/", []any{20, 2, 5}, 2, false},
		{"division by zero", "/", []any{1, 0}, 0, true},
		{"reciprocal of zero", "/", []any{0}, 0, true},
		{"modulo", "%", []any{7, 3}, 1, false},
		{"modulo by zero", "%", []any{7, 0}, 0, true},
		{"abs", "abs", []any{-3.5}, 3.5, false},
		{"round", "round", []any{2.567}, 3, false},
		{"round digits", "round", []any{2.567, 2}, 2.57, false},
		{"sum", "sum", []any{[]any{1, 2, 3}}, 6, false},
		{"sum empty", "sum", []any{[]any{}}, 0, false},
		{"min", "min", []any{[]any{4, 2, 9}}, 2, false},
		{"max", "max", []any{[]any{4, 2, 9}}, 9, false},
		{"min empty", "min", []any{[]any{}}, 0, true},
		{"plus non-number", "+", []any{1, "x"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := apply(t, r, tt.operator, tt.args...)
			if tt.wantErr {
				if !errors.Is(err, ErrType) {
					t.Fatalf("error = %v, want ErrType", err)
				}
				return
			}
			wantNumber(t, got, err, tt.want)
		})
	}
}

func TestDatetimeOperators(t *testing.T) {
	r := NewRegistry(nil)

	t.Run("date parses to RFC 3339", func(t *testing.T) {
		got, err := apply(t, r, "date", "2026-08-23")
		if err != nil {
			t.Fatal(err)
		}
		if s, _ := got.AsString(); s != "2026-08-23T00:00:00Z" {
			t.Errorf("date = %q", s)
		}
	})
	t.Run("datetime", func(t *testing.T) {
		got, err := apply(t, r, "datetime", "2026-08-23 10:30:00")
		if err != nil {
			t.Fatal(err)
		}
		if s, _ := got.AsString(); s != "2026-08-23T10:30:00Z" {
			t.Errorf("datetime = %q", s)
		}
	})
	t.Run("timestamp", func(t *testing.T) {
		got, err := apply(t, r, "timestamp", 0)
		if err != nil {
			t.Fatal(err)
		}
		if s, _ := got.AsString(); s != "1970-01-01T00:00:00Z" {
			t.Errorf("timestamp = %q", s)
		}
	})
	t.Run("add and diff", func(t *testing.T) {
		shifted, err := apply(t, r, "add-time", "2026-08-23T00:00:00Z", 3600)
		if err != nil {
			t.Fatal(err)
		}
		if s, _ := shifted.AsString(); s != "2026-08-23T01:00:00Z" {
			t.Errorf("add-time = %q", s)
		}
		diff, err := apply(t, r, "diff-time", shifted.Interface(), "2026-08-23T00:00:00Z")
		wantNumber(t, diff, err, 3600)
	})
	t.Run("sub-time", func(t *testing.T) {
		got, err := apply(t, r, "sub-time", "2026-08-23T01:00:00Z", 3600)
		if err != nil {
			t.Fatal(err)
		}
		if s, _ := got.AsString(); s != "2026-08-23T00:00:00Z" {
			t.Errorf("sub-time = %q", s)
		}
	})
	t.Run("format-date", func(t *testing.T) {
		got, err := apply(t, r, "format-date", "2026-08-23T10:30:00Z", "2006-01-02")
		if err != nil {
			t.Fatal(err)
		}
		if s, _ := got.AsString(); s != "2026-08-23" {
			t.Errorf("format-date = %q", s)
		}
	})
	t.Run("unparseable date", func(t *testing.T) {
		if _, err := apply(t, r, "date", "not-a-date"); !errors.Is(err, ErrType) {
			t.Errorf("error = %v, want ErrType", err)
		}
	})
}

func TestNamesSortedAndComplete(t *testing.T) {
	r := NewRegistry(nil)
	names := r.Names()
	if len(names) == 0 {
		t.Fatal("Names() empty")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("Names() not sorted at %d: %q >= %q", i, names[i-1], names[i])
		}
	}
	for _, required := range []string{"eq?", "in?", "regex-match?", "length", "+", "now"} {
		entry, err := r.Lookup(required)
		if err != nil {
			t.Errorf("Lookup(%q) error = %v", required, err)
			continue
		}
		if entry.Kind != Predicate && entry.Kind != Transformer {
			t.Errorf("%q has no kind", required)
		}
	}
}

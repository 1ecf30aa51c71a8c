package filter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/jaf-ql/jaf/internal/eval"
	"github.com/jaf-ql/jaf/internal/resultset"
	"github.com/jaf-ql/jaf/internal/value"
)

func elements(t *testing.T, raw ...any) []value.Value {
	t.Helper()
	out := make([]value.Value, 0, len(raw))
	for _, item := range raw {
		out = append(out, value.MustFrom(item))
	}
	return out
}

func query(t *testing.T, text string) eval.Node {
	t.Helper()
	decoded, err := value.DecodeString(text)
	if err != nil {
		t.Fatalf("DecodeString() error = %v", err)
	}
	node, err := eval.ParseQuery(decoded)
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	return node
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		elements []any
		query    string
		want     []int
	}{
		{
			"membership",
			[]any{
				map[string]any{"tags": []any{"dev", "python"}},
				map[string]any{"tags": []any{"qa"}},
			},
			`["in?", "dev", "@tags"]`,
			[]int{0},
		},
		{
			"greater than",
			[]any{
				map[string]any{"v": 1},
				map[string]any{"v": 2},
				map[string]any{"v": 3},
			},
			`["gt?", "@v", 1]`,
			[]int{1, 2},
		},
		{
			"no matches",
			[]any{map[string]any{"v": 1}},
			`["gt?", "@v", 9]`,
			nil,
		},
		{
			"wildcard existential",
			[]any{
				map[string]any{"items": []any{map[string]any{"status": "a"}}},
				map[string]any{"items": []any{map[string]any{"status": "b"}}},
			},
			`["eq?", "@items.*.status", "b"]`,
			[]int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Apply(context.Background(), elements(t, tt.elements...), query(t, tt.query), Options{Logger: quietLogger()})
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if got := set.Indices(); !slices.Equal(got, tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
				t.Errorf("Indices() = %v, want %v", got, tt.want)
			}
			if set.Size() != len(tt.elements) {
				t.Errorf("Size() = %d, want %d", set.Size(), len(tt.elements))
			}
		})
	}
}

func TestApplyStrictAbortsWithContext(t *testing.T) {
	data := elements(t,
		map[string]any{"v": 1},
		map[string]any{"v": 2},
	)

	// Non-boolean top-level result is a query usage error in strict mode.
	_, err := Apply(context.Background(), data, query(t, `["+", "@v", 1]`), Options{Logger: quietLogger()})
	if !errors.Is(err, ErrElement) {
		t.Fatalf("Apply() error = %v, want ErrElement", err)
	}
	if !errors.Is(err, eval.ErrNonBoolean) {
		t.Errorf("Apply() error = %v, want wrapped ErrNonBoolean", err)
	}
}

func TestApplyLenientSkips(t *testing.T) {
	data := elements(t,
		map[string]any{"v": 1},
		map[string]any{"v": "not-a-number"},
		map[string]any{"v": 3},
	)

	// The middle element demotes to false via the type rules; a genuinely
	// failing query still matches the clean elements in lenient mode.
	set, err := Apply(context.Background(), data, query(t, `["gt?", "@v", 2]`), Options{Lenient: true, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := set.Indices(); !slices.Equal(got, []int{2}) {
		t.Errorf("Indices() = %v, want [2]", got)
	}

	// Unknown operator aborts strict but is tolerated per element when
	// lenient.
	if _, err := Apply(context.Background(), data, query(t, `["bogus?", 1]`), Options{Logger: quietLogger()}); err == nil {
		t.Error("strict Apply() with unknown operator expected error")
	}
	set, err = Apply(context.Background(), data, query(t, `["bogus?", 1]`), Options{Lenient: true, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("lenient Apply() error = %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("lenient Apply() matched %d elements, want 0", set.Len())
	}
}

func TestApplyParallelMatchesSequential(t *testing.T) {
	var raw []any
	for i := 0; i < 200; i++ {
		raw = append(raw, map[string]any{"v": i})
	}
	data := elements(t, raw...)
	q := query(t, `["eq?", ["%", "@v", 3], 0]`)

	sequential, err := Apply(context.Background(), data, q, Options{CollectionID: "c1", Logger: quietLogger()})
	if err != nil {
		t.Fatalf("sequential Apply() error = %v", err)
	}
	parallel, err := Apply(context.Background(), data, q, Options{Parallelism: 8, CollectionID: "c1", Logger: quietLogger()})
	if err != nil {
		t.Fatalf("parallel Apply() error = %v", err)
	}

	if !slices.Equal(sequential.Indices(), parallel.Indices()) {
		t.Errorf("parallel indices %v != sequential %v", parallel.Indices(), sequential.Indices())
	}
}

func TestApplyParallelSurfacesEvaluationError(t *testing.T) {
	// Each element carries enough items that workers are still busy scanning
	// while the feeder waits to hand out the next index; the query then fails
	// on an unknown operator, so every worker exits on an error. The pass
	// must report that error instead of blocking on the handout.
	items := make([]any, 500)
	for i := range items {
		items[i] = map[string]any{"s": "a"}
	}
	var raw []any
	for i := 0; i < 30; i++ {
		raw = append(raw, map[string]any{"items": items})
	}
	data := elements(t, raw...)
	q := query(t, `["and", ["not", ["eq?", "@items.*.s", "zzz"]], ["bogus?", 1]]`)

	type outcome struct {
		set *resultset.Set
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		set, err := Apply(context.Background(), data, q, Options{Parallelism: 3, Logger: quietLogger()})
		done <- outcome{set, err}
	}()

	select {
	case got := <-done:
		if got.set != nil || !errors.Is(got.err, ErrElement) {
			t.Errorf("Apply() = (%v, %v), want ErrElement", got.set, got.err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Apply() did not return after worker evaluation errors")
	}
}

func TestApplyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := elements(t, map[string]any{"v": 1})
	_, err := Apply(ctx, data, query(t, `["gt?", "@v", 0]`), Options{Logger: quietLogger()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Apply() error = %v, want context.Canceled", err)
	}
}

func TestApplyEmptyCollection(t *testing.T) {
	set, err := Apply(context.Background(), nil, query(t, `["gt?", "@v", 0]`), Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if set.Len() != 0 || set.Size() != 0 {
		t.Errorf("empty collection produced Len=%d Size=%d", set.Len(), set.Size())
	}
}

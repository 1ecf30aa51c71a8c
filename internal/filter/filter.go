// Package filter applies a query to every element of a collection and
// collects the indices where it holds.
package filter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/jaf-ql/jaf/internal/eval"
	"github.com/jaf-ql/jaf/internal/path"
	"github.com/jaf-ql/jaf/internal/ratelimit"
	"github.com/jaf-ql/jaf/internal/resultset"
	"github.com/jaf-ql/jaf/internal/value"
)

// ErrElement wraps an evaluation failure with the offending element index.
var ErrElement = errors.New("filter: element evaluation failed")

// Options tunes one filter pass. The zero value means sequential, strict,
// unlimited evaluation with default depth guards.
type Options struct {
	// Parallelism is the number of evaluation workers; values below 2
	// evaluate sequentially.
	Parallelism int

	// RateLimit caps element evaluations per second; 0 is unlimited.
	RateLimit float64

	// Lenient logs evaluation errors and non-boolean results and treats
	// the element as a non-match instead of aborting the pass.
	Lenient bool

	// MaxDepth overrides the recursive wildcard depth guard when positive.
	MaxDepth int

	// CollectionID labels the result set; generated when empty.
	CollectionID string

	Logger *slog.Logger
}

// Apply evaluates query once per element, each element serving as its own
// root, and returns the ascending set of matching indices.
func Apply(ctx context.Context, elements []value.Value, query eval.Node, opts Options) (*resultset.Set, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pathOpts := []path.Option{}
	if opts.MaxDepth > 0 {
		pathOpts = append(pathOpts, path.WithMaxDepth(opts.MaxDepth))
	}
	evaluator := eval.New(eval.WithPathEvaluator(path.New(pathOpts...)))
	limiter := ratelimit.New(opts.RateLimit)

	var (
		matches []int
		err     error
	)
	if opts.Parallelism > 1 {
		matches, err = applyParallel(ctx, elements, query, evaluator, limiter, opts, logger)
	} else {
		matches, err = applySequential(ctx, elements, query, evaluator, limiter, opts, logger)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("filter pass complete",
		"elements", len(elements),
		"matches", len(matches))
	return resultset.New(matches, len(elements), opts.CollectionID)
}

func applySequential(ctx context.Context, elements []value.Value, query eval.Node, evaluator *eval.Evaluator, limiter *ratelimit.Limiter, opts Options, logger *slog.Logger) ([]int, error) {
	var matches []int
	for i, element := range elements {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		matched, err := evaluateElement(evaluator, query, element, i, opts, logger)
		if err != nil {
			return nil, err
		}
		if matched {
			matches = append(matches, i)
		}
	}
	return matches, nil
}

func applyParallel(ctx context.Context, elements []value.Value, query eval.Node, evaluator *eval.Evaluator, limiter *ratelimit.Limiter, opts Options, logger *slog.Logger) ([]int, error) {
	indices := make(chan int)
	failed := make(chan struct{})
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		once     sync.Once
		matches  []int
		firstErr error
	)

	// Closing failed unblocks the feeder; without it the feeder could park
	// forever on the indices send after every worker has exited on an error.
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		once.Do(func() { close(failed) })
	}

	for w := 0; w < opts.Parallelism; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				if err := limiter.Wait(ctx); err != nil {
					setErr(err)
					return
				}
				matched, err := evaluateElement(evaluator, query, elements[i], i, opts, logger)
				if err != nil {
					setErr(err)
					return
				}
				if matched {
					mu.Lock()
					matches = append(matches, i)
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for i := range elements {
		select {
		case <-ctx.Done():
			setErr(ctx.Err())
			break feed
		case <-failed:
			break feed
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	sort.Ints(matches)
	return matches, nil
}

func evaluateElement(evaluator *eval.Evaluator, query eval.Node, element value.Value, index int, opts Options, logger *slog.Logger) (bool, error) {
	matched, err := evaluator.EvaluateBool(query, element)
	if err == nil {
		return matched, nil
	}
	if opts.Lenient {
		logger.Warn("element skipped",
			"index", index,
			"error", err)
		return false, nil
	}
	return false, fmt.Errorf("%w: index %d: %w", ErrElement, index, err)
}

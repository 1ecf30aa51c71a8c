package path

import (
	"fmt"
	"sort"

	"github.com/jaf-ql/jaf/internal/fuzzy"
	"github.com/jaf-ql/jaf/internal/stack"
	"github.com/jaf-ql/jaf/internal/value"
)

const (
	// DefaultMaxDepth bounds recursive wildcard descent. JSON input has no
	// cycles, but input is untrusted.
	DefaultMaxDepth = 128

	// DefaultMaxNodes bounds the number of nodes one recursive wildcard may
	// visit.
	DefaultMaxNodes = 1 << 20
)

// Evaluator resolves component sequences against values. It is stateless
// across calls and safe for concurrent use.
type Evaluator struct {
	scorer   fuzzy.Scorer
	maxDepth int
	maxNodes int
}

type Option func(*Evaluator)

// WithScorer replaces the similarity service used by fuzzy keys.
func WithScorer(scorer fuzzy.Scorer) Option {
	return func(e *Evaluator) {
		e.scorer = scorer
	}
}

// WithMaxDepth overrides the recursive wildcard depth budget.
func WithMaxDepth(depth int) Option {
	return func(e *Evaluator) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithMaxNodes overrides the recursive wildcard node budget.
func WithMaxNodes(nodes int) Option {
	return func(e *Evaluator) {
		if nodes > 0 {
			e.maxNodes = nodes
		}
	}
}

func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		scorer:   fuzzy.NewService(),
		maxDepth: DefaultMaxDepth,
		maxNodes: DefaultMaxNodes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate resolves components against root. An empty component list yields
// the root itself. Paths containing a multi-match component always produce a
// Multi result, even when empty; all-specific paths produce Single or
// NotFound.
func (e *Evaluator) Evaluate(root value.Value, components []Component) (Result, error) {
	matches, err := e.match(root, components, root)
	if err != nil {
		return Result{}, err
	}

	if HasMultiMatch(components) {
		return Multi(matches), nil
	}

	switch len(matches) {
	case 0:
		return NotFound(), nil
	default:
		return Single(matches[0]), nil
	}
}

// match applies components to current, returning all branch outputs in
// discovery order.
func (e *Evaluator) match(current value.Value, components []Component, root value.Value) ([]value.Value, error) {
	if len(components) == 0 {
		return []value.Value{current}, nil
	}

	head := components[0]
	rest := components[1:]

	switch component := head.(type) {
	case KeyComponent:
		item, ok := current.Get(string(component))
		if !ok {
			return nil, nil
		}
		return e.match(item, rest, root)

	case IndexComponent:
		items := current.Items()
		idx := int(component)
		if idx < 0 {
			idx += len(items)
		}
		if current.Kind() != value.KindSequence || idx < 0 || idx >= len(items) {
			return nil, nil
		}
		return e.match(items[idx], rest, root)

	case IndicesComponent:
		if current.Kind() != value.KindSequence {
			return nil, nil
		}
		items := current.Items()
		var collected []value.Value
		for _, listed := range component {
			idx := listed
			if idx < 0 {
				idx += len(items)
			}
			if idx < 0 || idx >= len(items) {
				continue
			}
			matches, err := e.match(items[idx], rest, root)
			if err != nil {
				return nil, err
			}
			collected = append(collected, matches...)
		}
		return collected, nil

	case SliceComponent:
		start, stop, step, err := resolveSlice(component, len(current.Items()))
		if err != nil {
			return nil, err
		}
		if current.Kind() != value.KindSequence {
			return nil, nil
		}
		items := current.Items()
		var collected []value.Value
		for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
			matches, err := e.match(items[i], rest, root)
			if err != nil {
				return nil, err
			}
			collected = append(collected, matches...)
		}
		return collected, nil

	case RegexKeyComponent:
		if current.Kind() != value.KindMap {
			return nil, nil
		}
		var collected []value.Value
		for _, key := range current.Keys() {
			if !component.Pattern.MatchString(key) {
				continue
			}
			item, _ := current.Get(key)
			matches, err := e.match(item, rest, root)
			if err != nil {
				return nil, err
			}
			collected = append(collected, matches...)
		}
		return collected, nil

	case FuzzyKeyComponent:
		return e.matchFuzzyKey(current, component, rest, root)

	case WildcardLevelComponent:
		var collected []value.Value
		for _, item := range childValues(current) {
			matches, err := e.match(item, rest, root)
			if err != nil {
				return nil, err
			}
			collected = append(collected, matches...)
		}
		return collected, nil

	case WildcardRecursiveComponent:
		return e.matchRecursive(current, rest, root)

	case RootComponent:
		return e.match(root, rest, root)

	default:
		return nil, fmt.Errorf("%w: unknown path component %T", ErrSyntax, head)
	}
}

func (e *Evaluator) matchFuzzyKey(current value.Value, component FuzzyKeyComponent, rest []Component, root value.Value) ([]value.Value, error) {
	if current.Kind() != value.KindMap {
		return nil, nil
	}

	type candidate struct {
		key   string
		score float64
		exact bool
		pos   int
	}

	var candidates []candidate
	for pos, key := range current.Keys() {
		if key == component.Target {
			candidates = append(candidates, candidate{key: key, score: 1, exact: true, pos: pos})
			continue
		}
		score, err := e.scorer.Similarity(key, component.Target, component.Algorithm)
		if err != nil {
			return nil, fmt.Errorf("%w: fuzzy key %q: %v", ErrEval, component.Target, err)
		}
		if score >= component.Cutoff {
			candidates = append(candidates, candidate{key: key, score: score, pos: pos})
		}
	}

	// Exact match first, then descending score, ties by original key order.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].exact != candidates[j].exact {
			return candidates[i].exact
		}
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].pos < candidates[j].pos
	})

	var collected []value.Value
	for _, c := range candidates {
		item, _ := current.Get(c.key)
		matches, err := e.match(item, rest, root)
		if err != nil {
			return nil, err
		}
		collected = append(collected, matches...)
	}
	return collected, nil
}

// matchRecursive walks the subtree under current with an explicit work stack
// in pre-order, applying rest at every node.
func (e *Evaluator) matchRecursive(current value.Value, rest []Component, root value.Value) ([]value.Value, error) {
	type frame struct {
		node  value.Value
		depth int
	}

	collected := make([]value.Value, 0)
	work := stack.NewWithCapacity[frame](16)
	work.Push(frame{node: current})

	visited := 0
	for {
		f, ok := work.Pop()
		if !ok {
			return collected, nil
		}

		visited++
		if visited > e.maxNodes {
			return nil, fmt.Errorf("%w: recursive wildcard visited more than %d nodes", ErrDepthExceeded, e.maxNodes)
		}

		matches, err := e.match(f.node, rest, root)
		if err != nil {
			return nil, err
		}
		collected = append(collected, matches...)

		children := childValues(f.node)
		if len(children) == 0 {
			continue
		}
		if f.depth >= e.maxDepth {
			return nil, fmt.Errorf("%w: recursive wildcard exceeded depth %d", ErrDepthExceeded, e.maxDepth)
		}
		// Reverse push so the first child is processed next (pre-order).
		for i := len(children) - 1; i >= 0; i-- {
			work.Push(frame{node: children[i], depth: f.depth + 1})
		}
	}
}

// childValues returns map values in key order or sequence items; scalars have
// no children.
func childValues(v value.Value) []value.Value {
	switch v.Kind() {
	case value.KindMap:
		keys := v.Keys()
		children := make([]value.Value, 0, len(keys))
		for _, key := range keys {
			item, _ := v.Get(key)
			children = append(children, item)
		}
		return children
	case value.KindSequence:
		return v.Items()
	default:
		return nil
	}
}

// resolveSlice applies Python slice semantics for the given length.
func resolveSlice(component SliceComponent, length int) (start, stop, step int, err error) {
	step = 1
	if component.Step != nil {
		step = *component.Step
	}
	if step == 0 {
		return 0, 0, 0, fmt.Errorf("%w: slice step cannot be zero", ErrEval)
	}

	normalize := func(bound *int, def, lo, hi int) int {
		if bound == nil {
			return def
		}
		v := *bound
		if v < 0 {
			v += length
		}
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}

	if step > 0 {
		start = normalize(component.Start, 0, 0, length)
		stop = normalize(component.Stop, length, 0, length)
	} else {
		start = normalize(component.Start, length-1, -1, length-1)
		stop = normalize(component.Stop, -1, -1, length-1)
	}
	return start, stop, step, nil
}

package eval

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jaf-ql/jaf/internal/operator"
	"github.com/jaf-ql/jaf/internal/path"
	"github.com/jaf-ql/jaf/internal/value"
)

// Evaluator evaluates ASTs against a single element. It is stateless across
// elements apart from caches and safe for concurrent use.
type Evaluator struct {
	registry *operator.Registry
	paths    *path.Evaluator

	mu       sync.RWMutex
	compiled map[string][]path.Component
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithRegistry replaces the default operator registry.
func WithRegistry(registry *operator.Registry) Option {
	return func(e *Evaluator) {
		e.registry = registry
	}
}

// WithPathEvaluator replaces the default path evaluator.
func WithPathEvaluator(paths *path.Evaluator) Option {
	return func(e *Evaluator) {
		e.paths = paths
	}
}

func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		compiled: make(map[string][]path.Component),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = operator.NewRegistry(nil)
	}
	if e.paths == nil {
		e.paths = path.New()
	}
	return e
}

// Evaluate resolves node against root. The result is a single value, a
// multi-value collection, or not-found when a specific path missed.
func (e *Evaluator) Evaluate(node Node, root value.Value) (path.Result, error) {
	switch n := node.(type) {
	case Literal:
		return path.Single(n.Value), nil
	case Call:
		return e.evaluateCall(n, root)
	default:
		return path.Result{}, fmt.Errorf("%w: unsupported node %T", ErrQuery, node)
	}
}

// EvaluateBool evaluates node and requires a single boolean result, the
// contract for filtering.
func (e *Evaluator) EvaluateBool(node Node, root value.Value) (bool, error) {
	result, err := e.Evaluate(node, root)
	if err != nil {
		return false, err
	}
	return e.reduceBool(result, "query")
}

func (e *Evaluator) evaluateCall(call Call, root value.Value) (path.Result, error) {
	switch call.Name {
	case PathForm:
		return e.evaluatePath(call, root)
	case "self":
		if err := checkFormArity(call, 0, 0); err != nil {
			return path.Result{}, err
		}
		return path.Single(root), nil
	case "exists?":
		if err := checkFormArity(call, 1, 1); err != nil {
			return path.Result{}, err
		}
		result, err := e.Evaluate(call.Args[0], root)
		if err != nil {
			return path.Result{}, err
		}
		return path.Single(value.Bool(result.Exists())), nil
	case "if":
		return e.evaluateIf(call, root)
	case "and":
		return e.evaluateConjunction(call, root, true)
	case "or":
		return e.evaluateConjunction(call, root, false)
	case "not":
		if err := checkFormArity(call, 1, 1); err != nil {
			return path.Result{}, err
		}
		result, err := e.Evaluate(call.Args[0], root)
		if err != nil {
			return path.Result{}, err
		}
		b, err := e.reduceBool(result, call.Name)
		if err != nil {
			return path.Result{}, err
		}
		return path.Single(value.Bool(!b)), nil
	default:
		return e.evaluateOperator(call, root)
	}
}

func (e *Evaluator) evaluatePath(call Call, root value.Value) (path.Result, error) {
	if err := checkFormArity(call, 0, 1); err != nil {
		return path.Result{}, err
	}
	if len(call.Args) == 0 {
		return path.Single(root), nil
	}

	literal, ok := call.Args[0].(Literal)
	if !ok {
		return path.Result{}, fmt.Errorf("%w: %q takes a path string, not a nested expression", ErrQuery, PathForm)
	}
	expr, ok := literal.Value.AsString()
	if !ok {
		return path.Result{}, fmt.Errorf("%w: %q takes a path string, got %s", ErrQuery, PathForm, literal.Value.TypeName())
	}

	components, err := e.compile(expr)
	if err != nil {
		return path.Result{}, err
	}
	return e.paths.Evaluate(root, components)
}

func (e *Evaluator) compile(expr string) ([]path.Component, error) {
	e.mu.RLock()
	components, ok := e.compiled[expr]
	e.mu.RUnlock()
	if ok {
		return components, nil
	}

	components, err := path.Parse(expr)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.compiled[expr] = components
	e.mu.Unlock()
	return components, nil
}

func (e *Evaluator) evaluateIf(call Call, root value.Value) (path.Result, error) {
	if err := checkFormArity(call, 3, 3); err != nil {
		return path.Result{}, err
	}
	cond, err := e.Evaluate(call.Args[0], root)
	if err != nil {
		return path.Result{}, err
	}
	b, err := e.reduceBool(cond, call.Name)
	if err != nil {
		return path.Result{}, err
	}
	if b {
		return e.Evaluate(call.Args[1], root)
	}
	return e.Evaluate(call.Args[2], root)
}

// evaluateConjunction covers `and` and `or`. Arguments evaluate left to
// right and short-circuit; zero-argument `and` is vacuously true,
// zero-argument `or` vacuously false.
func (e *Evaluator) evaluateConjunction(call Call, root value.Value, conjunctive bool) (path.Result, error) {
	for _, arg := range call.Args {
		result, err := e.Evaluate(arg, root)
		if err != nil {
			return path.Result{}, err
		}
		b, err := e.reduceBool(result, call.Name)
		if err != nil {
			return path.Result{}, err
		}
		if b != conjunctive {
			return path.Single(value.Bool(b)), nil
		}
	}
	return path.Single(value.Bool(conjunctive)), nil
}

func (e *Evaluator) reduceBool(result path.Result, context string) (bool, error) {
	v, ok := result.Value()
	if !ok {
		return false, fmt.Errorf("%w: %s produced a %s result", ErrNonBoolean, context, resultKindName(result))
	}
	b, ok := v.AsBool()
	if !ok {
		return false, fmt.Errorf("%w: %s produced %s, expected boolean", ErrNonBoolean, context, v.TypeName())
	}
	return b, nil
}

func (e *Evaluator) evaluateOperator(call Call, root value.Value) (path.Result, error) {
	entry, err := e.registry.Lookup(call.Name)
	if err != nil {
		return path.Result{}, err
	}
	if err := entry.CheckArity(len(call.Args)); err != nil {
		return path.Result{}, err
	}

	lists := make([][]value.Value, len(call.Args))
	expanded := false
	for i, arg := range call.Args {
		result, err := e.Evaluate(arg, root)
		if err != nil {
			return path.Result{}, err
		}
		if result.Kind() != path.KindSingle {
			// Not-found behaves as an empty expansion: zero
			// combinations, so predicates are false and
			// transformers yield an empty collection.
			expanded = true
		}
		lists[i] = result.Values()
	}

	if !expanded {
		return e.applyOnce(entry, flatten(lists))
	}
	if entry.Kind == operator.Predicate {
		return e.applyExistential(entry, lists)
	}
	return e.applyCollecting(entry, lists)
}

// applyOnce is the unexpanded case: scalar arguments, one invocation, the
// result passed through without aggregation wrapping.
func (e *Evaluator) applyOnce(entry operator.Entry, args []value.Value) (path.Result, error) {
	result, err := entry.Apply(args)
	if err != nil {
		if entry.Kind == operator.Predicate && errors.Is(err, operator.ErrType) {
			return path.Single(value.Bool(false)), nil
		}
		return path.Result{}, err
	}
	return path.Single(result), nil
}

// applyExistential aggregates a predicate over the Cartesian product: true
// as soon as one combination holds. A type error inside one combination
// counts as false for that combination only.
func (e *Evaluator) applyExistential(entry operator.Entry, lists [][]value.Value) (path.Result, error) {
	combination := make([]value.Value, len(lists))
	iter := newProduct(lists)
	for iter.next(combination) {
		result, err := entry.Apply(combination)
		if err != nil {
			if errors.Is(err, operator.ErrType) {
				continue
			}
			return path.Result{}, err
		}
		if b, ok := result.AsBool(); ok && b {
			return path.Single(value.Bool(true)), nil
		}
	}
	return path.Single(value.Bool(false)), nil
}

// applyCollecting runs a transformer over every combination and collects
// the results, unwrapping singletons.
func (e *Evaluator) applyCollecting(entry operator.Entry, lists [][]value.Value) (path.Result, error) {
	var results []value.Value
	combination := make([]value.Value, len(lists))
	iter := newProduct(lists)
	for iter.next(combination) {
		result, err := entry.Apply(combination)
		if err != nil {
			return path.Result{}, err
		}
		results = append(results, result)
	}

	switch {
	case len(results) == 0:
		return path.Multi(nil), nil
	case len(results) == 1 && results[0].Kind() == value.KindSequence:
		return path.Multi(results[0].Items()), nil
	case len(results) == 1:
		return path.Single(results[0]), nil
	default:
		return path.Multi(results), nil
	}
}

func checkFormArity(call Call, min, max int) error {
	if len(call.Args) < min || len(call.Args) > max {
		if min == max {
			return fmt.Errorf("%w: %q expects %d arguments, got %d", operator.ErrArity, call.Name, min, len(call.Args))
		}
		return fmt.Errorf("%w: %q expects between %d and %d arguments, got %d", operator.ErrArity, call.Name, min, max, len(call.Args))
	}
	return nil
}

func flatten(lists [][]value.Value) []value.Value {
	args := make([]value.Value, len(lists))
	for i, list := range lists {
		args[i] = list[0]
	}
	return args
}

func resultKindName(result path.Result) string {
	switch result.Kind() {
	case path.KindNotFound:
		return "not-found"
	case path.KindMulti:
		return "multi-value"
	default:
		return "single"
	}
}

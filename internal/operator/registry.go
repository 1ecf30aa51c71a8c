// Package operator holds the closed registry of named query operators.
package operator

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/jaf-ql/jaf/internal/fuzzy"
	"github.com/jaf-ql/jaf/internal/value"
)

var (
	// ErrUnknown indicates the query references an operator not in the
	// registry.
	ErrUnknown = errors.New("operator: unknown operator")

	// ErrArity indicates a wrong argument count for a registered operator.
	ErrArity = errors.New("operator: wrong argument count")

	// ErrType indicates an operator received arguments outside its
	// documented domain.
	ErrType = errors.New("operator: invalid argument type")
)

// Kind separates predicates (existentially aggregated over multi-value
// expansions) from transformers (results collected). It is an explicit field
// rather than a convention on the trailing '?' of the name.
type Kind uint8

const (
	Predicate Kind = iota + 1
	Transformer
)

// Func is a pure operator implementation over evaluated arguments.
type Func func(args []value.Value) (value.Value, error)

// Entry describes one registered operator.
type Entry struct {
	Name    string
	Kind    Kind
	MinArgs int
	MaxArgs int // -1 means variadic
	Apply   Func
}

// CheckArity validates an argument count against the entry's contract.
func (e Entry) CheckArity(count int) error {
	if count < e.MinArgs {
		return fmt.Errorf("%w: %q expects at least %d arguments, got %d", ErrArity, e.Name, e.MinArgs, count)
	}
	if e.MaxArgs >= 0 && count > e.MaxArgs {
		return fmt.Errorf("%w: %q expects at most %d arguments, got %d", ErrArity, e.Name, e.MaxArgs, count)
	}
	return nil
}

// Registry is the fixed operator table. Construct with NewRegistry; the
// table is immutable afterwards and safe for concurrent use.
type Registry struct {
	entries map[string]Entry
	scorer  fuzzy.Scorer
	regexes *regexCache
}

// NewRegistry builds the default operator table backed by the given
// similarity scorer; a nil scorer uses the default service.
func NewRegistry(scorer fuzzy.Scorer) *Registry {
	if scorer == nil {
		scorer = fuzzy.NewService()
	}
	r := &Registry{
		entries: make(map[string]Entry),
		scorer:  scorer,
		regexes: newRegexCache(),
	}

	r.registerComparison()
	r.registerStrings()
	r.registerTypes()
	r.registerCollections()
	r.registerArithmetic()
	r.registerDatetime()

	return r
}

// Lookup returns the entry for name.
func (r *Registry) Lookup(name string) (Entry, error) {
	entry, ok := r.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return entry, nil
}

// Names lists registered operator names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register installs a custom entry, overwriting any operator with the same
// name. Call it while wiring, before evaluation starts; the table is not
// safe for mutation once queries run.
func (r *Registry) Register(entry Entry) {
	r.entries[entry.Name] = entry
}

func (r *Registry) register(name string, kind Kind, minArgs, maxArgs int, apply Func) {
	r.entries[name] = Entry{
		Name:    name,
		Kind:    kind,
		MinArgs: minArgs,
		MaxArgs: maxArgs,
		Apply:   apply,
	}
}

// regexCache memoizes compiled patterns across elements of a filter pass.
type regexCache struct {
	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
}

func newRegexCache() *regexCache {
	return &regexCache{
		patterns: make(map[string]*regexp.Regexp),
	}
}

func (c *regexCache) compile(pattern string) (*regexp.Regexp, error) {
	c.mu.RLock()
	if compiled, ok := c.patterns[pattern]; ok {
		c.mu.RUnlock()
		return compiled, nil
	}
	c.mu.RUnlock()

	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid regex %q: %v", ErrType, pattern, err)
	}

	c.mu.Lock()
	c.patterns[pattern] = compiled
	c.mu.Unlock()

	return compiled, nil
}

func requireString(name string, args []value.Value, pos int) (string, error) {
	s, ok := args[pos].AsString()
	if !ok {
		return "", fmt.Errorf("%w: %q requires a string at argument %d, got %s", ErrType, name, pos, args[pos].TypeName())
	}
	return s, nil
}

func requireNumber(name string, args []value.Value, pos int) (float64, error) {
	n, ok := args[pos].AsNumber()
	if !ok {
		return 0, fmt.Errorf("%w: %q requires a number at argument %d, got %s", ErrType, name, pos, args[pos].TypeName())
	}
	return n, nil
}

func requireSequence(name string, args []value.Value, pos int) ([]value.Value, error) {
	if args[pos].Kind() != value.KindSequence {
		return nil, fmt.Errorf("%w: %q requires an array at argument %d, got %s", ErrType, name, pos, args[pos].TypeName())
	}
	return args[pos].Items(), nil
}

func requireMap(name string, args []value.Value, pos int) (value.Value, error) {
	if args[pos].Kind() != value.KindMap {
		return value.Value{}, fmt.Errorf("%w: %q requires an object at argument %d, got %s", ErrType, name, pos, args[pos].TypeName())
	}
	return args[pos], nil
}

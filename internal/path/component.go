package path

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jaf-ql/jaf/internal/fuzzy"
)

// Component is one step of a path. The concrete types mirror the closed set
// of path operations; multiMatch reports whether the component can yield more
// than one value.
type Component interface {
	String() string
	multiMatch() bool
}

type (
	// KeyComponent selects a single map entry by name.
	KeyComponent string

	// IndexComponent selects a single sequence element; negative indices
	// count from the end.
	IndexComponent int

	// IndicesComponent selects the listed sequence elements in list order,
	// silently skipping out-of-range entries.
	IndicesComponent []int

	// SliceComponent selects a Python-style slice. Nil bounds take the
	// defaults for the step sign; a step of zero fails evaluation.
	SliceComponent struct {
		Start *int
		Stop  *int
		Step  *int
	}

	// RegexKeyComponent selects all map entries whose key matches the
	// pattern, in key order.
	RegexKeyComponent struct {
		Pattern *regexp.Regexp
	}

	// FuzzyKeyComponent selects map entries whose key scores at least Cutoff
	// against Target, ordered by descending score with exact matches first.
	FuzzyKeyComponent struct {
		Target    string
		Cutoff    float64
		Algorithm fuzzy.Algorithm
	}

	// WildcardLevelComponent selects every value one level down.
	WildcardLevelComponent struct{}

	// WildcardRecursiveComponent selects the current node and every
	// descendant as a continuation point.
	WildcardRecursiveComponent struct{}

	// RootComponent resets the context to the evaluation root.
	RootComponent struct{}
)

// Key builds a key component.
func Key(name string) Component {
	return KeyComponent(name)
}

// Index builds an index component.
func Index(i int) Component {
	return IndexComponent(i)
}

// Indices builds a multi-index component.
func Indices(indices ...int) Component {
	return IndicesComponent(indices)
}

// Slice builds a slice component; nil arguments keep Python defaults.
func Slice(start, stop, step *int) Component {
	return SliceComponent{Start: start, Stop: stop, Step: step}
}

// RegexKey compiles pattern and builds a regex-key component.
func RegexKey(pattern string) (Component, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid regex %q: %v", ErrSyntax, pattern, err)
	}
	return RegexKeyComponent{Pattern: re}, nil
}

// FuzzyKey builds a fuzzy-key component. A negative cutoff takes the default.
func FuzzyKey(target string, cutoff float64, algorithm fuzzy.Algorithm) Component {
	if cutoff < 0 {
		cutoff = fuzzy.DefaultCutoff
	}
	if algorithm == "" {
		algorithm = fuzzy.AlgorithmDefault
	}
	return FuzzyKeyComponent{Target: target, Cutoff: cutoff, Algorithm: algorithm}
}

// WildcardLevel builds a single-level wildcard component.
func WildcardLevel() Component {
	return WildcardLevelComponent{}
}

// WildcardRecursive builds a recursive wildcard component.
func WildcardRecursive() Component {
	return WildcardRecursiveComponent{}
}

// Root builds a root-reset component.
func Root() Component {
	return RootComponent{}
}

func (KeyComponent) multiMatch() bool               { return false }
func (IndexComponent) multiMatch() bool             { return false }
func (IndicesComponent) multiMatch() bool           { return true }
func (SliceComponent) multiMatch() bool             { return true }
func (RegexKeyComponent) multiMatch() bool          { return true }
func (FuzzyKeyComponent) multiMatch() bool          { return true }
func (WildcardLevelComponent) multiMatch() bool     { return true }
func (WildcardRecursiveComponent) multiMatch() bool { return true }
func (RootComponent) multiMatch() bool              { return false }

func (c KeyComponent) String() string {
	return string(c)
}

func (c IndexComponent) String() string {
	return "[" + strconv.Itoa(int(c)) + "]"
}

func (c IndicesComponent) String() string {
	parts := make([]string, 0, len(c))
	for _, idx := range c {
		parts = append(parts, strconv.Itoa(idx))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (c SliceComponent) String() string {
	bound := func(b *int) string {
		if b == nil {
			return ""
		}
		return strconv.Itoa(*b)
	}
	out := "[" + bound(c.Start) + ":" + bound(c.Stop)
	if c.Step != nil {
		out += ":" + bound(c.Step)
	}
	return out + "]"
}

func (c RegexKeyComponent) String() string {
	return "~/" + strings.ReplaceAll(c.Pattern.String(), "/", `\/`) + "/"
}

func (c FuzzyKeyComponent) String() string {
	out := "%" + c.Target
	if c.Cutoff != fuzzy.DefaultCutoff {
		out += ":" + strconv.FormatFloat(c.Cutoff, 'g', -1, 64)
	}
	if c.Algorithm != fuzzy.AlgorithmDefault {
		if c.Cutoff == fuzzy.DefaultCutoff {
			out += ":" + strconv.FormatFloat(c.Cutoff, 'g', -1, 64)
		}
		out += ":" + string(c.Algorithm)
	}
	return out + "%"
}

func (WildcardLevelComponent) String() string {
	return "*"
}

func (WildcardRecursiveComponent) String() string {
	return "**"
}

func (RootComponent) String() string {
	return "$"
}

// Format renders components in the path string syntax.
func Format(components []Component) string {
	var b strings.Builder
	for i, component := range components {
		text := component.String()
		if i > 0 && !strings.HasPrefix(text, "[") {
			b.WriteByte('.')
		}
		b.WriteString(text)
	}
	return b.String()
}

// HasMultiMatch reports whether any component can yield multiple values.
func HasMultiMatch(components []Component) bool {
	for _, component := range components {
		if component.multiMatch() {
			return true
		}
	}
	return false
}

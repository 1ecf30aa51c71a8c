// Package interop bridges the native path language and RFC 9535 JSONPath,
// so path results can be cross-checked against standard tooling.
package interop

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theory/jsonpath"

	"github.com/jaf-ql/jaf/internal/path"
	"github.com/jaf-ql/jaf/internal/value"
)

// ErrNotExpressible indicates a component with no JSONPath equivalent,
// such as regex keys, fuzzy keys or a root reset.
var ErrNotExpressible = errors.New("interop: path not expressible as JSONPath")

// Render writes a component sequence as an RFC 9535 JSONPath expression.
func Render(components []path.Component) (string, error) {
	var b strings.Builder
	b.WriteString("$")

	// A recursive wildcard becomes the descendant prefix ".." on the next
	// segment; when trailing it selects every descendant via "..*".
	descend := false
	segment := func(shorthand, bracket string) {
		switch {
		case descend && shorthand != "":
			b.WriteString(".." + shorthand)
		case descend:
			b.WriteString(".." + bracket)
		case shorthand != "":
			b.WriteString("." + shorthand)
		default:
			b.WriteString(bracket)
		}
		descend = false
	}

	for _, component := range components {
		switch c := component.(type) {
		case path.KeyComponent:
			if isShorthandKey(string(c)) {
				segment(string(c), "")
			} else {
				segment("", quoteKey(string(c)))
			}
		case path.IndexComponent:
			segment("", fmt.Sprintf("[%d]", int(c)))
		case path.IndicesComponent:
			segment("", renderIndices(c))
		case path.SliceComponent:
			segment("", renderSlice(c))
		case path.WildcardLevelComponent:
			segment("", "[*]")
		case path.WildcardRecursiveComponent:
			descend = true
		default:
			return "", fmt.Errorf("%w: component %s", ErrNotExpressible, component.String())
		}
	}
	if descend {
		b.WriteString("..*")
	}
	return b.String(), nil
}

// Evaluate runs a JSONPath expression against a value using the reference
// implementation and converts the selection back into the value model.
func Evaluate(expr string, root value.Value) ([]value.Value, error) {
	compiled, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("interop: invalid JSONPath %q: %w", expr, err)
	}

	selected := compiled.Select(root.Interface())
	out := make([]value.Value, 0, len(selected))
	for _, node := range selected {
		converted, err := value.From(node)
		if err != nil {
			return nil, fmt.Errorf("interop: %w", err)
		}
		out = append(out, converted)
	}
	return out, nil
}

// CrossCheck renders components as JSONPath and evaluates the result
// against root, giving an independent reading of the same path.
func CrossCheck(components []path.Component, root value.Value) ([]value.Value, error) {
	expr, err := Render(components)
	if err != nil {
		return nil, err
	}
	return Evaluate(expr, root)
}

func quoteKey(name string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(name)
	return "['" + escaped + "']"
}

func renderIndices(indices path.IndicesComponent) string {
	parts := make([]string, 0, len(indices))
	for _, index := range indices {
		parts = append(parts, strconv.Itoa(index))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func renderSlice(slice path.SliceComponent) string {
	render := func(bound *int) string {
		if bound == nil {
			return ""
		}
		return strconv.Itoa(*bound)
	}
	out := "[" + render(slice.Start) + ":" + render(slice.Stop)
	if slice.Step != nil {
		out += ":" + strconv.Itoa(*slice.Step)
	}
	return out + "]"
}

func isShorthandKey(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		letter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !letter && (i == 0 || r < '0' || r > '9') {
			return false
		}
	}
	return true
}

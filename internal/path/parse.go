package path

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jaf-ql/jaf/internal/fuzzy"
)

// Parse compiles the jaf path string syntax into components.
//
// Supported syntax:
//
//	user.name        keys, dot separated
//	items[0]         index (negative counts from the end)
//	items[1,3]       indices
//	items[1:5:2]     slice, Python semantics
//	items[*]  or  *  single-level wildcard
//	**               recursive wildcard
//	~/^meta_/        regex key
//	%name:0.8%       fuzzy key with optional cutoff and algorithm
//	$                reset to the evaluation root
//
// An empty string compiles to an empty component list, which resolves to the
// element itself.
func Parse(input string) ([]Component, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	if input[0] == '.' {
		return nil, fmt.Errorf("%w: path cannot start with '.'", ErrSyntax)
	}

	var components []Component
	i := 0
	for i < len(input) {
		if input[i] == '.' {
			i++
			if i >= len(input) {
				return nil, fmt.Errorf("%w: path cannot end with '.'", ErrSyntax)
			}
		}

		component, next, err := parseComponent(input, i)
		if err != nil {
			return nil, err
		}
		components = append(components, component)
		i = next

		// Components are dot separated; only a bracket selector may abut
		// the previous component directly.
		if i < len(input) && input[i] != '.' && input[i] != '[' {
			return nil, fmt.Errorf("%w: expected '.' or '[' at position %d, found %q", ErrSyntax, i, input[i])
		}
	}
	return components, nil
}

func parseComponent(input string, i int) (Component, int, error) {
	switch input[i] {
	case '[':
		return parseBracket(input, i)
	case '*':
		if i+1 < len(input) && input[i+1] == '*' {
			return WildcardRecursive(), i + 2, nil
		}
		return WildcardLevel(), i + 1, nil
	case '$':
		return Root(), i + 1, nil
	case '~':
		return parseRegexKey(input, i)
	case '%':
		return parseFuzzyKey(input, i)
	default:
		return parseKey(input, i)
	}
}

func parseKey(input string, i int) (Component, int, error) {
	start := i
	for i < len(input) && identRune(input[i]) {
		i++
	}
	if start == i {
		return nil, i, fmt.Errorf("%w: unexpected character %q at position %d", ErrSyntax, input[i], i)
	}
	return Key(input[start:i]), i, nil
}

func parseBracket(input string, i int) (Component, int, error) {
	i++ // consume '['
	end := strings.IndexByte(input[i:], ']')
	if end == -1 {
		return nil, i, fmt.Errorf("%w: unterminated bracket selector", ErrSyntax)
	}

	content := strings.TrimSpace(input[i : i+end])
	next := i + end + 1

	if content == "" {
		return nil, next, fmt.Errorf("%w: empty bracket selector", ErrSyntax)
	}

	if content == "*" {
		return WildcardLevel(), next, nil
	}

	if strings.Contains(content, ":") {
		component, err := parseSlice(content)
		return component, next, err
	}

	if strings.Contains(content, ",") {
		component, err := parseIndices(content)
		return component, next, err
	}

	idx, err := strconv.Atoi(content)
	if err != nil {
		return nil, next, fmt.Errorf("%w: invalid index %q", ErrSyntax, content)
	}
	return Index(idx), next, nil
}

func parseIndices(content string) (Component, error) {
	parts := strings.Split(content, ",")
	indices := make([]int, 0, len(parts))
	for _, part := range parts {
		idx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid index %q in %q", ErrSyntax, part, content)
		}
		indices = append(indices, idx)
	}
	return Indices(indices...), nil
}

func parseSlice(content string) (Component, error) {
	parts := strings.Split(content, ":")
	if len(parts) > 3 {
		return nil, fmt.Errorf("%w: too many colons in slice %q", ErrSyntax, content)
	}

	bounds := make([]*int, 3)
	for pos, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: slice bound %q in %q is not a number", ErrSyntax, part, content)
		}
		bounds[pos] = &v
	}

	if bounds[2] != nil && *bounds[2] == 0 {
		return nil, fmt.Errorf("%w: slice step cannot be zero in %q", ErrSyntax, content)
	}
	return Slice(bounds[0], bounds[1], bounds[2]), nil
}

func parseRegexKey(input string, i int) (Component, int, error) {
	if i+1 >= len(input) || input[i+1] != '/' {
		return nil, i, fmt.Errorf("%w: regex key must start with '~/'", ErrSyntax)
	}

	var pattern strings.Builder
	j := i + 2
	for j < len(input) {
		if input[j] == '\\' && j+1 < len(input) && input[j+1] == '/' {
			pattern.WriteByte('/')
			j += 2
			continue
		}
		if input[j] == '/' {
			component, err := RegexKey(pattern.String())
			return component, j + 1, err
		}
		pattern.WriteByte(input[j])
		j++
	}
	return nil, j, fmt.Errorf("%w: unterminated regex key", ErrSyntax)
}

func parseFuzzyKey(input string, i int) (Component, int, error) {
	end := strings.IndexByte(input[i+1:], '%')
	if end == -1 {
		return nil, i, fmt.Errorf("%w: unterminated fuzzy key", ErrSyntax)
	}

	content := input[i+1 : i+1+end]
	next := i + end + 2

	parts := strings.SplitN(content, ":", 3)
	if parts[0] == "" {
		return nil, next, fmt.Errorf("%w: fuzzy key target cannot be empty", ErrSyntax)
	}

	cutoff := fuzzy.DefaultCutoff
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, next, fmt.Errorf("%w: invalid fuzzy cutoff %q", ErrSyntax, parts[1])
		}
		if parsed < 0 || parsed > 1 {
			return nil, next, fmt.Errorf("%w: fuzzy cutoff %v must be within [0, 1]", ErrSyntax, parsed)
		}
		cutoff = parsed
	}

	algorithm := fuzzy.AlgorithmDefault
	if len(parts) == 3 {
		parsed, err := fuzzy.ParseAlgorithm(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, next, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		algorithm = parsed
	}

	return FuzzyKey(parts[0], cutoff, algorithm), next, nil
}

// identRune checks if a byte is valid inside an unquoted key.
func identRune(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_' || b == '-'
}

// Package eval evaluates query ASTs against one element at a time.
package eval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jaf-ql/jaf/internal/value"
)

var (
	// ErrQuery indicates a query value that does not form a valid AST.
	ErrQuery = errors.New("eval: malformed query")

	// ErrNonBoolean indicates a result that was required to be boolean,
	// such as a filter's top-level result or an `and` branch, was not.
	ErrNonBoolean = errors.New("eval: non-boolean result")
)

// Node is one AST node, either a Literal or a Call.
type Node interface {
	node()
}

// Literal wraps a constant value.
type Literal struct {
	Value value.Value
}

// Call applies a named operator or special form to its arguments.
type Call struct {
	Name string
	Args []Node
}

func (Literal) node() {}
func (Call) node()    {}

// PathForm is the canonical name of the path special form. The shorthand
// "@user.name" string parses into Call{PathForm, [Literal("user.name")]}.
const PathForm = "path"

// ParseQuery converts the nested-list JSON query form into an AST.
// Arrays become calls headed by an operator name, strings starting with "@"
// become path calls and everything else is a literal.
func ParseQuery(v value.Value) (Node, error) {
	return parseNode(v, true)
}

func parseNode(v value.Value, top bool) (Node, error) {
	switch v.Kind() {
	case value.KindSequence:
		return parseCall(v.Items())
	case value.KindString:
		s, _ := v.AsString()
		if rest, ok := strings.CutPrefix(s, "@"); ok {
			return Call{Name: PathForm, Args: []Node{Literal{Value: value.String(rest)}}}, nil
		}
		if top {
			return nil, fmt.Errorf("%w: top-level query must be a call, got string %q", ErrQuery, s)
		}
		return Literal{Value: v}, nil
	default:
		if top {
			return nil, fmt.Errorf("%w: top-level query must be a call, got %s", ErrQuery, v.TypeName())
		}
		return Literal{Value: v}, nil
	}
}

func parseCall(items []value.Value) (Node, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty call", ErrQuery)
	}
	name, ok := items[0].AsString()
	if !ok {
		return nil, fmt.Errorf("%w: call head must be an operator name, got %s", ErrQuery, items[0].TypeName())
	}
	if name == "@" {
		name = PathForm
	}

	args := make([]Node, 0, len(items)-1)
	for _, item := range items[1:] {
		arg, err := parseNode(item, false)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return Call{Name: name, Args: args}, nil
}

package path

import "errors"

var (
	// ErrSyntax indicates a malformed path string or component shape.
	ErrSyntax = errors.New("path: syntax error")

	// ErrEval indicates the path could not be evaluated against the input,
	// for example a slice with step zero.
	ErrEval = errors.New("path: evaluation error")

	// ErrDepthExceeded indicates a recursive wildcard walk hit the depth or
	// node budget configured on the evaluator.
	ErrDepthExceeded = errors.New("path: traversal budget exceeded")
)

// Package fuzzy is the string-similarity service used by fuzzy path keys and
// the fuzzy-match operators. Scores are normalized to [0, 1].
package fuzzy

import (
	"errors"
	"fmt"

	"github.com/agext/levenshtein"
)

// DefaultCutoff is the minimum score a candidate must reach when the caller
// does not supply one.
const DefaultCutoff = 0.6

var ErrUnknownAlgorithm = errors.New("fuzzy: unknown algorithm")

// Algorithm selects the scoring function.
type Algorithm string

const (
	// AlgorithmDefault is plain normalized Levenshtein similarity.
	AlgorithmDefault Algorithm = "default"
	// AlgorithmLevenshtein is an explicit alias for the default scoring.
	AlgorithmLevenshtein Algorithm = "levenshtein"
	// AlgorithmPrefix boosts candidates sharing a leading run with the target.
	AlgorithmPrefix Algorithm = "prefix"
)

// Scorer computes a similarity score in [0, 1] between a candidate and a
// target string. Implementations must be safe for concurrent use.
type Scorer interface {
	Similarity(candidate, target string, algorithm Algorithm) (float64, error)
}

// Service is the default Scorer backed by agext/levenshtein.
type Service struct {
	params *levenshtein.Params
}

func NewService() *Service {
	return &Service{params: levenshtein.NewParams()}
}

func (s *Service) Similarity(candidate, target string, algorithm Algorithm) (float64, error) {
	switch algorithm {
	case AlgorithmDefault, AlgorithmLevenshtein, "":
		return levenshtein.Similarity(candidate, target, s.params), nil
	case AlgorithmPrefix:
		return levenshtein.Match(candidate, target, s.params), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}

// ParseAlgorithm validates an algorithm name supplied by a query.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case AlgorithmDefault, AlgorithmLevenshtein, AlgorithmPrefix:
		return Algorithm(name), nil
	case "":
		return AlgorithmDefault, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

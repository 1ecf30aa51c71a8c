// Package config parses the jaf command line.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jaf-ql/jaf/internal/collection"
	"github.com/jaf-ql/jaf/internal/exit"
)

var (
	ErrNoArguments   = errors.New("no arguments provided")
	ErrNoInput       = errors.New("no input file specified")
	ErrTooManyInputs = errors.New("expected a single input file or directory")
	ErrNoQuery       = errors.New("one of -query, -query-file or -path is required")
	ErrQueryConflict = errors.New("-query, -query-file and -path are mutually exclusive")
)

// Config is the complete configuration for one jaf invocation.
type Config struct {
	// Query selection; exactly one is set after Parse.
	Query     string
	QueryFile string
	Path      string

	// Input is the positional data source, "-" meaning stdin.
	Input     string
	Format    collection.Format
	Directory bool
	Recursive bool

	// Evaluation tuning.
	Lenient     bool
	Parallelism int
	RateLimit   float64
	MaxDepth    int

	// Output.
	OutputFile   string
	CollectionID string
	Debug        bool
}

// Validate checks cross-flag consistency and that the input exists.
func (c *Config) Validate() error {
	selected := 0
	for _, q := range []string{c.Query, c.QueryFile, c.Path} {
		if q != "" {
			selected++
		}
	}
	switch {
	case selected == 0:
		return ErrNoQuery
	case selected > 1:
		return ErrQueryConflict
	}

	if c.QueryFile != "" {
		if _, err := os.Stat(c.QueryFile); err != nil {
			return fmt.Errorf("query file %s not found: %w", c.QueryFile, err)
		}
	}
	if c.Input != "-" {
		info, err := os.Stat(c.Input)
		if err != nil {
			return fmt.Errorf("input %s not found: %w", c.Input, err)
		}
		if c.Directory && !info.IsDir() {
			return fmt.Errorf("input %s is not a directory", c.Input)
		}
	}
	return nil
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		query        = fs.String("query", "", "Query in nested-list JSON form")
		queryFile    = fs.String("query-file", "", "Path to a file holding the query")
		pathExpr     = fs.String("path", "", "Evaluate a bare path against each element instead of filtering")
		format       = fs.String("input", "auto", "Input format: auto, json, jsonl or yaml")
		directory    = fs.Bool("dir", false, "Treat the input as a directory of *.json files")
		recursive    = fs.Bool("recursive", false, "Recurse into subdirectories with -dir")
		lenient      = fs.Bool("lenient", false, "Treat per-element evaluation errors as non-matches")
		parallelism  = fs.Int("parallelism", 1, "Number of evaluation workers")
		rateLimit    = fs.Float64("rate-limit", 0, "Element evaluations per second (0 for unlimited)")
		maxDepth     = fs.Int("max-depth", 0, "Recursive wildcard depth limit (0 for default)")
		outputFile   = fs.String("output", "", "Write the result set to a file instead of stdout")
		collectionID = fs.String("collection-id", "", "Collection ID recorded in the result set")
		debug        = fs.Bool("debug", false, "Enable debug logging")
	)

	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Errorf("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	inputs := fs.Args()
	switch {
	case len(inputs) == 0:
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoInput, Usage())
	case len(inputs) > 1:
		return nil, exit.Errorf("Error: %v\n\n%s", ErrTooManyInputs, Usage())
	}

	parsedFormat, err := collection.ParseFormat(*format)
	if err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}

	config := &Config{
		Query:        *query,
		QueryFile:    *queryFile,
		Path:         *pathExpr,
		Input:        inputs[0],
		Format:       parsedFormat,
		Directory:    *directory,
		Recursive:    *recursive,
		Lenient:      *lenient,
		Parallelism:  *parallelism,
		RateLimit:    *rateLimit,
		MaxDepth:     *maxDepth,
		OutputFile:   *outputFile,
		CollectionID: *collectionID,
		Debug:        *debug,
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}

	return config, nil
}

// QueryText returns the query source, reading -query-file when set.
func (c *Config) QueryText() (string, error) {
	if c.QueryFile == "" {
		return c.Query, nil
	}
	data, err := os.ReadFile(c.QueryFile)
	if err != nil {
		return "", fmt.Errorf("failed to read query file %s: %w", c.QueryFile, err)
	}
	return string(data), nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `jaf - JSON array filter

Usage: jaf [options] <file|directory|->

Options:
  --query QUERY           Query in nested-list JSON form
  --query-file FILE       Path to a file holding the query
  --path PATH             Evaluate a bare path against each element
  --input FORMAT          Input format: auto, json, jsonl or yaml (default: auto)
  --dir                   Treat the input as a directory of *.json files
  --recursive             Recurse into subdirectories with --dir
  --lenient               Treat per-element evaluation errors as non-matches
  --parallelism N         Number of evaluation workers (default: 1)
  --rate-limit N          Element evaluations per second (0 for unlimited)
  --max-depth N           Recursive wildcard depth limit (0 for default)
  --output FILE           Write the result set to a file instead of stdout
  --collection-id ID      Collection ID recorded in the result set
  --debug                 Enable debug logging
  -h, --help              Show this help message

Examples:
  jaf --query '["gt?","@v",1]' data.json       # Indices where v > 1
  jaf --query '["in?","dev","@tags"]' - < a.jsonl
  jaf --path 'items.*.status' data.json        # Show status values per element
  jaf --query '["exists?","@meta.id"]' --dir ./records --recursive`
}

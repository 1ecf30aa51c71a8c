package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaf-ql/jaf/internal/collection"
	"github.com/jaf-ql/jaf/internal/config"
	"github.com/jaf-ql/jaf/internal/eval"
	"github.com/jaf-ql/jaf/internal/filter"
	"github.com/jaf-ql/jaf/internal/path"
	"github.com/jaf-ql/jaf/internal/value"
)

func main() {
	exitCode := run()
	os.Exit(exitCode)
}

func run() int {
	cfg, exitResult := config.Parse(os.Args)
	if exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loaded, err := load(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	output, closeOutput, err := openOutput(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeOutput()

	if cfg.Path != "" {
		err = runPath(cfg, loaded, output)
	} else {
		err = runFilter(ctx, cfg, loaded, output, logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func load(cfg *config.Config, logger *slog.Logger) (*collection.Collection, error) {
	switch {
	case cfg.Input == "-":
		return collection.LoadReader(os.Stdin, cfg.Format, "stdin")
	case cfg.Directory:
		return collection.LoadDirectory(cfg.Input, cfg.Recursive, logger)
	default:
		return collection.LoadFile(cfg.Input, cfg.Format, logger)
	}
}

// runFilter evaluates the query over the collection and writes the result
// set as JSON.
func runFilter(ctx context.Context, cfg *config.Config, loaded *collection.Collection, output io.Writer, logger *slog.Logger) error {
	text, err := cfg.QueryText()
	if err != nil {
		return err
	}
	decoded, err := value.DecodeString(text)
	if err != nil {
		return fmt.Errorf("invalid query JSON: %w", err)
	}
	query, err := eval.ParseQuery(decoded)
	if err != nil {
		return err
	}

	collectionID := cfg.CollectionID
	if collectionID == "" {
		collectionID = loaded.ID
	}
	set, err := filter.Apply(ctx, loaded.Elements, query, filter.Options{
		Parallelism:  cfg.Parallelism,
		RateLimit:    cfg.RateLimit,
		Lenient:      cfg.Lenient,
		MaxDepth:     cfg.MaxDepth,
		CollectionID: collectionID,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(set)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(output, "%s\n", encoded)
	return err
}

// runPath evaluates a bare path against every element and prints one JSON
// line per element that resolves to something.
func runPath(cfg *config.Config, loaded *collection.Collection, output io.Writer) error {
	components, err := path.Parse(cfg.Path)
	if err != nil {
		return err
	}

	opts := []path.Option{}
	if cfg.MaxDepth > 0 {
		opts = append(opts, path.WithMaxDepth(cfg.MaxDepth))
	}
	evaluator := path.New(opts...)

	for i, element := range loaded.Elements {
		result, err := evaluator.Evaluate(element, components)
		if err != nil {
			if cfg.Lenient {
				continue
			}
			return fmt.Errorf("element %d: %w", i, err)
		}
		if !result.Exists() {
			continue
		}

		line := value.NewMapBuilder().
			Set("index", value.Number(float64(i))).
			Set("values", value.Sequence(result.Values()...)).
			Build()
		encoded, err := json.Marshal(line)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(output, "%s\n", encoded); err != nil {
			return err
		}
	}
	return nil
}

func openOutput(cfg *config.Config) (io.Writer, func(), error) {
	if cfg.OutputFile == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(cfg.OutputFile)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

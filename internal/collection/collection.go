// Package collection loads element collections from files, streams and
// directories in the formats the filter accepts.
package collection

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"

	"github.com/jaf-ql/jaf/internal/value"
)

var (
	// ErrFormat indicates an unknown or undecodable input format.
	ErrFormat = errors.New("collection: unsupported format")

	// ErrEmptyDirectory indicates a directory source with no data files.
	ErrEmptyDirectory = errors.New("collection: no data files in directory")
)

// Format selects how raw bytes decode into elements.
type Format string

const (
	// FormatAuto picks a format from the file extension, falling back
	// to JSON.
	FormatAuto  Format = "auto"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name from a flag value.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatAuto, FormatJSON, FormatJSONL, FormatYAML:
		return Format(name), nil
	case "":
		return FormatAuto, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrFormat, name)
	}
}

// Collection is a loaded sequence of elements plus the identity metadata a
// result set needs.
type Collection struct {
	Elements []value.Value
	ID       string
	Source   string
}

// LoadFile reads one file as a collection. JSON files holding a single
// non-array document become a collection of one element.
func LoadFile(name string, format Format, logger *slog.Logger) (*Collection, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	if format == FormatAuto {
		format = formatForName(name)
	}

	elements, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("collection: %s: %w", name, err)
	}
	if logger != nil {
		logger.Debug("collection loaded",
			"source", name,
			"format", string(format),
			"elements", len(elements))
	}
	return &Collection{
		Elements: elements,
		ID:       uuid.NewString(),
		Source:   name,
	}, nil
}

// LoadReader decodes a collection from a stream, such as stdin.
func LoadReader(r io.Reader, format Format, source string) (*Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format == FormatAuto {
		format = FormatJSON
	}

	elements, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("collection: %s: %w", source, err)
	}
	return &Collection{
		Elements: elements,
		ID:       uuid.NewString(),
		Source:   source,
	}, nil
}

// LoadDirectory loads every *.json file under dir in lexical order and
// concatenates their elements into one collection.
func LoadDirectory(dir string, recursive bool, logger *slog.Logger) (*Collection, error) {
	var files []string
	walk := func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if !recursive && name != dir {
				return fs.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), ".json") {
			files = append(files, name)
		}
		return nil
	}
	if err := filepath.WalkDir(dir, walk); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDirectory, dir)
	}
	sort.Strings(files)

	collection := &Collection{
		ID:     uuid.NewString(),
		Source: dir,
	}
	for _, name := range files {
		loaded, err := LoadFile(name, FormatJSON, logger)
		if err != nil {
			return nil, fmt.Errorf("collection: directory %s: %w", dir, err)
		}
		collection.Elements = append(collection.Elements, loaded.Elements...)
	}
	return collection, nil
}

// Decode turns raw bytes into collection elements. JSON input may be a
// single array, a single document, or concatenated/JSONL documents.
func Decode(data []byte, format Format) ([]value.Value, error) {
	switch format {
	case FormatJSON, FormatAuto:
		return decodeJSON(data)
	case FormatJSONL:
		return value.DecodeStream(bytes.NewReader(data))
	case FormatYAML:
		return decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}
}

func decodeJSON(data []byte) ([]value.Value, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	decoded, err := value.DecodeJSON(bytes.NewReader(trimmed))
	if err == nil {
		if decoded.Kind() == value.KindSequence {
			return decoded.Items(), nil
		}
		return []value.Value{decoded}, nil
	}

	// Not a single document; try line-delimited.
	elements, streamErr := value.DecodeStream(bytes.NewReader(trimmed))
	if streamErr != nil {
		return nil, fmt.Errorf("%w: neither a JSON document nor JSONL: %v", ErrFormat, err)
	}
	return elements, nil
}

func decodeYAML(data []byte) ([]value.Value, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid YAML: %v", ErrFormat, err)
	}
	decoded, err := value.From(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if decoded.Kind() == value.KindSequence {
		return decoded.Items(), nil
	}
	return []value.Value{decoded}, nil
}

func formatForName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

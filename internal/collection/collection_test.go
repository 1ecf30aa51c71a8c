package collection

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	full := filepath.Join(dir, name)
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return full
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"auto", FormatAuto, false},
		{"json", FormatJSON, false},
		{"jsonl", FormatJSONL, false},
		{"yaml", FormatYAML, false},
		{"", FormatAuto, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run("input "+tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		format  Format
		want    int
		wantErr bool
	}{
		{"json array", "a.json", `[{"v":1},{"v":2}]`, FormatAuto, 2, false},
		{"single document", "b.json", `{"v":1}`, FormatAuto, 1, false},
		{"jsonl by extension", "c.jsonl", "{\"v\":1}\n{\"v\":2}\n{\"v\":3}", FormatAuto, 3, false},
		{"jsonl forced", "d.json", "{\"v\":1}\n{\"v\":2}", FormatJSONL, 2, false},
		{"yaml array", "e.yaml", "- v: 1\n- v: 2\n", FormatAuto, 2, false},
		{"yaml single doc", "f.yml", "v: 1\n", FormatAuto, 1, false},
		{"empty file", "g.json", "", FormatAuto, 0, false},
		{"invalid", "h.json", "{nope", FormatAuto, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full := write(t, dir, tt.file, tt.content)
			loaded, err := LoadFile(full, tt.format, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(loaded.Elements) != tt.want {
				t.Errorf("loaded %d elements, want %d", len(loaded.Elements), tt.want)
			}
			if loaded.ID == "" {
				t.Error("collection ID empty")
			}
			if loaded.Source != full {
				t.Errorf("Source = %q, want %q", loaded.Source, full)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(dir, "absent.json"), FormatAuto, nil); err == nil {
			t.Error("LoadFile() expected error for missing file")
		}
	})
}

func TestLoadReader(t *testing.T) {
	loaded, err := LoadReader(strings.NewReader(`[{"v":1},{"v":2}]`), FormatAuto, "stdin")
	if err != nil {
		t.Fatalf("LoadReader() error = %v", err)
	}
	if len(loaded.Elements) != 2 || loaded.Source != "stdin" {
		t.Errorf("LoadReader() = %d elements from %q", len(loaded.Elements), loaded.Source)
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b.json", `[{"v":2}]`)
	write(t, dir, "a.json", `[{"v":1}]`)
	write(t, dir, "notes.txt", "ignored")

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	write(t, sub, "c.json", `[{"v":3}]`)

	t.Run("flat", func(t *testing.T) {
		loaded, err := LoadDirectory(dir, false, nil)
		if err != nil {
			t.Fatalf("LoadDirectory() error = %v", err)
		}
		if len(loaded.Elements) != 2 {
			t.Fatalf("loaded %d elements, want 2", len(loaded.Elements))
		}
		// Lexical file order: a.json before b.json.
		first, _ := loaded.Elements[0].Get("v")
		if n, _ := first.AsNumber(); n != 1 {
			t.Errorf("first element v = %v, want 1", n)
		}
	})

	t.Run("recursive", func(t *testing.T) {
		loaded, err := LoadDirectory(dir, true, nil)
		if err != nil {
			t.Fatalf("LoadDirectory() error = %v", err)
		}
		if len(loaded.Elements) != 3 {
			t.Errorf("loaded %d elements, want 3", len(loaded.Elements))
		}
	})

	t.Run("empty", func(t *testing.T) {
		empty := t.TempDir()
		if _, err := LoadDirectory(empty, false, nil); !errors.Is(err, ErrEmptyDirectory) {
			t.Errorf("LoadDirectory() error = %v, want ErrEmptyDirectory", err)
		}
	})
}

func TestDecodeRejectsUnknownFormat(t *testing.T) {
	if _, err := Decode([]byte("{}"), Format("xml")); !errors.Is(err, ErrFormat) {
		t.Errorf("Decode() error = %v, want ErrFormat", err)
	}
}

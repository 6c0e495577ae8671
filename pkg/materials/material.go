// Package materials loads lesson pages stored as markdown with YAML front
// matter under content/<grade>/<slug>.md.
package materials

import (
	"bytes"
	"errors"
	"fmt"

	"go.yaml.in/yaml/v3"
)

// ErrNotFound is returned when no grade directory holds the requested slug.
var ErrNotFound = errors.New("material not found")

// Metadata is the front matter of a lesson page.
type Metadata struct {
	Title string `yaml:"title"`
	Kelas string `yaml:"kelas"`
	Topik string `yaml:"topik"`
	Level string `yaml:"level"`
}

// Material is one lesson page.
type Material struct {
	Slug  string
	Grade string
	Path  string
	Meta  Metadata
	Body  string
}

// Title returns the front matter title, or the slug when there is none.
func (m *Material) Title() string {
	if m.Meta.Title != "" {
		return m.Meta.Title
	}
	return m.Slug
}

var fence = []byte("---")

// Parse splits raw into front matter and markdown body. A page without a
// leading "---" line has empty metadata and is all body.
func Parse(raw []byte) (Metadata, string, error) {
	var meta Metadata

	raw = bytes.TrimPrefix(raw, []byte("\ufeff"))
	first, rest, ok := cutLine(raw)
	if !ok || !bytes.Equal(bytes.TrimSpace(first), fence) {
		return meta, string(raw), nil
	}

	var header []byte
	for {
		line, after, more := cutLine(rest)
		if bytes.Equal(bytes.TrimSpace(line), fence) {
			if err := yaml.Unmarshal(header, &meta); err != nil {
				return meta, "", fmt.Errorf("parsing front matter: %w", err)
			}
			return meta, string(after), nil
		}
		if !more {
			return meta, "", errors.New("parsing front matter: missing closing ---")
		}
		header = append(header, line...)
		header = append(header, '\n')
		rest = after
	}
}

// cutLine returns the first line of b without its line ending, and whether a
// newline followed it.
func cutLine(b []byte) ([]byte, []byte, bool) {
	line, rest, ok := bytes.Cut(b, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), rest, ok
}

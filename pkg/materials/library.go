package materials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

const ext = ".md"

// Library reads materials from a content directory.
type Library struct {
	dir string
}

// NewLibrary returns a Library rooted at dir.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Dir returns the content directory.
func (l *Library) Dir() string {
	return l.dir
}

// grades returns the grade directories in sorted order.
func (l *Library) grades() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("reading content dir: %w", err)
	}

	var grades []string
	for _, e := range entries {
		if e.IsDir() {
			grades = append(grades, e.Name())
		}
	}
	return grades, nil
}

// List loads every material, grade by grade in sorted order.
func (l *Library) List() ([]*Material, error) {
	grades, err := l.grades()
	if err != nil {
		return nil, err
	}

	var out []*Material
	for _, grade := range grades {
		entries, err := os.ReadDir(filepath.Join(l.dir, grade))
		if err != nil {
			return nil, fmt.Errorf("reading grade %s: %w", grade, err)
		}

		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ext {
				continue
			}

			m, err := load(filepath.Join(l.dir, grade, e.Name()), grade)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
	}

	return out, nil
}

// Find returns the material named slug. When several grades hold the same
// slug, the first grade in sorted order wins.
func (l *Library) Find(slug string) (*Material, error) {
	if slug == "" || strings.ContainsAny(slug, `/\`) || slug == "." || slug == ".." {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}

	grades, err := l.grades()
	if err != nil {
		return nil, err
	}

	for _, grade := range grades {
		m, err := load(filepath.Join(l.dir, grade, slug+ext), grade)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return m, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrNotFound, slug)
}

// Watch calls fn with a freshly loaded copy of slug every time its file is
// written or recreated, until ctx is done. A failed reload is passed to fn
// as an error and watching continues.
func (l *Library) Watch(ctx context.Context, slug string, fn func(*Material, error)) error {
	m, err := l.Find(slug)
	if err != nil {
		return err
	}
	path := m.Path

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating material watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files by rename, so the directory is watched.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching grade dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fn(load(path, m.Grade))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("material watcher error: %w", err)
		}
	}
}

func load(path, grade string) (*Material, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	meta, body, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Material{
		Slug:  strings.TrimSuffix(filepath.Base(path), ext),
		Grade: grade,
		Path:  path,
		Meta:  meta,
		Body:  body,
	}, nil
}

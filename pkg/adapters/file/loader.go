package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/document"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/fsnotify/fsnotify"
)

// Loader implements ports.DocumentStore and ports.Watchable over a directory of
// YAML and JSON documents. The document ID is the slash-separated path relative
// to BasePath, without extension.
type Loader struct {
	BasePath string
}

// New creates a loader rooted at basePath. If basePath is empty, it defaults to ".".
func New(basePath string) *Loader {
	if basePath == "" {
		basePath = "."
	}
	return &Loader{BasePath: basePath}
}

// LoadDocument reads and parses the document file for id.
func (l *Loader) LoadDocument(ctx context.Context, id string) (*document.Document, error) {
	path, err := l.find(id)
	if err != nil {
		return nil, err
	}

	doc, err := document.ParseFile(path)
	if err != nil {
		return nil, err
	}
	doc.Name = nameOr(doc.Name, id)
	return doc, nil
}

func nameOr(name, id string) string {
	if name == "" || name == filepath.Base(id) {
		return id
	}
	return name
}

func (l *Loader) find(id string) (string, error) {
	if id == "" || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid document id %q", id)
	}
	base := filepath.Join(l.BasePath, filepath.FromSlash(id))
	for _, ext := range document.Extensions {
		path := base + ext
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
}

// ListDocuments walks BasePath and returns every document ID.
// Two files that map to the same ID are reported as a collision.
func (l *Loader) ListDocuments(ctx context.Context) ([]string, error) {
	seen := make(map[string]string)
	ids := make([]string, 0)

	err := filepath.WalkDir(l.BasePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != l.BasePath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		id, ok := l.idFor(path)
		if !ok {
			return nil
		}
		if existing, dup := seen[id]; dup {
			return fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, path)
		}
		seen[id] = path
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	sort.Strings(ids)
	return ids, nil
}

func (l *Loader) idFor(path string) (string, bool) {
	if _, ok := document.FormatFor(path); !ok {
		return "", false
	}
	rel, err := filepath.Rel(l.BasePath, path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel))), true
}

// SaveDocument writes doc as YAML, or in the format of the file it replaces.
func (l *Loader) SaveDocument(ctx context.Context, id string, doc *document.Document) error {
	path, err := l.find(id)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		path = filepath.Join(l.BasePath, filepath.FromSlash(id)) + ".yaml"
	} else if err != nil {
		return err
	}

	format, _ := document.FormatFor(path)
	data, err := document.Marshal(doc, format)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", id, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to ensure document directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document file: %w", err)
	}
	return nil
}

// DeleteDocument removes the document file, if any.
func (l *Loader) DeleteDocument(ctx context.Context, id string) error {
	path, err := l.find(id)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document file: %w", err)
	}
	return nil
}

// Watch implements ports.Watchable using fsnotify. Sub-directories created
// after the watch starts are picked up as well.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	err = filepath.WalkDir(l.BasePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", l.BasePath, err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Has(fsnotify.Create) {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						_ = watcher.Add(evt.Name)
						continue
					}
				}
				if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
					continue
				}
				id, ok := l.idFor(evt.Name)
				if !ok {
					continue
				}
				select {
				case ch <- id:
				case <-ctx.Done():
					return
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return ch, nil
}

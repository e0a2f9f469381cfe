package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/document"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/loam"
)

// Loader adapts the Loam library to the ports.DocumentLoader interface.
// Documents are Markdown files whose front matter holds the tree, or plain
// JSON/YAML files. The Markdown body becomes the description when none is set.
type Loader struct {
	Repo *loam.TypedRepository[TreeMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[TreeMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only, strict Loam repository at path and wraps it.
// Strict mode keeps integers as json.Number instead of float64.
func Open(path string) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[TreeMetadata](repo)), nil
}

// LoadDocument retrieves a tree document from the Loam repository.
func (l *Loader) LoadDocument(ctx context.Context, id string) (*document.Document, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		if ids, listErr := l.ListDocuments(ctx); listErr == nil && !contains(ids, id) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	parsed, err := document.FromMap(doc.Data.toMap())
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", id, err)
	}

	if parsed.Name == "" {
		parsed.Name = trimExtension(id)
	}
	if parsed.Description == "" {
		parsed.Description = strings.TrimSpace(doc.Content)
	}
	return parsed, nil
}

func contains(ids []string, id string) bool {
	id = trimExtension(id)
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// ListDocuments lists all documents in the repository.
func (l *Loader) ListDocuments(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

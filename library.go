package arbor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// loadConcurrency bounds how many documents Load compiles at once.
const loadConcurrency = 8

// Library keeps one Engine per document of a loader. Engines are immutable;
// Reload replaces them wholesale. Safe for concurrent use.
type Library struct {
	loader  ports.DocumentLoader
	opts    []Option
	logger  *slog.Logger
	mu      sync.RWMutex
	engines map[string]*Engine
}

// ReloadEvent reports the outcome of a reload triggered by Watch.
type ReloadEvent struct {
	ID  string
	Err error
}

// NewLibrary creates an empty library over loader. opts are applied to every Engine.
func NewLibrary(loader ports.DocumentLoader, opts ...Option) *Library {
	probe := &Engine{}
	for _, opt := range opts {
		opt(probe)
	}
	logger := probe.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	return &Library{
		loader:  loader,
		opts:    opts,
		logger:  logger,
		engines: make(map[string]*Engine),
	}
}

// Loader returns the underlying document loader.
func (l *Library) Loader() ports.DocumentLoader {
	return l.loader
}

// Load compiles every document the loader lists and replaces the library
// contents. It fails fast: on the first error nothing is replaced.
func (l *Library) Load(ctx context.Context) error {
	ids, err := l.loader.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	var mu sync.Mutex
	engines := make(map[string]*Engine, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			eng, err := l.compile(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			engines[id] = eng
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	l.mu.Lock()
	l.engines = engines
	l.mu.Unlock()

	l.logger.Info("library loaded", "trees", len(engines))
	return nil
}

func (l *Library) compile(ctx context.Context, id string) (*Engine, error) {
	doc, err := l.loader.LoadDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tree %s: %w", id, err)
	}
	if doc.Name == "" {
		doc.Name = id
	}
	eng, err := New(doc, l.opts...)
	if err != nil {
		return nil, fmt.Errorf("tree %s: %w", id, err)
	}
	return eng, nil
}

// Reload recompiles a single document. A document that no longer exists is
// dropped from the library. On a compile error the previous engine stays.
func (l *Library) Reload(ctx context.Context, id string) error {
	eng, err := l.compile(ctx, id)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		l.mu.Lock()
		delete(l.engines, id)
		l.mu.Unlock()
		l.logger.Info("tree removed", "tree", id)
		return nil
	}
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.engines[id] = eng
	l.mu.Unlock()

	l.logger.Info("tree reloaded", "tree", id)
	return nil
}

// Get returns the engine for id.
func (l *Library) Get(id string) (*Engine, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	eng, ok := l.engines[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTreeNotFound, id)
	}
	return eng, nil
}

// Evaluator implements ports.TreeSource.
func (l *Library) Evaluator(id string) (ports.Evaluator, error) {
	eng, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	return eng, nil
}

// List returns the loaded tree IDs in sorted order.
func (l *Library) List() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.engines))
	for id := range l.engines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Watch reloads documents as the loader reports changes. Each reload
// attempt is reported on the returned channel, which is closed when ctx is
// done. Returns an error if the loader does not support watching.
func (l *Library) Watch(ctx context.Context) (<-chan ReloadEvent, error) {
	w, ok := l.loader.(ports.Watchable)
	if !ok {
		return nil, fmt.Errorf("current loader does not support watching")
	}

	changes, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan ReloadEvent, 1)
	go func() {
		defer close(out)
		for id := range changes {
			err := l.Reload(ctx, id)
			if err != nil {
				l.logger.Warn("reload failed", "tree", id, "err", err)
			}
			select {
			case out <- ReloadEvent{ID: id, Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/document"
	"github.com/aretw0/arbor/pkg/domain"
)

// Store implements ports.DocumentStore and ports.Watchable using an in-memory map.
// Documents are kept encoded so callers never share mutable state with the store.
// Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	docs     map[string][]byte
	watchers []chan string
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{docs: make(map[string][]byte)}
}

// NewLoader creates a store with the provided raw documents (YAML or JSON strings).
// Documents are parsed when loaded, so malformed input surfaces from LoadDocument.
func NewLoader(data map[string]string) *Store {
	s := NewStore()
	for k, v := range data {
		s.docs[k] = []byte(v)
	}
	return s
}

// NewFromDocuments creates a store from document values, keyed by document name.
// This handles serialization automatically, improving DX for tests.
func NewFromDocuments(docs ...*document.Document) (*Store, error) {
	s := NewStore()
	for _, d := range docs {
		if d.Name == "" {
			return nil, fmt.Errorf("document missing name")
		}
		bytes, err := document.Marshal(d, document.FormatJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document %s: %w", d.Name, err)
		}
		s.docs[d.Name] = bytes
	}
	return s, nil
}

// LoadDocument decodes the document stored under id.
func (s *Store) LoadDocument(ctx context.Context, id string) (*document.Document, error) {
	s.mu.RLock()
	content, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}

	doc, err := document.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", id, err)
	}
	if doc.Name == "" {
		doc.Name = id
	}
	return doc, nil
}

// ListDocuments returns all available document IDs.
func (s *Store) ListDocuments(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.docs))
	for k := range s.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}

// SaveDocument stores doc under id and notifies watchers.
func (s *Store) SaveDocument(ctx context.Context, id string, doc *document.Document) error {
	bytes, err := document.Marshal(doc, document.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", id, err)
	}

	s.mu.Lock()
	s.docs[id] = bytes
	s.mu.Unlock()

	s.notify(id)
	return nil
}

// DeleteDocument removes a document and notifies watchers.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	_, existed := s.docs[id]
	delete(s.docs, id)
	s.mu.Unlock()

	if existed {
		s.notify(id)
	}
	return nil
}

// Watch implements ports.Watchable. Events are dropped for slow consumers.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 16)

	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, w := range s.watchers {
			if w == ch {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()

	return ch, nil
}

func (s *Store) notify(id string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.watchers {
		select {
		case w <- id:
		default:
		}
	}
}

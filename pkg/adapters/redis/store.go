package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/arbor/pkg/document"
	"github.com/aretw0/arbor/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.DocumentStore and ports.Watchable using Redis.
// Documents are stored as JSON under <prefix>tree:<id>, indexed in the set
// <prefix>trees, and every change is published on <prefix>tree-events.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix. The default is "arbor:".
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "arbor:",
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(id string) string {
	return s.prefix + "tree:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + "trees"
}

func (s *Store) channel() string {
	return s.prefix + "tree-events"
}

// SaveDocument persists the document and announces the change.
func (s *Store) SaveDocument(ctx context.Context, id string, doc *document.Document) error {
	data, err := document.Marshal(doc, document.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(id), data, 0)
	pipe.SAdd(ctx, s.indexKey(), id)
	pipe.Publish(ctx, s.channel(), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// LoadDocument retrieves a document from Redis.
func (s *Store) LoadDocument(ctx context.Context, id string) (*document.Document, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	doc, err := document.ParseAs(val, document.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", id, err)
	}
	if doc.Name == "" {
		doc.Name = id
	}
	return doc, nil
}

// DeleteDocument removes the document. Deleting a missing document is not an error.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	removed, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.SRem(ctx, s.indexKey(), id)
	if removed > 0 {
		pipe.Publish(ctx, s.channel(), id)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// ListDocuments returns the indexed document IDs, sorted.
func (s *Store) ListDocuments(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list from redis: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Watch implements ports.Watchable by subscribing to the events channel.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	sub := s.client.Subscribe(ctx, s.channel())
	// Wait for the subscription confirmation so no event published after
	// Watch returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case ch <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

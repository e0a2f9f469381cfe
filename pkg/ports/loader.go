package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/document"
)

// DocumentLoader defines how the engine retrieves tree documents.
// This allows the storage layer (Files, Loam, Redis, Memory) to be decoupled.
type DocumentLoader interface {
	// LoadDocument retrieves and decodes a document by ID.
	// Missing documents are reported with domain.ErrDocumentNotFound.
	LoadDocument(ctx context.Context, id string) (*document.Document, error)

	// ListDocuments returns the IDs of all available documents in sorted order.
	ListDocuments(ctx context.Context) ([]string, error)
}

// DocumentStore is a DocumentLoader that can also be written to.
type DocumentStore interface {
	DocumentLoader

	// SaveDocument creates or replaces a document.
	SaveDocument(ctx context.Context, id string, doc *document.Document) error

	// DeleteDocument removes a document. Deleting a missing document is not an error.
	DeleteDocument(ctx context.Context, id string) error
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that yields the ID of each changed document.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}

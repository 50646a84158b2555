package types

import "context"

// Record is a stored document: its id plus its field body.
type Record struct {
	ID     string
	Fields Fields
}

// Patcher applies single-field array patches to documents by id. Each call
// is one atomic mutation in the backing store.
type Patcher interface {
	// ConditionalPatch applies patch to the document collection/id. found is
	// false (with a nil error) when no such document exists. On success the
	// returned Fields hold the document after the patch.
	ConditionalPatch(ctx context.Context, collection, id string, patch Patch) (doc Fields, found bool, err error)
}

// Store provides document CRUD over named collections. Collections are
// named after models, e.g. "Post".
type Store interface {
	Patcher

	// Insert stores a new document. Returns ErrDuplicateID if the id is
	// already taken in the collection.
	Insert(ctx context.Context, collection, id string, fields Fields) error

	// Update sets the given fields and removes the unset ones on an existing
	// document, leaving every other field untouched.
	// Returns ErrNotFound if no document exists with that id.
	Update(ctx context.Context, collection, id string, set Fields, unset []string) error

	// Get retrieves a document body by id.
	// Returns ErrNotFound if no document exists with that id.
	Get(ctx context.Context, collection, id string) (Fields, error)

	// Remove deletes a document.
	// Returns ErrNotFound if no document exists with that id.
	Remove(ctx context.Context, collection, id string) error

	// Find returns every document whose top-level fields equal the filter
	// values. An empty filter matches all documents in the collection.
	Find(ctx context.Context, collection string, filter Fields) ([]Record, error)

	// Close releases backend resources. Idempotent.
	Close(ctx context.Context) error
}

// CollectionRegistry lists the model names known at runtime. It is the
// default source of legal context types.
type CollectionRegistry interface {
	Names() []string
}

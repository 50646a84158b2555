package types

import "context"

// Field names carried by every child document.
const (
	FieldContextType = "context_type"
	FieldContextID   = "context_id"
)

// Context identifies the polymorphic parent of a child document: the parent's
// model name and its id within that model's collection.
type Context struct {
	Type string `json:"context_type,omitempty"`
	ID   string `json:"context_id,omitempty"`
}

// IsSet reports whether the context points at a parent. Both fields must be
// present; half a context references nothing.
func (c Context) IsSet() bool {
	return c.Type != "" && c.ID != ""
}

// Partial reports whether exactly one of the two fields is present.
func (c Context) Partial() bool {
	return (c.Type == "") != (c.ID == "")
}

// String renders the context as Type/ID.
func (c Context) String() string {
	if c.Type == "" && c.ID == "" {
		return "<none>"
	}
	return c.Type + "/" + c.ID
}

// ContextDocument is the view of a child document the reference engine works
// against. The cached context is process-local and never persisted.
type ContextDocument interface {
	// DocumentID returns the child's own id, the value pushed to and pulled
	// from parents.
	DocumentID() string

	// ModelName returns the child's model name, e.g. "Comment".
	ModelName() string

	// IsNew reports whether the document has never been persisted.
	IsNew() bool

	// Context returns the in-memory context fields.
	Context() Context

	// SetContext overwrites the in-memory context fields.
	SetContext(c Context)

	// CachedContext returns the last synchronized context and whether one
	// has been cached.
	CachedContext() (Context, bool)

	// CacheContext overwrites the cached context.
	CacheContext(c Context)
}

// Predicate decides whether candidate is a legal context_type for doc.
// doc may be nil when the predicate is consulted outside a document, for
// example while rewriting a context query.
type Predicate func(ctx context.Context, candidate string, doc ContextDocument) bool

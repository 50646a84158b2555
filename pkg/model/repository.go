package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

// Repository runs documents of registered models through their lifecycle
// against a store.
type Repository struct {
	registry *Registry
	store    types.Store
	log      *zap.SugaredLogger
	newID    func() string
}

// RepoOption configures a Repository.
type RepoOption func(*Repository)

// WithLogger sets the repository logger.
func WithLogger(l *zap.SugaredLogger) RepoOption {
	return func(r *Repository) { r.log = l }
}

// WithIDGenerator overrides id generation for new documents.
func WithIDGenerator(fn func() string) RepoOption {
	return func(r *Repository) { r.newID = fn }
}

// NewRepository returns a repository over store for the models in registry.
func NewRepository(registry *Registry, store types.Store, opts ...RepoOption) *Repository {
	r := &Repository{
		registry: registry,
		store:    store,
		log:      zap.NewNop().Sugar(),
		newID:    newUUID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// newUUID generates a UUID v7 string, falling back to v4.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Registry returns the model registry.
func (r *Repository) Registry() *Registry { return r.registry }

// Store returns the underlying store.
func (r *Repository) Store() types.Store { return r.store }

// New returns a fresh, unsaved document of model with a generated id.
func (r *Repository) New(model string) (*Document, error) {
	s, err := r.registry.Schema(model)
	if err != nil {
		return nil, err
	}
	return newDocument(s, r.newID(), nil, true), nil
}

// Load reads the document model/id and runs the AfterLoad hooks.
// Returns types.ErrNotFound if it does not exist.
func (r *Repository) Load(ctx context.Context, model, id string) (*Document, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	s, err := r.registry.Schema(model)
	if err != nil {
		return nil, err
	}
	fields, err := r.store.Get(ctx, model, id)
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, s, id, fields)
}

// Find returns the documents of model matching filter, each run through
// the AfterLoad hooks.
func (r *Repository) Find(ctx context.Context, model string, filter types.Fields) ([]*Document, error) {
	s, err := r.registry.Schema(model)
	if err != nil {
		return nil, err
	}
	records, err := r.store.Find(ctx, model, filter)
	if err != nil {
		return nil, fmt.Errorf("finding %s: %w", model, err)
	}
	docs := make([]*Document, 0, len(records))
	for _, rec := range records {
		doc, err := r.hydrate(ctx, s, rec.ID, rec.Fields)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *Repository) hydrate(ctx context.Context, s *Schema, id string, fields types.Fields) (*Document, error) {
	doc := newDocument(s, id, fields, false)
	if err := s.run(ctx, AfterLoad, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Save validates doc, runs the BeforePersist hooks, writes it, and runs the
// AfterPersist hooks. A validation or hook error leaves the store untouched
// by the document write and is returned unchanged.
func (r *Repository) Save(ctx context.Context, doc *Document) error {
	s := doc.schema
	if err := s.check(ctx, doc); err != nil {
		return err
	}
	if err := s.run(ctx, BeforePersist, doc); err != nil {
		r.log.Debugw("save aborted by hook", "model", s.Name(), "id", doc.id, "error", err)
		return err
	}

	if doc.isNew {
		if err := r.store.Insert(ctx, s.Name(), doc.id, doc.fields.Clone()); err != nil {
			return fmt.Errorf("inserting %s %s: %w", s.Name(), doc.id, err)
		}
	} else {
		set, unset := doc.changes()
		if len(set) > 0 || len(unset) > 0 {
			if err := r.store.Update(ctx, s.Name(), doc.id, set, unset); err != nil {
				return fmt.Errorf("updating %s %s: %w", s.Name(), doc.id, err)
			}
		}
	}
	doc.markClean()
	r.log.Debugw("saved", "model", s.Name(), "id", doc.id)

	return s.run(ctx, AfterPersist, doc)
}

// Delete runs the BeforeDelete hooks and removes doc. Removing a document
// that is already gone is not an error.
func (r *Repository) Delete(ctx context.Context, doc *Document) error {
	s := doc.schema
	if err := s.run(ctx, BeforeDelete, doc); err != nil {
		r.log.Debugw("delete aborted by hook", "model", s.Name(), "id", doc.id, "error", err)
		return err
	}
	if err := r.store.Remove(ctx, s.Name(), doc.id); err != nil && !errors.Is(err, types.ErrNotFound) {
		return fmt.Errorf("removing %s %s: %w", s.Name(), doc.id, err)
	}
	r.log.Debugw("deleted", "model", s.Name(), "id", doc.id)
	return nil
}

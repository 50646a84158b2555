// Package memory provides an in-process types.Store.
//
// Documents live in a nested map, collections to ids to fields. A single
// RWMutex guards it: Get and Find share the read lock, every mutation takes
// the write lock, so each ConditionalPatch is one atomic array mutation.
// Documents are copied on the way in and out. Nothing survives the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

// Store is an in-memory document store.
type Store struct {
	mu          sync.RWMutex
	closed      bool
	collections map[string]map[string]types.Fields
}

var _ types.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{collections: make(map[string]map[string]types.Fields)}
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed {
		return types.ErrStoreClosed
	}
	return nil
}

// Insert stores a new document.
func (s *Store) Insert(ctx context.Context, collection, id string, fields types.Fields) error {
	if id == "" {
		return types.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(ctx); err != nil {
		return err
	}

	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]types.Fields)
		s.collections[collection] = docs
	}
	if _, exists := docs[id]; exists {
		return fmt.Errorf("%w: %s/%s", types.ErrDuplicateID, collection, id)
	}
	stored := fields.Clone()
	if stored == nil {
		stored = types.Fields{}
	}
	docs[id] = stored
	return nil
}

// Update sets and unsets fields on an existing document.
func (s *Store) Update(ctx context.Context, collection, id string, set types.Fields, unset []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(ctx); err != nil {
		return err
	}

	doc, ok := s.collections[collection][id]
	if !ok {
		return types.ErrNotFound
	}
	for k, v := range set.Clone() {
		doc[k] = v
	}
	for _, k := range unset {
		delete(doc, k)
	}
	return nil
}

// Get returns a copy of the document.
func (s *Store) Get(ctx context.Context, collection, id string) (types.Fields, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return doc.Clone(), nil
}

// Remove deletes the document.
func (s *Store) Remove(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(ctx); err != nil {
		return err
	}

	if _, ok := s.collections[collection][id]; !ok {
		return types.ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

// Find returns matching documents ordered by id.
func (s *Store) Find(ctx context.Context, collection string, filter types.Fields) ([]types.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	results := []types.Record{}
	for id, doc := range s.collections[collection] {
		if doc.Matches(filter) {
			results = append(results, types.Record{ID: id, Fields: doc.Clone()})
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

// ConditionalPatch applies patch under the write lock.
func (s *Store) ConditionalPatch(ctx context.Context, collection, id string, patch types.Patch) (types.Fields, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(ctx); err != nil {
		return nil, false, err
	}

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, false, nil
	}
	next := doc.Clone()
	if err := next.ApplyPatch(patch); err != nil {
		return nil, true, err
	}
	s.collections[collection][id] = next
	return next.Clone(), true, nil
}

// Close marks the store closed. Idempotent.
func (s *Store) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

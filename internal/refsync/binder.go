package refsync

import (
	"context"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

// Transition is the reference action a pre-persist event calls for.
type Transition int

const (
	// TransitionNone issues no parent update.
	TransitionNone Transition = iota
	// TransitionCreate adds the new child to its parent.
	TransitionCreate
	// TransitionMove removes the child from its cached parent and adds it
	// to its current one.
	TransitionMove
)

func (t Transition) String() string {
	switch t {
	case TransitionCreate:
		return "create"
	case TransitionMove:
		return "move"
	default:
		return "none"
	}
}

// Classify derives the transition for a document about to be persisted.
//
//	new, no context                 -> none
//	new, context                    -> create
//	persisted, no context           -> none
//	persisted, context unchanged    -> none
//	persisted, context changed      -> move
//
// "Changed" is the difference between the cached context and the current
// one. A persisted document with nothing cached has no prior state to move
// from and classifies as none. Half a context counts as no context.
func Classify(doc types.ContextDocument) Transition {
	current := doc.Context()
	if !current.IsSet() {
		return TransitionNone
	}
	if doc.IsNew() {
		return TransitionCreate
	}
	cached, ok := doc.CachedContext()
	if !ok || cached == current {
		return TransitionNone
	}
	return TransitionMove
}

// Binder connects a child model's lifecycle phases to the Synchronizer.
type Binder struct {
	field   string
	sync    *Synchronizer
	log     *zap.SugaredLogger
	metrics *Metrics
}

// NewBinder returns a Binder maintaining back-references in field, the
// parent-side array named after the child model.
func NewBinder(field string, sync *Synchronizer, log *zap.SugaredLogger, metrics *Metrics) *Binder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Binder{field: field, sync: sync, log: log, metrics: metrics}
}

// Field returns the back-reference field name.
func (b *Binder) Field() string {
	return b.field
}

// BeforePersist runs the create or move protocol for doc. An error must
// abort the persist.
func (b *Binder) BeforePersist(ctx context.Context, doc types.ContextDocument) error {
	switch Classify(doc) {
	case TransitionCreate:
		c := doc.Context()
		_, err := b.sync.Apply(ctx, OpAdd, b.field, c.Type, c.ID, doc.DocumentID())
		return err
	case TransitionMove:
		return b.move(ctx, doc)
	default:
		return nil
	}
}

// BeforeDelete removes doc from its current parent, not the cached one.
func (b *Binder) BeforeDelete(ctx context.Context, doc types.ContextDocument) error {
	c := doc.Context()
	if !c.IsSet() {
		return nil
	}
	_, err := b.sync.Apply(ctx, OpRemove, b.field, c.Type, c.ID, doc.DocumentID())
	return err
}

// AfterLoad caches the context as loaded from storage.
func (b *Binder) AfterLoad(_ context.Context, doc types.ContextDocument) error {
	Capture(doc)
	return nil
}

// AfterPersist caches the context that was just stored.
func (b *Binder) AfterPersist(_ context.Context, doc types.ContextDocument) error {
	Refresh(doc)
	return nil
}

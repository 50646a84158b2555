package refsync

import (
	"context"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

// Operation is the direction of a back-reference update.
type Operation int

const (
	// OpAdd pushes the child id into the parent's back-reference field.
	OpAdd Operation = iota + 1
	// OpRemove pulls the child id from the parent's back-reference field.
	OpRemove
)

func (o Operation) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Synchronizer issues single back-reference updates against parent
// documents through the host's ConditionalPatch.
type Synchronizer struct {
	patcher types.Patcher
	log     *zap.SugaredLogger
	metrics *Metrics
}

// SyncOption configures a Synchronizer.
type SyncOption func(*Synchronizer)

// WithLogger sets the logger. The default discards.
func WithLogger(l *zap.SugaredLogger) SyncOption {
	return func(s *Synchronizer) { s.log = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) SyncOption {
	return func(s *Synchronizer) { s.metrics = m }
}

// NewSynchronizer returns a Synchronizer patching through p.
func NewSynchronizer(p types.Patcher, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{
		patcher: p,
		log:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply adds childID to, or removes it from, field on the parent
// parentType/parentID.
//
// An empty parentID succeeds without touching the store. A store failure is
// returned as *types.StorageError. A missing parent fails an add with
// *types.ParentNotFoundError and is ignored by a remove. On success the
// patched parent is returned; it is nil when nothing was patched.
func (s *Synchronizer) Apply(ctx context.Context, op Operation, field, parentType, parentID, childID string) (types.Fields, error) {
	if parentID == "" {
		return nil, nil
	}

	var patch types.Patch
	switch op {
	case OpAdd:
		patch = types.Push(field, childID)
	case OpRemove:
		patch = types.Pull(field, childID)
	default:
		return nil, types.ErrInvalidData
	}

	s.log.Debugw("patching parent",
		"op", op.String(), "parent_type", parentType, "parent_id", parentID,
		"field", field, "child_id", childID)

	parent, found, err := s.patcher.ConditionalPatch(ctx, parentType, parentID, patch)
	if err != nil {
		s.metrics.patch(op, outcomeError)
		return nil, &types.StorageError{Op: patch.Op.String(), Collection: parentType, ID: parentID, Err: err}
	}
	if !found {
		s.metrics.patch(op, outcomeNotFound)
		if op == OpAdd {
			return nil, &types.ParentNotFoundError{Type: parentType, ID: parentID}
		}
		s.log.Warnw("parent already gone, nothing to remove",
			"parent_type", parentType, "parent_id", parentID, "child_id", childID)
		return nil, nil
	}

	s.metrics.patch(op, outcomeOK)
	return parent, nil
}

package refsync

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

// Move protocol states.
const (
	MoveStatePending   = "pending"
	MoveStateRemoving  = "removing"
	MoveStateAdding    = "adding"
	MoveStateCompleted = "completed"
	MoveStateAborted   = "aborted"
	MoveStateDiverged  = "diverged"
)

// Move protocol events.
const (
	moveEventBegin        = "begin"
	moveEventRemoved      = "removed"
	moveEventRemoveFailed = "remove_failed"
	moveEventAdded        = "added"
	moveEventAddFailed    = "add_failed"
)

var moveEvents = fsm.Events{
	{Name: moveEventBegin, Src: []string{MoveStatePending}, Dst: MoveStateRemoving},
	{Name: moveEventRemoved, Src: []string{MoveStateRemoving}, Dst: MoveStateAdding},
	{Name: moveEventRemoveFailed, Src: []string{MoveStateRemoving}, Dst: MoveStateAborted},
	{Name: moveEventAdded, Src: []string{MoveStateAdding}, Dst: MoveStateCompleted},
	{Name: moveEventAddFailed, Src: []string{MoveStateAdding}, Dst: MoveStateDiverged},
}

// moveRun is one execution of the move protocol for one document.
type moveRun struct {
	binder  *Binder
	doc     types.ContextDocument
	from    types.Context
	to      types.Context
	machine *fsm.FSM
}

func (b *Binder) newMoveRun(doc types.ContextDocument, from, to types.Context) *moveRun {
	r := &moveRun{binder: b, doc: doc, from: from, to: to}
	r.machine = fsm.NewFSM(
		MoveStatePending,
		moveEvents,
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				b.log.Debugw("move phase", "child_id", doc.DocumentID(), "from", from.String(), "to", to.String(), "state", e.Dst)
			},
			"enter_" + MoveStateCompleted: func(_ context.Context, _ *fsm.Event) {
				b.metrics.move(moveCompleted)
			},
			"enter_" + MoveStateAborted: func(_ context.Context, e *fsm.Event) {
				b.metrics.move(moveAborted)
				b.log.Warnw("context move aborted, old reference kept",
					"child_id", doc.DocumentID(), "from", from.String(), "to", to.String(), "error", eventErr(e))
			},
			"enter_" + MoveStateDiverged: func(_ context.Context, e *fsm.Event) {
				b.metrics.move(moveDiverged)
				b.log.Errorw("context move diverged",
					"child_id", doc.DocumentID(), "from", from.String(), "to", to.String(), "error", eventErr(e))
			},
		},
	)
	return r
}

// move removes the child from its cached parent, then adds it to the new
// one. The two calls are strictly sequential. If the remove fails the add is
// never attempted and the document is left carrying its old context. If the
// add fails the old reference is already gone and the error is returned as
// *types.MoveDivergedError.
func (b *Binder) move(ctx context.Context, doc types.ContextDocument) error {
	from, _ := doc.CachedContext()
	to := doc.Context()
	run := b.newMoveRun(doc, from, to)
	return run.execute(ctx)
}

func (r *moveRun) execute(ctx context.Context) error {
	b, doc := r.binder, r.doc
	r.fire(ctx, moveEventBegin)

	doc.SetContext(r.from)
	if _, err := b.sync.Apply(ctx, OpRemove, b.field, r.from.Type, r.from.ID, doc.DocumentID()); err != nil {
		r.fire(ctx, moveEventRemoveFailed, err)
		return err
	}
	r.fire(ctx, moveEventRemoved)

	doc.SetContext(r.to)
	if _, err := b.sync.Apply(ctx, OpAdd, b.field, r.to.Type, r.to.ID, doc.DocumentID()); err != nil {
		r.fire(ctx, moveEventAddFailed, err)
		return &types.MoveDivergedError{ChildID: doc.DocumentID(), From: r.from, To: r.to, Err: err}
	}
	r.fire(ctx, moveEventAdded)
	return nil
}

// fire advances the state machine. The event table is fixed, so a refused
// transition is a programming error; it is logged, never returned.
func (r *moveRun) fire(ctx context.Context, event string, args ...any) {
	if err := r.machine.Event(ctx, event, args...); err != nil {
		r.binder.log.Errorw("move state machine refused event", "event", event, "state", r.machine.Current(), "error", err)
	}
}

// State returns the current protocol state.
func (r *moveRun) State() string {
	return r.machine.Current()
}

func eventErr(e *fsm.Event) error {
	if len(e.Args) == 0 {
		return nil
	}
	err, _ := e.Args[0].(error)
	return err
}

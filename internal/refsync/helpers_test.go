package refsync

import (
	"context"
	"errors"
	"sync"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

// fakeDoc is a minimal types.ContextDocument.
type fakeDoc struct {
	id     string
	model  string
	isNew  bool
	ctx    types.Context
	cached *types.Context
}

func (d *fakeDoc) DocumentID() string           { return d.id }
func (d *fakeDoc) ModelName() string            { return d.model }
func (d *fakeDoc) IsNew() bool                  { return d.isNew }
func (d *fakeDoc) Context() types.Context       { return d.ctx }
func (d *fakeDoc) SetContext(c types.Context)   { d.ctx = c }
func (d *fakeDoc) CacheContext(c types.Context) { d.cached = &c }
func (d *fakeDoc) CachedContext() (types.Context, bool) {
	if d.cached == nil {
		return types.Context{}, false
	}
	return *d.cached, true
}

// patchCall records one ConditionalPatch invocation together with the
// document's context at the moment of the call.
type patchCall struct {
	Collection string
	ID         string
	Patch      types.Patch
	DocContext types.Context
}

// recordingPatcher records calls and answers from a table of parents.
// Parents absent from the table are reported as not found.
type recordingPatcher struct {
	mu      sync.Mutex
	calls   []patchCall
	parents map[string]types.Fields
	fail    map[string]error
	doc     *fakeDoc
}

func newRecordingPatcher(parents ...string) *recordingPatcher {
	p := &recordingPatcher{
		parents: make(map[string]types.Fields),
		fail:    make(map[string]error),
	}
	for _, key := range parents {
		p.parents[key] = types.Fields{}
	}
	return p
}

func (p *recordingPatcher) failOn(collection, id string, err error) {
	p.fail[collection+"/"+id] = err
}

func (p *recordingPatcher) ConditionalPatch(_ context.Context, collection, id string, patch types.Patch) (types.Fields, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	call := patchCall{Collection: collection, ID: id, Patch: patch}
	if p.doc != nil {
		call.DocContext = p.doc.ctx
	}
	p.calls = append(p.calls, call)

	key := collection + "/" + id
	if err := p.fail[key]; err != nil {
		return nil, false, err
	}
	parent, ok := p.parents[key]
	if !ok {
		return nil, false, nil
	}
	if err := parent.ApplyPatch(patch); err != nil {
		return nil, true, err
	}
	return parent.Clone(), true, nil
}

var errBoom = errors.New("boom")

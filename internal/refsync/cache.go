package refsync

import "github.com/mesh-intelligence/contextref/pkg/types"

// Capture caches doc's current context unless a cached context already
// exists. The first call wins so that an in-flight mutation never replaces
// the true prior value.
func Capture(doc types.ContextDocument) {
	if _, ok := doc.CachedContext(); ok {
		return
	}
	doc.CacheContext(doc.Context())
}

// Refresh overwrites the cached context with doc's current context. It runs
// after a successful persist, when the in-memory context has become the
// synchronized one.
func Refresh(doc types.ContextDocument) {
	doc.CacheContext(doc.Context())
}

package refsync

import (
	"context"
	"slices"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

// TypeValidator decides whether a candidate context_type is acceptable.
// A configured list or predicate is used verbatim; otherwise the live list
// of registered model names is consulted on every call.
type TypeValidator struct {
	allow     []string
	predicate types.Predicate
	registry  types.CollectionRegistry
}

// NewTypeValidator builds a validator from the plugin options. registry is
// only consulted when opts carries neither a list nor a predicate.
func NewTypeValidator(opts types.Options, registry types.CollectionRegistry) *TypeValidator {
	return &TypeValidator{
		allow:     slices.Clone(opts.ContextTypes),
		predicate: opts.Predicate,
		registry:  registry,
	}
}

// Validate reports whether candidate is a legal context type for doc.
// An empty candidate is never legal.
func (v *TypeValidator) Validate(ctx context.Context, candidate string, doc types.ContextDocument) bool {
	if candidate == "" {
		return false
	}
	if v.predicate != nil {
		return v.predicate(ctx, candidate, doc)
	}
	return slices.Contains(v.names(), candidate)
}

// Filter returns the names that pass Validate, in input order.
func (v *TypeValidator) Filter(ctx context.Context, names []string, doc types.ContextDocument) []string {
	var out []string
	for _, n := range names {
		if v.Validate(ctx, n, doc) {
			out = append(out, n)
		}
	}
	return out
}

func (v *TypeValidator) names() []string {
	if len(v.allow) > 0 {
		return v.allow
	}
	if v.registry == nil {
		return nil
	}
	return v.registry.Names()
}

package contextref

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/mesh-intelligence/contextref/internal/naming"
	"github.com/mesh-intelligence/contextref/pkg/model"
	"github.com/mesh-intelligence/contextref/pkg/types"
)

// WithContext finds documents of the plugin's model matching filter. A
// filter key naming a legal parent type in normalized form, such as "post"
// or "blog_post", is rewritten into context_type and context_id. Only the
// first such key is rewritten. filter is not modified.
func (p *Plugin) WithContext(ctx context.Context, repo *model.Repository, filter types.Fields) ([]*model.Document, error) {
	if p.opts.DisableQuery {
		return nil, fmt.Errorf("%w: context query disabled for %s", types.ErrInvalidOptions, p.schema.Name())
	}
	return repo.Find(ctx, p.schema.Name(), p.ContextFilter(ctx, filter))
}

// WithContextID finds documents whose context is exactly typeName/id.
func (p *Plugin) WithContextID(ctx context.Context, repo *model.Repository, typeName, id string) ([]*model.Document, error) {
	if p.opts.DisableQuery {
		return nil, fmt.Errorf("%w: context query disabled for %s", types.ErrInvalidOptions, p.schema.Name())
	}
	return repo.Find(ctx, p.schema.Name(), types.Fields{
		types.FieldContextType: typeName,
		types.FieldContextID:   id,
	})
}

// ContextFilter returns a copy of filter with the first shorthand context
// key rewritten.
func (p *Plugin) ContextFilter(ctx context.Context, filter types.Fields) types.Fields {
	out := filter.Clone()
	if out == nil {
		out = types.Fields{}
	}
	keys := p.contextKeys(ctx)
	for _, k := range slices.Sorted(maps.Keys(filter)) {
		if !slices.Contains(keys, k) {
			continue
		}
		out[types.FieldContextType] = naming.UpperCamelize(k)
		out[types.FieldContextID] = out[k]
		delete(out, k)
		break
	}
	return out
}

// IsContextKey reports whether key addresses the context: one of the two
// context fields, a shortcut key, or a shorthand query key.
func (p *Plugin) IsContextKey(ctx context.Context, key string) bool {
	if key == types.FieldContextType || key == types.FieldContextID {
		return true
	}
	if _, ok := p.shortcuts[key]; ok {
		return true
	}
	return slices.Contains(p.contextKeys(ctx), key)
}

// contextKeys lists the normalized names of the legal parent types.
func (p *Plugin) contextKeys(ctx context.Context) []string {
	var names []string
	if p.registry != nil {
		names = p.registry.Names()
	} else {
		names = p.opts.ContextTypes
	}
	legal := p.validator.Filter(ctx, names, nil)
	keys := make([]string, 0, len(legal))
	for _, n := range legal {
		keys = append(keys, p.normalize(n))
	}
	return keys
}

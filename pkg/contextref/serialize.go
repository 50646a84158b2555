package contextref

import (
	"github.com/mesh-intelligence/contextref/internal/naming"
	"github.com/mesh-intelligence/contextref/pkg/model"
	"github.com/mesh-intelligence/contextref/pkg/types"
)

// Serialize collapses context_type and context_id in out into one key, the
// normalized context type, holding the id. out is modified and returned.
// Without a context_type it is returned unchanged.
func Serialize(out types.Fields, camelCase bool) types.Fields {
	t := out.String(types.FieldContextType)
	if t == "" {
		return out
	}
	id, hasID := out[types.FieldContextID]
	delete(out, types.FieldContextType)
	delete(out, types.FieldContextID)
	if hasID {
		out[naming.For(camelCase)(t)] = id
	}
	return out
}

func (p *Plugin) serialize(_ *model.Document, out types.Fields) types.Fields {
	return Serialize(out, p.opts.CamelCase)
}

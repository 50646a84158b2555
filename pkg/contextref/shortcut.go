package contextref

import (
	"slices"

	"github.com/mesh-intelligence/contextref/internal/naming"
	"github.com/mesh-intelligence/contextref/pkg/model"
	"github.com/mesh-intelligence/contextref/pkg/types"
)

// Shortcut reads and writes the context of a document as if it were a field
// named after one parent type: for a Comment, Shortcut("post").Set(doc, id)
// points it at Post id.
type Shortcut struct {
	key       string
	typeName  string
	normalize naming.Normalizer
}

// Key returns the accessor name, the normalized parent type.
func (s Shortcut) Key() string { return s.key }

// Type returns the parent model name the shortcut writes.
func (s Shortcut) Type() string { return s.typeName }

// Get returns doc's context_id when its context_type normalizes to the
// shortcut key, and "" otherwise.
func (s Shortcut) Get(doc *model.Document) string {
	c := doc.Context()
	if c.Type == "" || s.normalize(c.Type) != s.key {
		return ""
	}
	return c.ID
}

// Set points doc at the parent of this shortcut's type with id.
func (s Shortcut) Set(doc *model.Document, id string) {
	doc.SetContext(types.Context{Type: s.typeName, ID: id})
}

// buildShortcuts creates one accessor per listed context type. Keys that
// collide with a declared field are skipped.
func (p *Plugin) buildShortcuts() {
	for _, t := range p.opts.ContextTypes {
		key := p.normalize(t)
		if p.schema.HasField(key) {
			continue
		}
		if _, ok := p.shortcuts[key]; ok {
			continue
		}
		p.shortcuts[key] = Shortcut{key: key, typeName: naming.UpperCamelize(t), normalize: p.normalize}
		p.order = append(p.order, key)
	}
}

// Shortcut returns the accessor registered under key.
func (p *Plugin) Shortcut(key string) (Shortcut, bool) {
	s, ok := p.shortcuts[key]
	return s, ok
}

// Shortcuts returns the accessor keys in context type order.
func (p *Plugin) Shortcuts() []string {
	return slices.Clone(p.order)
}

package model

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

// Document is the in-memory form of one stored document.
type Document struct {
	id     string
	schema *Schema
	fields types.Fields
	isNew  bool
	dirty  map[string]bool
	cached *types.Context
}

var _ types.ContextDocument = (*Document)(nil)

func newDocument(schema *Schema, id string, fields types.Fields, isNew bool) *Document {
	if fields == nil {
		fields = types.Fields{}
	}
	return &Document{
		id:     id,
		schema: schema,
		fields: fields,
		isNew:  isNew,
		dirty:  make(map[string]bool),
	}
}

// ID returns the document id.
func (d *Document) ID() string { return d.id }

// DocumentID returns the document id.
func (d *Document) DocumentID() string { return d.id }

// ModelName returns the name of the document's model.
func (d *Document) ModelName() string { return d.schema.Name() }

// Schema returns the document's schema.
func (d *Document) Schema() *Schema { return d.schema }

// IsNew reports whether the document has never been persisted.
func (d *Document) IsNew() bool { return d.isNew }

// Get returns the value of field.
func (d *Document) Get(field string) any {
	return d.fields[field]
}

// GetString returns the string value of field, or "".
func (d *Document) GetString(field string) string {
	return d.fields.String(field)
}

// Set assigns field. A nil value unsets it.
func (d *Document) Set(field string, value any) {
	if value == nil {
		if _, ok := d.fields[field]; !ok {
			return
		}
		delete(d.fields, field)
	} else {
		d.fields[field] = value
	}
	d.dirty[field] = true
}

// IsModified reports whether field was set since the last load or save.
func (d *Document) IsModified(field string) bool {
	return d.dirty[field]
}

// Fields returns a copy of the document's fields.
func (d *Document) Fields() types.Fields {
	return d.fields.Clone()
}

// Context returns the context fields.
func (d *Document) Context() types.Context {
	return types.Context{
		Type: d.fields.String(types.FieldContextType),
		ID:   d.fields.String(types.FieldContextID),
	}
}

// SetContext assigns both context fields. Empty values unset them.
func (d *Document) SetContext(c types.Context) {
	d.Set(types.FieldContextType, optional(c.Type))
	d.Set(types.FieldContextID, optional(c.ID))
}

// CachedContext returns the context as last loaded or saved.
func (d *Document) CachedContext() (types.Context, bool) {
	if d.cached == nil {
		return types.Context{}, false
	}
	return *d.cached, true
}

// CacheContext records c as the last synchronized context. The cache lives
// only in memory.
func (d *Document) CacheContext(c types.Context) {
	d.cached = &c
}

// MarshalJSON encodes the id and fields after running the schema's
// serializers.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := d.fields.Clone()
	for _, fn := range d.schema.serializers {
		out = fn(d, out)
	}
	out["id"] = d.id
	return json.Marshal(out)
}

// changes splits dirty fields into those to set and those to unset.
func (d *Document) changes() (types.Fields, []string) {
	set := types.Fields{}
	var unset []string
	for _, f := range slices.Sorted(maps.Keys(d.dirty)) {
		if v, ok := d.fields[f]; ok {
			set[f] = v
		} else {
			unset = append(unset, f)
		}
	}
	return set, unset
}

func (d *Document) markClean() {
	d.isNew = false
	clear(d.dirty)
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

func TestDocumentSetTracksChanges(t *testing.T) {
	s := NewSchema("Comment", "body", "author")
	d := newDocument(s, "c1", types.Fields{"body": "hi", "author": "ann"}, false)

	assert.False(t, d.IsModified("body"))
	d.Set("body", "edited")
	d.Set("author", nil)
	d.Set("missing", nil)

	assert.True(t, d.IsModified("body"))
	assert.True(t, d.IsModified("author"))
	assert.False(t, d.IsModified("missing"))

	set, unset := d.changes()
	assert.Equal(t, types.Fields{"body": "edited"}, set)
	assert.Equal(t, []string{"author"}, unset)

	d.markClean()
	assert.False(t, d.IsNew())
	assert.False(t, d.IsModified("body"))
}

func TestDocumentContext(t *testing.T) {
	d := newDocument(NewSchema("Comment"), "c1", nil, true)
	assert.Equal(t, types.Context{}, d.Context())

	d.SetContext(types.Context{Type: "Post", ID: "p1"})
	assert.Equal(t, types.Context{Type: "Post", ID: "p1"}, d.Context())
	assert.Equal(t, "Post", d.GetString(types.FieldContextType))

	d.SetContext(types.Context{})
	assert.NotContains(t, d.Fields(), types.FieldContextType)
	assert.NotContains(t, d.Fields(), types.FieldContextID)
}

func TestDocumentCachedContext(t *testing.T) {
	d := newDocument(NewSchema("Comment"), "c1", nil, false)
	_, ok := d.CachedContext()
	assert.False(t, ok)

	d.CacheContext(types.Context{Type: "Post", ID: "p1"})
	got, ok := d.CachedContext()
	require.True(t, ok)
	assert.Equal(t, types.Context{Type: "Post", ID: "p1"}, got)
	assert.NotContains(t, d.Fields(), "cached", "cache never leaks into fields")
}

func TestDocumentFieldsIsACopy(t *testing.T) {
	d := newDocument(NewSchema("Post"), "p1", types.Fields{"comments": []any{"c1"}}, false)
	f := d.Fields()
	f["comments"] = []any{"x"}
	assert.Equal(t, []string{"c1"}, d.Fields().Strings("comments"))
}

func TestDocumentMarshalJSONRunsSerializers(t *testing.T) {
	s := NewSchema("Comment", "body")
	s.AddSerializer(func(_ *Document, out types.Fields) types.Fields {
		out["body"] = "[" + out.String("body") + "]"
		return out
	})
	s.AddSerializer(func(_ *Document, out types.Fields) types.Fields {
		out["seen"] = out.String("body")
		return out
	})
	d := newDocument(s, "c1", types.Fields{"body": "hi"}, false)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c1","body":"[hi]","seen":"[hi]"}`, string(raw))
	assert.Equal(t, "hi", d.GetString("body"))
}

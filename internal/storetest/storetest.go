// Package storetest holds the behavior every types.Store must share. Backend
// packages call Run from their own tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) types.Store

// Run exercises CRUD and ConditionalPatch semantics against stores from
// newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name  string
		check func(t *testing.T, s types.Store)
	}{
		{name: "insert then get", check: testInsertGet},
		{name: "duplicate insert", check: testDuplicateInsert},
		{name: "get missing", check: testGetMissing},
		{name: "update sets and unsets", check: testUpdate},
		{name: "remove", check: testRemove},
		{name: "find filters by equality", check: testFind},
		{name: "patch push and pull", check: testPatch},
		{name: "patch missing document", check: testPatchMissing},
		{name: "patch non-array field", check: testPatchNotArray},
		{name: "concurrent pushes keep every id", check: testConcurrentPush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close(context.Background()) })
			tt.check(t, s)
		})
	}
}

func testInsertGet(t *testing.T, s types.Store) {
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, "Post", "p1", types.Fields{"title": "hello"}))

	got, err := s.Get(ctx, "Post", "p1")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.String("title"))

	_, err = s.Get(ctx, "Comment", "p1")
	assert.ErrorIs(t, err, types.ErrNotFound, "collections are separate namespaces")
}

func testDuplicateInsert(t *testing.T, s types.Store) {
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, "Post", "p1", types.Fields{}))
	assert.ErrorIs(t, s.Insert(ctx, "Post", "p1", types.Fields{}), types.ErrDuplicateID)
}

func testGetMissing(t *testing.T, s types.Store) {
	_, err := s.Get(context.Background(), "Post", "nope")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func testUpdate(t *testing.T, s types.Store) {
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, "Comment", "c1", types.Fields{
		"body":         "hi",
		"context_type": "Post",
		"context_id":   "p1",
	}))

	require.NoError(t, s.Update(ctx, "Comment", "c1", types.Fields{"body": "edited"}, []string{"context_type", "context_id"}))

	got, err := s.Get(ctx, "Comment", "c1")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.String("body"))
	assert.NotContains(t, got, "context_type")
	assert.NotContains(t, got, "context_id")

	assert.ErrorIs(t, s.Update(ctx, "Comment", "nope", types.Fields{"body": "x"}, nil), types.ErrNotFound)
}

func testRemove(t *testing.T, s types.Store) {
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, "Post", "p1", types.Fields{}))
	require.NoError(t, s.Remove(ctx, "Post", "p1"))
	assert.ErrorIs(t, s.Remove(ctx, "Post", "p1"), types.ErrNotFound)
}

func testFind(t *testing.T, s types.Store) {
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, "Comment", "c1", types.Fields{"context_type": "Post", "context_id": "p1"}))
	require.NoError(t, s.Insert(ctx, "Comment", "c2", types.Fields{"context_type": "Post", "context_id": "p2"}))
	require.NoError(t, s.Insert(ctx, "Comment", "c3", types.Fields{"context_type": "Article", "context_id": "p1"}))

	all, err := s.Find(ctx, "Comment", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err := s.Find(ctx, "Comment", types.Fields{"context_type": "Post", "context_id": "p1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)

	none, err := s.Find(ctx, "Video", nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testPatch(t *testing.T, s types.Store) {
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, "Post", "p1", types.Fields{"title": "hello"}))

	doc, found, err := s.ConditionalPatch(ctx, "Post", "p1", types.Push("comments", "c1"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"c1"}, doc.Strings("comments"))

	_, _, err = s.ConditionalPatch(ctx, "Post", "p1", types.Push("comments", "c2"))
	require.NoError(t, err)
	_, _, err = s.ConditionalPatch(ctx, "Post", "p1", types.Push("comments", "c2"))
	require.NoError(t, err)

	got, err := s.Get(ctx, "Post", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, got.Strings("comments"))
	assert.Equal(t, "hello", got.String("title"))

	doc, found, err = s.ConditionalPatch(ctx, "Post", "p1", types.Pull("comments", "c1"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"c2"}, doc.Strings("comments"))

	_, found, err = s.ConditionalPatch(ctx, "Post", "p1", types.Pull("tags", "x"))
	require.NoError(t, err)
	assert.True(t, found)
}

func testPatchMissing(t *testing.T, s types.Store) {
	ctx := context.Background()
	for _, p := range []types.Patch{types.Push("comments", "c1"), types.Pull("comments", "c1")} {
		doc, found, err := s.ConditionalPatch(ctx, "Post", "ghost", p)
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, doc)
	}
}

func testPatchNotArray(t *testing.T, s types.Store) {
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, "Post", "p1", types.Fields{"comments": "oops"}))

	_, _, err := s.ConditionalPatch(ctx, "Post", "p1", types.Push("comments", "c1"))
	assert.ErrorIs(t, err, types.ErrNotArray)
}

func testConcurrentPush(t *testing.T, s types.Store) {
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, "Post", "p1", types.Fields{}))

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := s.ConditionalPatch(ctx, "Post", "p1", types.Push("comments", fmt.Sprintf("c%02d", i)))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.Get(ctx, "Post", "p1")
	require.NoError(t, err)
	assert.Len(t, got.Strings("comments"), n)
}

package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/contextref/internal/storetest"
	"github.com/mesh-intelligence/contextref/pkg/types"
)

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(context.Background(), dir)
	require.NoError(t, err)
	return s
}

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) types.Store {
		return openTestStore(t, t.TempDir())
	})
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := openTestStore(t, dir)
	require.NoError(t, s.Insert(ctx, "Post", "p1", types.Fields{"title": "hello"}))
	_, _, err := s.ConditionalPatch(ctx, "Post", "p1", types.Push("comments", "c1"))
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	s = openTestStore(t, dir)
	defer s.Close(ctx)
	got, err := s.Get(ctx, "Post", "p1")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.String("title"))
	assert.Equal(t, []string{"c1"}, got.Strings("comments"))
}

func TestStoreCollections(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, t.TempDir())
	defer s.Close(ctx)

	names, err := s.Collections(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s.Insert(ctx, "Post", "p1", nil))
	require.NoError(t, s.Insert(ctx, "Comment", "c1", nil))
	require.NoError(t, s.Insert(ctx, "Comment", "c2", nil))

	names, err = s.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Comment", "Post"}, names)
}

func TestStoreClosed(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, t.TempDir())
	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))

	_, err := s.Get(ctx, "Post", "p1")
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	_, _, err = s.ConditionalPatch(ctx, "Post", "p1", types.Push("comments", "c1"))
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	assert.ErrorIs(t, s.Insert(ctx, "Post", "p1", nil), types.ErrStoreClosed)
}

func TestStoreRejectsEmptyID(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	defer s.Close(context.Background())
	assert.ErrorIs(t, s.Insert(context.Background(), "Post", "", nil), types.ErrInvalidID)
}

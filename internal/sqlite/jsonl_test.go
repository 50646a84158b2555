package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

func TestReadJSONLSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Post.jsonl")
	content := "{\"id\":\"p1\"}\n\nnot json\n{\"id\":\"p2\"}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := readJSONL(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"id":"p1"}`, string(records[0]))
	assert.JSONEq(t, `{"id":"p2"}`, string(records[1]))
}

func TestReadJSONLMissingFile(t *testing.T) {
	_, err := readJSONL(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openTestStore(t, t.TempDir())
	defer src.Close(ctx)

	require.NoError(t, src.Insert(ctx, "Post", "p1", types.Fields{"title": "hello"}))
	require.NoError(t, src.Insert(ctx, "Comment", "c1", types.Fields{
		"context_type": "Post",
		"context_id":   "p1",
	}))
	_, _, err := src.ConditionalPatch(ctx, "Post", "p1", types.Push("comments", "c1"))
	require.NoError(t, err)

	exportDir := t.TempDir()
	paths, err := src.Export(ctx, exportDir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(exportDir, "Comment.jsonl"),
		filepath.Join(exportDir, "Post.jsonl"),
	}, paths)

	dst := openTestStore(t, t.TempDir())
	defer dst.Close(ctx)
	n, err := dst.Import(ctx, exportDir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, c := range []string{"Post", "Comment"} {
		want, err := src.Find(ctx, c, nil)
		require.NoError(t, err)
		got, err := dst.Find(ctx, c, nil)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s mismatch after import (-want +got):\n%s", c, diff)
		}
	}
}

func TestImportReplacesExisting(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, t.TempDir())
	defer s.Close(ctx)
	require.NoError(t, s.Insert(ctx, "Post", "p1", types.Fields{"title": "old"}))

	dir := t.TempDir()
	content := "{\"id\":\"p1\",\"title\":\"new\"}\n{\"title\":\"no id\"}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Post.jsonl"), []byte(content), 0o644))

	n, err := s.Import(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Get(ctx, "Post", "p1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.String("title"))
}

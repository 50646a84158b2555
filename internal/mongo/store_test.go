package mongo

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mesh-intelligence/contextref/internal/storetest"
	"github.com/mesh-intelligence/contextref/pkg/types"
)

const testURIEnv = "CONTEXTREF_TEST_MONGO_URI"

// droppingStore removes its scratch database on Close.
type droppingStore struct {
	*Store
}

func (d droppingStore) Close(ctx context.Context) error {
	_ = d.db.Drop(ctx)
	return d.Store.Close(ctx)
}

func TestStoreConformance(t *testing.T) {
	uri := os.Getenv(testURIEnv)
	if uri == "" {
		t.Skipf("%s not set", testURIEnv)
	}
	storetest.Run(t, func(t *testing.T) types.Store {
		s, err := Open(context.Background(), uri, "contextref_test_"+uuid.NewString()[:8])
		require.NoError(t, err)
		return droppingStore{s}
	})
}

func TestOpenRequiresURI(t *testing.T) {
	_, err := Open(context.Background(), "", "db")
	assert.ErrorIs(t, err, types.ErrMongoURIEmpty)
}

func TestUpdateDoc(t *testing.T) {
	tests := []struct {
		name  string
		set   types.Fields
		unset []string
		want  bson.M
	}{
		{name: "nothing", want: bson.M{}},
		{
			name: "set only",
			set:  types.Fields{"body": "hi"},
			want: bson.M{"$set": bson.M{"body": "hi"}},
		},
		{
			name:  "set and unset",
			set:   types.Fields{"body": "hi"},
			unset: []string{"context_type", "context_id"},
			want: bson.M{
				"$set":   bson.M{"body": "hi"},
				"$unset": bson.M{"context_type": "", "context_id": ""},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, updateDoc(tt.set, tt.unset))
		})
	}
}

func TestPatchDoc(t *testing.T) {
	push, err := patchDoc(types.Push("comments", "c1"))
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$addToSet": bson.M{"comments": "c1"}}, push)

	pull, err := patchDoc(types.Pull("comments", "c1"))
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$pull": bson.M{"comments": "c1"}}, pull)

	_, err = patchDoc(types.Patch{Op: 99, Field: "comments"})
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestToFields(t *testing.T) {
	got := toFields(bson.M{
		"_id":      "p1",
		"title":    "hello",
		"comments": bson.A{"c1", "c2"},
		"meta":     bson.D{{Key: "tags", Value: bson.A{"x"}}},
	})
	assert.Equal(t, types.Fields{
		"title":    "hello",
		"comments": []any{"c1", "c2"},
		"meta":     map[string]any{"tags": []any{"x"}},
	}, got)
	assert.Equal(t, []string{"c1", "c2"}, got.Strings("comments"))
}

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/contextref/internal/memory"
	"github.com/mesh-intelligence/contextref/internal/sqlite"
	"github.com/mesh-intelligence/contextref/pkg/types"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, err := Open(ctx, types.Config{Backend: types.BackendMemory}, nil)
		require.NoError(t, err)
		defer s.Close(ctx)
		assert.IsType(t, &memory.Store{}, s)
		_, ok := s.(Exporter)
		assert.False(t, ok)
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := Open(ctx, types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}, nil)
		require.NoError(t, err)
		defer s.Close(ctx)
		assert.IsType(t, &sqlite.Store{}, s)
		_, ok := s.(Exporter)
		assert.True(t, ok)
		_, ok = s.(Importer)
		assert.True(t, ok)
	})
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.Config
		want error
	}{
		{name: "empty backend", cfg: types.Config{}, want: types.ErrBackendEmpty},
		{name: "unknown backend", cfg: types.Config{Backend: "redis"}, want: types.ErrBackendUnknown},
		{name: "mongo without uri", cfg: types.Config{Backend: types.BackendMongo}, want: types.ErrMongoURIEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.cfg, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

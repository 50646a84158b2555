package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewSchema("Post")))
	require.NoError(t, r.Register(NewSchema("Article")))

	assert.ErrorIs(t, r.Register(NewSchema("Post")), types.ErrModelExists)
	assert.ErrorIs(t, r.Register(NewSchema("")), types.ErrInvalidData)
	assert.Equal(t, []string{"Post", "Article"}, r.Names())

	s, err := r.Schema("Article")
	require.NoError(t, err)
	assert.Equal(t, "Article", s.Name())

	_, err = r.Schema("Video")
	assert.ErrorIs(t, err, types.ErrModelNotFound)
}

func TestRegistrySeal(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewSchema("Post")))
	assert.False(t, r.Sealed())

	r.Seal()
	assert.True(t, r.Sealed())
	assert.ErrorIs(t, r.Register(NewSchema("Article")), types.ErrRegistrySealed)
}

func TestRegistryNamesIsLiveAndCopied(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewSchema("Post")))

	names := r.Names()
	names[0] = "Mutated"
	assert.Equal(t, []string{"Post"}, r.Names())

	require.NoError(t, r.Register(NewSchema("Video")))
	assert.Equal(t, []string{"Post", "Video"}, r.Names())
}

func TestRegistryConcurrentLookups(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewSchema("Post")))
	r.Seal()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Schema("Post")
			assert.NoError(t, err)
			assert.Len(t, r.Names(), 1)
		}()
	}
	wg.Wait()
}

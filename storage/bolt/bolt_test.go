package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Comcast/matchbox/storage"
	"github.com/Comcast/matchbox/storage/storagetest"

	"github.com/stretchr/testify/require"
)

func TestImpl(t *testing.T) {
	// Just confirm that this code compiles.
	var _ storage.Storage = &Storage{}
}

func TestBasics(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "storage.db")

	s, err := NewStorage(filename)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err = s.ListSpecs(ctx)
	require.Equal(t, NotOpen, err)

	require.NoError(t, s.Open(ctx))
	storagetest.Exercise(t, s)
	require.NoError(t, s.Close(ctx))

	// Reopen to see what persisted.
	require.NoError(t, s.Open(ctx))
	defer func() {
		require.NoError(t, s.Close(ctx))
	}()

	names, err := s.ListSpecs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, names)

	src, err := s.GetSpec(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, "name: b\nversion: 2", string(src))
}

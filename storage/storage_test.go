package storage_test

import (
	"context"
	"testing"

	"github.com/Comcast/matchbox/storage"
	"github.com/Comcast/matchbox/storage/storagetest"

	"github.com/stretchr/testify/require"
)

func TestMemStorage(t *testing.T) {
	s := storage.NewMemStorage()
	require.NoError(t, s.Open(context.Background()))
	storagetest.Exercise(t, s)
	require.NoError(t, s.Close(context.Background()))
}

func TestMemStorageCopies(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemStorage()
	src := []byte("name: x")
	require.NoError(t, s.PutSpec(ctx, "x", src))
	src[0] = 'N'
	got, err := s.GetSpec(ctx, "x")
	require.NoError(t, err)
	require.Equal(t, "name: x", string(got))
}

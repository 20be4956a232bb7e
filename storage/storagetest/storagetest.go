// Package storagetest checks Storage implementations.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/Comcast/matchbox/storage"

	"github.com/stretchr/testify/require"
)

// Exercise runs a Storage through its paces.  The Storage should be
// open and empty.
func Exercise(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	names, err := s.ListSpecs(ctx)
	require.NoError(t, err)
	require.Empty(t, names)

	_, err = s.GetSpec(ctx, "nope")
	var nf *storage.NotFound
	require.True(t, errors.As(err, &nf), "wanted NotFound, got %v", err)
	require.Equal(t, "nope", nf.Name)

	require.NoError(t, s.PutSpec(ctx, "b", []byte("name: b")))
	require.NoError(t, s.PutSpec(ctx, "a", []byte(`{"name":"a"}`)))

	src, err := s.GetSpec(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, "name: b", string(src))

	require.NoError(t, s.PutSpec(ctx, "b", []byte("name: b\nversion: 2")))
	src, err = s.GetSpec(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, "name: b\nversion: 2", string(src))

	names, err = s.ListSpecs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, names)

	require.NoError(t, s.RemSpec(ctx, "a"))
	err = s.RemSpec(ctx, "a")
	require.True(t, errors.As(err, &nf), "wanted NotFound, got %v", err)

	names, err = s.ListSpecs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, names)
}

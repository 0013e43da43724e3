package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestGet_Absent(t *testing.T) {
	s, _ := openStore(t)

	v, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSet_Overwrites(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyCollection, "services"))
	require.NoError(t, s.Set(ctx, KeyCollection, "projects"))

	v, err := s.Get(ctx, KeyCollection)
	require.NoError(t, err)
	assert.Equal(t, "projects", v)
}

func TestLogin_SurvivesReopen(t *testing.T) {
	s, path := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveLogin(ctx, "ann", "tok"))
	require.NoError(t, s.Set(ctx, KeyCollection, "services"))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	tok, err := reopened.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	require.NoError(t, reopened.ClearLogin(ctx))
	tok, err = reopened.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Empty(t, tok)

	col, err := reopened.Get(ctx, KeyCollection)
	require.NoError(t, err)
	assert.Equal(t, "services", col, "collection is kept on logout")
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "state.db"))
	require.Error(t, err)
}

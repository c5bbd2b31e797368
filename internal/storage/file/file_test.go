package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/AndreyChufelin/kbpanel/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()
	return NewStorage(filepath.Join(t.TempDir(), "nested", "storage.json"))
}

func TestTokenAbsent(t *testing.T) {
	s := newStorage(t)

	_, err := s.Token(context.Background())
	assert.ErrorIs(t, err, storage.ErrNoToken)
}

func TestTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	require.NoError(t, s.SetToken(ctx, "abc.def"))

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	reopened := NewStorage(s.Path())
	token, err = reopened.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestClearTokenKeepsOtherKeys(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	require.NoError(t, s.Set("theme", "dark"))
	require.NoError(t, s.SetToken(ctx, "abc"))
	require.NoError(t, s.ClearToken(ctx))

	_, err := s.Token(ctx)
	assert.ErrorIs(t, err, storage.ErrNoToken)

	theme, err := s.Get("theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)

	assert.NoError(t, s.ClearToken(ctx))
}

func TestSetEmptyToken(t *testing.T) {
	s := newStorage(t)
	assert.ErrorIs(t, s.SetToken(context.Background(), ""), storage.ErrEmptyToken)
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewStorage(path).Token(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNoToken)
	assert.Contains(t, err.Error(), "failed to decode local storage")
}

func TestGetMissingKey(t *testing.T) {
	_, err := newStorage(t).Get("nothing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

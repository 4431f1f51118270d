package credstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pssteam/steamfetch/internal/common"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.Save([]byte("hunter2"), "alice", "s3cret"))

	user, pass, err := s.Load([]byte("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, "alice", user)
	assert.Equal(t, "s3cret", pass)
}

func TestLoad_WrongPassphrase(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Save([]byte("right"), "alice", "pw"))

	_, _, err := s.Load([]byte("wrong"))
	require.ErrorIs(t, err, common.ErrBadPassphrase)
}

func TestLoad_EmptyVault(t *testing.T) {
	s := openStore(t)

	_, _, err := s.Load([]byte("any"))
	require.ErrorIs(t, err, common.ErrNoCredentials)
}

func TestSave_ReplacesPrevious(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Save([]byte("pp"), "alice", "old"))
	require.NoError(t, s.Save([]byte("pp"), "bob", "new"))

	user, pass, err := s.Load([]byte("pp"))
	require.NoError(t, err)
	assert.Equal(t, "bob", user)
	assert.Equal(t, "new", pass)
}

func TestDelete(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Save([]byte("pp"), "alice", "pw"))
	require.NoError(t, s.Delete())

	_, _, err := s.Load([]byte("pp"))
	require.ErrorIs(t, err, common.ErrNoCredentials)

	// Deleting an empty vault is fine.
	require.NoError(t, s.Delete())
}

package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyStore(t *testing.T) {
	s := NewStore()

	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SetToken("tok-123"))
	require.NoError(t, s.SetUser(User{ID: "u1", Name: "Asha", Email: "asha@example.com"}))

	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", reloaded.Token())
	require.NotNil(t, reloaded.User())
	assert.Equal(t, "Asha", reloaded.User().Name)
}

func TestFileStoreMissingFileIsEmptySession(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "nope", "session.json"))
	require.NoError(t, err)
	assert.Empty(t, s.Token())
}

func TestClearDropsTokenAndUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SetToken("tok"))
	require.NoError(t, s.SetUser(User{Name: "Asha"}))
	require.NoError(t, s.Clear())

	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Token())
	assert.Nil(t, reloaded.User())
}

func TestUserReturnsCopy(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.SetUser(User{Name: "Asha"}))

	u := s.User()
	u.Name = "changed"
	assert.Equal(t, "Asha", s.User().Name)
}

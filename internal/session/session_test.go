package session

import (
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	s := NewStore(t.TempDir())
	_, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Save(Session{
		Token:           "tok",
		Username:        "alice",
		Email:           "alice@example.com",
		UserID:          "u1",
		ActiveProjectID: "p1",
		ActiveProject:   "Storefront",
	}))

	sess, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, "alice", sess.User().Username)
	assert.Equal(t, "p1", sess.ActiveProjectID)
}

func TestSessionFileIsPrivate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are unix-only")
	}
	s := NewStore(t.TempDir())
	require.NoError(t, s.Save(Session{Token: "tok"}))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestClear(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Save(Session{Token: "tok"}))
	require.NoError(t, s.Clear())

	_, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	// Clearing again is fine.
	require.NoError(t, s.Clear())
}

func TestEmptyTokenMeansLoggedOut(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Save(Session{Username: "ghost"}))

	_, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

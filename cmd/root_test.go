package cmd

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorales/huq/internal/backend"
	"github.com/dmorales/huq/internal/session"
)

func TestFriendly_UnauthorizedClearsSession(t *testing.T) {
	testEnv(t)
	require.NoError(t, sessionStore().Save(session.Session{Token: "stale", Username: "dmorales"}))

	err := friendly(backend.ErrUnauthorized)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")
	assert.Contains(t, err.Error(), "huq login")

	// The stale token file is gone, so the next command starts logged out.
	_, statErr := os.Stat(sessionStore().Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestFriendly_WrappedUnauthorizedClearsSession(t *testing.T) {
	testEnv(t)
	require.NoError(t, sessionStore().Save(session.Session{Token: "stale", Username: "dmorales"}))

	err := friendly(fmt.Errorf("refresh HU-12: %w", backend.ErrUnauthorized))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")

	_, statErr := os.Stat(sessionStore().Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestFriendly_OtherErrorsKeepSession(t *testing.T) {
	testEnv(t)
	require.NoError(t, sessionStore().Save(session.Session{Token: "tok", Username: "dmorales"}))

	err := friendly(errors.New("boom"))
	require.EqualError(t, err, "boom")

	_, ok, loadErr := sessionStore().Load()
	require.NoError(t, loadErr)
	assert.True(t, ok, "non-auth errors must leave the session alone")
}

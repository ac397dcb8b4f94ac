package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionValid(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.Valid())
	assert.False(t, (&Session{}).Valid())
	assert.True(t, validSession().Valid())

	expired := &Session{AccessToken: "tok", Expires: time.Now().Add(-time.Second)}
	assert.True(t, expired.Expired())
	assert.False(t, expired.Valid())

	later := &Session{AccessToken: "tok", Expires: time.Now().Add(time.Hour)}
	assert.False(t, later.Expired())
	assert.True(t, later.Valid())
	assert.False(t, nilSession.Expired())
}

func TestSessionHolderNotifiesOnReferenceChange(t *testing.T) {
	s := validSession()
	h := NewSessionHolder(s)

	changes, stop := h.Subscribe()
	defer stop()

	require.NoError(t, h.Set(s))
	assert.Empty(t, changes, "même référence : pas de notification")

	other := validSession()
	require.NoError(t, h.Set(other))
	assert.Len(t, changes, 1)
	assert.Same(t, other, h.Current())

	// deux changements sans lecture : une seule notification en attente
	require.NoError(t, h.Set(nil))
	assert.Len(t, changes, 1)
	<-changes

	stop()
	require.NoError(t, h.Set(s))
	assert.Empty(t, changes)
}

func TestFileSessionHolderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront", "session.json")

	h, err := LoadFileSession(path)
	require.NoError(t, err)
	assert.Nil(t, h.Current())

	s := &Session{
		User:        User{ID: "u1", Email: "marie@exemple.fr", Role: "BUYER"},
		AccessToken: "tok",
		Expires:     time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
	}
	require.NoError(t, h.Set(s))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reloaded, err := LoadFileSession(path)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Current())
	assert.Equal(t, s.User, reloaded.Current().User)
	assert.Equal(t, "tok", reloaded.Current().AccessToken)
	assert.True(t, s.Expires.Equal(reloaded.Current().Expires))

	require.NoError(t, reloaded.Set(nil))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Nil(t, reloaded.Current())
}

func TestLoadFileSessionRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("pas du json"), 0o600))

	_, err := LoadFileSession(path)
	assert.ErrorContains(t, err, "session illisible")
}

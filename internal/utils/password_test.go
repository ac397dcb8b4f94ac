package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("motdepasse123")
	require.NoError(t, err)
	assert.True(t, IsArgon2Hash(hash))

	ok, err := VerifyPassword("motdepasse123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("mauvais", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := HashPassword("motdepasse123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestVerifyPasswordBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("ancien"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := VerifyPassword("ancien", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("autre", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordInvalidHash(t *testing.T) {
	for _, hash := range []string{"", "plain", "$argon2id$v=19$m=1$x$y", "$argon2id$v=19$m=a,t=1,p=1$c2FsdA$aGFzaA"} {
		_, err := VerifyPassword("x", hash)
		assert.ErrorIs(t, err, ErrInvalidHash, hash)
	}
}

package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heatloop/go-authstate"
	"github.com/heatloop/go-authstate/identity"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := identity.HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.NoError(t, identity.ComparePasswordAndHash("password123", hash))

	err = identity.ComparePasswordAndHash("wrong-password", hash)
	assert.ErrorIs(t, err, authstate.ErrCredentialsRejected)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := identity.HashPassword("")
	require.Error(t, err)
}

func TestRandomPasswordHashIsUsable(t *testing.T) {
	hash := identity.RandomPasswordHash()
	require.NotEmpty(t, hash)

	// Nobody knows the cleartext, so nothing should verify against it.
	err := identity.ComparePasswordAndHash("password123", hash)
	assert.Error(t, err)
}

package kennel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kennelhq/kennel"
)

func TestHashPassword(t *testing.T) {
	t.Run("hash verifies against original", func(t *testing.T) {
		hash, err := kennel.HashPassword("hunter2!")
		require.NoError(t, err)
		assert.NotEqual(t, "hunter2!", hash)

		assert.NoError(t, kennel.CheckPassword(hash, "hunter2!"))
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		// bcrypt salts per call.
		h1, err := kennel.HashPassword("hunter2!")
		require.NoError(t, err)
		h2, err := kennel.HashPassword("hunter2!")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
	})
}

func TestCheckPassword(t *testing.T) {
	hash, err := kennel.HashPassword("correct-horse")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		err := kennel.CheckPassword(hash, "battery-staple")
		assert.ErrorIs(t, err, kennel.ErrInvalidCredentials)
	})

	t.Run("empty password", func(t *testing.T) {
		err := kennel.CheckPassword(hash, "")
		assert.ErrorIs(t, err, kennel.ErrInvalidCredentials)
	})

	t.Run("malformed hash", func(t *testing.T) {
		err := kennel.CheckPassword("not-a-bcrypt-hash", "correct-horse")
		assert.ErrorIs(t, err, kennel.ErrInvalidCredentials)
	})
}

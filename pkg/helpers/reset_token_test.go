package helpers

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenResetToken(t *testing.T) {
	plain, hash, err := GenResetToken()
	require.NoError(t, err)

	// 32 random bytes, hex encoded
	assert.Len(t, plain, 64)
	_, err = hex.DecodeString(plain)
	assert.NoError(t, err)

	assert.Equal(t, HashResetToken(plain), hash)
	assert.NotEqual(t, plain, hash)
}

func TestGenResetTokenUnique(t *testing.T) {
	a, _, err := GenResetToken()
	require.NoError(t, err)
	b, _, err := GenResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashResetTokenDeterministic(t *testing.T) {
	assert.Equal(t, HashResetToken("abc"), HashResetToken("abc"))
	assert.NotEqual(t, HashResetToken("abc"), HashResetToken("abd"))
}

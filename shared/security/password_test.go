package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("longpass1")
	require.NoError(t, err)
	assert.NotContains(t, hash, "longpass1")

	ok, err := VerifyPassword("longpass1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrongpass", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := HashPassword("longpass1")
	require.NoError(t, err)

	second, err := HashPassword("longpass1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := BcryptHasher{}
	hash, err := h.Hash("s3cret-password")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEqual(t, "s3cret-password", hash)

	require.True(t, h.Verify("s3cret-password", hash))
	require.False(t, h.Verify("wrong-password", hash))
}

func TestBcryptHasherSaltsPerCall(t *testing.T) {
	h := BcryptHasher{}
	first, err := h.Hash("same-input")
	require.NoError(t, err)
	second, err := h.Hash("same-input")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	require.True(t, h.Verify("same-input", first))
	require.True(t, h.Verify("same-input", second))
}

func TestVerifyGarbageHash(t *testing.T) {
	h := BcryptHasher{}
	require.False(t, h.Verify("anything", "not-a-bcrypt-hash"))
}

package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	seen := make(map[string]bool, 100)
	for range 100 {
		token, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		require.Len(t, token, 43)
		require.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestFingerprintToken(t *testing.T) {
	a := FingerprintToken("test-token-1")
	require.Equal(t, a, FingerprintToken("test-token-1"))
	require.NotEqual(t, a, FingerprintToken("test-token-2"))
	require.Len(t, a, 43)
}

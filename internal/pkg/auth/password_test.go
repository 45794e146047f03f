package auth

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNumericCode(t *testing.T) {
	digits := regexp.MustCompile(`^[0-9]{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateNumericCode(6)
		require.NoError(t, err)
		assert.Regexp(t, digits, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestSecretMatches(t *testing.T) {
	stored := HashSecret("123456")
	assert.Len(t, stored, 64)
	assert.True(t, SecretMatches(stored, "123456"))
	assert.False(t, SecretMatches(stored, "123457"))
	assert.False(t, SecretMatches(stored, ""))
}

func TestGenerateURLToken(t *testing.T) {
	a, err := GenerateURLToken()
	require.NoError(t, err)
	b, err := GenerateURLToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

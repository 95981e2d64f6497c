package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secret#123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	ok, err := CheckPassword("Secret#123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordUniqueSalt(t *testing.T) {
	h1, err := HashPassword("Secret#123")
	require.NoError(t, err)
	h2, err := HashPassword("Secret#123")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestCheckPasswordBcryptLegacy(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("Secret#123"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := CheckPassword("Secret#123", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword("wrong", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckPasswordMalformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$garbage",
		"$argon2id$v=19$m=65536,t=2,p=1$!!!$!!!",
	} {
		ok, err := CheckPassword("anything", encoded)
		assert.Error(t, err, "encoded=%q", encoded)
		assert.False(t, ok)
	}
}

func TestNeedsRehash(t *testing.T) {
	current, err := HashPassword("Secret#123")
	require.NoError(t, err)
	assert.False(t, NeedsRehash(current))

	legacy, err := bcrypt.GenerateFromPassword([]byte("Secret#123"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, NeedsRehash(string(legacy)))

	// 参数过期的 argon2id
	assert.True(t, NeedsRehash("$argon2id$v=19$m=4096,t=1,p=1$c2FsdA$aGFzaA"))
	assert.True(t, NeedsRehash("garbage"))
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		wantErr  string
	}{
		{"Abc#1234", ""},
		{"Ab#1", "at least 8 characters"},
		{"abc#1234", "uppercase"},
		{"ABC#1234", "lowercase"},
		{"Abcd#efg", "digit"},
		{"Abcd1234", "special"},
	}
	for _, tt := range tests {
		err := ValidatePasswordStrength(tt.password)
		if tt.wantErr == "" {
			assert.NoError(t, err, "password=%q", tt.password)
		} else {
			require.Error(t, err, "password=%q", tt.password)
			assert.Contains(t, err.Error(), tt.wantErr)
		}
	}
}

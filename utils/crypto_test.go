package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestFieldCipher(t *testing.T) {
	c, err := NewFieldCipher(testKey)
	require.NoError(t, err)

	sealed, err := c.Seal("please add my partner")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, sealedPrefix))
	assert.NotContains(t, sealed, "partner")

	again, err := c.Seal("please add my partner")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ between calls")

	plain, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "please add my partner", plain)

	legacy, err := c.Open("stored before encryption")
	require.NoError(t, err)
	assert.Equal(t, "stored before encryption", legacy)

	unencrypted, err := c.Open(plainPrefix + "written without a key")
	require.NoError(t, err)
	assert.Equal(t, "written without a key", unencrypted)
}

func TestFieldCipher_Disabled(t *testing.T) {
	c, err := NewFieldCipher("")
	require.NoError(t, err)
	assert.Nil(t, c)

	sealed, err := c.Seal("hello")
	require.NoError(t, err)
	plain, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hello", plain)

	// Guest text that looks like ciphertext stays plain text
	sealed, err = c.Seal(sealedPrefix + "please add my cousin")
	require.NoError(t, err)
	plain, err = c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, sealedPrefix+"please add my cousin", plain)

	enabled, err := NewFieldCipher(testKey)
	require.NoError(t, err)
	encrypted, err := enabled.Seal("hello")
	require.NoError(t, err)

	_, err = c.Open(encrypted)
	assert.Error(t, err)
}

func TestFieldCipher_RejectsBadKey(t *testing.T) {
	_, err := NewFieldCipher("short")
	assert.Error(t, err)
}

func TestFieldCipher_WrongKey(t *testing.T) {
	a, err := NewFieldCipher(testKey)
	require.NoError(t, err)
	b, err := NewFieldCipher(strings.Repeat("k", 32))
	require.NoError(t, err)

	sealed, err := a.Seal("secret")
	require.NoError(t, err)
	_, err = b.Open(sealed)
	assert.Error(t, err)
}

func TestAccessToken(t *testing.T) {
	token, err := GenerateAccessToken("secret", "admin-1", "admin@example.com", "ADMIN", time.Hour)
	require.NoError(t, err)

	claims, err := ParseAccessToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)

	_, err = ParseAccessToken("other", token)
	assert.Error(t, err)

	expired, err := GenerateAccessToken("secret", "admin-1", "admin@example.com", "ADMIN", -time.Minute)
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", expired)
	assert.Error(t, err)

	_, err = GenerateAccessToken("", "admin-1", "admin@example.com", "ADMIN", time.Hour)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword("correct horse", hash))
	assert.False(t, CheckPassword("battery staple", hash))
}

func TestMasking(t *testing.T) {
	assert.Equal(t, "/public/rsvp/household?t=***", MaskString("/public/rsvp/household?t=abcdef"))
	assert.Equal(t, "/x?a=1&t=***&b=2", MaskString("/x?a=1&t=secret&b=2"))
	assert.Equal(t, "/admin/ws?access_token=***", MaskString("/admin/ws?access_token=eyJhbGciOiJIUzI1NiJ9.PAYLOAD.SIG"))
	assert.Equal(t, "/admin/ws?x=1&access_token=***", MaskString("/admin/ws?x=1&access_token=eyJ.a.b"))

	prev := IsProduction
	IsProduction = true
	t.Cleanup(func() { IsProduction = prev })

	assert.Equal(t, "***@***.***", MaskEmail("alice@example.com"))
	assert.Equal(t, "6f1c2d4e...", MaskID("6f1c2d4e-8a9b-4c3d-9e8f-0a1b2c3d4e5f"))
	assert.Equal(t, "***", MaskID("short"))
}

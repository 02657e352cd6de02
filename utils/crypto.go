package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

// Values written by Seal always carry one of these prefixes. Values with
// neither are legacy plaintext and are returned as is.
const (
	sealedPrefix = "enc:v1:"
	plainPrefix  = "plain:v1:"
)

// FieldCipher encrypts free-text columns at rest with AES-GCM.
// A nil *FieldCipher stores values in clear behind plainPrefix.
type FieldCipher struct {
	gcm cipher.AEAD
}

// NewFieldCipher returns nil when key is empty (encryption disabled)
func NewFieldCipher(key string) (*FieldCipher, error) {
	if key == "" {
		return nil, nil
	}
	if len(key) != 32 {
		return nil, errors.New("DATA_ENCRYPTION_KEY must be exactly 32 characters")
	}

	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &FieldCipher{gcm: gcm}, nil
}

// Seal encrypts plaintext and returns a prefixed base64 ciphertext
func (c *FieldCipher) Seal(plaintext string) (string, error) {
	if c == nil {
		return plainPrefix + plaintext, nil
	}

	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open reverses Seal
func (c *FieldCipher) Open(value string) (string, error) {
	if plain, ok := strings.CutPrefix(value, plainPrefix); ok {
		return plain, nil
	}
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}
	if c == nil {
		return "", errors.New("encrypted value found but DATA_ENCRYPTION_KEY is not set")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", err
	}

	nonceSize := c.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// RSVPTokenLength is the length of a hex-encoded RSVP token (32 random bytes).
const RSVPTokenLength = 64

// GenerateRSVPToken returns a fresh bearer token and the digest stored in
// place of it. The token itself must never be persisted or logged.
func GenerateRSVPToken() (token string, hash string, err error) {
	buf := make([]byte, RSVPTokenLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	token = hex.EncodeToString(buf)
	return token, HashRSVPToken(token), nil
}

// HashRSVPToken returns the hex SHA-256 digest used to look up a household.
func HashRSVPToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// IsWellFormedRSVPToken reports whether token has the shape of a generated
// token. Callers still treat a malformed token exactly like an unknown one.
func IsWellFormedRSVPToken(token string) bool {
	if len(token) != RSVPTokenLength {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}

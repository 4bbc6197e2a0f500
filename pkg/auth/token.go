package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	// TokenBytes is the number of random bytes in a token (256 bits)
	TokenBytes = 32
	// TokenLength is the length of the hex-encoded token
	TokenLength = TokenBytes * 2
)

// TokenGenerator generates session tokens
type TokenGenerator struct{}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{}
}

// GenerateToken returns a new random token as 64 hex characters
func (tg *TokenGenerator) GenerateToken() (string, error) {
	randomBytes := make([]byte, TokenBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(randomBytes), nil
}

// ValidFormat reports whether token looks like a generated token. It is
// used to skip storage lookups for obviously malformed values.
func (tg *TokenGenerator) ValidFormat(token string) bool {
	if len(token) != TokenLength {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}

// AngelaMos | 2026
// token.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	refreshTokenBytes = 32
	linkTokenBytes    = 24
)

// SecretToken is a bearer secret handed to the client once. Only Hash is
// stored.
type SecretToken struct {
	Value string
	Hash  string
}

func newSecretToken(n int) (SecretToken, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return SecretToken{}, fmt.Errorf("generate token: %w", err)
	}
	value := base64.RawURLEncoding.EncodeToString(buf)
	return SecretToken{Value: value, Hash: HashToken(value)}, nil
}

// NewRefreshToken returns a refresh token for one rotation step.
func NewRefreshToken() (SecretToken, error) {
	return newSecretToken(refreshTokenBytes)
}

// NewLinkToken returns the token embedded in invitation and email
// verification links.
func NewLinkToken() (SecretToken, error) {
	return newSecretToken(linkTokenBytes)
}

// HashToken is the lookup key for a stored token. Tokens carry enough
// entropy that an unsalted digest is safe to index.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

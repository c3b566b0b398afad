package auth

import (
	"crypto/rand"
	"encoding/base64"
)

// tokenBytes gives 192 bits of entropy, 32 characters once encoded.
const tokenBytes = 24

// NewToken returns an unguessable, URL safe, opaque token.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

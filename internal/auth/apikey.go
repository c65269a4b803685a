package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateAPIKey returns a 32-character random ingestion key.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

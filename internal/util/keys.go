package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the first 16 hex chars of SHA-256(s). Used to fold logical
// keys that would push a physical key past a backend's length limit.
func Digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent returns the hex encoded sha256 digest of data.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

package pageid

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// SHA256 hashes content in-process and returns the lowercase hex digest.
// Its output matches `sha256sum -` for the same bytes.
type SHA256 struct{}

// Generate returns the hex-encoded SHA-256 digest of content.
func (SHA256) Generate(_ context.Context, content []byte) (ID, error) {
	sum := sha256.Sum256(content)
	return ID(hex.EncodeToString(sum[:])), nil
}

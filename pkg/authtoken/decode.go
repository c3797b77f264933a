package authtoken

import (
	"crypto/sha256"
	"encoding/hex"
)

func sha256Sum(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

// decodeSignature decodes the "sig" field, a hex-encoded signature over
// the token's canonical form.
func decodeSignature(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

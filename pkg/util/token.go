package util

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateToken returns n bytes from crypto/rand encoded as unpadded URL safe
// base64, so it fits in cookies, URLs and file names as is
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)

	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes, %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

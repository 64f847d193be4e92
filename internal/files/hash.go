package files

import (
	"crypto/sha256"
	"fmt"
)

// Checksum returns the hex encoded SHA256 of data.
func Checksum(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

package xlsx

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/zeebo/xxh3"
)

// Checksum computes the xxh3 (64-bit) hash of a written artifact,
// hex-encoded. Logged after each save for integrity auditing; fast
// enough to run on every artifact.
func Checksum(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("checksum %q: %w", path, err)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], xxh3.Hash(data))
	return hex.EncodeToString(buf[:]), nil
}

package session

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// checksum returns a hex-encoded blake2b-256 digest of data, used to
// detect a snapshot that was truncated or corrupted on disk before it's
// handed to Restore — replaying a half-written tree would otherwise fail
// deep inside Split with no indication the root cause was storage, not
// layout logic.
func checksum(data []byte) (string, error) {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func verifyChecksum(data []byte, want string) error {
	got, err := checksum(data)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("session: checksum mismatch (want %s, got %s)", want, got)
	}
	return nil
}

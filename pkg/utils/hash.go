package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// HashFiles computes a single sha256 over the content of all files in the
// given order. It is used to detect whether the race input changed.
func HashFiles(paths ...string) (string, error) {
	hasher := sha256.New()
	for _, p := range paths {
		if err := hashFile(hasher, p); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashContents is HashFiles for content that was already read.
// Both yield the same checksum for the same bytes.
func HashContents(contents ...[]byte) string {
	hasher := sha256.New()
	for _, c := range contents {
		hasher.Write(c)
		writeSeparator(hasher)
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

func hashFile(h hash.Hash, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	writeSeparator(h)
	return nil
}

// separator so that moving bytes between files changes the hash
func writeSeparator(h hash.Hash) {
	h.Write([]byte{0})
}

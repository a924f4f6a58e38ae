package image

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrChecksumMismatch is returned when a file does not match its expected digest.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ParseSHA256 accepts "sha256:<hex>" or bare hex and returns the lower-case digest.
func ParseSHA256(s string) (string, error) {
	digest := strings.ToLower(strings.TrimSpace(s))
	if algo, rest, ok := strings.Cut(digest, ":"); ok {
		if algo != "sha256" {
			return "", fmt.Errorf("unsupported checksum algorithm %q", algo)
		}
		digest = rest
	}
	if len(digest) != sha256.Size*2 {
		return "", fmt.Errorf("invalid sha256 digest length %d", len(digest))
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return "", fmt.Errorf("invalid sha256 digest: %w", err)
	}
	return digest, nil
}

// FileSHA256 returns the hex SHA-256 digest of the file at path.
func FileSHA256(path string) (string, error) {
	// #nosec G304 - path is the downloaded image
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifySHA256 compares the file at path against expected.
func VerifySHA256(path, expected string) error {
	want, err := ParseSHA256(expected)
	if err != nil {
		return err
	}
	got, err := FileSHA256(path)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w for %s: expected %s, got %s", ErrChecksumMismatch, path, want, got)
	}
	return nil
}

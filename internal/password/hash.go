package password

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// InputRunner runs a program with stdin attached.
type InputRunner interface {
	RunWithInput(ctx context.Context, input io.Reader, name string, args ...string) ([]byte, error)
}

// Hasher produces SHA-512 crypt hashes with openssl.
type Hasher struct {
	runner InputRunner
}

// NewHasher returns a Hasher that executes openssl through runner.
func NewHasher(runner InputRunner) *Hasher {
	return &Hasher{runner: runner}
}

// Hash returns the "$6$..." hash of password.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	// openssl -stdin hashes every input line separately.
	if err := validatePassword(password); err != nil {
		return "", err
	}

	out, err := h.runner.RunWithInput(ctx, strings.NewReader(password+"\n"), "openssl", "passwd", "-6", "-stdin")
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	hash := strings.TrimSpace(string(out))
	if !strings.HasPrefix(hash, "$6$") || strings.ContainsAny(hash, "\r\n") {
		return "", fmt.Errorf("%w: %q", errUnexpectedHash, hash)
	}
	return hash, nil
}

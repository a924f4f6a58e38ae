// Package sshkeys checks the public key files handed to `qm set --sshkeys`.
package sshkeys

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"
)

// ErrNoKeys is returned for a file without any authorized_keys entry.
var ErrNoKeys = errors.New("no public keys found")

// Key is one parsed authorized_keys entry.
type Key struct {
	Path        string
	Type        string
	Fingerprint string
	Comment     string
}

// SplitPaths flattens flag values, accepting both repeated flags and
// space-separated lists in a single value.
func SplitPaths(values []string) []string {
	var paths []string
	for _, v := range values {
		paths = append(paths, strings.Fields(v)...)
	}
	return paths
}

// Inspect parses every key in each file. All paths must exist locally.
func Inspect(paths []string) ([]Key, error) {
	var keys []Key
	for _, p := range paths {
		k, err := inspectFile(p)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k...)
	}
	return keys, nil
}

// InspectPresent is Inspect for files that live on another host: paths
// missing locally are skipped instead of failing.
func InspectPresent(paths []string) ([]Key, error) {
	var present []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			present = append(present, p)
		}
	}
	return Inspect(present)
}

func inspectFile(path string) ([]Key, error) {
	// #nosec G304 - user-supplied key path
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key %s: %w", path, err)
	}

	var keys []Key
	rest := data
	for len(bytes.TrimSpace(rest)) > 0 {
		pub, comment, _, next, err := ssh.ParseAuthorizedKey(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid public key in %s: %w", path, err)
		}
		keys = append(keys, Key{
			Path:        path,
			Type:        pub.Type(),
			Fingerprint: ssh.FingerprintSHA256(pub),
			Comment:     comment,
		})
		rest = next
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoKeys, path)
	}
	return keys, nil
}

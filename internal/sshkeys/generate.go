package sshkeys

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/imamik/pvetemplate/internal/util/keygen"
)

// Key algorithms accepted by Generate.
const (
	AlgorithmEd25519 = "ed25519"
	AlgorithmRSA     = "rsa"
)

const rsaBits = 4096

// ErrKeyExists is returned when Generate would overwrite a key file.
var ErrKeyExists = errors.New("key file already exists")

// Generated describes a key pair written by Generate.
type Generated struct {
	PrivatePath string
	PublicPath  string
	Key         Key
}

// Generate creates a key pair for the template user and writes it to path
// (0600) and path.pub (0644). Existing files are only replaced with force.
func Generate(path, algorithm, comment string, force bool) (*Generated, error) {
	publicPath := path + ".pub"
	if !force {
		for _, p := range []string{path, publicPath} {
			if _, err := os.Stat(p); err == nil {
				return nil, fmt.Errorf("%w: %s", ErrKeyExists, p)
			}
		}
	}

	var (
		kp  *keygen.KeyPair
		err error
	)
	switch algorithm {
	case AlgorithmEd25519, "":
		kp, err = keygen.GenerateEd25519KeyPair(comment)
	case AlgorithmRSA:
		kp, err = keygen.GenerateRSAKeyPair(rsaBits, comment)
	default:
		return nil, fmt.Errorf("unsupported key algorithm %q (use %s or %s)", algorithm, AlgorithmEd25519, AlgorithmRSA)
	}
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, kp.PrivateKey, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write private key: %w", err)
	}
	// WriteFile keeps the mode of a file it replaces.
	if err := os.Chmod(path, 0o600); err != nil {
		return nil, fmt.Errorf("failed to restrict private key permissions: %w", err)
	}
	// #nosec G306 - public key
	if err := os.WriteFile(publicPath, kp.PublicKey, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write public key: %w", err)
	}

	keys, err := Inspect([]string{publicPath})
	if err != nil {
		return nil, err
	}
	return &Generated{PrivatePath: path, PublicPath: publicPath, Key: keys[0]}, nil
}

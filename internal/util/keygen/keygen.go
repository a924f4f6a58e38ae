package keygen

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"encoding/pem"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// KeyPair holds a key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the PEM-encoded private key.
	PrivateKey []byte
	// PublicKey is the public key as one authorized_keys line.
	PublicKey []byte
}

// GenerateEd25519KeyPair generates an Ed25519 key pair. The private key is
// encoded in the OpenSSH format and comment is appended to the public key.
func GenerateEd25519KeyPair(comment string) (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ed25519 private key: %w", err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	return &KeyPair{
		PrivateKey: pem.EncodeToMemory(block),
		PublicKey:  authorizedKey(sshPub, comment),
	}, nil
}

// GenerateRSAKeyPair generates an RSA key pair with the given bit size.
// comment is appended to the public key when not empty.
func GenerateRSAKeyPair(bits int, comment string) (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(privateKey, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal RSA private key: %w", err)
	}

	sshPub, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	return &KeyPair{
		PrivateKey: pem.EncodeToMemory(block),
		PublicKey:  authorizedKey(sshPub, comment),
	}, nil
}

// authorizedKey formats key as "<type> <base64> [comment]\n".
func authorizedKey(key ssh.PublicKey, comment string) []byte {
	line := ssh.MarshalAuthorizedKey(key)
	if comment == "" {
		return line
	}
	return []byte(strings.TrimSuffix(string(line), "\n") + " " + comment + "\n")
}

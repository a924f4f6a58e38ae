package handlers

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-logr/logr"

	"github.com/imamik/pvetemplate/internal/config"
	"github.com/imamik/pvetemplate/internal/platform/ssh"
)

// defaultKeyFiles are tried in order when no remote key is configured.
var defaultKeyFiles = []string{"id_ed25519", "id_ecdsa", "id_rsa"}

// RemoteOptions holds the flags that select a remote Proxmox node.
type RemoteOptions struct {
	// Host is "host" or "host:port".
	Host    string
	User    string
	KeyPath string
}

// applyRemoteOptions overrides the config's remote section with flag values.
func applyRemoteOptions(cfg *config.Config, opts RemoteOptions) error {
	if opts.Host != "" {
		host, port, err := splitHostPort(opts.Host)
		if err != nil {
			return err
		}
		cfg.Remote.Host = host
		if port != 0 {
			cfg.Remote.Port = port
		}
	}
	if opts.User != "" {
		cfg.Remote.User = opts.User
	}
	if opts.KeyPath != "" {
		cfg.Remote.KeyPath = opts.KeyPath
	}
	return nil
}

func splitHostPort(hostport string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		var addrErr *net.AddrError
		if errors.As(err, &addrErr) && addrErr.Err == "missing port in address" {
			return hostport, 0, nil
		}
		return "", 0, fmt.Errorf("invalid remote address %q: %w", hostport, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid remote port %q: %w", portStr, err)
	}
	return host, port, nil
}

// connectRemote creates an SSH client for the configured node. The
// connection itself is opened per command.
func connectRemote(cfg config.RemoteConfig, logger logr.Logger) (remoteNode, error) {
	keyPath, err := resolveKeyPath(cfg.KeyPath)
	if err != nil {
		return nil, err
	}
	key, err := ssh.LoadPrivateKey(keyPath)
	if err != nil {
		return nil, err
	}

	client, err := ssh.NewClient(&ssh.Config{
		Host:       cfg.Host,
		Port:       cfg.Port,
		User:       cfg.User,
		PrivateKey: key,
		Logger:     logger.WithName("ssh"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH client for %s: %w", cfg.Host, err)
	}
	return client, nil
}

func resolveKeyPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	for _, name := range defaultKeyFiles {
		p := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no SSH private key found in %s, set --remote-key", filepath.Join(home, ".ssh"))
}

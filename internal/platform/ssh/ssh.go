package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/go-logr/logr"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/imamik/pvetemplate/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 3
	defaultRetryDelay  = 2 * time.Second
	defaultMaxDelay    = 10 * time.Second
)

// Config holds SSH client configuration.
type Config struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxRetries is the maximum number of connection retry attempts.
	// If zero, defaultMaxRetries is used.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// HostKeyCallback overrides host key verification.
	// If nil, KnownHostsPath is consulted.
	HostKeyCallback ssh.HostKeyCallback

	// KnownHostsPath defaults to ~/.ssh/known_hosts.
	KnownHostsPath string

	// InsecureIgnoreHostKey disables host key verification.
	InsecureIgnoreHostKey bool

	// Logger receives dial retries at V(1). The zero value discards.
	Logger logr.Logger
}

// Client executes commands on a remote host.
type Client struct {
	config *Config
	signer ssh.Signer
}

// NewClient validates cfg, parses the private key and resolves host key
// verification.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Host == "" {
		return nil, errors.New("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, errors.New("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, errors.New("config private key cannot be empty")
	}

	// Copy config to avoid mutating caller's struct
	configCopy := *cfg

	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultMaxRetries
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}

	if configCopy.HostKeyCallback == nil {
		cb, err := hostKeyCallback(&configCopy)
		if err != nil {
			return nil, err
		}
		configCopy.HostKeyCallback = cb
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Client{
		config: &configCopy,
		signer: signer,
	}, nil
}

// LoadPrivateKey reads a private key file, expanding a leading "~/".
func LoadPrivateKey(path string) ([]byte, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - user-supplied key path
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key %s: %w", path, err)
	}
	return data, nil
}

// Address returns host:port of the remote node.
func (c *Client) Address() string {
	return net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
}

// Run executes name with args on the remote host and returns combined
// stdout and stderr. Arguments are shell-quoted for the remote shell.
func (c *Client) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return c.RunWithInput(ctx, nil, name, args...)
}

// RunWithInput is Run with the session's stdin connected to input.
func (c *Client) RunWithInput(ctx context.Context, input io.Reader, name string, args ...string) ([]byte, error) {
	command := shellescape.QuoteCommand(append([]string{name}, args...))

	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	return c.runCommand(ctx, client, input, command)
}

// uploadScript receives size bytes on stdin into a temporary file next to
// "$1" and moves it into place only when all of them arrived, so an
// interrupted transfer never leaves a partial file at the target path.
const uploadScript = `set -e
tmp="$1.part.$$"
trap 'rm -f "$tmp"' EXIT
mkdir -p "$(dirname "$1")"
cat > "$tmp"
size=$(wc -c < "$tmp")
if [ "$size" -ne "$2" ]; then
	echo "received $size of $2 bytes for $1" >&2
	exit 1
fi
chmod 0644 "$tmp"
mv -f "$tmp" "$1"`

// Upload streams size bytes from r to remotePath, replacing any existing
// file. The target is only written once the whole stream has arrived.
func (c *Client) Upload(ctx context.Context, r io.Reader, size int64, remotePath string) error {
	sizeArg := strconv.FormatInt(size, 10)
	out, err := c.RunWithInput(ctx, r, "sh", "-c", uploadScript, "sh", remotePath, sizeArg)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w: %s", remotePath, err, bytes.TrimSpace(out))
	}
	return nil
}

// UploadFile copies the local file at localPath to remotePath.
func (c *Client) UploadFile(ctx context.Context, localPath, remotePath string) error {
	// #nosec G304 - path of a file this tool downloaded
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", localPath, err)
	}
	return c.Upload(ctx, f, info.Size(), remotePath)
}

// Exists reports whether path exists on the remote host.
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	_, err := c.Run(ctx, "test", "-e", path)
	if err == nil {
		return true, nil
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitStatus() == 1 {
		return false, nil
	}
	return false, err
}

// connect establishes the SSH connection with retry logic.
func (c *Client) connect(ctx context.Context) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User: c.config.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(c.signer),
		},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}

	addr := c.Address()
	var client *ssh.Client

	err := retry.WithExponentialBackoff(ctx, func() error {
		var dialErr error
		client, dialErr = dial(ctx, addr, config)
		if isHandshakeRejection(dialErr) {
			return retry.Fatal(dialErr)
		}
		return dialErr
	},
		retry.WithMaxRetries(c.config.MaxRetries),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			c.config.Logger.V(1).Info("retrying SSH dial", "addr", addr, "attempt", attempt, "delay", delay, "error", err.Error())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}

	return client, nil
}

func dial(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	d := net.Dialer{Timeout: config.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return ssh.NewClient(sshConn, chans, reqs), nil
}

// runCommand executes command in a new session. Cancelling ctx kills the
// session and returns without output.
func (c *Client) runCommand(ctx context.Context, client *ssh.Client, input io.Reader, command string) ([]byte, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	var out bytes.Buffer
	session.Stdin = input
	session.Stdout = &out
	session.Stderr = &out

	done := make(chan error, 1)
	go func() { done <- session.Run(command) }()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = client.Close()
		<-done
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			return out.Bytes(), fmt.Errorf("command failed on %s: %w", c.config.Host, err)
		}
		return out.Bytes(), nil
	}
}

func hostKeyCallback(cfg *Config) (ssh.HostKeyCallback, error) {
	if cfg.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // explicit opt-out
	}

	path := cfg.KnownHostsPath
	if path == "" {
		path = "~/.ssh/known_hosts"
	}
	expanded, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	cb, err := knownhosts.New(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to load known hosts from %s: %w", expanded, err)
	}
	return cb, nil
}

// isHandshakeRejection reports errors that retrying cannot fix.
func isHandshakeRejection(err error) bool {
	if err == nil {
		return false
	}
	var keyErr *knownhosts.KeyError
	if errors.As(err, &keyErr) {
		return true
	}
	var revoked *knownhosts.RevokedError
	return errors.As(err, &revoked)
}

func expandHome(path string) (string, error) {
	if len(path) < 2 || path[:2] != "~/" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/imamik/pvetemplate/internal/config"
	"github.com/imamik/pvetemplate/internal/image"
	"github.com/imamik/pvetemplate/internal/ui"
	"github.com/imamik/pvetemplate/internal/util/keygen"
)

func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origResolveConfig := resolveConfig
	origSaveConfig := saveConfig
	origNewPrinter := newPrinter
	origNewLogger := newLogger
	origNewDownloader := newDownloader
	origNewLocalRunner := newLocalRunner
	origDryRunOutput := dryRunOutput
	origNewRemoteNode := newRemoteNode
	origPromptPassword := promptPassword
	origWriteSnippets := writeSnippets
	origGenerateKey := generateKey
	origCheckTools := checkTools
	origLookupEnv := lookupEnv

	t.Cleanup(func() {
		resolveConfig = origResolveConfig
		saveConfig = origSaveConfig
		newPrinter = origNewPrinter
		newLogger = origNewLogger
		newDownloader = origNewDownloader
		newLocalRunner = origNewLocalRunner
		dryRunOutput = origDryRunOutput
		newRemoteNode = origNewRemoteNode
		promptPassword = origPromptPassword
		writeSnippets = origWriteSnippets
		generateKey = origGenerateKey
		checkTools = origCheckTools
		lookupEnv = origLookupEnv
	})
}

// testEnv wires every factory to in-memory fakes.
type testEnv struct {
	cfg        *config.Config
	out        *bytes.Buffer
	dryRun     *bytes.Buffer
	downloader *fakeDownloader
	local      *fakeRunner
	node       *fakeNode
	keyPath    string
	prompted   int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	saveAndRestoreFactories(t)

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.SnippetsDir = filepath.Join(dir, "snippets")

	env := &testEnv{
		cfg:        cfg,
		out:        &bytes.Buffer{},
		dryRun:     &bytes.Buffer{},
		downloader: &fakeDownloader{},
		local:      &fakeRunner{hash: "$6$salt$hash\n"},
		node:       &fakeNode{fakeRunner: fakeRunner{}, exists: map[string]bool{}, uploads: map[string]string{}},
		keyPath:    writePublicKey(t, dir),
	}

	resolveConfig = func(string) (*config.Config, error) { return env.cfg, nil }
	newPrinter = func() *ui.Printer { return ui.NewPrinter(env.out, false) }
	newLogger = func(int) logr.Logger { return logr.Discard() }
	newDownloader = func(*config.Config) imageDownloader { return env.downloader }
	newLocalRunner = func() commandRunner { return env.local }
	dryRunOutput = env.dryRun
	newRemoteNode = func(config.RemoteConfig, logr.Logger) (remoteNode, error) { return env.node, nil }
	promptPassword = func(context.Context) (string, error) {
		env.prompted++
		return "secret", nil
	}
	lookupEnv = func(string) (string, bool) { return "", false }
	return env
}

func writePublicKey(t *testing.T, dir string) string {
	t.Helper()
	kp, err := keygen.GenerateEd25519KeyPair("root@pve")
	require.NoError(t, err)
	p := filepath.Join(dir, "id_ed25519.pub")
	require.NoError(t, os.WriteFile(p, kp.PublicKey, 0600))
	return p
}

type fakeDownloader struct {
	calls   int
	skipped bool
	content string
	err     error
}

func (f *fakeDownloader) Download(_ context.Context, rawURL, dir string) (*image.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	name, err := image.FilenameFromURL(rawURL)
	if err != nil {
		return nil, err
	}
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(p, []byte(f.content), 0600); err != nil {
		return nil, err
	}
	return &image.Result{Filename: name, Path: p, Skipped: f.skipped, Bytes: int64(len(f.content))}, nil
}

type call struct {
	name  string
	args  []string
	input string
}

type fakeRunner struct {
	mu     sync.Mutex
	calls  []call
	failOn string
	output string
	hash   string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f.RunWithInput(ctx, nil, name, args...)
}

func (f *fakeRunner) RunWithInput(_ context.Context, input io.Reader, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := call{name: name, args: args}
	if input != nil {
		data, _ := io.ReadAll(input)
		c.input = string(data)
	}
	f.calls = append(f.calls, c)

	if name == "openssl" {
		return []byte(f.hash), nil
	}
	if len(args) > 0 && args[0] == f.failOn {
		return []byte(f.output), errors.New("exit status 255")
	}
	return []byte(f.output), nil
}

// qmSubcommands returns the first argument of every qm call.
func (f *fakeRunner) qmSubcommands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var subs []string
	for _, c := range f.calls {
		if c.name == "qm" {
			subs = append(subs, c.args[0])
		}
	}
	return subs
}

func (f *fakeRunner) qmCall(sub string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.name == "qm" && c.args[0] == sub {
			return c.args
		}
	}
	return nil
}

type fakeNode struct {
	fakeRunner
	exists    map[string]bool
	existsErr error
	uploads   map[string]string
	files     []string
}

func (n *fakeNode) Exists(_ context.Context, path string) (bool, error) {
	if n.existsErr != nil {
		return false, n.existsErr
	}
	return n.exists[path], nil
}

func (n *fakeNode) Upload(_ context.Context, r io.Reader, size int64, remotePath string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return fmt.Errorf("received %d of %d bytes for %s", len(data), size, remotePath)
	}
	n.uploads[remotePath] = string(data)
	return nil
}

func (n *fakeNode) UploadFile(_ context.Context, localPath, remotePath string) error {
	if _, err := os.Stat(localPath); err != nil {
		return err
	}
	n.files = append(n.files, remotePath)
	return nil
}

func (n *fakeNode) Address() string {
	return "pve1.lan:22"
}

package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/pvetemplate/internal/cloudinit"
	"github.com/imamik/pvetemplate/internal/config"
)

func TestSnippets_Local(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(t.TempDir(), "snippets")

	require.NoError(t, Snippets(context.Background(), SnippetsOptions{Dir: dir}))

	for _, s := range cloudinit.All() {
		data, err := os.ReadFile(filepath.Join(dir, s.Filename))
		require.NoError(t, err)
		assert.Equal(t, s.Content, string(data))
		assert.Contains(t, env.out.String(), "Cloud-init configuration written to "+filepath.Join(dir, s.Filename))
	}
}

func TestSnippets_Remote(t *testing.T) {
	env := newTestEnv(t)

	err := Snippets(context.Background(), SnippetsOptions{Remote: RemoteOptions{Host: "pve1.lan"}})
	require.NoError(t, err)

	assert.Len(t, env.node.uploads, 3)
	assert.Equal(t, cloudinit.Fedora.Content, env.node.uploads[filepath.Join(env.cfg.Storage.SnippetsDir, cloudinit.FedoraFilename)])
	assert.Contains(t, env.out.String(), "Cloud-init configuration written to pve1.lan:22:")
}

func TestSnippets_WriteError(t *testing.T) {
	newTestEnv(t)
	writeSnippets = func(string) ([]string, error) { return nil, errors.New("permission denied") }

	err := Snippets(context.Background(), SnippetsOptions{Dir: "/var/lib/vz/snippets"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestSnippets_RelativeDirRejected(t *testing.T) {
	newTestEnv(t)

	err := Snippets(context.Background(), SnippetsOptions{Dir: "snippets"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestSnippets_RemoteConnectError(t *testing.T) {
	newTestEnv(t)
	newRemoteNode = func(config.RemoteConfig, logr.Logger) (remoteNode, error) {
		return nil, errors.New("dial tcp: connection refused")
	}

	err := Snippets(context.Background(), SnippetsOptions{Remote: RemoteOptions{Host: "pve1.lan"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

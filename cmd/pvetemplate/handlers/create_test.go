package handlers

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/pvetemplate/internal/cloudinit"
	"github.com/imamik/pvetemplate/internal/config"
	"github.com/imamik/pvetemplate/internal/image"
	"github.com/imamik/pvetemplate/internal/logging"
	"github.com/imamik/pvetemplate/internal/profile"
	"github.com/imamik/pvetemplate/internal/qm"
	"github.com/imamik/pvetemplate/internal/sshkeys"
)

const nobleURL = "https://cloud-images.ubuntu.com/noble/current/noble-server-cloudimg-amd64.img"

func (e *testEnv) options(t *testing.T, url string) CreateOptions {
	t.Helper()
	return CreateOptions{
		URL:         url,
		DownloadDir: filepath.Join(t.TempDir(), "iso"),
		VMID:        9000,
		SSHKeyPaths: []string{e.keyPath},
	}
}

func TestCreate_Local(t *testing.T) {
	env := newTestEnv(t)
	opts := env.options(t, nobleURL)

	err := Create(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, env.downloader.calls)
	assert.Equal(t, 1, env.prompted)
	assert.Equal(t, []string{"create", "importdisk", "set", "template"}, env.local.qmSubcommands())

	// openssl got the password on stdin, not in argv.
	require.NotEmpty(t, env.local.calls)
	assert.Equal(t, "openssl", env.local.calls[0].name)
	assert.Equal(t, []string{"passwd", "-6", "-stdin"}, env.local.calls[0].args)
	assert.Equal(t, "secret\n", env.local.calls[0].input)

	imagePath := filepath.Join(opts.DownloadDir, "noble-server-cloudimg-amd64.img")
	assert.Equal(t, []string{"importdisk", "9000", imagePath, "local-zfs"}, env.local.qmCall("importdisk"))

	set := strings.Join(env.local.qmCall("set"), " ")
	assert.Contains(t, set, "--sshkeys "+env.keyPath)
	assert.Contains(t, set, "--cipassword $6$salt$hash")
	assert.Contains(t, set, "--name=ubuntu-2404-cloudinit-template")
	assert.Contains(t, set, "vendor=local:snippets/debian-cloudinit.yaml")

	for _, s := range cloudinit.All() {
		data, err := os.ReadFile(filepath.Join(env.cfg.Storage.SnippetsDir, s.Filename))
		require.NoError(t, err)
		assert.Equal(t, s.Content, string(data))
	}

	out := env.out.String()
	assert.Contains(t, out, "Image noble-server-cloudimg-amd64.img was downloaded to "+imagePath)
	assert.Contains(t, out, "Cloud-init configuration written to ")
	assert.Contains(t, out, "Creating VM 9000...")
	assert.Contains(t, out, "Creating template...")
	assert.True(t, strings.HasSuffix(out, "Template 9000 successfully created.\n"), out)
}

func TestCreate_ExistingImage(t *testing.T) {
	env := newTestEnv(t)
	env.downloader.skipped = true

	require.NoError(t, Create(context.Background(), env.options(t, nobleURL)))

	assert.Contains(t, env.out.String(), "File already exists: ")
	assert.NotContains(t, env.out.String(), "was downloaded to")
}

func TestCreate_DebianDockerNotice(t *testing.T) {
	env := newTestEnv(t)
	opts := env.options(t, "https://cloud.debian.org/images/cloud/bookworm/latest/debian-12-generic-amd64.qcow2")
	opts.Docker = true

	require.NoError(t, Create(context.Background(), opts))

	assert.Contains(t, env.out.String(), "Debian with Docker not supported. Proceeding with normal Debian installation")
	set := env.local.qmCall("set")
	assert.Contains(t, set, "--tags=debian,cloudinit")
	assert.Contains(t, set, "--name=debian-bookworm-cloudinit-template")
}

func TestCreate_UbuntuDocker(t *testing.T) {
	env := newTestEnv(t)
	opts := env.options(t, nobleURL)
	opts.Docker = true

	require.NoError(t, Create(context.Background(), opts))

	set := env.local.qmCall("set")
	assert.Contains(t, set, "--name=ubuntu-2404-cloudinit-docker-template")
	assert.Contains(t, set, "vendor=local:snippets/ubuntu-docker-cloudinit.yaml")
	assert.Contains(t, set, "--tags=ubuntu,cloudinit,docker")
}

func TestCreate_UnsupportedImage(t *testing.T) {
	env := newTestEnv(t)

	err := Create(context.Background(), env.options(t, "https://example.com/images/arch-linux.qcow2"))

	require.ErrorIs(t, err, profile.ErrUnsupportedImage)
	assert.Zero(t, env.downloader.calls)
	assert.Zero(t, env.prompted)
	assert.Empty(t, env.local.calls)
}

func TestCreate_InvalidVMID(t *testing.T) {
	env := newTestEnv(t)
	opts := env.options(t, nobleURL)
	opts.VMID = 0

	err := Create(context.Background(), opts)

	require.ErrorIs(t, err, ErrInvalidVMID)
	assert.Zero(t, env.downloader.calls)
}

func TestCreate_SSHKeys(t *testing.T) {
	tests := []struct {
		name    string
		paths   func(env *testEnv) []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "none",
			paths:   func(*testEnv) []string { return nil },
			wantErr: sshkeys.ErrNoKeys,
		},
		{
			name:    "missing file",
			paths:   func(*testEnv) []string { return []string{"/nonexistent/id.pub"} },
			wantMsg: "failed to read public key /nonexistent/id.pub",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			opts := env.options(t, nobleURL)
			opts.SSHKeyPaths = tt.paths(env)

			err := Create(context.Background(), opts)

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.Zero(t, env.downloader.calls)
		})
	}
}

func TestCreate_MultipleSSHKeysJoinedBySpace(t *testing.T) {
	env := newTestEnv(t)
	second := writePublicKey(t, t.TempDir())
	opts := env.options(t, nobleURL)
	opts.SSHKeyPaths = []string{env.keyPath + " " + second}

	require.NoError(t, Create(context.Background(), opts))

	set := env.local.qmCall("set")
	idx := indexOf(set, "--sshkeys")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, env.keyPath+" "+second, set[idx+1])
}

func TestCreate_DownloadError(t *testing.T) {
	env := newTestEnv(t)
	env.downloader.err = errors.New("unexpected status 404 Not Found")

	err := Create(context.Background(), env.options(t, nobleURL))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to download file")
	assert.Empty(t, env.local.qmSubcommands())
}

func TestCreate_StepFailureStopsSequence(t *testing.T) {
	env := newTestEnv(t)
	env.local.failOn = "importdisk"
	env.local.output = "storage 'local-zfs' does not exist\n"

	err := Create(context.Background(), env.options(t, nobleURL))

	var stepErr *qm.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "importing disk", stepErr.Step.Action)
	assert.Contains(t, err.Error(), "Error output: storage 'local-zfs' does not exist")
	assert.Equal(t, []string{"create", "importdisk"}, env.local.qmSubcommands())
	assert.NotContains(t, env.out.String(), "successfully created")
}

func TestCreate_Checksum(t *testing.T) {
	const helloDigest = "5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03"

	t.Run("match", func(t *testing.T) {
		env := newTestEnv(t)
		env.downloader.content = "hello\n"
		opts := env.options(t, nobleURL)
		opts.Checksum = "sha256:" + helloDigest

		require.NoError(t, Create(context.Background(), opts))
		assert.Contains(t, env.out.String(), "sha256 verified")
	})

	t.Run("mismatch", func(t *testing.T) {
		env := newTestEnv(t)
		env.downloader.content = "tampered\n"
		opts := env.options(t, nobleURL)
		opts.Checksum = helloDigest

		err := Create(context.Background(), opts)
		require.ErrorIs(t, err, image.ErrChecksumMismatch)
		assert.Empty(t, env.local.qmSubcommands())
	})

	t.Run("malformed", func(t *testing.T) {
		env := newTestEnv(t)
		opts := env.options(t, nobleURL)
		opts.Checksum = "md5:abc"

		err := Create(context.Background(), opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid --checksum")
		assert.Zero(t, env.downloader.calls)
	})
}

func TestCreate_DryRun(t *testing.T) {
	env := newTestEnv(t)
	opts := env.options(t, nobleURL)
	opts.DryRun = true

	require.NoError(t, Create(context.Background(), opts))

	assert.Zero(t, env.downloader.calls)
	assert.Zero(t, env.prompted)
	assert.Empty(t, env.local.calls)
	_, err := os.Stat(env.cfg.Storage.SnippetsDir)
	assert.True(t, os.IsNotExist(err), "dry run must not write snippets")

	lines := strings.Split(strings.TrimSpace(env.dryRun.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "qm create 9000 "))
	assert.Contains(t, lines[2], "--cipassword '<redacted>'")
	assert.Equal(t, "qm template 9000", lines[3])
	assert.Contains(t, env.out.String(), "Dry run complete, template 9000 was not created.")
}

func TestCreate_ConfigOverrides(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Hardware.Memory = 2048
	env.cfg.Network.VLANTag = 0
	env.cfg.Storage.DiskStorage = "ceph-vm"
	opts := env.options(t, nobleURL)
	opts.SnippetsDir = filepath.Join(t.TempDir(), "custom-snippets")

	require.NoError(t, Create(context.Background(), opts))

	create := env.local.qmCall("create")
	assert.Contains(t, create, "--memory=2048")
	assert.Contains(t, create, "virtio,bridge=vmbr0")
	assert.Contains(t, env.local.qmCall("importdisk"), "ceph-vm")
	_, err := os.Stat(filepath.Join(opts.SnippetsDir, cloudinit.DebianFilename))
	assert.NoError(t, err)
}

func TestCreate_InvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Hardware.Cores = 0

	err := Create(context.Background(), env.options(t, nobleURL))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "hardware.cores")
}

func TestCreate_ConfigLoadError(t *testing.T) {
	env := newTestEnv(t)
	resolveConfig = func(string) (*config.Config, error) { return nil, config.ErrConfigNotFound }

	err := Create(context.Background(), env.options(t, nobleURL))

	require.ErrorIs(t, err, config.ErrConfigNotFound)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestCreate_PasswordError(t *testing.T) {
	env := newTestEnv(t)
	promptPassword = func(context.Context) (string, error) { return "", errors.New("user aborted") }

	err := Create(context.Background(), env.options(t, nobleURL))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read password")
	assert.Empty(t, env.local.qmSubcommands())
}

func TestCreate_Remote(t *testing.T) {
	env := newTestEnv(t)
	var gotRemote config.RemoteConfig
	newRemoteNode = func(cfg config.RemoteConfig, _ logr.Logger) (remoteNode, error) {
		gotRemote = cfg
		return env.node, nil
	}
	opts := env.options(t, nobleURL)
	// The key lives on the node only.
	opts.SSHKeyPaths = []string{"/nonexistent/.ssh/authorized_keys"}
	opts.Remote = RemoteOptions{Host: "pve1.lan:2222", User: "admin"}

	require.NoError(t, Create(context.Background(), opts))

	assert.Equal(t, "pve1.lan", gotRemote.Host)
	assert.Equal(t, 2222, gotRemote.Port)
	assert.Equal(t, "admin", gotRemote.User)

	imagePath := filepath.Join(opts.DownloadDir, "noble-server-cloudimg-amd64.img")
	assert.Equal(t, []string{imagePath}, env.node.files)
	for _, s := range cloudinit.All() {
		assert.Equal(t, s.Content, env.node.uploads[filepath.Join(env.cfg.Storage.SnippetsDir, s.Filename)])
	}
	_, err := os.Stat(env.cfg.Storage.SnippetsDir)
	assert.True(t, os.IsNotExist(err), "snippets go to the node, not the local disk")

	assert.Equal(t, []string{"create", "importdisk", "set", "template"}, env.node.qmSubcommands())
	assert.Empty(t, env.local.qmSubcommands())
	require.Len(t, env.local.calls, 1)
	assert.Equal(t, "openssl", env.local.calls[0].name)
}

func TestCreate_RemoteImageAlreadyStaged(t *testing.T) {
	env := newTestEnv(t)
	opts := env.options(t, nobleURL)
	opts.Remote = RemoteOptions{Host: "pve1.lan"}
	env.node.exists[filepath.Join(opts.DownloadDir, "noble-server-cloudimg-amd64.img")] = true

	require.NoError(t, Create(context.Background(), opts))

	assert.Empty(t, env.node.files)
	assert.Contains(t, env.out.String(), "File already exists on pve1.lan:22")
}

func TestCreate_RemoteConnectError(t *testing.T) {
	env := newTestEnv(t)
	newRemoteNode = func(config.RemoteConfig, logr.Logger) (remoteNode, error) {
		return nil, errors.New("no SSH private key found")
	}
	opts := env.options(t, nobleURL)
	opts.Remote = RemoteOptions{Host: "pve1.lan"}

	err := Create(context.Background(), opts)

	require.Error(t, err)
	assert.Zero(t, env.downloader.calls)
}

func TestCreate_MetricsFile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)
		env.downloader.content = "image"
		opts := env.options(t, nobleURL)
		opts.MetricsFile = filepath.Join(t.TempDir(), "pvetemplate.prom")

		require.NoError(t, Create(context.Background(), opts))

		data, err := os.ReadFile(opts.MetricsFile)
		require.NoError(t, err)
		out := string(data)
		assert.Contains(t, out, `pvetemplate_build_success{profile="ubuntu-2404-cloudinit-template",vmid="9000"} 1`)
		assert.Contains(t, out, "pvetemplate_image_download_bytes 5")
		assert.Contains(t, out, `pvetemplate_step_duration_seconds{step="creating template"}`)
	})

	t.Run("failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.local.failOn = "create"
		opts := env.options(t, nobleURL)
		opts.MetricsFile = filepath.Join(t.TempDir(), "pvetemplate.prom")

		require.Error(t, Create(context.Background(), opts))

		data, err := os.ReadFile(opts.MetricsFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), `pvetemplate_build_success{profile="ubuntu-2404-cloudinit-template",vmid="9000"} 0`)
	})

	t.Run("unwritable", func(t *testing.T) {
		env := newTestEnv(t)
		opts := env.options(t, nobleURL)
		opts.MetricsFile = filepath.Join(t.TempDir(), "missing", "pvetemplate.prom")

		err := Create(context.Background(), opts)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to write metrics")
	})
}

func TestCreate_VerboseLogsThroughContext(t *testing.T) {
	env := newTestEnv(t)
	var logs bytes.Buffer
	newLogger = func(verbosity int) logr.Logger { return logging.New(&logs, verbosity) }
	opts := env.options(t, nobleURL)
	opts.Remote = RemoteOptions{Host: "pve1.lan"}
	opts.Verbosity = 1

	require.NoError(t, Create(context.Background(), opts))

	assert.Contains(t, logs.String(), `"msg"="image ready"`)
	assert.Contains(t, logs.String(), `"msg"="image uploaded"`)
	assert.Contains(t, logs.String(), `"node"="pve1.lan:22"`)
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

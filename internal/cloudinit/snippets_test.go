package cloudinit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// vendorData is the subset of cloud-config keys the snippets use.
type vendorData struct {
	Groups     []string `yaml:"groups"`
	Packages   []string `yaml:"packages"`
	RunCmd     []string `yaml:"runcmd"`
	SystemInfo struct {
		DefaultUser struct {
			Groups []string `yaml:"groups"`
		} `yaml:"default_user"`
	} `yaml:"system_info"`
}

func parseSnippet(t *testing.T, s Snippet) vendorData {
	t.Helper()
	var v vendorData
	require.NoError(t, yaml.Unmarshal([]byte(s.Content), &v), "snippet %s", s.Filename)
	return v
}

func TestSnippets_HaveCloudConfigHeader(t *testing.T) {
	t.Parallel()
	for _, s := range All() {
		assert.True(t, strings.HasPrefix(s.Content, "#cloud-config\n"), s.Filename)
		assert.True(t, strings.HasSuffix(s.Content, "\n"), s.Filename)
	}
}

func TestSnippets_StartGuestAgentAndReboot(t *testing.T) {
	t.Parallel()
	for _, s := range All() {
		v := parseSnippet(t, s)
		assert.Contains(t, v.Packages, "qemu-guest-agent", s.Filename)
		require.NotEmpty(t, v.RunCmd, s.Filename)
		assert.Equal(t, "systemctl start qemu-guest-agent", v.RunCmd[0], s.Filename)
		assert.Equal(t, "reboot", v.RunCmd[len(v.RunCmd)-1], s.Filename)
	}
}

func TestUbuntuDocker_InstallsDocker(t *testing.T) {
	t.Parallel()
	v := parseSnippet(t, UbuntuDocker)

	assert.Equal(t, []string{"docker"}, v.Groups)
	assert.Equal(t, []string{"docker"}, v.SystemInfo.DefaultUser.Groups)
	assert.Contains(t, v.Packages, "ca-certificates")
	assert.Contains(t, v.Packages, "curl")
	assert.Contains(t, v.RunCmd, "apt-get install -y docker-ce docker-ce-cli containerd.io docker-buildx-plugin docker-compose-plugin")
}

func TestAll_Order(t *testing.T) {
	t.Parallel()
	var names []string
	for _, s := range All() {
		names = append(names, s.Filename)
	}
	assert.Equal(t, []string{DebianFilename, UbuntuDockerFilename, FedoraFilename}, names)
}

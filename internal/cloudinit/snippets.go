package cloudinit

// Snippet is a named cloud-init vendor-data file.
type Snippet struct {
	Filename string
	Content  string
}

// Snippet filenames as stored in the snippets directory.
const (
	DebianFilename       = "debian-cloudinit.yaml"
	UbuntuDockerFilename = "ubuntu-docker-cloudinit.yaml"
	FedoraFilename       = "fedora-cloudinit.yaml"
)

const genericDebianConfig = `#cloud-config
packages:
  - qemu-guest-agent
runcmd:
  - systemctl start qemu-guest-agent
  - reboot
`

const ubuntuDockerConfig = `#cloud-config
groups:
  - docker
system_info:
  default_user:
    groups: [docker]
packages:
  - qemu-guest-agent
  - ca-certificates
  - curl
runcmd:
  - systemctl start qemu-guest-agent
  - install -m 0755 -d /etc/apt/keyrings
  - curl -fsSL https://download.docker.com/linux/ubuntu/gpg -o /etc/apt/keyrings/docker.asc
  - chmod a+r /etc/apt/keyrings/docker.asc
  - echo "deb [arch=$(dpkg --print-architecture) signed-by=/etc/apt/keyrings/docker.asc] https://download.docker.com/linux/ubuntu $(. /etc/os-release && echo "${UBUNTU_CODENAME:-$VERSION_CODENAME}") stable" | tee /etc/apt/sources.list.d/docker.list > /dev/null
  - apt-get update
  - apt-get install -y docker-ce docker-ce-cli containerd.io docker-buildx-plugin docker-compose-plugin
  - reboot
`

const fedoraConfig = `#cloud-config
packages:
  - qemu-guest-agent
runcmd:
  - systemctl start qemu-guest-agent
  - reboot
`

var (
	// Debian is shared by Debian and plain Ubuntu templates.
	Debian = Snippet{Filename: DebianFilename, Content: genericDebianConfig}

	// UbuntuDocker installs Docker CE from the upstream apt repository.
	UbuntuDocker = Snippet{Filename: UbuntuDockerFilename, Content: ubuntuDockerConfig}

	Fedora = Snippet{Filename: FedoraFilename, Content: fedoraConfig}
)

// All returns the snippets in the order they are written.
func All() []Snippet {
	return []Snippet{Debian, UbuntuDocker, Fedora}
}

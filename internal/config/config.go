package config

// Config holds the template build configuration.
type Config struct {
	Hardware  HardwareConfig  `yaml:"hardware"`
	Network   NetworkConfig   `yaml:"network"`
	Storage   StorageConfig   `yaml:"storage"`
	CloudInit CloudInitConfig `yaml:"cloudinit"`
	Remote    RemoteConfig    `yaml:"remote"`
	S3        S3Config        `yaml:"s3"`
}

// HardwareConfig describes the virtual hardware passed to `qm create`.
type HardwareConfig struct {
	OSType  string `yaml:"ostype"`
	Memory  int    `yaml:"memory"` // MiB
	Agent   bool   `yaml:"agent"`
	CPU     string `yaml:"cpu"`
	Sockets int    `yaml:"sockets"`
	Cores   int    `yaml:"cores"`
	VGA     string `yaml:"vga"`
	Serial0 string `yaml:"serial0"`
}

// NetworkConfig describes the net0 device.
type NetworkConfig struct {
	Model  string `yaml:"model"`
	Bridge string `yaml:"bridge"`
	// VLANTag is omitted from net0 when zero.
	VLANTag int `yaml:"vlan_tag"`
}

// StorageConfig names the Proxmox storages used for disks and snippets.
type StorageConfig struct {
	// DiskStorage receives the imported disk and the cloud-init drive.
	DiskStorage string `yaml:"disk_storage"`
	SCSIHW      string `yaml:"scsihw"`
	// SnippetStorage is the storage id referenced by --cicustom.
	SnippetStorage string `yaml:"snippet_storage"`
	// SnippetsDir is the local path backing SnippetStorage.
	SnippetsDir string `yaml:"snippets_dir"`
}

// CloudInitConfig holds the cloud-init values set with `qm set`.
type CloudInitConfig struct {
	User     string `yaml:"user"`
	IPConfig string `yaml:"ipconfig0"`
}

// RemoteConfig points the qm commands at a Proxmox node over SSH.
// An empty Host means commands run on the local machine.
type RemoteConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	User    string `yaml:"user"`
	KeyPath string `yaml:"key_path"`
}

// S3Config configures the client used for s3:// image URLs.
// Credentials come from the standard AWS environment and shared config.
type S3Config struct {
	Endpoint     string `yaml:"endpoint"`
	Region       string `yaml:"region"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// IsRemote reports whether qm commands are executed on a remote node.
func (c *Config) IsRemote() bool {
	return c.Remote.Host != ""
}

package config

// Defaults matching the values the tool has always passed to qm.
const (
	DefaultOSType  = "l26"
	DefaultMemory  = 1024
	DefaultCPU     = "host"
	DefaultSockets = 1
	DefaultCores   = 1
	DefaultVGA     = "serial0"
	DefaultSerial0 = "socket"

	DefaultNetModel = "virtio"
	DefaultBridge   = "vmbr0"
	DefaultVLANTag  = 20

	DefaultDiskStorage    = "local-zfs"
	DefaultSCSIHW         = "virtio-scsi-pci"
	DefaultSnippetStorage = "local"
	DefaultSnippetsDir    = "/var/lib/vz/snippets"

	DefaultCloudInitUser = "artur"
	DefaultIPConfig      = "ip=dhcp"

	DefaultRemotePort = 22
	DefaultRemoteUser = "root"

	DefaultS3Region = "us-east-1"
)

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Hardware: HardwareConfig{
			OSType:  DefaultOSType,
			Memory:  DefaultMemory,
			Agent:   true,
			CPU:     DefaultCPU,
			Sockets: DefaultSockets,
			Cores:   DefaultCores,
			VGA:     DefaultVGA,
			Serial0: DefaultSerial0,
		},
		Network: NetworkConfig{
			Model:   DefaultNetModel,
			Bridge:  DefaultBridge,
			VLANTag: DefaultVLANTag,
		},
		Storage: StorageConfig{
			DiskStorage:    DefaultDiskStorage,
			SCSIHW:         DefaultSCSIHW,
			SnippetStorage: DefaultSnippetStorage,
			SnippetsDir:    DefaultSnippetsDir,
		},
		CloudInit: CloudInitConfig{
			User:     DefaultCloudInitUser,
			IPConfig: DefaultIPConfig,
		},
		Remote: RemoteConfig{
			Port: DefaultRemotePort,
			User: DefaultRemoteUser,
		},
		S3: S3Config{
			Region: DefaultS3Region,
		},
	}
}

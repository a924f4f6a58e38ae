package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/pvetemplate/cmd/pvetemplate/handlers"
)

// Create returns the command that builds a template.
//
// Required flags:
//
//	--url, -u: Cloud image URL (http, https or s3)
//	--download-location, -p: Directory the image is stored in
//	--vm-id: Proxmox VM id of the template
//	--public-ssh-key-path: Public key file(s) for the cloud-init user
//
// Arguments after the flags are further public key files, so
// "--public-ssh-key-path a.pub b.pub" passes both keys.
//
// Environment variables:
//
//	PVETEMPLATE_VM_PASSWORD: VM password for non-interactive runs
//	PVETEMPLATE_S3_ACCESS_KEY, PVETEMPLATE_S3_SECRET_KEY: static S3 credentials
func Create() *cobra.Command {
	var opts handlers.CreateOptions

	cmd := &cobra.Command{
		Use:   "create [flags] [public-key-path...]",
		Short: "Download a cloud image and turn it into a VM template",
		Long: `Download a cloud image and turn it into a Proxmox VM template.

The image is stored in the download location and reused when it is already
there. Three cloud-init snippets are written to the snippets directory, then
qm creates the VM, imports the disk, configures cloud-init and converts the
VM into a template.

The distribution is detected from the image filename: "noble" (Ubuntu 24.04),
"debian" or "fedora". --docker installs Docker CE and is only supported on
Ubuntu.

Examples:
  # Ubuntu 24.04 template with Docker
  pvetemplate create \
    -u https://cloud-images.ubuntu.com/noble/current/noble-server-cloudimg-amd64.img \
    -p /var/lib/vz/template/iso --vm-id 9000 \
    --public-ssh-key-path /root/.ssh/id_ed25519.pub --docker

  # Show the qm commands without running them
  pvetemplate create -u https://cloud.debian.org/images/cloud/bookworm/latest/debian-12-generic-amd64.qcow2 \
    -p /var/lib/vz/template/iso --vm-id 9001 --public-ssh-key-path /root/.ssh/id_ed25519.pub --dry-run

  # Build on a remote node
  pvetemplate create --remote pve1.lan -u ... -p /var/lib/vz/template/iso --vm-id 9002 \
    --public-ssh-key-path /root/.ssh/authorized_keys

  # Several keys
  pvetemplate create -u ... -p /var/lib/vz/template/iso --vm-id 9003 \
    --public-ssh-key-path /root/.ssh/alice.pub /root/.ssh/bob.pub`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.SSHKeyPaths = append(opts.SSHKeyPaths, args...)
			return runCreate(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.URL, "url", "u", "", "URL of the cloud image")
	cmd.Flags().StringVarP(&opts.DownloadDir, "download-location", "p", "", "Directory to store the image in")
	cmd.Flags().IntVar(&opts.VMID, "vm-id", 0, "VM id of the template")
	cmd.Flags().StringArrayVar(&opts.SSHKeyPaths, "public-ssh-key-path", nil, "Public SSH key file; further key files may follow as arguments")
	cmd.Flags().BoolVar(&opts.Docker, "docker", false, "Install Docker CE (Ubuntu only)")

	addConfigFlag(cmd, &opts.ConfigPath)
	cmd.Flags().StringVar(&opts.SnippetsDir, "snippets-dir", "", "Directory for cloud-init snippets (default: /var/lib/vz/snippets)")
	cmd.Flags().StringVar(&opts.Checksum, "checksum", "", "Expected image digest, sha256:<hex>")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the qm commands instead of running them")
	addRemoteFlags(cmd, &opts.Remote)
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	addVerboseFlag(cmd, &opts.Verbosity)

	for _, name := range []string{"url", "download-location", "vm-id", "public-ssh-key-path"} {
		_ = cmd.MarkFlagRequired(name)
	}
	_ = cmd.MarkFlagDirname("download-location")
	_ = cmd.MarkFlagDirname("snippets-dir")
	_ = cmd.MarkFlagFilename("public-ssh-key-path", "pub")
	_ = cmd.MarkFlagFilename("config", "yaml", "yml")

	return cmd
}

package qm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/imamik/pvetemplate/internal/config"
	"github.com/imamik/pvetemplate/internal/profile"
)

// Binary is the Proxmox VM management tool.
const Binary = "qm"

// Template describes one template build.
type Template struct {
	VMID      int
	ImagePath string
	// SSHKeyPaths are public key files on the host running qm.
	SSHKeyPaths  []string
	PasswordHash string
	Profile      profile.Profile
}

// CreateArgs returns the arguments of `qm create`.
func CreateArgs(vmID int, cfg *config.Config) []string {
	hw := cfg.Hardware
	return []string{
		"create",
		strconv.Itoa(vmID),
		"--ostype=" + hw.OSType,
		"--memory=" + strconv.Itoa(hw.Memory),
		"--agent=" + boolFlag(hw.Agent),
		"--cpu=" + hw.CPU,
		"--socket=" + strconv.Itoa(hw.Sockets),
		"--cores=" + strconv.Itoa(hw.Cores),
		"--vga=" + hw.VGA,
		"--serial0=" + hw.Serial0,
		"--net0",
		NetDevice(cfg.Network),
	}
}

// NetDevice formats the net0 property, e.g. "virtio,bridge=vmbr0,tag=20".
func NetDevice(n config.NetworkConfig) string {
	dev := fmt.Sprintf("%s,bridge=%s", n.Model, n.Bridge)
	if n.VLANTag > 0 {
		dev += ",tag=" + strconv.Itoa(n.VLANTag)
	}
	return dev
}

// ImportDiskArgs returns the arguments of `qm importdisk`.
func ImportDiskArgs(vmID int, imagePath, storage string) []string {
	return []string{"importdisk", strconv.Itoa(vmID), imagePath, storage}
}

// SetArgs returns the arguments of `qm set` for the template.
func SetArgs(t Template, cfg *config.Config) []string {
	id := strconv.Itoa(t.VMID)
	disk := cfg.Storage.DiskStorage

	args := []string{
		"set",
		id,
		"--scsihw=" + cfg.Storage.SCSIHW,
		fmt.Sprintf("--virtio0=%s:vm-%s-disk-0,discard=on", disk, id),
		"--boot",
		"order=virtio0",
		fmt.Sprintf("--scsi1=%s:cloudinit", disk),
		"--ciuser=" + cfg.CloudInit.User,
		"--sshkeys",
		strings.Join(t.SSHKeyPaths, " "),
		"--cipassword",
		t.PasswordHash,
		"--ipconfig0",
		cfg.CloudInit.IPConfig,
	}

	return append(args,
		"--name="+t.Profile.Name,
		"--cicustom",
		t.Profile.Vendor(cfg.Storage.SnippetStorage),
		"--tags="+t.Profile.TagList(),
	)
}

// TemplateArgs returns the arguments of `qm template`.
func TemplateArgs(vmID int) []string {
	return []string{"template", strconv.Itoa(vmID)}
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

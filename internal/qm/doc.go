// Package qm builds and runs the Proxmox `qm` commands that turn a cloud
// image into a VM template.
//
// A template is produced by four commands executed in a fixed order:
//
//	qm create <id> ...      # empty VM with hardware and net0
//	qm importdisk <id> ...  # attach the cloud image as an unused disk
//	qm set <id> ...         # wire disk, cloud-init drive and profile
//	qm template <id>        # convert to a template
//
// [Sequence] runs them through a [Runner] and stops at the first failure.
// Nothing is rolled back: a VM created before a failing step is left in place.
package qm

// Package cloudinit holds the vendor-data snippets referenced by generated
// templates and writes them into the Proxmox snippets directory.
//
// The snippets are fixed text. They are written verbatim on every run and are
// never parsed or validated here.
package cloudinit

// Package config defines the settings that shape a generated Proxmox template.
//
// The [Config] struct carries every value that ends up on a qm command line
// (hardware, network, storage, cloud-init user) plus the locations used by the
// rest of the tool (snippets directory, remote node, S3 endpoint). [Default]
// returns the values the tool has always used; a pvetemplate.yaml file can
// override any subset of them.
package config

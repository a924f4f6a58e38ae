// Package main is the entry point for the pvetemplate CLI.
//
// pvetemplate turns Ubuntu, Debian and Fedora cloud images into Proxmox VM
// templates: it downloads the image, writes cloud-init vendor snippets and
// drives qm through create, importdisk, set and template.
//
// Commands: create, snippets, doctor, version, completion.
//
// For detailed usage information, run:
//
//	pvetemplate --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/pvetemplate/cmd/pvetemplate/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

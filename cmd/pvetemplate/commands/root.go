// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/pvetemplate/cmd/pvetemplate/handlers"
)

// Handler entry points - replaced in tests to capture parsed options.
var (
	runCreate   = handlers.Create
	runSnippets = handlers.Snippets
	runDoctor   = handlers.Doctor
	runKeygen   = handlers.Keygen
	runInit     = handlers.Init
)

// Root returns the root command for the pvetemplate CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pvetemplate",
		Short:         "Create Proxmox VM templates from cloud images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(Init())
	cmd.AddCommand(Create())
	cmd.AddCommand(Snippets())
	cmd.AddCommand(Doctor())
	cmd.AddCommand(Keygen())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

// addConfigFlag registers --config/-c.
func addConfigFlag(cmd *cobra.Command, p *string) {
	cmd.Flags().StringVarP(p, "config", "c", "", "Path to configuration file (default: pvetemplate.yaml if present)")
}

// addRemoteFlags registers the flags selecting a remote Proxmox node.
func addRemoteFlags(cmd *cobra.Command, r *handlers.RemoteOptions) {
	cmd.Flags().StringVar(&r.Host, "remote", "", "Run qm on this Proxmox node over SSH (host or host:port)")
	cmd.Flags().StringVar(&r.User, "remote-user", "", "SSH user on the remote node (default: root)")
	cmd.Flags().StringVar(&r.KeyPath, "remote-key", "", "SSH private key for the remote node (default: ~/.ssh/id_ed25519, id_ecdsa or id_rsa)")
}

// addVerboseFlag registers -v/--verbose as a counter.
func addVerboseFlag(cmd *cobra.Command, p *int) {
	cmd.Flags().CountVarP(p, "verbose", "v", "Log command lines and timings to stderr (repeat for timestamps)")
}

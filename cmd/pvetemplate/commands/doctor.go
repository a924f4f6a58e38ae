package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/pvetemplate/cmd/pvetemplate/handlers"
)

// Doctor returns the command for checking prerequisites.
func Doctor() *cobra.Command {
	var opts handlers.DoctorOptions

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that templates can be created on this host",
		Long: `Check the configuration, the qm and openssl binaries and the snippets
directory. With --remote, qm and the snippets directory are checked on the
remote node.

Examples:
  pvetemplate doctor
  pvetemplate doctor --remote pve1.lan`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd.Context(), opts)
		},
	}

	addConfigFlag(cmd, &opts.ConfigPath)
	addRemoteFlags(cmd, &opts.Remote)
	addVerboseFlag(cmd, &opts.Verbosity)

	return cmd
}

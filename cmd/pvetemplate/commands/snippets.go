package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/pvetemplate/cmd/pvetemplate/handlers"
)

// Snippets returns the command that only writes the cloud-init snippets.
func Snippets() *cobra.Command {
	var opts handlers.SnippetsOptions

	cmd := &cobra.Command{
		Use:   "snippets",
		Short: "Write the cloud-init snippets without creating a template",
		Long: `Write debian-cloudinit.yaml, ubuntu-docker-cloudinit.yaml and
fedora-cloudinit.yaml to the snippets directory, overwriting existing files.

Examples:
  pvetemplate snippets
  pvetemplate snippets --dir /mnt/pve/cephfs/snippets
  pvetemplate snippets --remote pve1.lan`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnippets(cmd.Context(), opts)
		},
	}

	addConfigFlag(cmd, &opts.ConfigPath)
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "Directory for cloud-init snippets (default: /var/lib/vz/snippets)")
	addRemoteFlags(cmd, &opts.Remote)
	addVerboseFlag(cmd, &opts.Verbosity)
	_ = cmd.MarkFlagDirname("dir")

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/pvetemplate/cmd/pvetemplate/handlers"
	"github.com/imamik/pvetemplate/internal/config"
)

// Init returns the command that writes a config file with the defaults.
func Init() *cobra.Command {
	var opts handlers.InitOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		Long: `Write a configuration file holding the built-in defaults for
hardware, network, storage, cloud-init, remote and S3 settings, ready
to be edited.

Examples:
  pvetemplate init
  pvetemplate init -o lab.yaml
  pvetemplate init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Path, "output", "o", config.DefaultConfigFilename, "Output file path")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Overwrite an existing file")
	_ = cmd.MarkFlagFilename("output", "yaml", "yml")

	return cmd
}

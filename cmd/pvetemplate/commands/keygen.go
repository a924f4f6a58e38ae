package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/pvetemplate/cmd/pvetemplate/handlers"
	"github.com/imamik/pvetemplate/internal/sshkeys"
)

// Keygen returns the command that creates an SSH key pair for templates.
func Keygen() *cobra.Command {
	var opts handlers.KeygenOptions

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an SSH key pair for the template user",
		Long: `Generate an SSH key pair and write the private key to --out and the
public key to --out with a .pub suffix. Existing files are kept unless
--force is given.

Examples:
  pvetemplate keygen
  pvetemplate keygen --out ~/.ssh/pve_templates --comment artur@templates
  pvetemplate keygen --type rsa --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKeygen(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Path, "out", "o", "pvetemplate_ed25519", "Path of the private key; the public key gets a .pub suffix")
	cmd.Flags().StringVarP(&opts.Algorithm, "type", "t", sshkeys.AlgorithmEd25519, "Key algorithm: ed25519 or rsa")
	cmd.Flags().StringVarP(&opts.Comment, "comment", "C", "pvetemplate", "Comment stored with the key pair")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Overwrite existing key files")
	_ = cmd.MarkFlagFilename("out")

	return cmd
}

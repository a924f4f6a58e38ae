package handlers

import (
	"context"
	"fmt"
)

// KeygenOptions holds the flag values of the keygen command.
type KeygenOptions struct {
	Path      string
	Algorithm string
	Comment   string
	Force     bool
}

// Keygen writes a new SSH key pair for the template's cloud-init user.
func Keygen(_ context.Context, opts KeygenOptions) error {
	printer := newPrinter()

	generated, err := generateKey(opts.Path, opts.Algorithm, opts.Comment, opts.Force)
	if err != nil {
		return fmt.Errorf("failed to generate SSH key: %w", err)
	}

	printer.Success("SSH key pair written to " + generated.PrivatePath)
	printer.Detail("public key:  " + generated.PublicPath)
	printer.Detail("fingerprint: " + generated.Key.Fingerprint)
	printer.Line("")
	printer.Line("Pass it to create with --public-ssh-key-path " + generated.PublicPath)
	return nil
}

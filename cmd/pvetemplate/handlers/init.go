package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/imamik/pvetemplate/internal/config"
)

// ErrConfigExists is returned when init would overwrite a config file.
var ErrConfigExists = errors.New("config file already exists")

// InitOptions holds the flag values of the init command.
type InitOptions struct {
	Path  string
	Force bool
}

// Init writes a config file holding the built-in defaults.
func Init(_ context.Context, opts InitOptions) error {
	printer := newPrinter()

	path := opts.Path
	if path == "" {
		path = config.DefaultConfigFilename
	}
	if !opts.Force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, path)
		}
	}

	if err := saveConfig(config.Default(), path); err != nil {
		return err
	}

	printer.Success("Configuration written to " + path)
	printer.Detail("Adjust hardware, network and storage, then run: pvetemplate doctor -c " + path)
	return nil
}

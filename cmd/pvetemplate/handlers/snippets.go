package handlers

import (
	"context"
)

// SnippetsOptions holds the flag values of the snippets command.
type SnippetsOptions struct {
	ConfigPath string
	Dir        string
	Remote     RemoteOptions
	Verbosity  int
}

// Snippets writes the cloud-init snippets without building a template.
func Snippets(ctx context.Context, opts SnippetsOptions) error {
	ctx, logger := withLogger(ctx, opts.Verbosity)
	printer := newPrinter()

	cfg, err := loadCreateConfig(CreateOptions{
		ConfigPath:  opts.ConfigPath,
		SnippetsDir: opts.Dir,
		Remote:      opts.Remote,
	})
	if err != nil {
		return err
	}

	var node remoteNode
	if cfg.IsRemote() {
		node, err = newRemoteNode(cfg.Remote, logger)
		if err != nil {
			return err
		}
	}

	return placeSnippets(ctx, cfg.Storage.SnippetsDir, node, false, printer)
}

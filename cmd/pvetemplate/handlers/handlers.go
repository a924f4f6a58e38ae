// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/imamik/pvetemplate/internal/cloudinit"
	"github.com/imamik/pvetemplate/internal/config"
	"github.com/imamik/pvetemplate/internal/image"
	"github.com/imamik/pvetemplate/internal/logging"
	"github.com/imamik/pvetemplate/internal/password"
	"github.com/imamik/pvetemplate/internal/qm"
	"github.com/imamik/pvetemplate/internal/sshkeys"
	"github.com/imamik/pvetemplate/internal/ui"
	"github.com/imamik/pvetemplate/internal/util/prerequisites"
)

// Environment variables holding static credentials for s3:// image URLs.
const (
	envS3AccessKey = "PVETEMPLATE_S3_ACCESS_KEY" //nolint:gosec // variable name, not a credential
	envS3SecretKey = "PVETEMPLATE_S3_SECRET_KEY" //nolint:gosec // variable name, not a credential
)

// commandRunner runs programs with or without stdin.
type commandRunner interface {
	qm.Runner
	password.InputRunner
}

// remoteNode is a Proxmox node reached over SSH.
type remoteNode interface {
	commandRunner
	Exists(ctx context.Context, path string) (bool, error)
	Upload(ctx context.Context, r io.Reader, size int64, remotePath string) error
	UploadFile(ctx context.Context, localPath, remotePath string) error
	Address() string
}

// imageDownloader fetches a cloud image into a directory.
type imageDownloader interface {
	Download(ctx context.Context, rawURL, dir string) (*image.Result, error)
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// resolveConfig loads the config file or the defaults.
	resolveConfig = config.Resolve

	// saveConfig writes a config file.
	saveConfig = config.Save

	// newPrinter returns the progress printer.
	newPrinter = ui.Stdout

	// newLogger returns the diagnostic logger.
	newLogger = logging.Stderr

	// newDownloader creates the image downloader.
	newDownloader = func(cfg *config.Config) imageDownloader {
		return image.NewDownloader(
			image.WithSourceFactory(image.SchemeS3, image.S3SourceFactory(cfg.S3, s3Credentials())),
		)
	}

	// newLocalRunner creates the runner for commands on this machine.
	newLocalRunner = func() commandRunner {
		return qm.NewLocalRunner()
	}

	// dryRunOutput receives command lines in dry-run mode.
	dryRunOutput io.Writer = os.Stdout

	// newRemoteNode connects to a Proxmox node over SSH.
	newRemoteNode = connectRemote

	// promptPassword asks for the VM password.
	promptPassword = password.Prompt

	// writeSnippets writes the cloud-init snippets to a local directory.
	writeSnippets = cloudinit.WriteAll

	// generateKey writes a new SSH key pair.
	generateKey = sshkeys.Generate

	// checkTools looks up required binaries.
	checkTools = prerequisites.Check

	// lookupEnv reads environment variables.
	lookupEnv = os.LookupEnv
)

func s3Credentials() image.S3Credentials {
	access, _ := lookupEnv(envS3AccessKey)
	secret, _ := lookupEnv(envS3SecretKey)
	return image.S3Credentials{AccessKey: access, SecretKey: secret}
}

// withLogger attaches a logger at the given verbosity to ctx.
func withLogger(ctx context.Context, verbosity int) (context.Context, logr.Logger) {
	logger := newLogger(verbosity)
	return logging.IntoContext(ctx, logger), logger
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"

	"github.com/imamik/pvetemplate/internal/config"
	"github.com/imamik/pvetemplate/internal/ui"
	"github.com/imamik/pvetemplate/internal/util/prerequisites"
)

// qmPath is where Proxmox VE installs qm.
const qmPath = "/usr/sbin/qm"

// ErrDoctorFailed is returned when a required check fails.
var ErrDoctorFailed = errors.New("doctor found problems")

// DoctorOptions holds the flag values of the doctor command.
type DoctorOptions struct {
	ConfigPath string
	Remote     RemoteOptions
	Verbosity  int
}

// Doctor checks that a template build can run: the config is valid, the
// required tools are installed and the snippets directory is usable.
func Doctor(ctx context.Context, opts DoctorOptions) error {
	ctx, logger := withLogger(ctx, opts.Verbosity)
	printer := newPrinter()
	failed := false

	printer.Title("pvetemplate doctor")

	cfg, err := loadCreateConfig(CreateOptions{ConfigPath: opts.ConfigPath, Remote: opts.Remote})
	if err != nil {
		printer.Row("config", false, err.Error())
		return fmt.Errorf("%w: %w", ErrDoctorFailed, err)
	}
	printer.Row("config", true, configSource(opts.ConfigPath))

	// In remote mode only openssl runs locally.
	tools := prerequisites.HashTools()
	if !cfg.IsRemote() {
		tools = append(prerequisites.TemplateTools(), prerequisites.OptionalTools()...)
	}

	results := checkTools(tools)
	for _, r := range results.Results {
		extra := r.Path
		if r.Version != "" {
			extra += " (" + r.Version + ")"
		}
		if !r.Found {
			extra = "not found: " + r.Tool.Description
		}
		if r.Tool.Required {
			printer.Row(r.Tool.Name, r.Found, extra)
		} else {
			printer.OptionalRow(r.Tool.Name, r.Found, extra)
		}
	}
	if results.HasErrors() {
		failed = true
	}

	if cfg.IsRemote() {
		if !checkRemote(ctx, cfg, printer, logger) {
			failed = true
		}
	} else {
		ok, detail := checkDir(cfg.Storage.SnippetsDir)
		printer.Row("snippets", ok, detail)
		if !ok {
			failed = true
		}
	}

	if failed {
		return ErrDoctorFailed
	}
	printer.Success("Ready to create templates.")
	return nil
}

func checkRemote(ctx context.Context, cfg *config.Config, printer *ui.Printer, logger logr.Logger) bool {
	node, err := newRemoteNode(cfg.Remote, logger)
	if err != nil {
		printer.Row("remote", false, err.Error())
		return false
	}

	ok, err := node.Exists(ctx, qmPath)
	if err != nil {
		printer.Row("remote", false, err.Error())
		return false
	}
	printer.Row("remote", true, node.Address())
	printer.Row("qm", ok, qmPath)

	dirOK, err := node.Exists(ctx, cfg.Storage.SnippetsDir)
	if err != nil {
		dirOK = false
	}
	printer.Row("snippets", dirOK, cfg.Storage.SnippetsDir)
	return ok && dirOK
}

func checkDir(dir string) (bool, string) {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		// Write creates it.
		return true, dir + " (will be created)"
	case err != nil:
		return false, err.Error()
	case !info.IsDir():
		return false, dir + " is not a directory"
	default:
		return true, dir
	}
}

func configSource(path string) string {
	if path != "" {
		return path
	}
	if found, err := config.FindConfigFile(); err == nil {
		return found
	}
	return "built-in defaults"
}

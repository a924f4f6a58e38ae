package handlers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/pvetemplate/internal/cloudinit"
	"github.com/imamik/pvetemplate/internal/config"
	"github.com/imamik/pvetemplate/internal/image"
	"github.com/imamik/pvetemplate/internal/logging"
	"github.com/imamik/pvetemplate/internal/metrics"
	"github.com/imamik/pvetemplate/internal/password"
	"github.com/imamik/pvetemplate/internal/profile"
	"github.com/imamik/pvetemplate/internal/qm"
	"github.com/imamik/pvetemplate/internal/sshkeys"
	"github.com/imamik/pvetemplate/internal/ui"
)

// dryRunHash stands in for the password hash when nothing is executed.
const dryRunHash = "$6$dry-run$"

// ErrInvalidVMID is returned for VM ids that are not positive.
var ErrInvalidVMID = errors.New("vm-id must be a positive integer")

// CreateOptions holds the flag values of the create command.
type CreateOptions struct {
	URL         string
	DownloadDir string
	VMID        int
	// SSHKeyPaths may hold repeated values and space-separated lists.
	SSHKeyPaths []string
	Docker      bool

	ConfigPath  string
	SnippetsDir string
	// Checksum is "sha256:<hex>" or bare hex. Empty skips verification.
	Checksum    string
	DryRun      bool
	Remote      RemoteOptions
	MetricsFile string
	Verbosity   int
}

// Create builds a Proxmox VM template.
//
// The workflow:
//  1. Loads the config and applies flag overrides
//  2. Validates the VM id, SSH public keys and image filename
//  3. Downloads the image unless it is already present, then verifies the checksum
//  4. Writes the cloud-init snippets (uploads them in remote mode)
//  5. Prompts for the VM password and hashes it with openssl
//  6. Runs qm create, importdisk, set and template
//
// The first failing qm step stops the build; a partially created VM is left
// in place. With a metrics file, build metrics are written on every exit.
func Create(ctx context.Context, opts CreateOptions) (err error) {
	start := time.Now()
	ctx, logger := withLogger(ctx, opts.Verbosity)
	printer := newPrinter()

	recorder := metrics.NewRecorder()
	var templateName string
	if opts.MetricsFile != "" {
		defer func() {
			recorder.Finish(opts.VMID, templateName, time.Since(start), err)
			if werr := recorder.WriteTextfile(opts.MetricsFile); werr != nil {
				if err == nil {
					err = werr
					return
				}
				logger.Error(werr, "metrics not written", "path", opts.MetricsFile)
			}
		}()
	}

	cfg, err := loadCreateConfig(opts)
	if err != nil {
		return err
	}

	if opts.VMID <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidVMID, opts.VMID)
	}

	keyPaths := sshkeys.SplitPaths(opts.SSHKeyPaths)
	if err := checkSSHKeys(keyPaths, cfg.IsRemote(), logger); err != nil {
		return err
	}

	if opts.Checksum != "" {
		if _, err := image.ParseSHA256(opts.Checksum); err != nil {
			return fmt.Errorf("invalid --checksum: %w", err)
		}
	}

	filename, err := image.FilenameFromURL(opts.URL)
	if err != nil {
		return err
	}
	prof, err := profile.Select(filename, opts.Docker)
	if err != nil {
		return err
	}
	templateName = prof.Name
	logger.V(1).Info("selected profile", "family", string(prof.Family), "name", prof.Name, "docker", prof.Docker)

	imagePath, err := image.LocalPath(opts.URL, opts.DownloadDir)
	if err != nil {
		return err
	}
	var node remoteNode
	if cfg.IsRemote() && !opts.DryRun {
		node, err = newRemoteNode(cfg.Remote, logger)
		if err != nil {
			return err
		}
	}

	if opts.DryRun {
		printer.Line(fmt.Sprintf("Dry run: skipping download of %s to %s", opts.URL, imagePath))
	} else {
		if err := fetchImage(ctx, cfg, opts, printer, recorder); err != nil {
			return err
		}
		if node != nil {
			if err := stageImage(ctx, node, imagePath, printer); err != nil {
				return err
			}
		}
	}

	if err := placeSnippets(ctx, cfg.Storage.SnippetsDir, node, opts.DryRun, printer); err != nil {
		return err
	}

	if prof.Notice != "" {
		printer.Warn(prof.Notice)
	}

	hash := dryRunHash
	if !opts.DryRun {
		hash, err = hashPassword(ctx)
		if err != nil {
			return err
		}
	}

	tmpl := qm.Template{
		VMID:         opts.VMID,
		ImagePath:    imagePath,
		SSHKeyPaths:  keyPaths,
		PasswordHash: hash,
		Profile:      prof,
	}

	var runner qm.Runner
	switch {
	case opts.DryRun:
		runner = qm.NewDryRunRunner(dryRunOutput)
	case node != nil:
		runner = node
	default:
		runner = newLocalRunner()
	}

	observer := qm.Observers{ui.NewStepObserver(printer, logger), recorder}
	if err := qm.NewSequence(runner, qm.Steps(tmpl, cfg), observer).Run(ctx); err != nil {
		return err
	}

	if opts.DryRun {
		printer.Success(fmt.Sprintf("Dry run complete, template %d was not created.", opts.VMID))
		return nil
	}
	printer.Success(ui.ClosingMessage(opts.VMID))
	return nil
}

// loadCreateConfig resolves the config file and applies flag overrides.
func loadCreateConfig(opts CreateOptions) (*config.Config, error) {
	cfg, err := resolveConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if opts.SnippetsDir != "" {
		cfg.Storage.SnippetsDir = opts.SnippetsDir
	}
	if err := applyRemoteOptions(cfg, opts.Remote); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// checkSSHKeys verifies the public key files. In remote mode the paths refer
// to the Proxmox node and are only checked when they also exist locally.
func checkSSHKeys(paths []string, remote bool, logger logr.Logger) error {
	if len(paths) == 0 {
		return fmt.Errorf("--public-ssh-key-path: %w", sshkeys.ErrNoKeys)
	}

	inspect := sshkeys.Inspect
	if remote {
		inspect = sshkeys.InspectPresent
	}
	keys, err := inspect(paths)
	if err != nil {
		return err
	}
	for _, k := range keys {
		logger.V(1).Info("public key", "path", k.Path, "type", k.Type, "fingerprint", k.Fingerprint)
	}
	return nil
}

// fetchImage downloads the image and verifies the optional checksum.
func fetchImage(ctx context.Context, cfg *config.Config, opts CreateOptions, printer *ui.Printer, recorder *metrics.Recorder) error {
	result, err := newDownloader(cfg).Download(ctx, opts.URL, opts.DownloadDir)
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}

	logging.FromContext(ctx).V(1).Info("image ready", "path", result.Path, "bytes", result.Bytes, "skipped", result.Skipped)
	if result.Skipped {
		printer.Line("File already exists: " + result.Path)
	} else {
		recorder.ObserveDownload(result.Bytes)
		printer.Line(fmt.Sprintf("Image %s was downloaded to %s", result.Filename, result.Path))
		printer.Detail(fmt.Sprintf("%s in %s", ui.FormatBytes(result.Bytes), ui.FormatDuration(result.Elapsed)))
	}

	if opts.Checksum != "" {
		if err := image.VerifySHA256(result.Path, opts.Checksum); err != nil {
			return err
		}
		printer.Detail("sha256 verified")
	}
	return nil
}

// stageImage copies the image to the same path on the remote node unless it
// is already there.
func stageImage(ctx context.Context, node remoteNode, imagePath string, printer *ui.Printer) error {
	exists, err := node.Exists(ctx, imagePath)
	if err != nil {
		return fmt.Errorf("failed to check %s on %s: %w", imagePath, node.Address(), err)
	}
	if exists {
		printer.Line(fmt.Sprintf("File already exists on %s: %s", node.Address(), imagePath))
		return nil
	}

	printer.Line(fmt.Sprintf("Uploading %s to %s...", imagePath, node.Address()))
	start := time.Now()
	if err := node.UploadFile(ctx, imagePath, imagePath); err != nil {
		return err
	}
	logging.FromContext(ctx).V(1).Info("image uploaded", "node", node.Address(), "path", imagePath, "elapsed", time.Since(start).String())
	return nil
}

// placeSnippets writes every snippet to dir, on the remote node when set.
func placeSnippets(ctx context.Context, dir string, node remoteNode, dryRun bool, printer *ui.Printer) error {
	if dryRun {
		for _, s := range cloudinit.All() {
			printer.Line("Dry run: would write " + filepath.Join(dir, s.Filename))
		}
		return nil
	}

	if node == nil {
		paths, err := writeSnippets(dir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			printer.Line("Cloud-init configuration written to " + p)
		}
		return nil
	}

	for _, s := range cloudinit.All() {
		p := filepath.Join(dir, s.Filename)
		if err := node.Upload(ctx, strings.NewReader(s.Content), int64(len(s.Content)), p); err != nil {
			return err
		}
		printer.Line(fmt.Sprintf("Cloud-init configuration written to %s:%s", node.Address(), p))
	}
	return nil
}

// hashPassword prompts for the password and hashes it locally.
func hashPassword(ctx context.Context) (string, error) {
	pw, err := promptPassword(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return password.NewHasher(newLocalRunner()).Hash(ctx, pw)
}

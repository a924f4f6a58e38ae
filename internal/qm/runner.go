package qm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/imamik/pvetemplate/internal/logging"
)

// Runner executes a program and returns its captured output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// LocalRunner runs programs on this machine.
type LocalRunner struct{}

// NewLocalRunner returns a Runner backed by os/exec.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Run executes name with args and returns combined stdout and stderr.
func (r *LocalRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return r.RunWithInput(ctx, nil, name, args...)
}

// RunWithInput is Run with stdin connected to input. Command lines are
// logged at V(2) to the logger in ctx, with secrets redacted.
func (r *LocalRunner) RunWithInput(ctx context.Context, input io.Reader, name string, args ...string) ([]byte, error) {
	logger := logging.FromContext(ctx)
	logger.V(2).Info("exec", "cmd", Command{Name: name, Args: args}.String(), "stdin", input != nil)

	// #nosec G204 - program and arguments are assembled by this package
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = input
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		logger.V(1).Info("command failed", "program", name, "error", err.Error())
		return out.Bytes(), fmt.Errorf("%s: %w", name, err)
	}
	return out.Bytes(), nil
}

// DryRunRunner prints commands instead of executing them.
type DryRunRunner struct {
	mu  sync.Mutex
	out io.Writer
}

// NewDryRunRunner returns a Runner that writes each command line to out.
func NewDryRunRunner(out io.Writer) *DryRunRunner {
	return &DryRunRunner{out: out}
}

// Run writes the redacted command line and reports success.
func (r *DryRunRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := fmt.Fprintln(r.out, Command{Name: name, Args: args}.String()); err != nil {
		return nil, fmt.Errorf("failed to write dry-run output: %w", err)
	}
	return nil, nil
}

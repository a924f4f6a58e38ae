package password

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// EnvPassword supplies the password for non-interactive runs.
const EnvPassword = "PVETEMPLATE_VM_PASSWORD"

// Prompt returns the VM password. The environment variable takes precedence;
// otherwise the user is asked twice on the terminal without echo.
func Prompt(ctx context.Context) (string, error) {
	if pw, ok := os.LookupEnv(EnvPassword); ok {
		if err := validatePassword(pw); err != nil {
			return "", fmt.Errorf("%s: %w", EnvPassword, err)
		}
		return pw, nil
	}

	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return "", ErrNotInteractive
	}

	var pw, confirm string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Enter the password for VM").
				Description("Set for the cloud-init user of the template").
				EchoMode(huh.EchoModePassword).
				Value(&pw).
				Validate(validatePassword),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&confirm),
		),
	).RunWithContext(ctx)
	if err != nil {
		return "", err
	}

	return pw, checkConfirmation(pw, confirm)
}

func validatePassword(pw string) error {
	if pw == "" {
		return ErrEmptyPassword
	}
	if strings.ContainsAny(pw, "\r\n") {
		return ErrMultilinePassword
	}
	return nil
}

func checkConfirmation(pw, confirm string) error {
	if pw != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

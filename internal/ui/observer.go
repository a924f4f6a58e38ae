package ui

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/pvetemplate/internal/qm"
)

// StepObserver prints qm sequence progress.
type StepObserver struct {
	printer *Printer
	logger  logr.Logger
}

// NewStepObserver returns an observer printing through p. Command lines are
// logged to logger at V(1).
func NewStepObserver(p *Printer, logger logr.Logger) *StepObserver {
	return &StepObserver{printer: p, logger: logger}
}

// StepStarted prints the step name.
func (o *StepObserver) StepStarted(step qm.Step) {
	o.printer.Step(step.Name)
	o.logger.V(1).Info("running command", "cmd", step.Command.String())
}

// StepFinished prints the step result.
func (o *StepObserver) StepFinished(step qm.Step, elapsed time.Duration, err error) {
	if err != nil {
		o.printer.Row(step.Action, false, FormatDuration(elapsed))
		return
	}
	o.printer.Row(step.Action, true, FormatDuration(elapsed))
	o.logger.V(1).Info("command finished", "cmd", step.Command.Name, "elapsed", elapsed.String())
}

var _ qm.Observer = (*StepObserver)(nil)

// ClosingMessage is printed after a successful build.
func ClosingMessage(vmID int) string {
	return fmt.Sprintf("Template %d successfully created.", vmID)
}

package qm

import (
	"context"
	"strconv"
	"time"

	"github.com/imamik/pvetemplate/internal/config"
)

// Step is one qm invocation in a template build.
type Step struct {
	// Name is the progress message shown when the step starts.
	Name string
	// Action completes "error <Action>" in failure messages.
	Action  string
	Command Command
}

// Observer is notified around every step.
type Observer interface {
	StepStarted(step Step)
	StepFinished(step Step, elapsed time.Duration, err error)
}

// Observers fans notifications out to every element.
type Observers []Observer

// StepStarted implements Observer.
func (o Observers) StepStarted(step Step) {
	for _, obs := range o {
		obs.StepStarted(step)
	}
}

// StepFinished implements Observer.
func (o Observers) StepFinished(step Step, elapsed time.Duration, err error) {
	for _, obs := range o {
		obs.StepFinished(step, elapsed, err)
	}
}

// Sequence runs steps in order through a Runner.
type Sequence struct {
	runner   Runner
	steps    []Step
	observer Observer
}

// NewSequence creates a Sequence. A nil observer is allowed.
func NewSequence(runner Runner, steps []Step, observer Observer) *Sequence {
	return &Sequence{runner: runner, steps: steps, observer: observer}
}

// Steps returns the four steps that build template t.
func Steps(t Template, cfg *config.Config) []Step {
	return []Step{
		{
			Name:    "Creating VM " + strconv.Itoa(t.VMID) + "...",
			Action:  "creating VM",
			Command: Command{Name: Binary, Args: CreateArgs(t.VMID, cfg)},
		},
		{
			Name:    "Importing disk...",
			Action:  "importing disk",
			Command: Command{Name: Binary, Args: ImportDiskArgs(t.VMID, t.ImagePath, cfg.Storage.DiskStorage)},
		},
		{
			Name:    "Configuring VM...",
			Action:  "configuring VM",
			Command: Command{Name: Binary, Args: SetArgs(t, cfg)},
		},
		{
			Name:    "Creating template...",
			Action:  "creating template",
			Command: Command{Name: Binary, Args: TemplateArgs(t.VMID)},
		},
	}
}

// Run executes every step in order. The first failing step ends the run
// with a *StepError; later steps are not executed.
func (s *Sequence) Run(ctx context.Context) error {
	for _, step := range s.steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Step: step, Err: err}
		}

		if s.observer != nil {
			s.observer.StepStarted(step)
		}

		start := time.Now()
		output, err := s.runner.Run(ctx, step.Command.Name, step.Command.Args...)
		elapsed := time.Since(start)

		if err != nil {
			stepErr := &StepError{Step: step, Output: output, Err: err}
			if s.observer != nil {
				s.observer.StepFinished(step, elapsed, stepErr)
			}
			return stepErr
		}

		if s.observer != nil {
			s.observer.StepFinished(step, elapsed, nil)
		}
	}
	return nil
}

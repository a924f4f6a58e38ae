package qm

import (
	"fmt"
	"strings"
)

// StepError reports a failed step together with the command's output.
type StepError struct {
	Step   Step
	Output []byte
	Err    error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("error %s: %v", e.Step.Action, e.Err)
	if out := strings.TrimSpace(string(e.Output)); out != "" {
		msg += "\nError output: " + out
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return e.Err
}

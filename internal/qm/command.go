package qm

import (
	"al.essio.dev/pkg/shellescape"
)

// redacted replaces secret argument values in printed command lines.
const redacted = "<redacted>"

// secretFlags take a secret as their next argument.
var secretFlags = map[string]bool{
	"--cipassword": true,
}

// Command is a program invocation.
type Command struct {
	Name string
	Args []string
}

// String renders the command as a shell-quoted line with secrets redacted.
func (c Command) String() string {
	return shellescape.QuoteCommand(append([]string{c.Name}, Redact(c.Args)...))
}

// Redact returns a copy of args with the values of secret flags replaced.
func Redact(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if secretFlags[out[i]] {
			out[i+1] = redacted
			i++
		}
	}
	return out
}

// Package logging builds the diagnostic logr.Logger used by the CLI.
//
// Progress output for the user is printed by the ui package; this logger is
// for details such as command lines, timings and retries, and writes to
// stderr so it never mixes with dry-run output on stdout.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// New returns a logger writing key=value lines to w. Messages at V(n) are
// emitted when n <= verbosity.
func New(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			_, _ = fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		_, _ = fmt.Fprintln(w, args)
	}, funcr.Options{
		Verbosity:    verbosity,
		LogTimestamp: verbosity > 1,
	})
}

// Stderr returns New(os.Stderr, verbosity).
func Stderr(verbosity int) logr.Logger {
	return New(os.Stderr, verbosity)
}

// IntoContext stores logger in ctx.
func IntoContext(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}

// FromContext returns the logger stored in ctx, or a logger that discards
// everything.
func FromContext(ctx context.Context) logr.Logger {
	logger, err := logr.FromContext(ctx)
	if err != nil {
		return logr.Discard()
	}
	return logger
}

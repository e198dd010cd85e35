package utils

import (
	"context"
	"io"
	"os"
)

// ExecOptions control how mutating commands are run. They travel in the
// context so deep callers need no extra parameters.
type ExecOptions struct {
	Verbose bool
	Quiet   bool
	DryRun  bool
}

type ctxKey int

const execOptsKey ctxKey = 1

func WithExecOptions(ctx context.Context, opts ExecOptions) context.Context {
	return context.WithValue(ctx, execOptsKey, opts)
}

func GetExecOptions(ctx context.Context) ExecOptions {
	if v, ok := ctx.Value(execOptsKey).(ExecOptions); ok {
		return v
	}
	return ExecOptions{}
}

// Streams returns where child output goes: the terminal unless Quiet is set.
func (o ExecOptions) Streams() (stdout, stderr io.Writer) {
	if o.Quiet {
		return io.Discard, io.Discard
	}
	return os.Stdout, os.Stderr
}

package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
)

type RunOptions struct {
	Dir    string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

type RunResult struct {
	Stdout []byte
	Stderr []byte
	// ExitCode is -1 when the process never started.
	ExitCode int
}

// Started reports whether the process was launched at all.
func (r RunResult) Started() bool {
	return r.ExitCode >= 0
}

// Runner starts external processes. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args []string, opts RunOptions) (RunResult, error)
}

type CmdRunner struct{}

func (CmdRunner) Run(ctx context.Context, name string, args []string, opts RunOptions) (RunResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	cmd.Stdin = opts.Stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = io.Writer(&stdout)
	if opts.Stdout != nil {
		cmd.Stdout = io.MultiWriter(&stdout, opts.Stdout)
	}
	cmd.Stderr = io.Writer(&stderr)
	if opts.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, opts.Stderr)
	}

	err := cmd.Run()
	res := RunResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	var ee *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.As(err, &ee):
		res.ExitCode = ee.ExitCode()
		err = fmt.Errorf("command failed: %s, stderr: %s", err, strings.TrimSpace(stderr.String()))
	default:
		res.ExitCode = -1
	}
	return res, err
}

var _ Runner = CmdRunner{}

// RunArgv runs argv[0] with the remaining words as arguments.
func RunArgv(ctx context.Context, r Runner, argv []string, opts RunOptions) (RunResult, error) {
	if len(argv) == 0 {
		return RunResult{ExitCode: -1}, errors.New("empty command line")
	}
	return r.Run(ctx, argv[0], argv[1:], opts)
}

// Quote renders argv as a copy-pasteable shell line.
func Quote(env []string, argv []string) string {
	words := make([]string, 0, len(env)+len(argv))
	words = append(words, env...)
	words = append(words, argv...)
	return shellquote.Join(words...)
}

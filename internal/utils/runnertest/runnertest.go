// Package runnertest provides a scripted utils.Runner for tests.
package runnertest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aottr/buildprep/internal/utils"
)

// Call is one recorded invocation.
type Call struct {
	Argv  []string
	Dir   string
	Env   []string
	Stdin string
}

// Line joins the argv with single spaces.
func (c Call) Line() string {
	return strings.Join(c.Argv, " ")
}

// Response is what a scripted command produces. ExitCode -1 simulates a
// binary that cannot be started.
type Response struct {
	Stdout   string
	ExitCode int
}

var ErrNotFound = errors.New("executable file not found in $PATH")

// Runner answers commands from a table keyed by the space joined argv.
// Unlisted commands behave like missing binaries unless Fallback is set.
type Runner struct {
	mu        sync.Mutex
	Responses map[string]Response
	Fallback  func(argv []string) Response
	Calls     []Call
}

func New() *Runner {
	return &Runner{Responses: map[string]Response{}}
}

// On scripts the response for a command line.
func (r *Runner) On(line string, resp Response) *Runner {
	r.Responses[line] = resp
	return r
}

// OK scripts a command line that succeeds with stdout.
func (r *Runner) OK(line, stdout string) *Runner {
	return r.On(line, Response{Stdout: stdout})
}

func (r *Runner) Run(_ context.Context, name string, args []string, opts utils.RunOptions) (utils.RunResult, error) {
	argv := append([]string{name}, args...)
	call := Call{Argv: argv, Dir: opts.Dir, Env: opts.Env}
	if opts.Stdin != nil {
		b, _ := io.ReadAll(opts.Stdin)
		call.Stdin = string(b)
	}

	r.mu.Lock()
	r.Calls = append(r.Calls, call)
	resp, ok := r.Responses[call.Line()]
	fallback := r.Fallback
	r.mu.Unlock()

	if !ok {
		if fallback == nil {
			return utils.RunResult{ExitCode: -1}, ErrNotFound
		}
		resp = fallback(argv)
	}
	if opts.Stdout != nil {
		io.WriteString(opts.Stdout, resp.Stdout)
	}
	res := utils.RunResult{Stdout: []byte(resp.Stdout), ExitCode: resp.ExitCode}
	switch {
	case resp.ExitCode < 0:
		return res, ErrNotFound
	case resp.ExitCode > 0:
		return res, fmt.Errorf("exit status %d", resp.ExitCode)
	}
	return res, nil
}

// Lines returns every recorded command line in call order.
func (r *Runner) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = c.Line()
	}
	return out
}

var _ utils.Runner = (*Runner)(nil)

// Package probe answers "is tool or library X usable?" by running external
// processes and reading their exit status and output.
package probe

import (
	"context"
	"os"
	"strings"

	"github.com/aottr/buildprep/internal/config"
	"github.com/aottr/buildprep/internal/gnargs"
	"github.com/aottr/buildprep/internal/report"
	"github.com/aottr/buildprep/internal/utils"
)

type Status int

const (
	NotFound Status = iota
	Found
	// ToolUnavailable means the prober could not ask at all, as opposed to
	// asking and hearing "no".
	ToolUnavailable
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case ToolUnavailable:
		return "unavailable"
	default:
		return "missing"
	}
}

// Result is the outcome of one capability check.
type Result struct {
	Status Status
	Value  gnargs.Value
	tool   *MetadataTool
}

func FoundValue(v gnargs.Value) Result {
	return Result{Status: Found, Value: v}
}

func Missing() Result {
	return Result{Status: NotFound}
}

func (r Result) OK() bool {
	return r.Status == Found
}

// MetadataTool returns the proof that a package-metadata tool works, if this
// result came from CheckMetadataTool.
func (r Result) MetadataTool() (MetadataTool, bool) {
	if r.Status != Found || r.tool == nil {
		return MetadataTool{}, false
	}
	return *r.tool, true
}

type Prober struct {
	Runner utils.Runner
	Tools  config.Tools
	Report *report.Reporter
}

func New(r utils.Runner, tools config.Tools, rep *report.Reporter) *Prober {
	if rep == nil {
		rep = report.Discard()
	}
	return &Prober{Runner: r, Tools: tools, Report: rep}
}

// Binary runs cmdline with optional input on stdin and reports whether it
// started and exited 0. Output is captured and dropped.
func (p *Prober) Binary(ctx context.Context, what string, cmdline []string, input string) bool {
	step := p.Report.Step("checking for " + what)
	if p.run(ctx, cmdline, input) {
		step.OK()
		return true
	}
	step.Fail("missing", report.Red)
	return false
}

func (p *Prober) run(ctx context.Context, cmdline []string, input string) bool {
	opts := utils.RunOptions{}
	if input != "" {
		opts.Stdin = strings.NewReader(input)
	}
	res, err := utils.RunArgv(ctx, p.Runner, cmdline, opts)
	return err == nil && res.ExitCode == 0
}

// Version checks that "<tool> --version" succeeds.
func (p *Prober) Version(ctx context.Context, what string, tool []string) Result {
	if !p.Binary(ctx, what, words(tool, "--version"), "") {
		return Missing()
	}
	return FoundValue(gnargs.String(utils.Quote(nil, tool)))
}

// Compiler identifies one of the fixed compile probes.
type Compiler int

const (
	CompilerC Compiler = iota
	CompilerCXX
	CompilerLibcxx
	CompilerLibcxxABI
)

type compileProbe struct {
	what   string
	cxx    bool
	flags  []string
	source string
}

var compileProbes = map[Compiler]compileProbe{
	CompilerC: {
		what:   "cc",
		flags:  []string{"-x", "c"},
		source: "int main(void) { return 0; }\n",
	},
	CompilerCXX: {
		what:   "c++",
		cxx:    true,
		flags:  []string{"-x", "c++", "-std=c++11"},
		source: "int main() { return 1; }\n",
	},
	CompilerLibcxx: {
		what:   "libc++",
		cxx:    true,
		flags:  []string{"-x", "c++", "-std=c++11", "-stdlib=libc++"},
		source: "#include <chrono>\n\nint main() { return std::chrono::seconds(1).count(); }\n",
	},
	// -I/usr/include/libcxxabi works around Ubuntu shipping cxxabi.h outside
	// the default search path.
	CompilerLibcxxABI: {
		what:   "libc++abi",
		cxx:    true,
		flags:  []string{"-x", "c++", "-std=c++11", "-stdlib=libc++", "-I/usr/include/libcxxabi"},
		source: "#include <cxxabi.h>\n\nint main() { return 0; }\n",
	},
}

// CompileCommand returns the command line used for kind.
func (p *Prober) CompileCommand(kind Compiler) []string {
	cp := compileProbes[kind]
	exe := p.Tools.CC
	if cp.cxx {
		exe = p.Tools.CXX
	}
	argv := words(exe, cp.flags...)
	return append(argv, "-", "-o", os.DevNull)
}

// Compiler compiles a fixed snippet fed on stdin, discarding the binary.
func (p *Prober) Compiler(ctx context.Context, kind Compiler) Result {
	cp := compileProbes[kind]
	if !p.Binary(ctx, cp.what, p.CompileCommand(kind), cp.source) {
		return Missing()
	}
	exe := p.Tools.CC
	if cp.cxx {
		exe = p.Tools.CXX
	}
	return FoundValue(gnargs.String(utils.Quote(nil, exe)))
}

// Interpreter returns the first python that runs, defaulting to python3.
func (p *Prober) Interpreter(ctx context.Context) string {
	for _, name := range []string{"python3", "python"} {
		if p.run(ctx, []string{name, "--version"}, "") {
			return name
		}
	}
	return "python3"
}

func words(base []string, extra ...string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

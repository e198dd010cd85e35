package deps

import (
	"context"
	"fmt"

	"github.com/aottr/buildprep/internal/brew"
	"github.com/aottr/buildprep/internal/platform"
	"github.com/aottr/buildprep/internal/probe"
)

// Checker verifies one dependency by running a capability probe.
type Checker func(ctx context.Context, p *probe.Prober) probe.Result

func compiler(kind probe.Compiler) Checker {
	return func(ctx context.Context, p *probe.Prober) probe.Result {
		return p.Compiler(ctx, kind)
	}
}

func checkGN(ctx context.Context, p *probe.Prober) probe.Result {
	return p.Version(ctx, "gn", p.Tools.GN)
}

func checkNinja(ctx context.Context, p *probe.Prober) probe.Result {
	return p.Version(ctx, "ninja", p.Tools.Ninja)
}

// MetadataToolName is the dependency whose checker yields the pkg-config
// proof token.
const MetadataToolName = "pkg-config"

func checkPkgConfig(ctx context.Context, p *probe.Prober) probe.Result {
	return p.CheckMetadataTool(ctx)
}

var (
	linuxCheckers = map[string]Checker{
		"cc":         compiler(probe.CompilerC),
		"c++":        compiler(probe.CompilerCXX),
		"libc++":     compiler(probe.CompilerLibcxx),
		"libc++abi":  compiler(probe.CompilerLibcxxABI),
		MetadataToolName: checkPkgConfig,
		"gn":         checkGN,
		"ninja":      checkNinja,
	}
	androidCheckers = map[string]Checker{
		"c++":   compiler(probe.CompilerCXX),
		"gn":    checkGN,
		"ninja": checkNinja,
	}
	macCheckers = map[string]Checker{
		"brew":       brew.Check,
		"c++":        compiler(probe.CompilerCXX),
		"libc++":     compiler(probe.CompilerLibcxx),
		MetadataToolName: checkPkgConfig,
		"gn":         checkGN,
		"ninja":      checkNinja,
	}
	winCheckers = map[string]Checker{
		"gn":    checkGN,
		"ninja": checkNinja,
	}
)

// Pair is a (host, target) combination.
type Pair struct {
	Host   platform.OS
	Target platform.OS
}

var checkerTable = map[Pair]map[string]Checker{
	{platform.OSLinux, platform.OSLinux}:   linuxCheckers,
	{platform.OSLinux, platform.OSAndroid}: androidCheckers,
	{platform.OSMac, platform.OSMac}:       macCheckers,
	{platform.OSMac, platform.OSIOS}:       macCheckers,
	{platform.OSWin, platform.OSWin}:       winCheckers,
}

// capabilities holds every name that is verified by a checker on some pair.
// Such a name is never looked up through pkg-config, even on a pair that
// does not check it.
var capabilities = func() map[string]struct{} {
	out := map[string]struct{}{}
	for _, cs := range checkerTable {
		for name := range cs {
			out[name] = struct{}{}
		}
	}
	return out
}()

type Kind int

const (
	KindPackage Kind = iota
	KindChecker
	KindNotApplicable
)

// Checkers is the checker set for one (host, target) pair.
type Checkers struct {
	checks map[string]Checker
}

// CheckersFor returns the checker set for a pair, or ErrUnsupported.
func CheckersFor(host, target platform.OS) (Checkers, error) {
	cs, ok := checkerTable[Pair{host, target}]
	if !ok {
		return Checkers{}, fmt.Errorf("%w: cannot build for %s on %s", ErrUnsupported, target, host)
	}
	return Checkers{checks: cs}, nil
}

// NewCheckers builds a custom checker set.
func NewCheckers(checks map[string]Checker) Checkers {
	return Checkers{checks: checks}
}

// Has reports whether name is verified by a checker in this set.
func (c Checkers) Has(name string) bool {
	_, ok := c.checks[name]
	return ok
}

// Classify says how name is verified on this pair.
func (c Checkers) Classify(name string) (Checker, Kind) {
	if chk, ok := c.checks[name]; ok {
		return chk, KindChecker
	}
	if _, ok := capabilities[name]; ok {
		return nil, KindNotApplicable
	}
	return nil, KindPackage
}

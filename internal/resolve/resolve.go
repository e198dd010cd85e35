// Package resolve walks a profile's dependency list, probes each entry and
// turns whatever is missing into a remediation plan.
package resolve

import (
	"context"
	"sort"
	"strings"

	"github.com/aottr/buildprep/internal/deps"
	"github.com/aottr/buildprep/internal/gnargs"
	"github.com/aottr/buildprep/internal/probe"
	"github.com/aottr/buildprep/internal/utils"
)

type State int

const (
	Satisfied State = iota
	Missing
	// Unknown means the entry needs pkg-config and no working pkg-config
	// has been found. The tool itself is already reported missing.
	Unknown
	// NotApplicable entries are checked on other host/target pairs only.
	NotApplicable
)

func (s State) String() string {
	switch s {
	case Satisfied:
		return "satisfied"
	case Missing:
		return "missing"
	case Unknown:
		return "unknown"
	}
	return "n/a"
}

type Resolver struct {
	Prober   *probe.Prober
	Checkers deps.Checkers
	// Exists reports whether a source registration artifact is present.
	// Defaults to a file system check.
	Exists func(path string) bool
}

type Result struct {
	// Config maps every satisfied dependency to its resolved value.
	Config gnargs.Map
	// Packages holds the pkg-config answers for package-backed entries.
	Packages map[string]probe.Metadata
	States   map[string]State
	// Missing is sorted.
	Missing []string
	Plan    Plan
}

func (r Result) Satisfied() bool {
	return len(r.Missing) == 0
}

// toolArgs names the checker results handed to the generator.
var toolArgs = map[string]string{
	"cc":    "cc",
	"c++":   "cxx",
	"gn":    "gn",
	"ninja": "ninja",
}

// Args returns the generator arguments derived from the resolved config:
// tool locations plus one nested mapping per package-backed dependency.
func (r Result) Args() gnargs.Map {
	out := gnargs.Map{}
	for name, key := range toolArgs {
		if v, ok := r.Config[name]; ok {
			out[key] = v
		}
	}
	for name, m := range r.Packages {
		out[gnargs.Identifier(name)] = m.Value()
	}
	return out
}

// Resolve probes every dependency of profile once, in declaration order.
// Package-backed entries are only queried after the pkg-config checker
// succeeded earlier in the same pass.
func (r *Resolver) Resolve(ctx context.Context, profile deps.Profile, codename string) Result {
	res := Result{
		Config:   gnargs.Map{},
		Packages: map[string]probe.Metadata{},
		States:   map[string]State{},
	}
	var (
		tool    probe.MetadataTool
		hasTool bool
	)
	for _, entry := range profile.Packages {
		name := entry.Name
		if _, done := res.States[name]; done {
			continue
		}
		check, kind := r.Checkers.Classify(name)
		switch kind {
		case deps.KindNotApplicable:
			res.States[name] = NotApplicable
		case deps.KindChecker:
			out := check(ctx, r.Prober)
			if !out.OK() {
				res.States[name] = Missing
				continue
			}
			res.States[name] = Satisfied
			res.Config[name] = out.Value
			if t, ok := out.MetadataTool(); ok {
				tool, hasTool = t, true
			}
		case deps.KindPackage:
			if !hasTool {
				res.States[name] = Unknown
				continue
			}
			m, status := r.Prober.PackageMetadata(ctx, tool, name)
			switch status {
			case probe.Found:
				res.States[name] = Satisfied
				res.Packages[name] = m
				res.Config[name] = m.Value()
			case probe.ToolUnavailable:
				// pkg-config vanished mid-run; skip the rest quietly.
				hasTool = false
				res.States[name] = Unknown
			default:
				res.States[name] = Missing
			}
		}
	}

	var skipped []string
	for name, st := range res.States {
		switch st {
		case Missing:
			res.Missing = append(res.Missing, name)
		case Unknown:
			skipped = append(skipped, name)
		}
	}
	sort.Strings(res.Missing)
	// A missing pkg-config is already reported; a pair that never checks it
	// would otherwise skip these without a word.
	if len(skipped) > 0 && !r.Checkers.Has(deps.MetadataToolName) && r.Prober != nil {
		sort.Strings(skipped)
		r.Prober.Report.Printf("skipped: %s not checked on this target (%s)\n",
			deps.MetadataToolName, strings.Join(skipped, ", "))
	}
	if len(res.Missing) > 0 {
		exists := r.Exists
		if exists == nil {
			exists = utils.Exists
		}
		res.Plan = BuildPlan(profile, res.Missing, codename, exists)
	}
	return res
}

package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aottr/buildprep/internal/deps"
	"github.com/aottr/buildprep/internal/platform"
	"github.com/aottr/buildprep/internal/report"
	"github.com/aottr/buildprep/internal/utils"
)

var (
	ErrMissing = errors.New("missing dependencies")
	ErrManual  = errors.New("dependencies must be installed manually")
)

// Command is one remediation step.
type Command struct {
	Env  []string
	Args []string
}

func (c Command) String() string {
	return utils.Quote(c.Env, c.Args)
}

// Plan is the ordered list of commands that fixes a Result: key imports and
// repository registrations per new source, one update, one install.
type Plan struct {
	Commands []Command
	// Packages is the sorted, de-duplicated install list.
	Packages []string
	// Unpackaged dependencies have no package in the profile.
	Unpackaged []string
	Hint       string
	// Notes explain sources that were left out.
	Notes []string
}

func (p Plan) Empty() bool {
	return len(p.Commands) == 0 && len(p.Unpackaged) == 0
}

// BuildPlan synthesizes the commands for the missing dependency names.
// A source is skipped when no missing package comes from it, when its
// registration artifact already exists, or when it is templated on a
// codename that could not be detected.
func BuildPlan(profile deps.Profile, missing []string, codename string, exists func(string) bool) Plan {
	plan := Plan{Hint: profile.Hint}
	for _, name := range missing {
		pkg, _ := profile.Packages.Lookup(name)
		if pkg == "" || len(profile.Install) == 0 {
			plan.Unpackaged = append(plan.Unpackaged, name)
			continue
		}
		plan.Packages = append(plan.Packages, pkg)
	}
	// Two dependencies may share a package.
	plan.Packages = utils.Dedupe(plan.Packages)
	sort.Strings(plan.Packages)
	sort.Strings(plan.Unpackaged)
	if len(plan.Packages) == 0 {
		return plan
	}

	registered := false
	for _, src := range profile.Sources {
		if !src.Serves(plan.Packages) {
			continue
		}
		if src.NeedsCodename() && !knownCodename(codename) {
			plan.Notes = append(plan.Notes, fmt.Sprintf(
				"not adding source %s: distribution codename unknown, rerun with --codename", src.ID))
			continue
		}
		vars := sourceVars(src, profile.Registration, codename)
		if path := vars["registration"]; path != "" && exists(path) {
			continue
		}
		if src.Key != "" && len(profile.AddKey) > 0 {
			plan.add(profile.Env, profile.AddKey.Expand(vars))
		}
		plan.add(profile.Env, profile.AddRepo.Expand(vars))
		registered = true
	}
	if registered && len(profile.Update) > 0 {
		plan.add(profile.Env, profile.Update.Expand(map[string]string{"codename": codename}))
	}
	install := profile.Install.Expand(map[string]string{"codename": codename})
	plan.add(profile.Env, append(install, plan.Packages...))
	return plan
}

func knownCodename(c string) bool {
	return c != "" && c != platform.UnknownDistribution.Codename
}

func (p *Plan) add(env, args []string) {
	p.Commands = append(p.Commands, Command{Env: env, Args: args})
}

func sourceVars(src deps.Source, registration, codename string) map[string]string {
	sub := strings.NewReplacer("{codename}", codename)
	vars := map[string]string{
		"id":        src.ID,
		"url":       sub.Replace(src.URL),
		"component": sub.Replace(src.Component),
		"key":       sub.Replace(src.Key),
		"codename":  codename,
	}
	reg := utils.FirstNonEmpty(src.Registration, registration)
	vars["registration"] = strings.NewReplacer("{id}", src.ID, "{codename}", codename).Replace(reg)
	return vars
}

// Check prints what is missing and the commands that would fix it. It never
// runs anything and returns ErrMissing when the result is unsatisfied.
func Check(rep *report.Reporter, res Result) error {
	if res.Satisfied() {
		return nil
	}
	rep.Println()
	rep.Printf("%s %s\n", rep.Tint("missing:", report.Red), strings.Join(res.Missing, ", "))
	printPlan(rep, res.Plan)
	return fmt.Errorf("%w: %s", ErrMissing, strings.Join(res.Missing, ", "))
}

func printPlan(rep *report.Reporter, plan Plan) {
	for _, n := range plan.Notes {
		rep.Println(rep.Tint("note:", report.Yellow) + " " + n)
	}
	if len(plan.Commands) > 0 {
		rep.Println("run:")
		for _, c := range plan.Commands {
			rep.Println("    " + c.String())
		}
	}
	if len(plan.Unpackaged) > 0 {
		rep.Printf("install manually: %s\n", strings.Join(plan.Unpackaged, ", "))
		if plan.Hint != "" {
			rep.Println("    " + plan.Hint)
		}
	}
}

type Installer struct {
	Runner utils.Runner
	Report *report.Reporter
	// Stdin is handed to every command so sudo can prompt.
	Stdin io.Reader
}

// Install runs the plan's commands in order and stops at the first failure.
// With DryRun in the context it only prints them.
func (in *Installer) Install(ctx context.Context, plan Plan) error {
	opts := utils.GetExecOptions(ctx)
	stdout, stderr := opts.Streams()
	for _, n := range plan.Notes {
		in.Report.Println(in.Report.Tint("note:", report.Yellow) + " " + n)
	}
	for _, c := range plan.Commands {
		in.Report.Println(in.Report.Tint("+ ", report.Blue) + c.String())
		if opts.DryRun {
			continue
		}
		_, err := utils.RunArgv(ctx, in.Runner, c.Args, utils.RunOptions{
			Env:    c.Env,
			Stdin:  in.Stdin,
			Stdout: stdout,
			Stderr: stderr,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", c, err)
		}
	}
	if len(plan.Unpackaged) > 0 {
		printPlan(in.Report, Plan{Unpackaged: plan.Unpackaged, Hint: plan.Hint})
		if !opts.DryRun {
			return fmt.Errorf("%w: %s", ErrManual, strings.Join(plan.Unpackaged, ", "))
		}
	}
	return nil
}

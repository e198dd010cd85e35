package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/aottr/buildprep/internal/config"
	"github.com/aottr/buildprep/internal/deps"
	"github.com/aottr/buildprep/internal/platform"
	"github.com/aottr/buildprep/internal/probe"
	"github.com/aottr/buildprep/internal/report"
	"github.com/aottr/buildprep/internal/resolve"
	"github.com/aottr/buildprep/internal/utils"
)

// session is everything detected once per run.
type session struct {
	tools   config.Tools
	host    platform.Identity
	dist    platform.Distribution
	profile deps.Profile
	report  *report.Reporter
	runner  utils.Runner
	prober  *probe.Prober
}

func newSession(cmd *cli.Command) *session {
	tools, err := config.Load(cmd.String("env-file"))
	if err != nil {
		log.Fatalf("failed to load tool overrides: %v", err)
	}
	host := platform.GetIdentity()
	dist := platform.DetectDistribution(cmd.String("os-release"))
	if c := cmd.String("codename"); c != "" {
		dist.Codename = c
	}

	profiles, err := deps.LoadProfiles(cmd.String("profiles"))
	if err != nil {
		log.Fatalf("failed to load profiles: %v", err)
	}
	name, err := deps.ProfileName(host.OS, dist, cmd.String("distro"))
	if err != nil {
		log.Fatalf("%v", err)
	}
	profile, err := profiles.For(name, tools)
	if err != nil {
		log.Fatalf("%v", err)
	}

	rep := report.New(os.Stdout)
	runner := utils.CmdRunner{}
	return &session{
		tools:   tools,
		host:    host,
		dist:    dist,
		profile: profile,
		report:  rep,
		runner:  runner,
		prober:  probe.New(runner, tools, rep),
	}
}

// resolve probes the profile for building target on this host. A pair
// without a checker table is fatal.
func (s *session) resolve(ctx context.Context, target platform.OS) resolve.Result {
	checkers, err := deps.CheckersFor(s.host.OS, target)
	if err != nil {
		log.Fatalf("%v", err)
	}
	r := &resolve.Resolver{Prober: s.prober, Checkers: checkers}
	return r.Resolve(ctx, s.profile, s.dist.Codename)
}

func execOptions(ctx context.Context, cmd *cli.Command, dryRun bool) context.Context {
	return utils.WithExecOptions(ctx, utils.ExecOptions{
		Verbose: cmd.Bool("verbose"),
		Quiet:   cmd.Bool("quiet"),
		DryRun:  dryRun,
	})
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/aottr/buildprep/internal/bootstrap"
	"github.com/aottr/buildprep/internal/config"
	"github.com/aottr/buildprep/internal/gen"
	"github.com/aottr/buildprep/internal/gnargs"
	"github.com/aottr/buildprep/internal/platform"
	"github.com/aottr/buildprep/internal/resolve"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "buildprep",
		Usage: "Check build dependencies and configure the build",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "distro",
				Usage: "profile to use instead of the detected one",
			},
			&cli.StringFlag{
				Name:  "codename",
				Usage: "distribution codename used in repository URLs",
			},
			&cli.StringFlag{
				Name:  "profiles",
				Usage: "YAML profile table (default: built-in)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file with CC, CXX, GN, NINJA, PKG_CONFIG, BREW overrides",
				Value: config.DefaultEnvFile,
			},
			&cli.StringFlag{
				Name:   "os-release",
				Value:  platform.DefaultOSRelease,
				Hidden: true,
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "project root",
				Value: ".",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "hide the output of package managers and gn",
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "check",
				Aliases: []string{"c"},
				Usage:   "Report missing dependencies and how to install them",
				Flags: []cli.Flag{
					// check never runs anything; the flag is accepted so
					// "check --dry-run" and "install --dry-run" read alike.
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "no-op, check never changes the host",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s := newSession(cmd)
					ctx = execOptions(ctx, cmd, false)
					return resolve.Check(s.report, s.resolve(ctx, s.host.OS))
				},
			},
			{
				Name:    "install",
				Aliases: []string{"i"},
				Usage:   "Install missing dependencies",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "print the commands without running them",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s := newSession(cmd)
					dryRun := cmd.Bool("dry-run")
					ctx = execOptions(ctx, cmd, dryRun)

					res := s.resolve(ctx, s.host.OS)
					if res.Satisfied() {
						fmt.Println("All dependencies satisfied")
						return nil
					}
					in := &resolve.Installer{Runner: s.runner, Report: s.report, Stdin: os.Stdin}
					if err := in.Install(ctx, res.Plan); err != nil {
						return err
					}
					if dryRun {
						return nil
					}

					// Probe once more so the user sees what is still missing.
					fmt.Println()
					return resolve.Check(s.report, s.resolve(ctx, s.host.OS))
				},
			},
			{
				Name:    "gen",
				Aliases: []string{"g"},
				Usage:   "Generate out/<os>/<mode> with gn",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "target-os",
						Usage: "[linux|mac|win|ios|android] (default: host)",
					},
					&cli.StringFlag{
						Name:  "target-cpu",
						Usage: "target cpu (default: host)",
					},
					&cli.StringFlag{
						Name:  "mode",
						Value: "debug",
						Usage: "[debug|release]",
						Validator: func(m string) error {
							switch m {
							case "debug", "release":
								return nil
							default:
								return fmt.Errorf("invalid mode: %s", m)
							}
						},
					},
					&cli.StringFlag{
						Name:  "args-file",
						Usage: "YAML mapping of extra gn arguments",
					},
					&cli.StringSliceFlag{
						Name:  "arg",
						Usage: "extra gn argument KEY=VALUE",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s := newSession(cmd)
					ctx = execOptions(ctx, cmd, false)

					target := s.host.OS
					if t := cmd.String("target-os"); t != "" {
						var err error
						if target, err = platform.ParseOS(t); err != nil {
							return err
						}
					}
					cpu := cmd.String("target-cpu")
					if cpu == "" {
						cpu = s.host.CPU
					}

					fileArgs, err := loadArgsFile(cmd.String("args-file"))
					if err != nil {
						return err
					}
					flagArgs, err := parseArgs(cmd.StringSlice("arg"))
					if err != nil {
						return err
					}

					res := s.resolve(ctx, target)
					if err := resolve.Check(s.report, res); err != nil {
						return err
					}

					e := &gen.Emitter{Runner: s.runner, Report: s.report, Root: cmd.String("root"), HostOS: s.host.OS}
					dir, err := e.Emit(ctx, gen.BuildConfig{
						TargetOS:    target,
						TargetCPU:   cpu,
						Mode:        cmd.String("mode"),
						GN:          s.tools.GN,
						Ninja:       s.tools.Ninja,
						Args:        gnargs.Merge(gnargs.Merge(res.Args(), fileArgs), flagArgs),
						Interpreter: s.prober.Interpreter(ctx),
					})
					var exit *gen.ExitError
					if errors.As(err, &exit) {
						return cli.Exit(err.Error(), exit.Code)
					}
					if err != nil {
						return err
					}
					fmt.Printf("Generated %s\n", dir)
					return nil
				},
			},
			{
				Name:  "bootstrap",
				Usage: "Build gn and ninja from ext/ when bin/ lacks them",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "ext-dir",
						Value: "ext",
					},
					&cli.StringFlag{
						Name:  "bin-dir",
						Value: "bin",
					},
					&cli.BoolFlag{
						Name: "dry-run",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s := newSession(cmd)
					ctx = execOptions(ctx, cmd, cmd.Bool("dry-run"))
					root := cmd.String("root")
					b := &bootstrap.Builder{
						Runner: s.runner,
						Report: s.report,
						ExtDir: filepath.Join(root, cmd.String("ext-dir")),
						BinDir: filepath.Join(root, cmd.String("bin-dir")),
						Python: s.prober.Interpreter(ctx),
						HostOS: s.host.OS,
					}
					return b.Run(ctx)
				},
			},
			{
				Name:  "info",
				Usage: "Print the detected host and distribution",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s := newSession(cmd)
					out, err := yaml.Marshal(struct {
						Host         platform.Identity     `yaml:"host"`
						Distribution platform.Distribution `yaml:"distribution"`
						Profile      string                `yaml:"profile"`
						Manager      string                `yaml:"manager,omitempty"`
						Tools        config.Tools          `yaml:"tools"`
					}{s.host, s.dist, s.profile.Name, s.profile.Manager.Name, s.tools})
					if err != nil {
						return err
					}
					fmt.Print(string(out))
					return nil
				},
			},
		},
	}
}

// Package gen writes the project's build configuration: the .gn marker, the
// out/<os>/<mode> tree via gn, the out/cur alias and the build wrapper.
package gen

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aottr/buildprep/internal/gnargs"
	"github.com/aottr/buildprep/internal/platform"
	"github.com/aottr/buildprep/internal/report"
	"github.com/aottr/buildprep/internal/utils"
)

const (
	MarkerFile  = ".gn"
	OutDir      = "out"
	Alias       = "cur"
	WrapperName = "build"
	// BuildConfigFile is the generator's entry point.
	BuildConfigFile = "//build/BUILDCONFIG.gn"
)

type BuildConfig struct {
	TargetOS  platform.OS
	TargetCPU string
	Mode      string
	GN        []string
	Ninja     []string
	// Args are the resolved tool and package arguments plus any extras.
	Args        gnargs.Map
	Interpreter string
}

// Dir is the generated directory relative to the project root.
func (c BuildConfig) Dir() string {
	return filepath.Join(OutDir, string(c.TargetOS), c.Mode)
}

// GNArgs returns everything passed through --args. target_os, target_cpu
// and mode always reflect the config, whatever Args says.
func (c BuildConfig) GNArgs() gnargs.Map {
	return gnargs.Merge(c.Args, gnargs.Map{
		"target_os":  gnargs.String(string(c.TargetOS)),
		"target_cpu": gnargs.String(c.TargetCPU),
		"mode":       gnargs.String(c.Mode),
	})
}

// ExitError carries the generator's nonzero exit status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("gn gen exited with status %d", e.Code)
}

type Emitter struct {
	Runner utils.Runner
	Report *report.Reporter
	// Root is the project directory. Defaults to ".".
	Root   string
	HostOS platform.OS
}

func (e *Emitter) path(elem ...string) string {
	return filepath.Join(append([]string{utils.WithDefault(e.Root, ".")}, elem...)...)
}

// Emit generates cfg and returns the generated directory.
func (e *Emitter) Emit(ctx context.Context, cfg BuildConfig) (string, error) {
	if cfg.TargetOS == "" || cfg.Mode == "" {
		return "", errors.New("target os and mode are required")
	}
	if len(cfg.GN) == 0 {
		return "", errors.New("no gn command")
	}
	if err := e.writeMarker(cfg.Interpreter); err != nil {
		return "", err
	}

	step := e.Report.Step("generating build.ninja")
	if err := utils.EnsureDir(e.path(OutDir)); err != nil {
		step.Fail("failed", report.Red)
		return "", fmt.Errorf("failed to create %s: %w", OutDir, err)
	}
	if err := e.replaceAlias(cfg); err != nil {
		step.Fail("failed", report.Red)
		return "", fmt.Errorf("failed to update %s: %w", filepath.Join(OutDir, Alias), err)
	}

	stdout, stderr := utils.GetExecOptions(ctx).Streams()
	argv := append(append([]string(nil), cfg.GN...),
		"gen", "--export-compile-commands", "-q", cfg.Dir(), "--args="+gnargs.Serialize(cfg.GNArgs()))
	res, err := utils.RunArgv(ctx, e.Runner, argv, utils.RunOptions{
		Dir:    utils.WithDefault(e.Root, "."),
		Stdout: stdout,
		Stderr: stderr,
	})
	if !res.Started() {
		step.Fail("failed", report.Red)
		return "", fmt.Errorf("failed to run %s: %w", cfg.GN[0], err)
	}
	if res.ExitCode != 0 {
		step.Fail("failed", report.Red)
		return "", &ExitError{Code: res.ExitCode}
	}
	step.OK()

	if e.HostOS != platform.OSWin {
		if err := e.writeWrapper(cfg); err != nil {
			return "", err
		}
	}
	return cfg.Dir(), nil
}

func (e *Emitter) writeMarker(interpreter string) error {
	body := fmt.Sprintf("buildconfig = %q\nscript_executable = %q\n",
		BuildConfigFile, utils.WithDefault(interpreter, "python3"))
	if err := utils.WriteIfChanged(e.path(MarkerFile), []byte(body), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", MarkerFile, err)
	}
	return nil
}

// replaceAlias points out/cur at the new directory. Hosts without symlinks
// get a plain file holding the relative path.
func (e *Emitter) replaceAlias(cfg BuildConfig) error {
	alias := e.path(OutDir, Alias)
	rel := filepath.Join(string(cfg.TargetOS), cfg.Mode)
	if e.HostOS != platform.OSWin {
		return utils.Symlink(rel, alias)
	}
	if err := os.Remove(alias); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(alias, []byte(rel+"\n"), 0o644)
}

func (e *Emitter) writeWrapper(cfg BuildConfig) error {
	ninja := cfg.Ninja
	if len(ninja) == 0 {
		ninja = []string{"ninja"}
	}
	body := fmt.Sprintf("#!/bin/sh\nexec %s -C \"$(dirname \"$0\")\" \"$@\"\n", utils.Quote(nil, ninja))
	path := e.path(cfg.Dir(), WrapperName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := utils.WriteIfChanged(path, []byte(body), 0o755); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return os.Chmod(path, 0o755)
}

// Package bootstrap builds gn and ninja from the vendored sources under ext/
// when bin/ does not already provide them.
package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aottr/buildprep/internal/platform"
	"github.com/aottr/buildprep/internal/report"
	"github.com/aottr/buildprep/internal/utils"
)

type Builder struct {
	Runner utils.Runner
	Report *report.Reporter
	ExtDir string
	BinDir string
	// Python defaults to python3.
	Python string
	HostOS platform.OS
}

type tool struct {
	name string
	// built is the binary's path relative to its source directory.
	built string
	steps [][]string
}

func (b *Builder) tools() []tool {
	py := utils.WithDefault(b.Python, "python3")
	return []tool{
		{
			name:  "ninja",
			built: b.exe("ninja"),
			steps: [][]string{{py, "./configure.py", "--bootstrap"}},
		},
		{
			name:  "gn",
			built: filepath.Join("out", b.exe("gn")),
			steps: [][]string{
				{py, "build/gen.py"},
				{filepath.Join("..", "ninja", b.exe("ninja")), "-C", "out", "gn"},
			},
		},
	}
}

func (b *Builder) exe(name string) string {
	if b.HostOS == platform.OSWin {
		return name + ".exe"
	}
	return name
}

// Paths returns where gn and ninja end up.
func (b *Builder) Paths() (gn, ninja string) {
	return filepath.Join(b.BinDir, b.exe("gn")), filepath.Join(b.BinDir, b.exe("ninja"))
}

// Run builds whichever of ninja and gn is missing from BinDir. ninja goes
// first because the gn build uses it.
func (b *Builder) Run(ctx context.Context) error {
	opts := utils.GetExecOptions(ctx)
	stdout, stderr := opts.Streams()
	for _, t := range b.tools() {
		bin := filepath.Join(b.BinDir, b.exe(t.name))
		if utils.Exists(bin) {
			if opts.Verbose {
				b.Report.Printf("%s already present at %s\n", t.name, bin)
			}
			continue
		}
		src := filepath.Join(b.ExtDir, t.name)
		b.Report.Printf("CD %s\n", utils.Quote(nil, []string{src}))
		for _, argv := range t.steps {
			b.Report.Printf("RUN %s\n", utils.Quote(nil, argv))
			if opts.DryRun {
				continue
			}
			_, err := utils.RunArgv(ctx, b.Runner, argv, utils.RunOptions{Dir: src, Stdout: stdout, Stderr: stderr})
			if err != nil {
				return fmt.Errorf("failed to build %s: %w", t.name, err)
			}
		}
		if opts.DryRun {
			continue
		}
		built, err := filepath.Abs(filepath.Join(src, t.built))
		if err != nil {
			return err
		}
		if !utils.Exists(built) {
			return fmt.Errorf("building %s did not produce %s", t.name, built)
		}
		if err := utils.Symlink(built, bin); err != nil {
			return fmt.Errorf("failed to link %s: %w", bin, err)
		}
	}
	return nil
}

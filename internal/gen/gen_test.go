package gen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aottr/buildprep/internal/gnargs"
	"github.com/aottr/buildprep/internal/platform"
	"github.com/aottr/buildprep/internal/report"
	"github.com/aottr/buildprep/internal/utils"
	"github.com/aottr/buildprep/internal/utils/runnertest"
)

func okRunner() *runnertest.Runner {
	r := runnertest.New()
	r.Fallback = func([]string) runnertest.Response { return runnertest.Response{} }
	return r
}

func quietCtx() context.Context {
	return utils.WithExecOptions(context.Background(), utils.ExecOptions{Quiet: true})
}

func config(mode string) BuildConfig {
	return BuildConfig{
		TargetOS:  platform.OSLinux,
		TargetCPU: "x64",
		Mode:      mode,
		GN:        []string{"gn"},
		Ninja:     []string{"/opt/ninja dir/ninja"},
		Args: gnargs.Map{
			"cc":        gnargs.String("clang"),
			"target_os": gnargs.String("bogus"),
			"zlib":      gnargs.Nested(gnargs.Map{"libs": gnargs.Strings("z")}),
		},
		Interpreter: "python3",
	}
}

func TestEmit(t *testing.T) {
	root := t.TempDir()
	r := okRunner()
	e := &Emitter{Runner: r, Report: report.Discard(), Root: root, HostOS: platform.OSLinux}

	dir, err := e.Emit(quietCtx(), config("debug"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "linux", "debug"), dir)

	marker, err := os.ReadFile(filepath.Join(root, ".gn"))
	require.NoError(t, err)
	assert.Equal(t, "buildconfig = \"//build/BUILDCONFIG.gn\"\nscript_executable = \"python3\"\n", string(marker))

	require.Len(t, r.Calls, 1)
	assert.Equal(t, root, r.Calls[0].Dir)
	assert.Equal(t, []string{
		"gn", "gen", "--export-compile-commands", "-q", dir,
		`--args=cc = "clang" mode = "debug" target_cpu = "x64" target_os = "linux" zlib_libs = ["z"]`,
	}, r.Calls[0].Argv)

	link, err := os.Readlink(filepath.Join(root, "out", "cur"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("linux", "debug"), link)

	wrapper := filepath.Join(root, dir, "build")
	body, err := os.ReadFile(wrapper)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\nexec '/opt/ninja dir/ninja' -C \"$(dirname \"$0\")\" \"$@\"\n", string(body))
	fi, err := os.Stat(wrapper)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), fi.Mode().Perm())
}

func TestAliasFollowsLatest(t *testing.T) {
	root := t.TempDir()
	e := &Emitter{Runner: okRunner(), Report: report.Discard(), Root: root, HostOS: platform.OSLinux}

	_, err := e.Emit(quietCtx(), config("debug"))
	require.NoError(t, err)
	_, err = e.Emit(quietCtx(), config("release"))
	require.NoError(t, err)

	link, err := os.Readlink(filepath.Join(root, "out", "cur"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("linux", "release"), link)
}

func TestGeneratorExitCodePropagates(t *testing.T) {
	root := t.TempDir()
	r := runnertest.New()
	r.Fallback = func([]string) runnertest.Response { return runnertest.Response{ExitCode: 3} }
	e := &Emitter{Runner: r, Report: report.Discard(), Root: root, HostOS: platform.OSLinux}

	_, err := e.Emit(quietCtx(), config("debug"))
	var exit *ExitError
	require.True(t, errors.As(err, &exit))
	assert.Equal(t, 3, exit.Code)
	assert.False(t, utils.Exists(filepath.Join(root, "out", "linux", "debug", "build")))
}

func TestMissingGenerator(t *testing.T) {
	e := &Emitter{Runner: runnertest.New(), Report: report.Discard(), Root: t.TempDir(), HostOS: platform.OSLinux}
	_, err := e.Emit(quietCtx(), config("debug"))
	require.Error(t, err)
	var exit *ExitError
	assert.False(t, errors.As(err, &exit))
}

func TestOutDirErrorPropagates(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "out"), []byte("x"), 0o644))
	r := okRunner()
	e := &Emitter{Runner: r, Report: report.Discard(), Root: root, HostOS: platform.OSLinux}

	_, err := e.Emit(quietCtx(), config("debug"))
	require.Error(t, err)
	assert.Empty(t, r.Calls)
}

func TestEmitWithoutSymlinks(t *testing.T) {
	root := t.TempDir()
	e := &Emitter{Runner: okRunner(), Report: report.Discard(), Root: root, HostOS: platform.OSWin}

	cfg := config("debug")
	cfg.TargetOS = platform.OSWin
	dir, err := e.Emit(quietCtx(), cfg)
	require.NoError(t, err)

	alias := filepath.Join(root, "out", "cur")
	fi, err := os.Lstat(alias)
	require.NoError(t, err)
	assert.True(t, fi.Mode().IsRegular())
	body, err := os.ReadFile(alias)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("win", "debug")+"\n", string(body))
	assert.False(t, utils.Exists(filepath.Join(root, dir, "build")))
}

func TestEmitRequiresTarget(t *testing.T) {
	e := &Emitter{Runner: okRunner(), Report: report.Discard(), Root: t.TempDir()}
	_, err := e.Emit(quietCtx(), BuildConfig{GN: []string{"gn"}})
	assert.Error(t, err)
}

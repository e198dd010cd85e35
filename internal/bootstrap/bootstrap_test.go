package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aottr/buildprep/internal/report"
	"github.com/aottr/buildprep/internal/utils"
	"github.com/aottr/buildprep/internal/utils/runnertest"
)

func quiet() context.Context {
	return utils.WithExecOptions(context.Background(), utils.ExecOptions{Quiet: true})
}

// buildingRunner pretends every build step succeeds and drops the binary
// the real step would have produced.
func buildingRunner(t *testing.T, ext string) *runnertest.Runner {
	r := runnertest.New()
	r.Fallback = func(argv []string) runnertest.Response {
		switch argv[len(argv)-1] {
		case "--bootstrap":
			require.NoError(t, os.WriteFile(filepath.Join(ext, "ninja", "ninja"), nil, 0o755))
		case "gn":
			require.NoError(t, os.MkdirAll(filepath.Join(ext, "gn", "out"), 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(ext, "gn", "out", "gn"), nil, 0o755))
		}
		return runnertest.Response{}
	}
	return r
}

func setup(t *testing.T) (ext, bin string) {
	root := t.TempDir()
	ext = filepath.Join(root, "ext")
	bin = filepath.Join(root, "bin")
	require.NoError(t, os.MkdirAll(filepath.Join(ext, "ninja"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(ext, "gn"), 0o755))
	return ext, bin
}

func TestBuildsBoth(t *testing.T) {
	ext, bin := setup(t)
	r := buildingRunner(t, ext)
	b := &Builder{Runner: r, Report: report.Discard(), ExtDir: ext, BinDir: bin}
	require.NoError(t, b.Run(quiet()))

	require.Len(t, r.Calls, 3)
	assert.Equal(t, []string{"python3", "./configure.py", "--bootstrap"}, r.Calls[0].Argv)
	assert.Equal(t, filepath.Join(ext, "ninja"), r.Calls[0].Dir)
	assert.Equal(t, []string{"python3", "build/gen.py"}, r.Calls[1].Argv)
	assert.Equal(t, []string{"../ninja/ninja", "-C", "out", "gn"}, r.Calls[2].Argv)
	assert.Equal(t, filepath.Join(ext, "gn"), r.Calls[2].Dir)

	gn, ninja := b.Paths()
	assert.True(t, utils.LinksTo(ninja, filepath.Join(ext, "ninja", "ninja")))
	assert.True(t, utils.LinksTo(gn, filepath.Join(ext, "gn", "out", "gn")))
}

func TestSkipsPresentBinaries(t *testing.T) {
	ext, bin := setup(t)
	require.NoError(t, os.MkdirAll(bin, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "ninja"), nil, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "gn"), nil, 0o755))

	r := runnertest.New()
	b := &Builder{Runner: r, Report: report.Discard(), ExtDir: ext, BinDir: bin}
	require.NoError(t, b.Run(quiet()))
	assert.Empty(t, r.Calls)
}

func TestBuildFailureStops(t *testing.T) {
	ext, bin := setup(t)
	r := runnertest.New()
	r.Fallback = func([]string) runnertest.Response { return runnertest.Response{ExitCode: 1} }
	b := &Builder{Runner: r, Report: report.Discard(), ExtDir: ext, BinDir: bin}
	assert.Error(t, b.Run(quiet()))
	assert.Len(t, r.Calls, 1)
}

func TestMissingOutputIsAnError(t *testing.T) {
	ext, bin := setup(t)
	r := runnertest.New()
	r.Fallback = func([]string) runnertest.Response { return runnertest.Response{} }
	b := &Builder{Runner: r, Report: report.Discard(), ExtDir: ext, BinDir: bin}
	assert.ErrorContains(t, b.Run(quiet()), "did not produce")
}

func TestDryRun(t *testing.T) {
	ext, bin := setup(t)
	r := runnertest.New()
	b := &Builder{Runner: r, Report: report.Discard(), ExtDir: ext, BinDir: bin}
	ctx := utils.WithExecOptions(context.Background(), utils.ExecOptions{DryRun: true})
	require.NoError(t, b.Run(ctx))
	assert.Empty(t, r.Calls)
	assert.False(t, utils.Exists(bin))
}

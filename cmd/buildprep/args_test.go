package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aottr/buildprep/internal/gnargs"
)

func TestParseArgs(t *testing.T) {
	m, err := parseArgs([]string{"is_debug=false", "jobs=4", "name=skia", "defines=[A, B]", "empty="})
	require.NoError(t, err)
	assert.Equal(t, gnargs.Map{
		"is_debug": gnargs.Bool(false),
		"jobs":     gnargs.Int(4),
		"name":     gnargs.String("skia"),
		"defines":  gnargs.Strings("A", "B"),
		"empty":    gnargs.String(""),
	}, m)

	_, err = parseArgs([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseArgs([]string{"=x"})
	assert.Error(t, err)
}

func TestLoadArgsFile(t *testing.T) {
	m, err := loadArgsFile("")
	require.NoError(t, err)
	assert.Empty(t, m)

	path := filepath.Join(t.TempDir(), "args.yaml")
	require.NoError(t, os.WriteFile(path, []byte("use_x11: true\nsanitize:\n  address: true\n"), 0o644))
	m, err = loadArgsFile(path)
	require.NoError(t, err)
	assert.Equal(t, `sanitize_address = true use_x11 = true`, gnargs.Serialize(m))

	require.NoError(t, os.WriteFile(path, []byte("bad: ~\n"), 0o644))
	_, err = loadArgsFile(path)
	assert.Error(t, err)
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func subcommand(t *testing.T, app *cli.Command, name string) *cli.Command {
	t.Helper()
	for _, c := range app.Commands {
		if c.Name == name {
			return c
		}
	}
	require.Failf(t, "no subcommand", "%s", name)
	return nil
}

func flagNames(c *cli.Command) []string {
	var out []string
	for _, f := range c.Flags {
		out = append(out, f.Names()...)
	}
	return out
}

func TestDryRunAccepted(t *testing.T) {
	app := newApp()
	for _, name := range []string{"check", "install", "bootstrap"} {
		assert.Contains(t, flagNames(subcommand(t, app, name)), "dry-run", name)
	}
}

func TestRootFlags(t *testing.T) {
	names := flagNames(newApp())
	for _, want := range []string{"distro", "codename", "profiles", "env-file", "os-release", "root", "verbose", "quiet"} {
		assert.Contains(t, names, want)
	}
}

// Package config holds the executable overrides recognised by buildprep.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kballard/go-shellquote"
)

const DefaultEnvFile = ".env"

// Tools names the executables probed and invoked during a run. Each entry is
// a word sequence so an override such as "ccache clang++" keeps its prefix.
type Tools struct {
	CC        []string `yaml:"cc,flow"`
	CXX       []string `yaml:"cxx,flow"`
	GN        []string `yaml:"gn,flow"`
	Ninja     []string `yaml:"ninja,flow"`
	PkgConfig []string `yaml:"pkg_config,flow"`
	Brew      []string `yaml:"brew,flow"`
}

var Defaults = Tools{
	CC:        []string{"clang"},
	CXX:       []string{"clang++"},
	GN:        []string{"gn"},
	Ninja:     []string{"ninja"},
	PkgConfig: []string{"pkg-config"},
	Brew:      []string{"brew"},
}

// LookupFunc resolves one override by variable name.
type LookupFunc func(key string) (string, bool)

// Load builds Tools from the process environment, falling back to the values
// in envFile. A missing envFile is not an error.
func Load(envFile string) (Tools, error) {
	file := map[string]string{}
	if envFile != "" {
		vals, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			file = vals
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Tools{}, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}
	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	})
}

// FromLookup builds Tools from an arbitrary lookup, using Defaults for
// anything unset or blank.
func FromLookup(lookup LookupFunc) (Tools, error) {
	t := Defaults
	for _, o := range []struct {
		key string
		dst *[]string
	}{
		{"CC", &t.CC},
		{"CXX", &t.CXX},
		{"GN", &t.GN},
		{"NINJA", &t.Ninja},
		{"PKG_CONFIG", &t.PkgConfig},
		{"BREW", &t.Brew},
	} {
		raw, ok := lookup(o.key)
		if !ok {
			continue
		}
		words, err := shellquote.Split(raw)
		if err != nil {
			return Tools{}, fmt.Errorf("invalid %s override %q: %w", o.key, raw, err)
		}
		if len(words) == 0 {
			continue
		}
		*o.dst = words
	}
	return t, nil
}

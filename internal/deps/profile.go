package deps

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aottr/buildprep/internal/brew"
	"github.com/aottr/buildprep/internal/config"
	"github.com/aottr/buildprep/internal/native"
	"github.com/aottr/buildprep/internal/platform"
)

//go:embed profiles.yaml
var defaultProfiles []byte

var (
	ErrUnknownProfile = errors.New("unknown profile")
	ErrUnsupported    = errors.New("unsupported host")
)

// Host profile names for systems without a Linux prototype.
const (
	ProfileMac = "mac"
	ProfileWin = "win"
)

// Package maps a symbolic dependency to the distro package providing it.
// An empty Package means the dependency must be installed by hand.
type Package struct {
	Name    string
	Package string
}

// PackageList keeps the declaration order of a YAML mapping.
type PackageList []Package

func (l *PackageList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: packages must be a mapping", value.Line)
	}
	seen := make(map[string]struct{}, len(value.Content)/2)
	out := make(PackageList, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: package entries must be name: package", k.Line)
		}
		if _, dup := seen[k.Value]; dup {
			return fmt.Errorf("line %d: duplicate dependency %q", k.Line, k.Value)
		}
		seen[k.Value] = struct{}{}
		pkg := v.Value
		if v.Tag == "!!null" {
			pkg = ""
		}
		out = append(out, Package{Name: k.Value, Package: pkg})
	}
	*l = out
	return nil
}

// Lookup returns the package behind a dependency name.
func (l PackageList) Lookup(name string) (string, bool) {
	for _, p := range l {
		if p.Name == name {
			return p.Package, true
		}
	}
	return "", false
}

// Source is an external repository that provides some of the packages.
type Source struct {
	ID           string `yaml:"id"`
	URL          string `yaml:"url"`
	Component    string `yaml:"component,omitempty"`
	Key          string `yaml:"key,omitempty"`
	Registration string `yaml:"registration,omitempty"`
	// Provides lists the packages that need this source. Empty means all.
	Provides []string `yaml:"provides,omitempty"`
}

// Serves reports whether any of pkgs comes from s.
func (s Source) Serves(pkgs []string) bool {
	if len(s.Provides) == 0 {
		return len(pkgs) > 0
	}
	for _, p := range pkgs {
		if slices.Contains(s.Provides, p) {
			return true
		}
	}
	return false
}

// NeedsCodename reports whether s is templated on the distribution codename.
func (s Source) NeedsCodename() bool {
	for _, f := range []string{s.URL, s.Component, s.Key, s.Registration} {
		if strings.Contains(f, "{codename}") {
			return true
		}
	}
	return false
}

type Profile struct {
	Name           string `yaml:"-"`
	native.Manager `yaml:",inline"`
	Sources        []Source    `yaml:"sources,omitempty"`
	Packages       PackageList `yaml:"packages"`
}

type Profiles map[string]Profile

// LoadProfiles reads a profile table from path, or the built-in table when
// path is empty.
func LoadProfiles(path string) (Profiles, error) {
	data := defaultProfiles
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %v", path, err)
		}
		data = b
	}
	return ParseProfiles(data)
}

func ParseProfiles(data []byte) (Profiles, error) {
	var ps Profiles
	if err := yaml.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %v", err)
	}
	for name, p := range ps {
		p.Name = name
		for i, s := range p.Sources {
			if s.ID == "" {
				return nil, fmt.Errorf("profile %s: source %d has no id", name, i)
			}
		}
		ps[name] = p
	}
	return ps, nil
}

// For returns the named profile with its package-manager shape completed
// from the built-in defaults.
func (ps Profiles) For(name string, tools config.Tools) (Profile, error) {
	p, ok := ps[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}
	switch name {
	case ProfileMac:
		p.Manager = p.Manager.Merge(brew.Manager(tools.Brew))
	case ProfileWin:
	default:
		def, err := native.ForPrototype(platform.Prototype(name))
		if err == nil {
			p.Manager = p.Manager.Merge(def)
		}
	}
	if len(p.Sources) > 0 && len(p.AddRepo) == 0 {
		return Profile{}, fmt.Errorf("profile %s declares sources but no add_repo command", name)
	}
	return p, nil
}

// ProfileName picks the profile for a host. override wins when set.
func ProfileName(host platform.OS, dist platform.Distribution, override string) (string, error) {
	if override != "" {
		return platform.Normalize(override), nil
	}
	switch host {
	case platform.OSMac:
		return ProfileMac, nil
	case platform.OSWin:
		return ProfileWin, nil
	case platform.OSLinux:
		if dist.Prototype == platform.PrototypeUnknown {
			return "", fmt.Errorf("%w: unrecognised distribution %q", ErrUnsupported, dist.PrettyName)
		}
		return string(dist.Prototype), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, host)
}

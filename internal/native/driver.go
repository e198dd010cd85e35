package native

import (
	"fmt"
	"strings"

	"github.com/aottr/buildprep/internal/platform"
)

// Template is an argv whose words may contain {placeholders}.
type Template []string

// Expand substitutes vars into every word. Values are substituted after the
// command line has been split, so they never introduce extra words in argv.
// A word that is itself handed to a shell (sh -c) is parsed again, so such
// templates pass values as positional parameters instead of inlining them.
func (t Template) Expand(vars map[string]string) []string {
	if len(t) == 0 {
		return nil
	}
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)
	out := make([]string, len(t))
	for i, w := range t {
		out[i] = r.Replace(w)
	}
	return out
}

// Manager is the shape of one package-manager family: how to import a
// signing key, register a repository, refresh indexes and install packages.
// Registration is the path whose existence proves a repository is already
// registered.
type Manager struct {
	Name         string   `yaml:"manager,omitempty"`
	Install      Template `yaml:"install,omitempty"`
	Update       Template `yaml:"update,omitempty"`
	AddKey       Template `yaml:"add_key,omitempty"`
	AddRepo      Template `yaml:"add_repo,omitempty"`
	Registration string   `yaml:"registration,omitempty"`
	Env          []string `yaml:"env,omitempty"`
	// Hint is printed for dependencies no package provides.
	Hint string `yaml:"hint,omitempty"`
}

// Merge fills every unset field of m from def.
func (m Manager) Merge(def Manager) Manager {
	if m.Name == "" {
		m.Name = def.Name
	}
	if len(m.Install) == 0 {
		m.Install = def.Install
	}
	if len(m.Update) == 0 {
		m.Update = def.Update
	}
	if len(m.AddKey) == 0 {
		m.AddKey = def.AddKey
	}
	if len(m.AddRepo) == 0 {
		m.AddRepo = def.AddRepo
	}
	if m.Registration == "" {
		m.Registration = def.Registration
	}
	if len(m.Env) == 0 {
		m.Env = def.Env
	}
	if m.Hint == "" {
		m.Hint = def.Hint
	}
	return m
}

var managers = map[platform.Prototype]Manager{
	platform.PrototypeDebian: {
		Name:         "apt",
		Install:      Template{"sudo", "apt-get", "install", "-y"},
		Update:       Template{"sudo", "apt-get", "update"},
		AddKey:       Template{"sudo", "curl", "-fsSL", "-o", "/etc/apt/trusted.gpg.d/{id}.asc", "{key}"},
		// Values travel as positional parameters so the shell never parses them.
		AddRepo:      Template{"sudo", "sh", "-c", `echo "deb $1 $2" > "$3"`, "sh", "{url}", "{component}", "{registration}"},
		Registration: "/etc/apt/sources.list.d/{id}.list",
	},
	platform.PrototypeFedora: {
		Name:         "dnf",
		Install:      Template{"sudo", "dnf", "install", "-y"},
		Update:       Template{"sudo", "dnf", "makecache"},
		AddKey:       Template{"sudo", "rpm", "--import", "{key}"},
		AddRepo:      Template{"sudo", "dnf", "config-manager", "--add-repo", "{url}"},
		Registration: "/etc/yum.repos.d/{id}.repo",
	},
	platform.PrototypeArch: {
		Name:    "pacman",
		Install: Template{"sudo", "pacman", "-S", "--needed", "--noconfirm"},
		Update:  Template{"sudo", "pacman", "-Sy"},
	},
	platform.PrototypeAlpine: {
		Name:    "apk",
		Install: Template{"sudo", "apk", "add"},
		Update:  Template{"sudo", "apk", "update"},
	},
	platform.PrototypeSuse: {
		Name:         "zypper",
		Install:      Template{"sudo", "zypper", "--non-interactive", "install"},
		Update:       Template{"sudo", "zypper", "--non-interactive", "refresh"},
		AddKey:       Template{"sudo", "rpm", "--import", "{key}"},
		AddRepo:      Template{"sudo", "zypper", "addrepo", "{url}", "{id}"},
		Registration: "/etc/zypp/repos.d/{id}.repo",
	},
	platform.PrototypeGentoo: {
		Name:    "emerge",
		Install: Template{"sudo", "emerge", "--noreplace"},
		Update:  Template{"sudo", "emerge", "--sync"},
	},
	platform.PrototypeSlackware: {
		Name:    "slackpkg",
		Install: Template{"sudo", "slackpkg", "-batch=on", "-default_answer=y", "install"},
		Update:  Template{"sudo", "slackpkg", "-batch=on", "update"},
	},
}

// ForPrototype returns the default package-manager shape of a prototype.
func ForPrototype(p platform.Prototype) (Manager, error) {
	m, ok := managers[p]
	if !ok {
		return Manager{}, fmt.Errorf("unsupported distro: %s", p)
	}
	return m, nil
}

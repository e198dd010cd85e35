package brew

import (
	"context"

	"github.com/aottr/buildprep/internal/native"
	"github.com/aottr/buildprep/internal/probe"
)

const InstallHint = "install Homebrew first: https://brew.sh"

// env keeps brew quiet and stops it from updating itself mid-install.
var env = []string{
	"HOMEBREW_NO_AUTO_UPDATE=1",
	"HOMEBREW_NO_ENV_HINTS=1",
	"HOMEBREW_NO_INSTALL_CLEANUP=1",
}

// Manager returns the Homebrew package-manager shape for the given brew
// command words.
func Manager(brew []string) native.Manager {
	return native.Manager{
		Name:    "brew",
		Install: template(brew, "install"),
		Update:  template(brew, "update"),
		AddRepo: template(brew, "tap", "{id}", "{url}"),
		Env:     env,
		Hint:    InstallHint,
	}
}

// Check is the bootstrap check: nothing else on macOS can be installed
// until brew itself runs.
func Check(ctx context.Context, p *probe.Prober) probe.Result {
	return p.Version(ctx, "brew", p.Tools.Brew)
}

func template(base []string, extra ...string) native.Template {
	t := make(native.Template, 0, len(base)+len(extra))
	t = append(t, base...)
	return append(t, extra...)
}

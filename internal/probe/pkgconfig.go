package probe

import (
	"context"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/aottr/buildprep/internal/gnargs"
	"github.com/aottr/buildprep/internal/report"
	"github.com/aottr/buildprep/internal/utils"
)

// MetadataTool is a package-metadata tool that has already answered
// --version. Only CheckMetadataTool can produce one, so package lookups
// cannot happen before the tool itself was probed.
type MetadataTool struct {
	argv []string
}

// CheckMetadataTool probes the configured pkg-config.
func (p *Prober) CheckMetadataTool(ctx context.Context) Result {
	res := p.Version(ctx, "pkg-config", p.Tools.PkgConfig)
	if !res.OK() {
		return res
	}
	res.tool = &MetadataTool{argv: words(p.Tools.PkgConfig)}
	return res
}

// Metadata is what pkg-config knows about one library.
type Metadata struct {
	IncludeDirs []string
	Cflags      []string
	LibDirs     []string
	Libs        []string
	Ldflags     []string
}

func (m Metadata) Value() gnargs.Value {
	return gnargs.Nested(gnargs.Map{
		"include_dirs": gnargs.Strings(m.IncludeDirs...),
		"cflags":       gnargs.Strings(m.Cflags...),
		"lib_dirs":     gnargs.Strings(m.LibDirs...),
		"libs":         gnargs.Strings(m.Libs...),
		"ldflags":      gnargs.Strings(m.Ldflags...),
	})
}

type metadataQuery struct {
	flag   string
	prefix string
	field  func(*Metadata) *[]string
}

var metadataQueries = []metadataQuery{
	{"--cflags-only-I", "-I", func(m *Metadata) *[]string { return &m.IncludeDirs }},
	{"--cflags-only-other", "", func(m *Metadata) *[]string { return &m.Cflags }},
	{"--libs-only-L", "-L", func(m *Metadata) *[]string { return &m.LibDirs }},
	{"--libs-only-l", "-l", func(m *Metadata) *[]string { return &m.Libs }},
	{"--libs-only-other", "", func(m *Metadata) *[]string { return &m.Ldflags }},
}

// PackageMetadata runs all five queries for lib. Any failure discards the
// partial answers.
func (p *Prober) PackageMetadata(ctx context.Context, tool MetadataTool, lib string) (Metadata, Status) {
	step := p.Report.Step("checking for " + lib)
	m, status := p.queryAll(ctx, tool, lib)
	switch status {
	case Found:
		step.OK()
	case ToolUnavailable:
		step.Fail("pkg-config unavailable", report.Yellow)
	default:
		step.Fail("missing", report.Red)
	}
	return m, status
}

func (p *Prober) queryAll(ctx context.Context, tool MetadataTool, lib string) (Metadata, Status) {
	if len(tool.argv) == 0 {
		return Metadata{}, ToolUnavailable
	}
	var m Metadata
	for _, q := range metadataQueries {
		res, err := utils.RunArgv(ctx, p.Runner, words(tool.argv, q.flag, "--", lib), utils.RunOptions{})
		if !res.Started() {
			return Metadata{}, ToolUnavailable
		}
		if err != nil || res.ExitCode != 0 {
			return Metadata{}, NotFound
		}
		tokens, err := shellquote.Split(string(res.Stdout))
		if err != nil {
			return Metadata{}, NotFound
		}
		vals := make([]string, 0, len(tokens))
		for _, tok := range tokens {
			vals = append(vals, strings.TrimPrefix(tok, q.prefix))
		}
		*q.field(&m) = vals
	}
	return m, Found
}

package platform

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/kballard/go-shellquote"
)

// OS identifies a host or target operating system.
type OS string

const (
	OSMac     OS = "mac"
	OSLinux   OS = "linux"
	OSWin     OS = "win"
	OSIOS     OS = "ios"
	OSAndroid OS = "android"
	OSUnknown OS = "unknown"
)

// ParseOS maps a user supplied target name onto an OS.
func ParseOS(name string) (OS, error) {
	switch OS(Normalize(name)) {
	case OSMac:
		return OSMac, nil
	case OSLinux:
		return OSLinux, nil
	case OSWin:
		return OSWin, nil
	case OSIOS:
		return OSIOS, nil
	case OSAndroid:
		return OSAndroid, nil
	}
	return OSUnknown, fmt.Errorf("unknown target os: %q", name)
}

// Prototype is a family of Linux package managers.
type Prototype string

const (
	PrototypeDebian    Prototype = "debian"
	PrototypeFedora    Prototype = "fedora"
	PrototypeArch      Prototype = "arch"
	PrototypeAlpine    Prototype = "alpine"
	PrototypeSuse      Prototype = "suse"
	PrototypeGentoo    Prototype = "gentoo"
	PrototypeSlackware Prototype = "slackware"
	PrototypeUnknown   Prototype = "unknown"
)

// knownPrototypes is ordered; the order decides which prototype wins when
// several appear in ID_LIKE.
var knownPrototypes = []Prototype{
	PrototypeDebian,
	PrototypeFedora,
	PrototypeArch,
	PrototypeAlpine,
	PrototypeSuse,
	PrototypeGentoo,
	PrototypeSlackware,
}

// Prototypes lists every known prototype, unknown excluded.
func Prototypes() []Prototype {
	return append([]Prototype(nil), knownPrototypes...)
}

func isKnown(id string) (Prototype, bool) {
	for _, p := range knownPrototypes {
		if string(p) == id {
			return p, true
		}
	}
	return PrototypeUnknown, false
}

const DefaultOSRelease = "/etc/os-release"

// Identity describes the machine this process runs on.
type Identity struct {
	OS  OS     `yaml:"os"`
	CPU string `yaml:"cpu"`
}

func GetIdentity() Identity {
	return Identity{
		OS:  HostOS(),
		CPU: HostCPU(),
	}
}

// Distribution is the result of classifying an os-release file.
type Distribution struct {
	PrettyName string    `yaml:"pretty_name"`
	Prototype  Prototype `yaml:"prototype"`
	Codename   string    `yaml:"codename"`
}

var UnknownDistribution = Distribution{
	PrettyName: "Unknown",
	Prototype:  PrototypeUnknown,
	Codename:   "unknown",
}

// Normalize lowercases and trims
func Normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func HostOS() OS {
	return hostOS(runtime.GOOS)
}

func hostOS(goos string) OS {
	if goos == "darwin" {
		return OSMac
	}
	for _, token := range []OS{OSLinux, OSWin} {
		if strings.HasPrefix(goos, string(token)) {
			return token
		}
	}
	return OSUnknown
}

// HostCPU returns the machine architecture, with x86_64 shortened to x64.
func HostCPU() string {
	return normalizeCPU(machine())
}

func normalizeCPU(m string) string {
	if m == "x86_64" {
		return "x64"
	}
	return m
}

// DetectDistribution classifies the os-release file at path. A missing or
// unreadable file yields UnknownDistribution.
func DetectDistribution(path string) Distribution {
	file, err := os.Open(path)
	if err != nil {
		return UnknownDistribution
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return UnknownDistribution
	}
	return ParseOSRelease(lines)
}

// ParseOSRelease classifies os-release content given as lines.
func ParseOSRelease(lines []string) Distribution {
	fields := parseFields(lines)
	if len(fields) == 0 {
		return UnknownDistribution
	}

	d := UnknownDistribution
	if v, ok := fields["PRETTY_NAME"]; ok {
		d.PrettyName = v
	}
	if v, ok := fields["VERSION_CODENAME"]; ok && v != "" {
		d.Codename = v
	}

	id := Normalize(fields["ID"])
	if p, ok := isKnown(id); ok {
		d.Prototype = p
		return d
	}
	like := make(map[string]struct{})
	for _, l := range strings.Fields(fields["ID_LIKE"]) {
		like[Normalize(l)] = struct{}{}
	}
	for _, p := range knownPrototypes {
		if _, ok := like[string(p)]; ok {
			d.Prototype = p
			break
		}
	}
	return d
}

func parseFields(lines []string) map[string]string {
	fields := make(map[string]string)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, raw, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		words, err := shellquote.Split(raw)
		if err != nil {
			// unbalanced quotes; keep the raw text minus stray quotes
			fields[key] = strings.Trim(raw, `"'`)
			continue
		}
		fields[key] = strings.Join(words, " ")
	}
	return fields
}

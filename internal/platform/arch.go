package platform

var goarchToMachine = map[string]string{
	"amd64": "x86_64",
	"386":   "i386",
	"arm64": "aarch64",
}

// goarchMachine maps a GOARCH value onto the name uname would report.
func goarchMachine(goarch string) string {
	if m, ok := goarchToMachine[goarch]; ok {
		return m
	}
	return goarch
}

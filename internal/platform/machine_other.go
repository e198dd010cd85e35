//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package platform

import "runtime"

func machine() string {
	return goarchMachine(runtime.GOARCH)
}

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package platform

import (
	"runtime"

	"golang.org/x/sys/unix"
)

func machine() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return goarchMachine(runtime.GOARCH)
	}
	return unix.ByteSliceToString(u.Machine[:])
}

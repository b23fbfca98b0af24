//go:build unix && !darwin

package crypto

import "golang.org/x/sys/unix"

func hardwareModel() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Machine[:])
}

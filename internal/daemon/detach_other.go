//go:build !unix && !windows

package daemon

import "errors"

var errUnsupported = errors.New("background mode is not supported on this platform")

// Detach is unavailable on this platform.
func Detach([]string, string) (int, error) {
	return 0, errUnsupported
}

func processAlive(int) bool { return false }

func terminate(int) error { return errUnsupported }

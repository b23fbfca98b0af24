//go:build !unix

package crypto

import "runtime"

func hardwareModel() string {
	return runtime.GOARCH
}

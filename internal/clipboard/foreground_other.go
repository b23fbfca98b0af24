//go:build !linux && !(darwin && cgo)

package clipboard

import "go.uber.org/zap"

// NewForegroundApp has no implementation on this platform.
func NewForegroundApp(*zap.Logger) ForegroundApp {
	return noForeground{}
}

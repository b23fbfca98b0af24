//go:build linux

package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWMClass(t *testing.T) {
	instance, class := parseWMClass([]byte("keepassxc\x00KeePassXC\x00"))
	assert.Equal(t, "keepassxc", instance)
	assert.Equal(t, "KeePassXC", class)

	instance, class = parseWMClass([]byte("xterm"))
	assert.Equal(t, "xterm", instance)
	assert.Equal(t, "xterm", class)
}

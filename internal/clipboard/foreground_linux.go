//go:build linux

package clipboard

import (
	"strings"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"go.uber.org/zap"

	"github.com/berrythewa/clipstash/internal/types"
)

// x11Foreground reads _NET_ACTIVE_WINDOW and its WM_CLASS.
type x11Foreground struct {
	mu     sync.Mutex
	conn   *xgb.Conn
	root   xproto.Window
	active xproto.Atom
}

// NewForegroundApp connects to the X server. Without one (Wayland-only or
// headless) the foreground app is always unknown.
func NewForegroundApp(logger *zap.Logger) ForegroundApp {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := xgb.NewConn()
	if err != nil {
		logger.Debug("No X server, foreground app detection disabled", zap.Error(err))
		return noForeground{}
	}

	active, err := internAtom(conn, "_NET_ACTIVE_WINDOW")
	if err != nil {
		logger.Debug("Window manager does not expose the active window", zap.Error(err))
		conn.Close()
		return noForeground{}
	}

	return &x11Foreground{
		conn:   conn,
		root:   xproto.Setup(conn).DefaultScreen(conn).Root,
		active: active,
	}
}

func internAtom(conn *xgb.Conn, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(conn, true, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}

func (f *x11Foreground) Frontmost() (types.AppIdentity, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reply, err := xproto.GetProperty(f.conn, false, f.root, f.active,
		xproto.AtomWindow, 0, 1).Reply()
	if err != nil || reply.ValueLen == 0 || len(reply.Value) < 4 {
		return types.AppIdentity{}, false
	}
	win := xproto.Window(xgb.Get32(reply.Value))
	if win == 0 {
		return types.AppIdentity{}, false
	}

	cls, err := xproto.GetProperty(f.conn, false, win, xproto.AtomWmClass,
		xproto.AtomString, 0, 128).Reply()
	if err != nil || len(cls.Value) == 0 {
		return types.AppIdentity{}, false
	}
	instance, class := parseWMClass(cls.Value)
	if class == "" {
		return types.AppIdentity{}, false
	}
	return types.AppIdentity{ID: types.AppID(instance), Name: class}, true
}

// parseWMClass splits the two NUL-terminated WM_CLASS strings.
func parseWMClass(raw []byte) (instance, class string) {
	parts := strings.Split(strings.TrimRight(string(raw), "\x00"), "\x00")
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], parts[0]
	}
	return parts[0], parts[1]
}

//go:build darwin && cgo

package clipboard

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa
#import <Cocoa/Cocoa.h>
#include <stdlib.h>
#include <string.h>

static char* clipstashFrontmost(int wantName) {
    @autoreleasepool {
        NSRunningApplication *app = [[NSWorkspace sharedWorkspace] frontmostApplication];
        if (app == nil) {
            return NULL;
        }
        NSString *value = wantName ? [app localizedName] : [app bundleIdentifier];
        if (value == nil) {
            return NULL;
        }
        return strdup([value UTF8String]);
    }
}
*/
import "C"

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/berrythewa/clipstash/internal/types"
)

type workspaceForeground struct{}

// NewForegroundApp returns the NSWorkspace-backed frontmost app reader.
func NewForegroundApp(*zap.Logger) ForegroundApp {
	return workspaceForeground{}
}

func (workspaceForeground) Frontmost() (types.AppIdentity, bool) {
	id := takeCString(C.clipstashFrontmost(0))
	name := takeCString(C.clipstashFrontmost(1))
	if id == "" && name == "" {
		return types.AppIdentity{}, false
	}
	return types.AppIdentity{ID: types.AppID(id), Name: name}, true
}

func takeCString(s *C.char) string {
	if s == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(s))
	return C.GoString(s)
}

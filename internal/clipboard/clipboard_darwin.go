//go:build darwin && cgo

package clipboard

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa
#import <Cocoa/Cocoa.h>

static long clipstashChangeCount() {
    return (long)[[NSPasteboard generalPasteboard] changeCount];
}
*/
import "C"

import (
	nativeClip "golang.design/x/clipboard"
	"go.uber.org/zap"

	"github.com/berrythewa/clipstash/internal/types"
)

// darwinPasteboard uses NSPasteboard's change count and golang.design for
// the contents.
type darwinPasteboard struct {
	logger *zap.Logger
}

func newNativePasteboard(logger *zap.Logger) Pasteboard {
	return &darwinPasteboard{logger: logger}
}

func (p *darwinPasteboard) Name() string { return "nspasteboard" }

func (p *darwinPasteboard) ChangeCount() int64 {
	return int64(C.clipstashChangeCount())
}

func (p *darwinPasteboard) Read() (*types.RawContent, error) {
	if text := nativeClip.Read(nativeClip.FmtText); len(text) > 0 {
		return &types.RawContent{Text: string(text)}, nil
	}
	if img := nativeClip.Read(nativeClip.FmtImage); len(img) > 0 {
		return &types.RawContent{Image: img}, nil
	}
	return nil, nil
}

func (p *darwinPasteboard) WriteText(text string) error {
	nativeClip.Write(nativeClip.FmtText, []byte(text))
	return nil
}

func (p *darwinPasteboard) WriteImage(png []byte) error {
	nativeClip.Write(nativeClip.FmtImage, png)
	return nil
}

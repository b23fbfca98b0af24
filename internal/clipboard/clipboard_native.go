//go:build !darwin || !cgo

package clipboard

import (
	nativeClip "golang.design/x/clipboard"
	"go.uber.org/zap"

	"github.com/berrythewa/clipstash/internal/types"
	"github.com/berrythewa/clipstash/pkg/utils"
)

// hashPasteboard detects changes by hashing the contents on every poll.
type hashPasteboard struct {
	counter changeCounter
	logger  *zap.Logger
}

func newNativePasteboard(logger *zap.Logger) Pasteboard {
	return &hashPasteboard{logger: logger}
}

func (p *hashPasteboard) Name() string { return "native" }

func (p *hashPasteboard) ChangeCount() int64 {
	if text := nativeClip.Read(nativeClip.FmtText); len(text) > 0 {
		return p.counter.observe("t:" + utils.HashContent(text))
	}
	return p.counter.observe("i:" + utils.HashContent(nativeClip.Read(nativeClip.FmtImage)))
}

func (p *hashPasteboard) Read() (*types.RawContent, error) {
	return readNative(), nil
}

func (p *hashPasteboard) WriteText(text string) error {
	nativeClip.Write(nativeClip.FmtText, []byte(text))
	return nil
}

func (p *hashPasteboard) WriteImage(png []byte) error {
	nativeClip.Write(nativeClip.FmtImage, png)
	return nil
}

func readNative() *types.RawContent {
	if text := nativeClip.Read(nativeClip.FmtText); len(text) > 0 {
		return &types.RawContent{Text: string(text)}
	}
	if img := nativeClip.Read(nativeClip.FmtImage); len(img) > 0 {
		return &types.RawContent{Image: img}
	}
	return nil
}

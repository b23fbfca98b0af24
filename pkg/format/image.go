package format

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/berrythewa/clipstash/internal/types"
)

// FormatImage describes an image entry
func FormatImage(e *types.ClipboardEntry, opts Options) string {
	return ColorizeIf("["+describeImage(e.ImageData)+"]", Magenta, opts.UseColors)
}

// FormatImagePreview describes an image entry in a single line
func FormatImagePreview(e *types.ClipboardEntry) string {
	return "[" + describeImage(e.ImageData) + "]"
}

func describeImage(data []byte) string {
	size := FormatSize(int64(len(data)))
	cfg, kind, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Sprintf("Image %s", size)
	}
	return fmt.Sprintf("%s image %dx%d, %s", kind, cfg.Width, cfg.Height, size)
}

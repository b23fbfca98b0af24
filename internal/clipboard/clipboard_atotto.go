package clipboard

import (
	"errors"
	"fmt"

	atottoClip "github.com/atotto/clipboard"

	"github.com/berrythewa/clipstash/internal/types"
	"github.com/berrythewa/clipstash/pkg/utils"
)

// AtottoPasteboard is a text-only fallback built on atotto/clipboard
type AtottoPasteboard struct {
	counter changeCounter
}

// NewAtottoPasteboard returns a new atotto-based pasteboard
func NewAtottoPasteboard() *AtottoPasteboard {
	return &AtottoPasteboard{}
}

func (p *AtottoPasteboard) Name() string { return "atotto" }

func (p *AtottoPasteboard) ChangeCount() int64 {
	text, err := atottoClip.ReadAll()
	if err != nil {
		return p.counter.observe("")
	}
	return p.counter.observe(utils.HashContent([]byte(text)))
}

func (p *AtottoPasteboard) Read() (*types.RawContent, error) {
	text, err := atottoClip.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read clipboard: %w", err)
	}
	if text == "" {
		return nil, nil
	}
	return &types.RawContent{Text: text}, nil
}

func (p *AtottoPasteboard) WriteText(text string) error {
	return atottoClip.WriteAll(text)
}

func (p *AtottoPasteboard) WriteImage([]byte) error {
	return errors.New("images are not supported by the text-only clipboard")
}

// Package classify derives the kind and category of captured clipboard content.
package classify

import (
	"bytes"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/berrythewa/clipstash/internal/types"
)

// Result is the outcome of classifying one piece of content.
type Result struct {
	Kind     types.EntryKind
	Category types.Category
	IsCode   bool
	Language string
}

// Options control classification.
type Options struct {
	EnableCategories bool
}

// Classifier is stateless apart from its compiled language signatures and
// is safe for concurrent use.
type Classifier struct {
	signatures []signature
	minScore   int
}

// New returns a classifier using the built-in language signatures.
func New() *Classifier {
	return &Classifier{
		signatures: builtinSignatures,
		minScore:   minCodeScore,
	}
}

// Classify decides kind and category. Image bytes win over text; text that
// parses as an absolute URL becomes a URL; anything else is plain text,
// categorized as code when the language heuristic is confident.
func (c *Classifier) Classify(raw types.RawContent, opts Options) Result {
	if len(raw.Image) > 0 {
		return Result{Kind: types.KindImage, Category: types.CategoryImage}
	}

	if isImage([]byte(raw.Text)) {
		return Result{Kind: types.KindImage, Category: types.CategoryImage}
	}

	if IsURL(raw.Text) {
		return Result{Kind: types.KindURL, Category: types.CategoryURL}
	}

	res := Result{Kind: types.KindPlainText}
	lang, ok := c.DetectLanguage(raw.Text)
	if ok {
		res.IsCode = true
		res.Language = lang
	}

	switch {
	case !opts.EnableCategories:
		res.Category = types.CategoryNone
	case res.IsCode:
		res.Category = types.CategoryCode
	default:
		res.Category = types.CategoryText
	}
	return res
}

// IsURL reports whether the whole trimmed string is an absolute URL with a
// scheme. Single letter schemes are rejected so drive paths stay text.
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}

	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || len(u.Scheme) < 2 {
		return false
	}
	switch {
	case u.Host != "":
		return true
	case u.Scheme == "file":
		return u.Path != ""
	case u.Opaque != "":
		return opaqueSchemes[strings.ToLower(u.Scheme)]
	}
	return false
}

// opaqueSchemes are accepted without an authority. Anything else of the
// form "word:value" is far more likely to be a key-value note than a link.
var opaqueSchemes = map[string]bool{
	"mailto": true,
	"tel":    true,
	"sms":    true,
	"data":   true,
	"urn":    true,
	"magnet": true,
}

var imageSignatures = [][]byte{
	{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A},
	{0xFF, 0xD8, 0xFF},
	[]byte("GIF87a"),
	[]byte("GIF89a"),
	{'I', 'I', 0x2A, 0x00},
	{'M', 'M', 0x00, 0x2A},
}

// isImage checks for image magic bytes. Valid UTF-8 is never treated as an
// image so text starting with "BM" or "GIF89a" stays text.
func isImage(data []byte) bool {
	if len(data) < 4 || utf8.Valid(data) {
		return false
	}
	for _, sig := range imageSignatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	// BMP: "BM" followed by the little endian file size
	return bytes.HasPrefix(data, []byte("BM")) && len(data) > 14
}

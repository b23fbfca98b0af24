package classify

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	// minCodeScore is the lowest winning score that counts as code.
	minCodeScore = 3
	// maxScanBytes bounds the text examined by the language heuristic.
	maxScanBytes = 64 * 1024
)

type rule struct {
	match  func(string) bool
	weight int
}

// signature scores one language. When requireAny is set, at least one of
// those rules must match or the language scores zero.
type signature struct {
	name       string
	rules      []rule
	requireAny []rule
}

func re(weight int, expr string) rule {
	compiled := regexp.MustCompile(expr)
	return rule{match: compiled.MatchString, weight: weight}
}

func fn(weight int, f func(string) bool) rule {
	return rule{match: f, weight: weight}
}

func (s signature) score(text string) int {
	if len(s.requireAny) > 0 {
		hit := false
		for _, r := range s.requireAny {
			if r.match(text) {
				hit = true
				break
			}
		}
		if !hit {
			return 0
		}
	}

	total := 0
	for _, r := range s.rules {
		if r.match(text) {
			total += r.weight
		}
	}
	return total
}

// DetectLanguage scores text against every signature. It reports a language
// only when the best score reaches the threshold and no other language ties it.
func (c *Classifier) DetectLanguage(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if len(text) > maxScanBytes {
		text = text[:maxScanBytes]
	}

	best, bestScore, ties := "", 0, 0
	for _, sig := range c.signatures {
		score := sig.score(text)
		switch {
		case score > bestScore:
			best, bestScore, ties = sig.name, score, 0
		case score == bestScore && score > 0:
			ties++
		}
	}

	if bestScore < c.minScore || ties > 0 {
		return "", false
	}
	return best, true
}

var javascriptRules = []rule{
	re(1, `\b(const|let|var) \w+ = `),
	re(1, `=>`),
	re(2, `\bfunction\s*\w*\s*\(`),
	re(3, `console\.(log|error|warn)\(`),
	re(2, `\bdocument\.\w+`),
	re(2, `\brequire\(['"]`),
	re(3, `\bmodule\.exports\b`),
	re(2, `===|!==`),
	re(2, `(?m)^import .+ from ['"]`),
}

var typescriptOnly = []rule{
	re(3, `\w\s*:\s*(string|number|boolean|void|any|unknown)\b`),
	re(2, `\binterface \w+\s*\{`),
	re(2, `(?m)^\s*(export )?type \w+ = `),
	re(2, `\b(public|private|readonly) \w+\s*:`),
}

var builtinSignatures = []signature{
	{name: "go", rules: []rule{
		re(3, `(?m)^package \w+\s*$`),
		re(3, `\bfunc (\(\w+ \*?\w+\) )?\w+\(`),
		re(1, `:=`),
		re(2, `(?m)^import \(`),
		re(2, `\bfmt\.\w+\(`),
		re(2, `\berr != nil\b`),
		re(2, `\bgo func\(`),
		re(1, `\bchan \w+`),
	}},
	{name: "python", rules: []rule{
		re(3, `(?m)^\s*def \w+\(.*\)\s*(->\s*[\w\[\], .]+)?:\s*$`),
		re(3, `(?m)^\s*class \w+(\(.*\))?:\s*$`),
		re(1, `(?m)^\s*(from [\w.]+ )?import \w+\s*$`),
		re(2, `\bself\.\w+`),
		re(2, `(?m)^\s*(elif .+|except.*|else|try|finally):\s*$`),
		re(1, `\bprint\(`),
		re(3, `__name__ == ['"]__main__['"]`),
		re(1, `(?m)^\s*(if|for|while) .+:\s*$`),
	}},
	{name: "javascript", rules: javascriptRules},
	{name: "typescript", rules: append(append([]rule{}, javascriptRules...), typescriptOnly...), requireAny: typescriptOnly},
	{name: "swift", rules: []rule{
		re(2, `\bfunc \w+\(.*\)\s*->`),
		re(3, `\b(guard|if) let\b`),
		re(3, `(?m)^import (Foundation|UIKit|SwiftUI|AppKit|Combine)\s*$`),
		re(3, `@(objc|IBOutlet|IBAction|State|Published|MainActor)\b`),
		re(2, `\bstruct \w+\s*:\s*\w+`),
		re(1, `\b(let|var) \w+\s*:\s*[A-Z]\w*`),
	}},
	{name: "rust", rules: []rule{
		re(2, `\bfn \w+\s*(<.*>)?\(`),
		re(3, `\blet mut\b`),
		re(2, `\bimpl\b.*\{`),
		re(3, `\b(println|format|vec|panic)!\(`),
		re(3, `(?m)^use \w+(::[\w{}, ]+)+;`),
		re(2, `&mut\b`),
		re(2, `->\s*(Result|Option)<`),
		re(1, `\bpub (fn|struct|enum)\b`),
	}},
	{name: "java", rules: []rule{
		re(3, `\bpublic (static )?(final )?(class|void|interface)\b`),
		re(3, `System\.(out|err)\.print`),
		re(3, `(?m)^import java(x)?\.`),
		re(3, `(?m)^package [\w.]+;`),
		re(3, `@Override\b`),
		re(2, `\bprivate (final |static )*\w+(<.*>)? \w+\s*[;=]`),
	}},
	{name: "c/c++", rules: []rule{
		re(3, `(?m)^#include\s*[<"]`),
		re(3, `\bint main\s*\(`),
		re(3, `\bstd::`),
		re(2, `\bprintf\(`),
		re(2, `\b(malloc|free|sizeof)\(`),
		re(2, `(?m)^#(define|ifndef|ifdef|endif)\b`),
		re(1, `\b(unsigned|size_t|nullptr)\b`),
	}},
	{name: "ruby", rules: []rule{
		re(2, `(?m)^\s*def \w+[?!]?(\(.*\))?\s*$`),
		re(2, `(?m)^\s*end\s*$`),
		re(2, `(?m)^\s*puts\b`),
		re(2, `(?m)^require(_relative)? ['"]`),
		re(3, `\.each (do\b|\{)|\bdo \|\w+(, \w+)*\|`),
		re(3, `\battr_(accessor|reader|writer)\b`),
	}},
	{name: "php", rules: []rule{
		re(5, `<\?php`),
		re(3, `\bfunction \w+\(\$`),
		re(1, `\$\w+\s*=[^=]`),
		re(1, `\becho\b`),
		re(1, `\$this->\w+`),
	}},
	{name: "shell", rules: []rule{
		re(5, `(?m)^#!\s*/(usr/)?bin/(env )?(ba|z|k)?sh\b`),
		re(2, `\|\s*(grep|awk|sed|xargs|sort|uniq|wc)\b`),
		re(1, `(?m)^\s*(sudo|apt-get|apt|brew|export|chmod|chown|mkdir|curl|wget) `),
		re(2, `(?m)^\s*(fi|done|esac)\s*$`),
		re(3, `(?m)^\s*(if|while) \[\[? `),
		re(1, `\$\{\w+\}`),
	}},
	{name: "sql", rules: []rule{
		re(3, `\bSELECT\b[\s\S]+\bFROM\b`),
		re(2, `(?i)\bselect\s+(\*|\w+(\.\w+)?(\s*,\s*\w+(\.\w+)?)*)\s+from\s+\w+`),
		re(3, `(?i)\binsert\s+into\s+\w+`),
		re(3, `(?i)\bupdate\s+\w+\s+set\s+\w+\s*=`),
		re(3, `(?i)\bcreate\s+(table|index|view|database)\b`),
		re(3, `(?i)\bdelete\s+from\s+\w+`),
		re(1, `\bWHERE\b`),
		re(2, `(?i)\b(inner|left|right|full)\s+(outer\s+)?join\b`),
	}},
	{name: "html", rules: []rule{
		re(5, `(?i)<!DOCTYPE html>`),
		re(2, `</[a-zA-Z][\w-]*>`),
		re(2, `<(div|span|p|a|html|body|head|script|style|ul|ol|li|table|tr|td|form|input|img)[\s>/]`),
		re(1, `\b(class|href|src|id)="`),
	}},
	{name: "css", rules: []rule{
		re(1, `(?m)^\s*[.#]?[\w-]+([\s,>+~]+[.#]?[\w-]+)*\s*\{\s*$`),
		re(2, `(?m)^\s*[\w-]+\s*:\s*[^;{}]+;\s*$`),
		re(3, `@(media|keyframes|import|font-face)\b`),
		re(2, `\b\d+(\.\d+)?(px|em|rem|vh|vw)\b`),
		re(1, `#[0-9a-fA-F]{3}([0-9a-fA-F]{3})?\b`),
	}},
	{name: "json", rules: []rule{
		fn(5, looksLikeJSON),
	}},
	{name: "yaml", rules: []rule{
		re(2, `(?m)^---\s*$`),
		re(2, `(?m)^\s*- [\w-]+:\s`),
		fn(3, looksLikeYAML),
	}},
}

func looksLikeJSON(text string) bool {
	if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		return false
	}
	return json.Valid([]byte(text))
}

var yamlLine = regexp.MustCompile(`^\s*(- )?[\w.-]+:(\s.*)?$`)

// looksLikeYAML wants at least three key lines making up most of the text.
func looksLikeYAML(text string) bool {
	lines := strings.Split(text, "\n")
	keyed, nonEmpty := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmpty++
		if yamlLine.MatchString(line) {
			keyed++
		}
	}
	return keyed >= 3 && keyed*10 >= nonEmpty*6
}

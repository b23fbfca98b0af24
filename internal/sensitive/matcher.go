// Package sensitive flags clipboard text that looks like personal or secret data.
package sensitive

import "regexp"

// Rule is a named detection pattern.
type Rule struct {
	Name    string
	pattern *regexp.Regexp
}

// Matches reports whether the rule fires on text.
func (r Rule) Matches(text string) bool {
	return r.pattern.MatchString(text)
}

// Rule names, in evaluation order.
const (
	RuleCreditCard = "credit_card"
	RuleEmail      = "email"
	RuleIPv4       = "ipv4"
	RulePassword   = "password"
	RuleIBAN       = "iban"
	RuleHexToken   = "hex_token"
)

var defaultRules = []Rule{
	{RuleCreditCard, regexp.MustCompile(`\b(?:\d[ -]?){12,15}\d\b`)},
	{RuleEmail, regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},
	{RuleIPv4, regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\.){3}(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\b`)},
	{RulePassword, regexp.MustCompile(`(?i)\bpass(?:word|wd)?\s*[:=]\s*\S+`)},
	{RuleIBAN, regexp.MustCompile(`\b[A-Z]{2}\d{2}(?:[A-Z0-9]{11,30}|(?: [A-Z0-9]{4}){2,7}(?: [A-Z0-9]{1,4})?)\b`)},
	{RuleHexToken, regexp.MustCompile(`\b[0-9a-fA-F]{64}\b`)},
}

// Matcher evaluates rules in order; the first hit wins. It holds no mutable
// state and is safe for concurrent use.
type Matcher struct {
	rules []Rule
}

// NewMatcher returns a matcher with the built-in rule set.
func NewMatcher() *Matcher {
	return &Matcher{rules: defaultRules}
}

// Match returns the first rule that fires.
func (m *Matcher) Match(text string) (Rule, bool) {
	if text == "" {
		return Rule{}, false
	}
	for _, r := range m.rules {
		if r.Matches(text) {
			return r, true
		}
	}
	return Rule{}, false
}

// IsSensitive reports whether any rule fires.
func (m *Matcher) IsSensitive(text string) bool {
	_, ok := m.Match(text)
	return ok
}

// MaskIfConfigured returns text unchanged. Sensitive entries are stored
// as-is and only flagged; masking is left to presentation.
func (m *Matcher) MaskIfConfigured(text string) string {
	return text
}

// Rules lists rule names in evaluation order.
func (m *Matcher) Rules() []string {
	names := make([]string, len(m.rules))
	for i, r := range m.rules {
		names[i] = r.Name
	}
	return names
}

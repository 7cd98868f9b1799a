package tagedit

import (
	"strings"
	"unicode/utf8"

	"github.com/handiism/audiotagtools/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultOverrides returns the built-in forced-case tokens.
func DefaultOverrides() map[string]model.CaseRule {
	return map[string]model.CaseRule{
		"aor":        model.CaseUpper,
		"awolnation": model.CaseUpper,
	}
}

// Formatter reformats multipart tag values.
type Formatter struct {
	overrides map[string]model.CaseRule
}

// NewFormatter creates a Formatter. Override keys are matched against the
// lower-cased part. A nil map disables overrides.
func NewFormatter(overrides map[string]model.CaseRule) *Formatter {
	normalized := make(map[string]model.CaseRule, len(overrides))
	for token, rule := range overrides {
		normalized[strings.ToLower(strings.TrimSpace(token))] = rule
	}
	return &Formatter{overrides: normalized}
}

// Format splits value on old, trims the parts, applies rule and the
// overrides, and joins with new. Overrides only apply when rule is not
// CaseNone.
func (f *Formatter) Format(value, old, new string, rule model.CaseRule) string {
	parts := strings.Split(value, old)
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if rule != model.CaseNone {
			part = ApplyCase(part, rule)
			if forced, ok := f.overrides[strings.ToLower(part)]; ok {
				part = ApplyCase(part, forced)
			}
		}
		parts[i] = part
	}
	return strings.Join(parts, new)
}

// ApplyCase transforms s according to rule.
func ApplyCase(s string, rule model.CaseRule) string {
	switch rule {
	case model.CaseUpper:
		return cases.Upper(language.Und).String(s)
	case model.CaseLower:
		return cases.Lower(language.Und).String(s)
	case model.CaseTitle:
		return cases.Title(language.Und).String(s)
	case model.CaseCapitalize:
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError {
			return s
		}
		return cases.Upper(language.Und).String(s[:size]) + cases.Lower(language.Und).String(s[size:])
	}
	return s
}

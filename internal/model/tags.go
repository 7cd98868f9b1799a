package model

import (
	"fmt"
	"strings"
)

// CaseRule is a string casing transform applied to each part of a
// multipart tag.
type CaseRule int

const (
	// CaseNone leaves parts unchanged.
	CaseNone CaseRule = iota
	CaseCapitalize
	CaseTitle
	CaseUpper
	CaseLower
)

var caseNames = map[CaseRule]string{
	CaseNone:       "",
	CaseCapitalize: "capitalize",
	CaseTitle:      "title",
	CaseUpper:      "upper",
	CaseLower:      "lower",
}

func (c CaseRule) String() string {
	if name, ok := caseNames[c]; ok {
		if name == "" {
			return "none"
		}
		return name
	}
	return fmt.Sprintf("CaseRule(%d)", int(c))
}

// ParseCaseRule parses a case token. The empty string and "none" map to
// CaseNone.
func ParseCaseRule(s string) (CaseRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CaseNone, nil
	case "capitalize":
		return CaseCapitalize, nil
	case "title":
		return CaseTitle, nil
	case "upper":
		return CaseUpper, nil
	case "lower":
		return CaseLower, nil
	}
	return CaseNone, fmt.Errorf("unknown case rule %q (want capitalize, title, upper or lower)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c CaseRule) MarshalText() ([]byte, error) {
	return []byte(caseNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CaseRule) UnmarshalText(text []byte) error {
	rule, err := ParseCaseRule(string(text))
	if err != nil {
		return err
	}
	*c = rule
	return nil
}

// FieldRule pairs a tag field with the case rule applied to it.
type FieldRule struct {
	Field string   `toml:"field"`
	Case  CaseRule `toml:"case"`
}

// DefaultFieldRules is the fixed batch order: artist and composer keep
// their case, genre is title-cased.
func DefaultFieldRules() []FieldRule {
	return []FieldRule{
		{Field: FieldArtist, Case: CaseNone},
		{Field: FieldComposer, Case: CaseNone},
		{Field: FieldGenre, Case: CaseTitle},
	}
}

// TagEditTask is one (directory, field) unit of a tag editing run.
type TagEditTask struct {
	Dir          string
	Field        string
	OldDelimiter string
	NewDelimiter string
	Case         CaseRule
}

func (t TagEditTask) String() string {
	return fmt.Sprintf("%s [%s]", t.Dir, t.Field)
}

package tagedit

import (
	"fmt"
	"slices"
	"strings"

	"github.com/handiism/audiotagtools/internal/model"
)

// DefaultGuardedFields already use the comma as a multi-value separator.
func DefaultGuardedFields() []string {
	return []string{model.FieldArtist, model.FieldComposer}
}

// ValidateDelimiters checks old and new before anything is read. Both must
// be non-empty, and neither may be a comma when a guarded field is among
// fields.
func ValidateDelimiters(fields []string, old, new string, guarded []string) error {
	if old == "" || new == "" {
		return fmt.Errorf("%w: delimiters must not be empty", model.ErrInvalidDelimiter)
	}
	if strings.TrimSpace(old) != "," && strings.TrimSpace(new) != "," {
		return nil
	}
	for _, field := range fields {
		if slices.Contains(guarded, strings.ToLower(field)) {
			return fmt.Errorf("%w: %q is not allowed for the %q tag", model.ErrInvalidDelimiter, ",", field)
		}
	}
	return nil
}

package reorganize

import (
	"fmt"
	"strings"

	"github.com/handiism/audiotagtools/internal/model"
)

// PartialStateError reports a plan that stopped at Failed. Completed holds
// the steps already applied; it is empty when a pre-flight check failed.
type PartialStateError struct {
	Plan      *Plan
	Completed []Step
	Failed    Step
	Err       error

	preflight bool
}

func (e *PartialStateError) Error() string {
	return fmt.Sprintf("reorganize %q: %s failed after %d of %d steps: %v",
		e.Plan.Source, e.Failed, len(e.Completed), len(e.Plan.Steps), e.Err)
}

func (e *PartialStateError) Unwrap() []error { return []error{model.ErrFilesystem, e.Err} }

// ErrorKind implements model.ErrorClassifier.
func (e *PartialStateError) ErrorKind() model.ErrorKind { return model.KindFilesystem }

// Pending returns the steps after Failed that never ran, or every step
// when a pre-flight check failed.
func (e *PartialStateError) Pending() []Step {
	if e.preflight {
		return e.Plan.Steps
	}
	next := len(e.Completed) + 1
	if next > len(e.Plan.Steps) {
		return nil
	}
	return e.Plan.Steps[next:]
}

// Report renders the partial state for humans.
func (e *PartialStateError) Report() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Reorganizing %s stopped: %v\n", e.Plan.Source, e.Err)
	for _, s := range e.Completed {
		fmt.Fprintf(&sb, "  done     %s\n", s)
	}
	if e.preflight {
		fmt.Fprintf(&sb, "  BLOCKED  %s\n", e.Failed)
	} else {
		fmt.Fprintf(&sb, "  FAILED   %s\n", e.Failed)
	}
	for _, s := range e.Pending() {
		fmt.Fprintf(&sb, "  pending  %s\n", s)
	}
	return sb.String()
}

package journal

import (
	"context"

	"github.com/handiism/audiotagtools/internal/reorganize"
)

// Recorder appends the steps of one run. It satisfies
// reorganize.StepRecorder.
type Recorder struct {
	store *Store
	runID string
}

// Recorder returns a Recorder for runID.
func (s *Store) Recorder(runID string) *Recorder {
	return &Recorder{store: s, runID: runID}
}

// RunID returns the run the recorder writes to.
func (r *Recorder) RunID() string { return r.runID }

// RecordStep records a reorganize step.
func (r *Recorder) RecordStep(ctx context.Context, step reorganize.Step, err error) error {
	return r.Record(ctx, string(step.Op), step.Source, step.Target, err)
}

// RecordUnit records one (directory, field) tag editing unit.
func (r *Recorder) RecordUnit(ctx context.Context, dir, field string, err error) error {
	return r.Record(ctx, "tag "+field, dir, "", err)
}

// Record records any named operation.
func (r *Recorder) Record(ctx context.Context, op, source, target string, err error) error {
	step := Step{Op: op, Source: source, Target: target, Status: StatusSucceeded}
	if err != nil {
		step.Status = StatusFailed
		step.Error = err.Error()
	}
	return r.store.AddStep(ctx, r.runID, step)
}

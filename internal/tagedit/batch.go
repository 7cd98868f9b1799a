package tagedit

import (
	"context"
	"fmt"

	"github.com/handiism/audiotagtools/internal/events"
	"github.com/handiism/audiotagtools/internal/model"
)

// BatchOptions configures a Batch.
type BatchOptions struct {
	OldDelimiter string
	NewDelimiter string

	// Rules defaults to model.DefaultFieldRules.
	Rules []model.FieldRule

	// Guarded defaults to DefaultGuardedFields.
	Guarded []string
}

// Outcome is the result of one (directory, field) unit.
type Outcome struct {
	Task    model.TagEditTask
	Files   int
	Changed int
	Err     error
}

// Report collects the outcomes of a batch in execution order.
type Report struct {
	Outcomes []Outcome
}

// Failed returns the outcomes that carry an error.
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Changed returns the total number of files rewritten.
func (r *Report) Changed() int {
	n := 0
	for _, o := range r.Outcomes {
		n += o.Changed
	}
	return n
}

// Batch applies field rules to many directories with per-unit isolation.
type Batch struct {
	editor *Editor
	opts   BatchOptions
	events.Emitter
}

// NewBatch creates a Batch.
func NewBatch(editor *Editor, opts BatchOptions, sink events.Sink) *Batch {
	if len(opts.Rules) == 0 {
		opts.Rules = model.DefaultFieldRules()
	}
	if opts.Guarded == nil {
		opts.Guarded = DefaultGuardedFields()
	}
	return &Batch{editor: editor, opts: opts, Emitter: events.Emitter{Sink: sink}}
}

// Run processes every directory with every rule. Delimiter problems fail
// the whole run up front. Unit failures are recorded and skipped; only
// cancellation ends the run early, returning the partial report.
func (b *Batch) Run(ctx context.Context, dirs []string) (*Report, error) {
	fields := make([]string, len(b.opts.Rules))
	for i, r := range b.opts.Rules {
		fields[i] = r.Field
	}
	if err := ValidateDelimiters(fields, b.opts.OldDelimiter, b.opts.NewDelimiter, b.opts.Guarded); err != nil {
		return nil, err
	}

	report := &Report{}
	for _, dir := range dirs {
		b.Emit(events.Event{Message: fmt.Sprintf("Formatting tags in %q", dir), Level: events.LevelInfo, Dir: dir})
		for _, rule := range b.opts.Rules {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			task := model.TagEditTask{
				Dir:          dir,
				Field:        rule.Field,
				OldDelimiter: b.opts.OldDelimiter,
				NewDelimiter: b.opts.NewDelimiter,
				Case:         rule.Case,
			}
			outcome := b.runUnit(ctx, task)
			report.Outcomes = append(report.Outcomes, outcome)

			if outcome.Err != nil {
				b.Emit(events.Event{
					Message: fmt.Sprintf("Skipping %q tag in %q: %v", task.Field, dir, outcome.Err),
					Level:   events.LevelError,
					Dir:     dir,
					Err:     outcome.Err,
				})
				continue
			}
			b.Emit(events.Event{
				Message: fmt.Sprintf("Formatted %q tag: %d of %d files changed", task.Field, outcome.Changed, outcome.Files),
				Level:   events.LevelVerbose,
				Dir:     dir,
			})
		}
	}
	return report, nil
}

func (b *Batch) runUnit(ctx context.Context, task model.TagEditTask) (outcome Outcome) {
	outcome.Task = task
	defer func() {
		if r := recover(); r != nil {
			outcome.Err = &model.UnitError{Dir: task.Dir, Field: task.Field, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	cs, err := b.editor.Stage(ctx, task)
	if err != nil {
		outcome.Err = &model.UnitError{Dir: task.Dir, Field: task.Field, Err: err}
		return outcome
	}
	outcome.Files = cs.Files
	outcome.Changed = len(cs.Changes)
	if err := cs.Commit(ctx); err != nil {
		outcome.Err = &model.UnitError{Dir: task.Dir, Field: task.Field, Err: err}
	}
	return outcome
}

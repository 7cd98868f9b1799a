package reorganize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/handiism/audiotagtools/internal/events"
	ioutils "github.com/handiism/audiotagtools/internal/io"
)

// LockRetryDelay is how often a held lock is retried.
const LockRetryDelay = 100 * time.Millisecond

// StepRecorder receives every executed step; err is nil on success.
type StepRecorder interface {
	RecordStep(ctx context.Context, step Step, err error) error
}

// Executor runs plans under a single-writer file lock.
type Executor struct {
	events.Emitter

	lockPath string
	recorder StepRecorder
}

// NewExecutor creates an Executor. An empty lockPath disables locking and
// a nil recorder disables step recording.
func NewExecutor(lockPath string, recorder StepRecorder, sink events.Sink) *Executor {
	return &Executor{
		Emitter:  events.Emitter{Sink: sink},
		lockPath: lockPath,
		recorder: recorder,
	}
}

// Execute applies plan. ctx bounds the wait for the lock and is checked
// once before the first mutation; a started plan runs to completion or to
// its first failing step.
func (e *Executor) Execute(ctx context.Context, plan *Plan) error {
	if plan.Retains() {
		e.Emit(events.Event{
			Message: fmt.Sprintf("Keeping converted files in %s", plan.Staging),
			Level:   events.LevelVerbose,
			Dir:     plan.Source,
		})
		return nil
	}

	unlock, err := e.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := preflight(plan); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Steps and their records outlive cancellation.
	runCtx := context.WithoutCancel(ctx)
	for i, step := range plan.Steps {
		err := apply(runCtx, step)
		e.record(runCtx, plan, step, err)
		if err != nil {
			perr := &PartialStateError{
				Plan:      plan,
				Completed: plan.Steps[:i:i],
				Failed:    step,
				Err:       err,
			}
			e.Emit(events.Event{Message: perr.Error(), Level: events.LevelError, Dir: plan.Source, Err: perr})
			return perr
		}
		e.Emitf(events.LevelVerbose, "%s", step)
	}

	msg := fmt.Sprintf("Replaced originals in %s", plan.Source)
	if plan.Archive != "" {
		msg = fmt.Sprintf("Moved converted files into %s, originals archived in %s", plan.Source, filepath.Base(plan.Archive))
	}
	e.Emit(events.Event{Message: msg, Level: events.LevelSuccess, Dir: plan.Source})
	return nil
}

func (e *Executor) lock(ctx context.Context) (func(), error) {
	if e.lockPath == "" {
		return func() {}, nil
	}
	if err := ioutils.EnsureDir(filepath.Dir(e.lockPath)); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	lock := flock.New(e.lockPath)
	ok, err := lock.TryLockContext(ctx, LockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", e.lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("acquire lock %s: held by another process", e.lockPath)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			e.Emitf(events.LevelWarning, "Failed to release lock %s: %v", e.lockPath, err)
		}
	}, nil
}

func (e *Executor) record(ctx context.Context, plan *Plan, step Step, stepErr error) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordStep(ctx, step, stepErr); err != nil {
		e.Emit(events.Event{
			Message: fmt.Sprintf("Failed to record step %s: %v", step, err),
			Level:   events.LevelWarning,
			Dir:     plan.Source,
			Err:     err,
		})
	}
}

// preflight checks that every mkdir and move destination is free,
// accounting for paths the plan itself vacates or claims earlier.
func preflight(plan *Plan) error {
	vacated := make(map[string]bool)
	claimed := make(map[string]bool)
	for _, step := range plan.Steps {
		switch step.Op {
		case OpMkdir, OpMove:
			if claimed[step.Target] || (exists(step.Target) && !vacated[step.Target]) {
				return &PartialStateError{
					Plan:      plan,
					Failed:    step,
					Err:       &fs.PathError{Op: string(step.Op), Path: step.Target, Err: fs.ErrExist},
					preflight: true,
				}
			}
			claimed[step.Target] = true
			if step.Op == OpMove {
				vacated[step.Source] = true
			}
		case OpRemove, OpRemoveTree:
			vacated[step.Source] = true
		}
	}
	return nil
}

func apply(ctx context.Context, step Step) error {
	switch step.Op {
	case OpMkdir:
		return os.Mkdir(step.Target, 0755)
	case OpMove:
		return ioutils.MoveFile(ctx, step.Source, step.Target)
	case OpRemove:
		return os.Remove(step.Source)
	case OpRemoveTree:
		return os.RemoveAll(step.Source)
	}
	return errors.New("unknown op " + string(step.Op))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/handiism/audiotagtools/internal/codec"
	"github.com/handiism/audiotagtools/internal/config"
	"github.com/handiism/audiotagtools/internal/journal"
	"github.com/handiism/audiotagtools/internal/logging"
)

type commandContext struct {
	configFlag string
	verbose    bool

	settingsOnce sync.Once
	settings     *config.Settings
	settingsErr  error

	// newEncoder builds the codec engine; tests swap in a fake.
	newEncoder func(*config.Settings) codec.Encoder
}

func newCommandContext() *commandContext {
	return &commandContext{
		newEncoder: func(s *config.Settings) codec.Encoder {
			return codec.NewFFmpeg(s.Paths.FFmpeg)
		},
	}
}

func (c *commandContext) ensureSettings() (*config.Settings, error) {
	c.settingsOnce.Do(func() {
		settings, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.settingsErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.settings = settings
	})
	return c.settings, c.settingsErr
}

// encoder returns the codec engine after checking it can run.
func (c *commandContext) encoder(settings *config.Settings) (codec.Encoder, error) {
	enc := c.newEncoder(settings)
	if checker, ok := enc.(interface{ Available() error }); ok {
		if err := checker.Available(); err != nil {
			return nil, err
		}
	}
	return enc, nil
}

// newSink builds the console and file logger. -v lowers the level to debug.
func (c *commandContext) newSink(settings *config.Settings, console io.Writer) (*logging.Sink, error) {
	opts := logging.FromSettings(settings)
	opts.Console = console
	if c.verbose {
		opts.Level = "debug"
	}
	return logging.NewSink(opts)
}

// runScope ties one mutating command to its journal run and log sink.
type runScope struct {
	base     *logging.Sink
	sink     *logging.Sink
	store    *journal.Store
	run      *journal.Run
	recorder *journal.Recorder
}

// beginRun opens the sink and starts a journal run. A journal that cannot
// be opened is reported and the command continues without it.
func (c *commandContext) beginRun(cmd *cobra.Command, kind journal.Kind, root string) (*runScope, error) {
	settings, err := c.ensureSettings()
	if err != nil {
		return nil, err
	}
	base, err := c.newSink(settings, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("set up logging: %w", err)
	}

	scope := &runScope{base: base, sink: base}
	store, err := journal.Open(settings.JournalPath())
	if err != nil {
		base.Logger().Warn("Run journal unavailable", zap.Error(err))
		return scope, nil
	}
	run, err := store.Begin(cmd.Context(), kind, root)
	if err != nil {
		_ = store.Close()
		base.Logger().Warn("Run journal unavailable", zap.Error(err))
		return scope, nil
	}

	scope.store = store
	scope.run = run
	scope.recorder = store.Recorder(run.ID)
	scope.sink = base.With(zap.String("run_id", run.ID))
	return scope, nil
}

// record adds one step to the run, if there is one.
func (r *runScope) record(ctx context.Context, op, source, target string, err error) {
	if r.recorder == nil {
		return
	}
	if rerr := r.recorder.Record(context.WithoutCancel(ctx), op, source, target, err); rerr != nil {
		r.base.Logger().Warn("Failed to journal step", zap.Error(rerr))
	}
}

// recordUnit adds one tag editing unit to the run, if there is one.
func (r *runScope) recordUnit(ctx context.Context, dir, field string, err error) {
	if r.recorder == nil {
		return
	}
	if rerr := r.recorder.RecordUnit(context.WithoutCancel(ctx), dir, field, err); rerr != nil {
		r.base.Logger().Warn("Failed to journal unit", zap.Error(rerr))
	}
}

// finish closes the run with a status derived from err, unless status is
// given explicitly, and releases the journal and the sink.
func (r *runScope) finish(ctx context.Context, status journal.Status, detail string, err error) {
	if status == "" {
		status = statusFor(err)
	}
	if detail == "" && err != nil {
		detail = err.Error()
	}
	if r.store != nil {
		if ferr := r.store.Finish(context.WithoutCancel(ctx), r.run.ID, status, detail); ferr != nil {
			r.base.Logger().Warn("Failed to finish journal run", zap.Error(ferr))
		}
		_ = r.store.Close()
	}
	_ = r.base.Close()
}

// runID returns a short id for display, or "" without a journal.
func (r *runScope) runID() string {
	if r.run == nil {
		return ""
	}
	return shortID(r.run.ID)
}

func statusFor(err error) journal.Status {
	switch {
	case err == nil:
		return journal.StatusSucceeded
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return journal.StatusCanceled
	default:
		return journal.StatusFailed
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

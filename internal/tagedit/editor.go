package tagedit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/handiism/audiotagtools/internal/model"
	"github.com/handiism/audiotagtools/internal/tagstore"
)

// Opener opens the tag store of one file.
type Opener func(path string) (tagstore.Store, error)

// EditorConfig configures an Editor.
type EditorConfig struct {
	// Extension selects eligible files. Defaults to "mp3".
	Extension string

	// Formatter defaults to one with DefaultOverrides.
	Formatter *Formatter

	// Opener defaults to tagstore.Open.
	Opener Opener
}

// Editor stages and commits tag edits for one directory at a time.
type Editor struct {
	ext       string
	formatter *Formatter
	open      Opener
}

// NewEditor creates an Editor.
func NewEditor(cfg EditorConfig) *Editor {
	e := &Editor{ext: cfg.Extension, formatter: cfg.Formatter, open: cfg.Opener}
	if e.ext == "" {
		e.ext = "mp3"
	}
	if e.formatter == nil {
		e.formatter = NewFormatter(DefaultOverrides())
	}
	if e.open == nil {
		e.open = tagstore.Open
	}
	return e
}

// Change is one staged edit.
type Change struct {
	Path string
	Old  string
	New  string

	store tagstore.Store
}

// Changeset holds the staged edits of one unit. It owns open tag stores
// until Commit or Discard.
type Changeset struct {
	Task    model.TagEditTask
	Files   int
	Changes []Change
	done    bool
}

// Stage reads task.Field from every eligible file in task.Dir and computes
// the reformatted values. Nothing is written. Cancellation is checked
// between files.
func (e *Editor) Stage(ctx context.Context, task model.TagEditTask) (*Changeset, error) {
	files, err := e.eligibleFiles(task.Dir)
	if err != nil {
		return nil, err
	}

	cs := &Changeset{Task: task, Files: len(files)}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			cs.Discard()
			return nil, err
		}

		store, err := e.open(path)
		if err != nil {
			cs.Discard()
			return nil, fmt.Errorf("open %q: %w", filepath.Base(path), err)
		}

		old := store.Get(task.Field)
		if old == "" {
			store.Close()
			continue
		}
		formatted := e.formatter.Format(old, task.OldDelimiter, task.NewDelimiter, task.Case)
		if formatted == old {
			store.Close()
			continue
		}
		cs.Changes = append(cs.Changes, Change{Path: path, Old: old, New: formatted, store: store})
	}
	return cs, nil
}

// Commit writes every staged change. A commit that has started runs to
// completion; save errors are joined and returned after all files were
// attempted.
func (cs *Changeset) Commit(ctx context.Context) error {
	if cs.done {
		return errors.New("changeset already committed or discarded")
	}
	if err := ctx.Err(); err != nil {
		cs.Discard()
		return err
	}
	defer cs.Discard()

	var errs []error
	for _, c := range cs.Changes {
		c.store.Set(cs.Task.Field, c.New)
		if err := c.store.Save(); err != nil {
			errs = append(errs, fmt.Errorf("save %q: %w", filepath.Base(c.Path), err))
		}
	}
	return errors.Join(errs...)
}

// Discard releases the stores without writing.
func (cs *Changeset) Discard() {
	if cs.done {
		return
	}
	cs.done = true
	for _, c := range cs.Changes {
		if c.store != nil {
			_ = c.store.Close()
		}
	}
}

// Apply validates the delimiters for task.Field, then stages and commits.
func (e *Editor) Apply(ctx context.Context, task model.TagEditTask, guarded []string) (*Changeset, error) {
	if err := ValidateDelimiters([]string{task.Field}, task.OldDelimiter, task.NewDelimiter, guarded); err != nil {
		return nil, err
	}
	if err := model.CheckDir(task.Dir); err != nil {
		return nil, err
	}
	cs, err := e.Stage(ctx, task)
	if err != nil {
		return nil, err
	}
	return cs, cs.Commit(ctx)
}

func (e *Editor) eligibleFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && model.HasExt(entry.Name(), e.ext) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

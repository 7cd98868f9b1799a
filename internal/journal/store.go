package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	ioutils "github.com/handiism/audiotagtools/internal/io"
)

// Kind names what a run did.
type Kind string

const (
	KindConvert   Kind = "convert"
	KindTags      Kind = "tags"
	KindVolume    Kind = "volume"
	KindPlaylists Kind = "playlists"
)

// Status is the state of a run or a step.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusDegraded  Status = "degraded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// ErrRunNotFound is returned when no run matches an id.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousID is returned when an id prefix matches several runs.
var ErrAmbiguousID = errors.New("ambiguous run id")

// Run is one journal row.
type Run struct {
	ID       string
	Kind     Kind
	Root     string
	Status   Status
	Detail   string
	Started  time.Time
	Finished time.Time // zero while running
}

// Duration returns how long the run took, or zero while running.
func (r Run) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Step is one recorded mutation or unit of a run.
type Step struct {
	ID     int64
	RunID  string
	Op     string
	Source string
	Target string
	Status Status
	Error  string
	At     time.Time
}

// Store manages the journal database.
type Store struct {
	db   *sql.DB
	path string
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open creates or opens the journal at path.
func Open(path string) (*Store, error) {
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("ensure journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin inserts a running run with a fresh id.
func (s *Store) Begin(ctx context.Context, kind Kind, root string) (*Run, error) {
	run := &Run{
		ID:      uuid.NewString(),
		Kind:    kind,
		Root:    root,
		Status:  StatusRunning,
		Started: time.Now().UTC(),
	}
	err := s.exec(ctx,
		`INSERT INTO runs (id, kind, root, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), run.Root, string(run.Status), run.Started.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Finish stamps a run with its final status.
func (s *Store) Finish(ctx context.Context, runID string, status Status, detail string) error {
	err := s.exec(ctx,
		`UPDATE runs SET status = ?, detail = ?, finished_at = ? WHERE id = ?`,
		string(status), nullableString(detail), time.Now().UTC().Format(timeLayout), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	return nil
}

// AddStep appends a step to a run.
func (s *Store) AddStep(ctx context.Context, runID string, step Step) error {
	if step.Status == "" {
		step.Status = StatusSucceeded
	}
	if step.At.IsZero() {
		step.At = time.Now().UTC()
	}
	err := s.exec(ctx,
		`INSERT INTO steps (run_id, op, source, target, status, error, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, step.Op, nullableString(step.Source), nullableString(step.Target),
		string(step.Status), nullableString(step.Error), step.At.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert step: %w", err)
	}
	return nil
}

// Recent returns the newest runs first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, root, status, detail, started_at, finished_at
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Get returns the run whose id starts with prefix.
func (s *Store) Get(ctx context.Context, prefix string) (*Run, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, root, status, detail, started_at, finished_at
		FROM runs WHERE id LIKE ? || '%' ORDER BY started_at DESC LIMIT 2`, prefix)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return found[0], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
}

// Steps returns a run's steps in the order they were recorded.
func (s *Store) Steps(ctx context.Context, runID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, op, source, target, status, error, created_at
		FROM steps WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var (
			step                Step
			source, target, msg sql.NullString
			status, createdAt   string
		)
		if err := rows.Scan(&step.ID, &step.RunID, &step.Op, &source, &target, &status, &msg, &createdAt); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		step.Source = source.String
		step.Target = target.String
		step.Status = Status(status)
		step.Error = msg.String
		if step.At, err = parseTimeString(createdAt); err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run                Run
		kind, status       string
		detail, finishedAt sql.NullString
		startedAt          string
	)
	if err := row.Scan(&run.ID, &kind, &run.Root, &status, &detail, &startedAt, &finishedAt); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Kind = Kind(kind)
	run.Status = Status(status)
	run.Detail = detail.String
	var err error
	if run.Started, err = parseTimeString(startedAt); err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		if run.Finished, err = parseTimeString(finishedAt.String); err != nil {
			return nil, err
		}
	}
	return &run, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil || !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", value, err)
	}
	return t, nil
}

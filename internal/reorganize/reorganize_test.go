package reorganize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/handiism/audiotagtools/internal/events"
	"github.com/handiism/audiotagtools/internal/model"
)

func TestArchiveName(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		input    string
		want     string
	}{
		{"free", nil, "Foo", ".Foo"},
		{"already hidden", nil, "..Foo", ".Foo"},
		{"first taken", []string{".Foo"}, "Foo", ".Foo (2)"},
		{"two taken", []string{".Foo", ".Foo (2)"}, "Foo", ".Foo (3)"},
		{"gap is reused", []string{".Foo", ".Foo (3)"}, "Foo", ".Foo (2)"},
		{"double digits", []string{".Foo", ".Foo (2)", ".Foo (3)", ".Foo (4)", ".Foo (5)", ".Foo (6)", ".Foo (7)", ".Foo (8)", ".Foo (9)"}, "Foo", ".Foo (10)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken := make(map[string]bool)
			for _, n := range tt.existing {
				taken[filepath.Join("/music", n)] = true
			}
			got, err := ArchiveName("/music", tt.input, func(p string) bool { return taken[p] })
			if err != nil {
				t.Fatalf("ArchiveName: %v", err)
			}
			if want := filepath.Join("/music", tt.want); got != want {
				t.Errorf("ArchiveName = %q, want %q", got, want)
			}
		})
	}
}

func TestArchiveName_Exhausted(t *testing.T) {
	calls := 0
	_, err := ArchiveName("/music", "Foo", func(string) bool { calls++; return true })
	if !errors.Is(err, ErrArchiveNamesExhausted) {
		t.Fatalf("error = %v, want ErrArchiveNamesExhausted", err)
	}
	if calls != MaxArchiveAttempts {
		t.Errorf("exists called %d times, want %d", calls, MaxArchiveAttempts)
	}
}

func TestPolicy_Normalize(t *testing.T) {
	tests := []struct {
		in   Policy
		want string
	}{
		{Policy{}, "retain"},
		{Policy{InPlace: true}, "archive"},
		{Policy{InPlace: true, DeleteOriginals: true}, "delete"},
		{Policy{DeleteOriginals: true}, "delete"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.in, got, tt.want)
		}
	}
	if p := (Policy{DeleteOriginals: true}).Normalize(); !p.InPlace {
		t.Error("DeleteOriginals must force InPlace")
	}
}

// album lays out a converted album: <root>/Album with .flac originals plus
// an unrelated cover, and its staging dir with matching .mp3 files.
func album(t *testing.T) (src string, originals []string) {
	t.Helper()
	src = filepath.Join(t.TempDir(), "Album")
	staging := model.StagingPath(src)
	for _, dir := range []string{src, staging} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	originals = []string{"01.flac", "02.flac"}
	for _, name := range originals {
		write(t, filepath.Join(src, name), "flac:"+name)
		write(t, filepath.Join(staging, model.ReplaceExt(name, "mp3")), "mp3:"+name)
	}
	write(t, filepath.Join(src, "cover.jpg"), "jpg")
	return src, originals
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func execute(t *testing.T, src string, originals []string, policy Policy) (*Plan, error) {
	t.Helper()
	plan, err := NewPlan(src, originals, policy)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	lock := filepath.Join(t.TempDir(), "state", "reorganize.lock")
	return plan, NewExecutor(lock, nil, nil).Execute(context.Background(), plan)
}

func TestExecute_Retain(t *testing.T) {
	src, originals := album(t)

	plan, err := execute(t, src, originals, Policy{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !plan.Retains() {
		t.Errorf("retain plan has steps: %v", plan.Steps)
	}
	for _, name := range originals {
		if got := read(t, filepath.Join(src, name)); got != "flac:"+name {
			t.Errorf("original %s changed: %q", name, got)
		}
		if got := read(t, filepath.Join(plan.Staging, model.ReplaceExt(name, "mp3"))); got != "mp3:"+name {
			t.Errorf("staged %s = %q", name, got)
		}
	}
}

func TestExecute_Delete(t *testing.T) {
	src, originals := album(t)

	plan, err := execute(t, src, originals, Policy{DeleteOriginals: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, name := range originals {
		if _, err := os.Stat(filepath.Join(src, name)); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("original %s still present", name)
		}
		if got := read(t, filepath.Join(src, model.ReplaceExt(name, "mp3"))); got != "mp3:"+name {
			t.Errorf("converted %s = %q", name, got)
		}
	}
	if read(t, filepath.Join(src, "cover.jpg")) != "jpg" {
		t.Error("unrelated file touched")
	}
	if exists(plan.Staging) {
		t.Error("staging not removed")
	}
	if plan.Archive != "" {
		t.Errorf("delete plan has archive %q", plan.Archive)
	}
}

func TestExecute_Archive(t *testing.T) {
	src, originals := album(t)

	plan, err := execute(t, src, originals, Policy{InPlace: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if want := filepath.Join(filepath.Dir(src), ".Album"); plan.Archive != want {
		t.Fatalf("archive = %q, want %q", plan.Archive, want)
	}
	for _, name := range originals {
		if got := read(t, filepath.Join(plan.Archive, name)); got != "flac:"+name {
			t.Errorf("archived %s = %q", name, got)
		}
		if got := read(t, filepath.Join(src, model.ReplaceExt(name, "mp3"))); got != "mp3:"+name {
			t.Errorf("converted %s = %q", name, got)
		}
	}
	if exists(plan.Staging) {
		t.Error("staging not removed")
	}

	// A second conversion of the same directory archives next to the first.
	staging := model.StagingPath(src)
	if err := os.MkdirAll(staging, 0755); err != nil {
		t.Fatal(err)
	}
	write(t, filepath.Join(src, "03.flac"), "flac:03")
	write(t, filepath.Join(staging, "03.mp3"), "mp3:03")
	plan, err = execute(t, src, []string{"03.flac"}, Policy{InPlace: true})
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if want := filepath.Join(filepath.Dir(src), ".Album (2)"); plan.Archive != want {
		t.Errorf("second archive = %q, want %q", plan.Archive, want)
	}
}

func TestExecute_PreflightConflict(t *testing.T) {
	src, originals := album(t)
	write(t, filepath.Join(src, "02.mp3"), "stale")

	plan, err := execute(t, src, originals, Policy{DeleteOriginals: true})
	var perr *PartialStateError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *PartialStateError", err)
	}
	if !errors.Is(err, model.ErrFilesystem) || !errors.Is(err, fs.ErrExist) {
		t.Errorf("error chain = %v", err)
	}
	if model.Kind(err) != model.KindFilesystem {
		t.Errorf("Kind = %v", model.Kind(err))
	}
	if len(perr.Completed) != 0 {
		t.Errorf("Completed = %v, want none", perr.Completed)
	}
	if len(perr.Pending()) != len(plan.Steps) {
		t.Errorf("Pending = %d steps, want %d", len(perr.Pending()), len(plan.Steps))
	}
	for _, name := range originals {
		if read(t, filepath.Join(src, name)) != "flac:"+name {
			t.Errorf("original %s touched", name)
		}
	}
	if read(t, filepath.Join(src, "02.mp3")) != "stale" {
		t.Error("conflicting file overwritten")
	}
}

type recorder struct {
	mu    sync.Mutex
	steps []string
}

func (r *recorder) RecordStep(_ context.Context, step Step, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	status := "ok"
	if err != nil {
		status = "failed"
	}
	r.steps = append(r.steps, fmt.Sprintf("%s %s", step.Op, status))
	return nil
}

func TestExecute_MidPlanFailure(t *testing.T) {
	src, originals := album(t)

	plan, err := NewPlan(src, originals, Policy{InPlace: true})
	if err != nil {
		t.Fatal(err)
	}
	// Vanishes between planning and execution.
	if err := os.Remove(filepath.Join(src, "02.flac")); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	var sink events.Collector
	err = NewExecutor("", rec, &sink).Execute(context.Background(), plan)

	var perr *PartialStateError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *PartialStateError", err)
	}
	if len(perr.Completed) != 2 {
		t.Fatalf("Completed = %v, want mkdir and first move", perr.Completed)
	}
	if perr.Completed[0].Op != OpMkdir || perr.Completed[1].Source != filepath.Join(src, "01.flac") {
		t.Errorf("Completed = %v", perr.Completed)
	}
	if perr.Failed.Source != filepath.Join(src, "02.flac") {
		t.Errorf("Failed = %v", perr.Failed)
	}
	if got, want := len(perr.Pending()), len(plan.Steps)-3; got != want {
		t.Errorf("Pending = %d, want %d", got, want)
	}
	report := perr.Report()
	for _, want := range []string{"done", "FAILED", "pending", "02.flac"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
	if want := []string{"mkdir ok", "move ok", "move failed"}; strings.Join(rec.steps, ",") != strings.Join(want, ",") {
		t.Errorf("recorded %v, want %v", rec.steps, want)
	}
	if sink.Count(events.LevelError) != 1 {
		t.Errorf("error events = %d, want 1", sink.Count(events.LevelError))
	}
	// No rollback.
	if read(t, filepath.Join(plan.Archive, "01.flac")) != "flac:01.flac" {
		t.Error("completed move was rolled back")
	}
}

func TestExecute_LockHeld(t *testing.T) {
	src, originals := album(t)
	plan, err := NewPlan(src, originals, Policy{DeleteOriginals: true})
	if err != nil {
		t.Fatal(err)
	}

	lockPath := filepath.Join(t.TempDir(), "reorganize.lock")
	held := flock.New(lockPath)
	if ok, err := held.TryLock(); !ok || err != nil {
		t.Fatalf("TryLock = %v, %v", ok, err)
	}
	defer held.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	err = NewExecutor(lockPath, nil, nil).Execute(ctx, plan)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
	if read(t, filepath.Join(src, "01.flac")) != "flac:01.flac" {
		t.Error("plan ran without the lock")
	}
}

func TestExecute_CanceledBeforeStart(t *testing.T) {
	src, originals := album(t)
	plan, err := NewPlan(src, originals, Policy{DeleteOriginals: true})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewExecutor("", nil, nil).Execute(ctx, plan); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if !exists(filepath.Join(src, "01.flac")) {
		t.Error("canceled plan mutated the source")
	}
}

package reorganize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/handiism/audiotagtools/internal/model"
)

// MaxArchiveAttempts bounds the archive name search.
const MaxArchiveAttempts = 1000

// ErrArchiveNamesExhausted is returned when every archive candidate up to
// MaxArchiveAttempts is taken.
var ErrArchiveNamesExhausted = errors.New("archive names exhausted")

// Policy selects where converted files end up.
type Policy struct {
	InPlace         bool
	DeleteOriginals bool
}

// Normalize applies the rule that deleting originals implies in place.
func (p Policy) Normalize() Policy {
	if p.DeleteOriginals {
		p.InPlace = true
	}
	return p
}

func (p Policy) String() string {
	p = p.Normalize()
	switch {
	case !p.InPlace:
		return "retain"
	case p.DeleteOriginals:
		return "delete"
	}
	return "archive"
}

// Op is a filesystem mutation.
type Op string

const (
	OpMkdir      Op = "mkdir"
	OpMove       Op = "move"
	OpRemove     Op = "remove"
	OpRemoveTree Op = "remove-tree"
)

// Step is one mutation of a plan. Move uses both paths, mkdir only Target,
// remove and remove-tree only Source.
type Step struct {
	Op     Op
	Source string
	Target string
}

func (s Step) String() string {
	switch s.Op {
	case OpMove:
		return fmt.Sprintf("%s %s -> %s", s.Op, s.Source, s.Target)
	case OpMkdir:
		return fmt.Sprintf("%s %s", s.Op, s.Target)
	}
	return fmt.Sprintf("%s %s", s.Op, s.Source)
}

// Plan is the ordered list of steps placing one converted directory.
type Plan struct {
	Source  string
	Staging string
	// Archive is empty unless originals are archived.
	Archive string
	Policy  Policy
	Steps   []Step
}

// Retains reports whether the plan leaves everything where it is.
func (p *Plan) Retains() bool {
	return len(p.Steps) == 0
}

// NewPlan builds the placement plan for source. originals are the base
// names of the converted source files; the staging directory's entries
// are listed from disk.
func NewPlan(source string, originals []string, policy Policy) (*Plan, error) {
	source, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidPath, err)
	}
	policy = policy.Normalize()
	plan := &Plan{
		Source:  source,
		Staging: model.StagingPath(source),
		Policy:  policy,
	}
	if !policy.InPlace {
		return plan, nil
	}

	entries, err := os.ReadDir(plan.Staging)
	if err != nil {
		return nil, fmt.Errorf("read staging: %w", err)
	}
	converted := make([]string, 0, len(entries))
	for _, e := range entries {
		converted = append(converted, e.Name())
	}
	sort.Strings(converted)
	originals = append([]string(nil), originals...)
	sort.Strings(originals)

	if policy.DeleteOriginals {
		for _, name := range originals {
			plan.Steps = append(plan.Steps, Step{Op: OpRemove, Source: filepath.Join(source, name)})
		}
	} else {
		archive, err := ArchiveName(filepath.Dir(source), filepath.Base(source), exists)
		if err != nil {
			return nil, err
		}
		plan.Archive = archive
		plan.Steps = append(plan.Steps, Step{Op: OpMkdir, Target: archive})
		for _, name := range originals {
			plan.Steps = append(plan.Steps, Step{
				Op:     OpMove,
				Source: filepath.Join(source, name),
				Target: filepath.Join(archive, name),
			})
		}
	}

	for _, name := range converted {
		plan.Steps = append(plan.Steps, Step{
			Op:     OpMove,
			Source: filepath.Join(plan.Staging, name),
			Target: filepath.Join(source, name),
		})
	}
	plan.Steps = append(plan.Steps, Step{Op: OpRemoveTree, Source: plan.Staging})
	return plan, nil
}

// ArchiveName returns the first free hidden sibling name for name inside
// parent: ".name", then ".name (2)", ".name (3)" and so on.
//
// Example:
//
//	// with /music/.Foo and /music/.Foo (2) present
//	ArchiveName("/music", "Foo", exists) // "/music/.Foo (3)"
func ArchiveName(parent, name string, exists func(string) bool) (string, error) {
	base := filepath.Join(parent, model.HiddenName(name))
	if !exists(base) {
		return base, nil
	}
	for i := 2; i <= MaxArchiveAttempts; i++ {
		candidate := fmt.Sprintf("%s (%d)", base, i)
		if !exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrArchiveNamesExhausted, base)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

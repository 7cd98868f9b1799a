package convert

import (
	"github.com/handiism/audiotagtools/internal/model"
)

// DirectoryResult is the outcome of one directory.
type DirectoryResult struct {
	Dir string
	// Output holds the converted files: the staging directory when it was
	// retained, otherwise Dir.
	Output string
	// Archive is set when originals were archived.
	Archive   string
	Converted []string
	Failures  []*model.TranscodeError
	// Degraded marks a directory with skipped failures whose in-place
	// reorganization was withheld.
	Degraded bool
	Err      error
}

// OK reports whether the directory converted cleanly.
func (r DirectoryResult) OK() bool {
	return r.Err == nil && !r.Degraded
}

// Summary totals a run.
type Summary struct {
	Directories int
	Converted   int
	Failed      int
	Degraded    int
	Errors      int
}

// Summarize totals results.
func Summarize(results []DirectoryResult) Summary {
	s := Summary{Directories: len(results)}
	for _, r := range results {
		s.Converted += len(r.Converted)
		s.Failed += len(r.Failures)
		if r.Degraded {
			s.Degraded++
		}
		if r.Err != nil {
			s.Errors++
		}
	}
	return s
}

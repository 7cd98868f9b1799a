package convert

import (
	"fmt"
	"strings"
)

// FailurePolicy decides what a permanently failing file does to its
// directory.
type FailurePolicy int

const (
	// PolicySkip records the failure and keeps converting.
	PolicySkip FailurePolicy = iota
	// PolicyAbort stops the directory at the first failure.
	PolicyAbort
)

// ParseFailurePolicy parses skip or abort. Empty means skip.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return PolicySkip, nil
	case "abort":
		return PolicyAbort, nil
	}
	return PolicySkip, fmt.Errorf("unknown failure policy %q (want skip or abort)", s)
}

func (p FailurePolicy) String() string {
	if p == PolicyAbort {
		return "abort"
	}
	return "skip"
}

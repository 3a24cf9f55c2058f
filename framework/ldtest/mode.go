package ldtest

import (
	"fmt"
	"time"
)

// Mode is the execution mode of a suite or test. Each node has exactly one.
type Mode int

const (
	// Normal is the default mode.
	Normal Mode = iota

	// Skip excludes the node and its descendants from the run; they are reported as skipped.
	Skip

	// Todo marks a placeholder. It is reported with the todo status and never runs.
	Todo

	// Only restricts the run to nodes marked Only (and their descendants) within each suite
	// that contains such a node.
	Only

	// Concurrent lets the node start without waiting for its concurrent siblings to finish.
	// On a suite, it makes every descendant concurrent.
	Concurrent

	// Fails inverts the outcome of a test body: the test passes if the body fails, and
	// fails if the body passes. It cannot be used on a suite.
	Fails
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Skip:
		return "skip"
	case Todo:
		return "todo"
	case Only:
		return "only"
	case Concurrent:
		return "concurrent"
	case Fails:
		return "fails"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Option modifies a suite or test declaration. A Mode is an Option; if several modes are
// given, the last one wins.
type Option interface {
	apply(*nodeOptions)
}

type nodeOptions struct {
	mode    Mode
	timeout time.Duration
}

func (m Mode) apply(o *nodeOptions) {
	o.mode = m
}

type timeoutOption time.Duration

func (t timeoutOption) apply(o *nodeOptions) {
	o.timeout = time.Duration(t)
}

// Timeout sets the time limit for a test body. On a suite, it is the default for every
// test in the suite.
func Timeout(d time.Duration) Option {
	return timeoutOption(d)
}

func resolveOptions(options []Option) nodeOptions {
	var o nodeOptions
	for _, opt := range options {
		if opt != nil {
			opt.apply(&o)
		}
	}
	return o
}

package framework

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldtime"
)

// Status is the outcome of a test or suite.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusTodo    Status = "todo"
)

// NodeKind distinguishes suites from tests in the report tree.
type NodeKind string

const (
	KindSuite NodeKind = "suite"
	KindTest  NodeKind = "test"
)

// TestID identifies a suite or test by its path from the module root.
type TestID struct {
	Path []string
}

// NewTestID builds a TestID, copying the path so that later appends to the caller's slice
// cannot alter it.
func NewTestID(path ...string) TestID {
	return TestID{Path: append([]string(nil), path...)}
}

// Plus returns the ID of a child named name.
func (t TestID) Plus(name string) TestID {
	p := make([]string, 0, len(t.Path)+1)
	return TestID{Path: append(append(p, t.Path...), name)}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// TestResult is the recorded outcome of a single test.
type TestResult struct {
	TestID      TestID
	Status      Status
	Errors      []error
	SkipReason  string
	Duration    time.Duration
	DebugOutput CapturedOutput
}

// Failed is a shortcut for Status == StatusFailed.
func (r TestResult) Failed() bool {
	return r.Status == StatusFailed
}

// ReportNode is one node of the report tree. Children are in declaration order, regardless
// of the order in which the tests actually finished.
type ReportNode struct {
	ID       TestID
	Kind     NodeKind
	Status   Status
	Duration time.Duration
	Errors   []error
	Children []*ReportNode
}

// RunReport is everything the engine knows about a finished run.
type RunReport struct {
	RunID     string
	StartTime ldtime.UnixMillisecondTime
	Duration  time.Duration

	// Modules has one report tree per registered root module, in registration order.
	Modules []*ReportNode

	// Tests has every test result in the order the tests completed.
	Tests []TestResult

	// Failures is the subset of Tests that failed.
	Failures []TestResult

	// Errors has failures that cannot be attributed to a single test, such as an afterAll
	// hook failure or a panic in a timer callback that ran outside of any test body.
	Errors []error
}

// OK is true if nothing in the run failed.
func (r RunReport) OK() bool {
	return len(r.Failures) == 0 && len(r.Errors) == 0
}

// Counts summarizes the results by status.
type Counts struct {
	Passed  int
	Failed  int
	Skipped int
	Todo    int
}

func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Skipped + c.Todo
}

func (c Counts) String() string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped, %d todo (%d total)",
		c.Passed, c.Failed, c.Skipped, c.Todo, c.Total())
}

// Counts returns the number of tests with each status.
func (r RunReport) Counts() Counts {
	var c Counts
	for _, t := range r.Tests {
		switch t.Status {
		case StatusPassed:
			c.Passed++
		case StatusFailed:
			c.Failed++
		case StatusSkipped:
			c.Skipped++
		case StatusTodo:
			c.Todo++
		}
	}
	return c
}

// Find returns the report node with the given ID, or nil.
func (r RunReport) Find(id TestID) *ReportNode {
	for _, m := range r.Modules {
		if n := m.find(id); n != nil {
			return n
		}
	}
	return nil
}

func (n *ReportNode) find(id TestID) *ReportNode {
	if n.ID.String() == id.String() {
		return n
	}
	for _, c := range n.Children {
		if found := c.find(id); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits n and all of its descendants depth-first in declaration order.
func (n *ReportNode) Walk(visit func(node *ReportNode, depth int)) {
	n.walk(visit, 0)
}

func (n *ReportNode) walk(visit func(*ReportNode, int), depth int) {
	visit(n, depth)
	for _, c := range n.Children {
		c.walk(visit, depth+1)
	}
}

// TestFailure pairs an error with the test it belongs to.
type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}

func (f TestFailure) Unwrap() error {
	return f.Err
}

package framework

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorKind categorizes the failures the engine can record.
type ErrorKind string

const (
	// KindDeclarationOutOfPhase means a suite, test or hook was declared after collection.
	KindDeclarationOutOfPhase ErrorKind = "DECLARATION_OUT_OF_PHASE"

	// KindMatcherFailure means an expectation was not met.
	KindMatcherFailure ErrorKind = "MATCHER_FAILURE"

	// KindAssertionCountMismatch means the number of assertions did not match the contract.
	KindAssertionCountMismatch ErrorKind = "ASSERTION_COUNT_MISMATCH"

	// KindHookFailure means a lifecycle hook failed.
	KindHookFailure ErrorKind = "HOOK_FAILURE"

	// KindUncaughtBodyError means something other than a matcher escaped a test body.
	KindUncaughtBodyError ErrorKind = "UNCAUGHT_BODY_ERROR"

	// KindTimeout means a test body or hook did not settle before its deadline.
	KindTimeout ErrorKind = "TIMEOUT"

	// KindExpectedFailure means a test declared with the fails mode passed.
	KindExpectedFailure ErrorKind = "EXPECTED_FAILURE"

	// KindUnknown is returned by KindOf for errors that are not part of the taxonomy.
	KindUnknown ErrorKind = "UNKNOWN"
)

// HookPhase identifies which lifecycle phase a hook belongs to.
type HookPhase string

const (
	BeforeAll  HookPhase = "beforeAll"
	AfterAll   HookPhase = "afterAll"
	BeforeEach HookPhase = "beforeEach"
	AfterEach  HookPhase = "afterEach"
)

// DeclarationOutOfPhaseError is raised when Describe, Test or a hook registration is called
// once the collection phase for its tree is over.
type DeclarationOutOfPhaseError struct {
	Call string
	Name string
}

func (e *DeclarationOutOfPhaseError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s was called outside of the collection phase", e.Call)
	}
	return fmt.Sprintf("%s(%q) was called outside of the collection phase", e.Call, e.Name)
}

// MatcherFailure is an expectation that was not met.
type MatcherFailure struct {
	Matcher  string
	Negated  bool
	Message  string
	Actual   interface{}
	Expected interface{}
}

func (e *MatcherFailure) Error() string {
	return e.Message
}

// AssertionCountMismatchError means a test body finished without making the number of
// assertions that it promised.
type AssertionCountMismatchError struct {
	// Expected is the promised count, or -1 if the test only required at least one.
	Expected int
	Actual   int
}

func (e *AssertionCountMismatchError) Error() string {
	if e.Expected < 0 {
		return "expected at least one assertion to be called but received none"
	}
	return fmt.Sprintf("expected number of assertions to be %d, but got %d", e.Expected, e.Actual)
}

// HookFailure is the failure of one lifecycle hook.
type HookFailure struct {
	Phase HookPhase
	Suite TestID
	Index int
	Err   error
}

func (e *HookFailure) Error() string {
	suite := e.Suite.String()
	if suite == "" {
		suite = "<root>"
	}
	return fmt.Sprintf("%s hook #%d of %s failed: %s", e.Phase, e.Index+1, suite, e.Err)
}

func (e *HookFailure) Unwrap() error {
	return e.Err
}

// UncaughtBodyError is a panic or an error that escaped a test body without going through
// a matcher.
type UncaughtBodyError struct {
	Value interface{}
	Stack string
}

func (e *UncaughtBodyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unexpected panic in test: %+v", e.Value)
	if e.Stack != "" {
		b.WriteString("\n")
		b.WriteString(e.Stack)
	}
	return b.String()
}

func (e *UncaughtBodyError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// TimeoutError means a body or hook was still running when its deadline passed.
type TimeoutError struct {
	What    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out in %s", e.What, e.Timeout)
}

// ExpectedFailureError is recorded for a test declared with the fails mode whose body passed.
type ExpectedFailureError struct{}

func (e *ExpectedFailureError) Error() string {
	return "expected test to fail, but it passed"
}

// KindOf classifies err according to the engine's error taxonomy.
func KindOf(err error) ErrorKind {
	var (
		decl    *DeclarationOutOfPhaseError
		matcher *MatcherFailure
		count   *AssertionCountMismatchError
		hook    *HookFailure
		body    *UncaughtBodyError
		timeout *TimeoutError
		fails   *ExpectedFailureError
	)
	// HookFailure is checked first, since it wraps whatever made the hook fail.
	switch {
	case err == nil:
		return ""
	case errors.As(err, &hook):
		return KindHookFailure
	case errors.As(err, &decl):
		return KindDeclarationOutOfPhase
	case errors.As(err, &matcher):
		return KindMatcherFailure
	case errors.As(err, &count):
		return KindAssertionCountMismatch
	case errors.As(err, &timeout):
		return KindTimeout
	case errors.As(err, &fails):
		return KindExpectedFailure
	case errors.As(err, &body):
		return KindUncaughtBodyError
	}
	return KindUnknown
}

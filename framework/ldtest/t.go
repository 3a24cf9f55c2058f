package ldtest

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/launchdarkly/spec-runner/framework"
	"github.com/launchdarkly/spec-runner/framework/mock"
)

// T is the context passed to test bodies and hooks. It implements expect.TestingT, so
// that matchers can report to it, and it carries the mocking context for the module.
//
// Errorf and the matchers may be called from any goroutine. FailNow and Skip stop the
// current body by panicking, so they must be called from the goroutine running the body
// (or from a fake timer callback, which runs on that goroutine).
type T struct {
	id          framework.TestID
	ctx         context.Context
	vi          *mock.Vi
	debugLogger *framework.CapturingLogger

	lock               sync.Mutex
	failed             bool
	skipped            bool
	skipReason         string
	abandoned          bool
	errors             []error
	assertionCount     int
	expectedAssertions ldvalue.OptionalInt
	hasAssertions      bool
}

func newT(ctx context.Context, id framework.TestID, vi *mock.Vi, debugLogger *framework.CapturingLogger) *T {
	if debugLogger == nil {
		debugLogger = &framework.CapturingLogger{}
	}
	return &T{id: id, ctx: ctx, vi: vi, debugLogger: debugLogger}
}

func (t *T) ID() framework.TestID {
	return t.id
}

// Context is cancelled when the body has settled or has run out of time. Long-running
// bodies should stop when it is done.
func (t *T) Context() context.Context {
	return t.ctx
}

// Vi returns the clock and spy registry shared by the tests of this module.
func (t *T) Vi() *mock.Vi {
	return t.vi
}

func (t *T) Errorf(format string, args ...interface{}) {
	t.addError(fmt.Errorf(format, args...))
}

// ReportError records a failure without stopping the body.
func (t *T) ReportError(err error) {
	t.addError(err)
}

func (t *T) addError(err error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.abandoned {
		return
	}
	t.failed = true
	t.errors = append(t.errors, err)
}

func (t *T) FailNow() {
	panic(t)
}

// Failed is true if a failure has been recorded.
func (t *T) Failed() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.failed
}

// Skip stops the body and marks the test as skipped. A failure recorded before the call
// still fails the test.
func (t *T) Skip() {
	t.lock.Lock()
	t.skipped = true
	t.lock.Unlock()
	panic(t)
}

func (t *T) SkipWithReason(reason string) {
	t.lock.Lock()
	t.skipReason = reason
	t.lock.Unlock()
	t.Skip()
}

// Debug adds a message to the test's debug output, which is shown if the test fails.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
}

func (t *T) DebugLogger() framework.Logger {
	return t.debugLogger
}

// Assertions declares that the body makes exactly n assertions.
func (t *T) Assertions(n int) {
	t.lock.Lock()
	t.expectedAssertions = ldvalue.NewOptionalInt(n)
	t.lock.Unlock()
}

// HasAssertions declares that the body makes at least one assertion.
func (t *T) HasAssertions() {
	t.lock.Lock()
	t.hasAssertions = true
	t.lock.Unlock()
}

// CountAssertion is called by the matcher engine for every matcher evaluated.
func (t *T) CountAssertion() {
	t.lock.Lock()
	t.assertionCount++
	t.lock.Unlock()
}

// execute runs a body or hook on the current goroutine, turning panics into recorded
// failures.
func (t *T) execute(fn func(*T)) {
	defer func() {
		if r := recover(); r != nil {
			t.recovered(r)
		}
	}()
	fn(t)
}

func (t *T) recovered(r interface{}) {
	if r == t {
		t.lock.Lock()
		defer t.lock.Unlock()
		if !t.skipped && !t.abandoned && len(t.errors) == 0 {
			t.failed = true
			t.errors = append(t.errors, errors.New("test failed with no failure message"))
		}
		return
	}
	var decl *framework.DeclarationOutOfPhaseError
	if err, ok := r.(error); ok && errors.As(err, &decl) {
		t.addError(decl)
		return
	}
	t.addError(&framework.UncaughtBodyError{Value: r, Stack: string(debug.Stack())})
}

// abandon records a failure for a body that is still running, and ignores anything the
// body reports from then on.
func (t *T) abandon(err error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.failed = true
	t.errors = append(t.errors, err)
	t.abandoned = true
}

// checkAssertions compares the number of assertions with what the body declared.
func (t *T) checkAssertions() {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.skipped || t.abandoned {
		return
	}
	if n, ok := t.expectedAssertions.Get(); ok && n != t.assertionCount {
		t.failed = true
		t.errors = append(t.errors, &framework.AssertionCountMismatchError{Expected: n, Actual: t.assertionCount})
	} else if t.hasAssertions && t.assertionCount == 0 {
		t.failed = true
		t.errors = append(t.errors, &framework.AssertionCountMismatchError{Expected: -1})
	}
}

// invert implements the fails mode: recorded failures are discarded, and a body that did
// not fail gets an ExpectedFailureError.
func (t *T) invert() {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.skipped {
		return
	}
	if t.failed {
		t.failed = false
		t.errors = nil
		return
	}
	t.failed = true
	t.errors = append(t.errors, &framework.ExpectedFailureError{})
}

func (t *T) snapshot() (failed, skipped bool, skipReason string, errs []error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.failed, t.skipped, t.skipReason, append([]error(nil), t.errors...)
}

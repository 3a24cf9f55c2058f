package vitests

import (
	"time"

	"github.com/launchdarkly/spec-runner/framework/ldtest"
)

const modulePrefix = "vitests/"

// Modules returns the trees of all of the demonstration modules, in a fixed order.
func Modules() []*ldtest.Tree {
	return []*ldtest.Tree{
		DescribeSpec(),
		ExpectSpec(),
		SetupAndTeardownSpec(),
		TestSpec(),
		ViSpec(),
	}
}

// afterTimeout runs fn from a zero-delay timer, as an asynchronous test would, and returns
// its result. If the module is using fake timers, the timer is fired right away.
func afterTimeout(t *ldtest.T, fn func() interface{}) interface{} {
	result := make(chan interface{}, 1)
	t.Vi().SetTimeout(func() { result <- fn() }, 0)
	if t.Vi().IsFakeTimers() {
		t.Vi().AdvanceTimersByTime(time.Millisecond)
	}
	select {
	case v := <-result:
		return v
	case <-t.Context().Done():
		return nil
	}
}

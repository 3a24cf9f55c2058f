package framework

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeResult(counter int) TestResult {
	return TestResult{TestID: NewTestID("suite", fmt.Sprintf("test-%d", counter)), Status: StatusPassed}
}

func acceptTestResults(q *ResultSortingQueue, counters ...int) {
	for _, c := range counters {
		q.Accept(c, fakeResult(c))
	}
}

func expectTestResults(t *testing.T, q *ResultSortingQueue, counters ...int) {
	for _, c := range counters {
		select {
		case item := <-q.C:
			assert.Equal(t, fakeResult(c).TestID.String(), item.TestID.String())
		case <-time.After(time.Second):
			var deferredList []string
			for _, d := range q.Deferred() {
				deferredList = append(deferredList, d.TestID.String())
			}
			require.Fail(t, "timed out waiting for result from queue",
				"was waiting for result %d; deferred results were [%s]", c, strings.Join(deferredList, ","))
		}
	}
}

func expectDeferredResults(t *testing.T, q *ResultSortingQueue, counters ...int) {
	var expected, actual []string
	for _, c := range counters {
		expected = append(expected, fakeResult(c).TestID.String())
	}
	for _, d := range q.Deferred() {
		actual = append(actual, d.TestID.String())
	}
	assert.Equal(t, expected, actual, "did not see expected results in deferred list")
}

func TestResultSortingQueueWithResultsInOrder(t *testing.T) {
	q := NewResultSortingQueue(10)
	acceptTestResults(q, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	expectDeferredResults(t, q) // should be empty
	expectTestResults(t, q, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
}

func TestResultSortingQueueWithResultsOutOfOrder(t *testing.T) {
	q := NewResultSortingQueue(10)

	acceptTestResults(q, 3)
	expectDeferredResults(t, q, 3)

	acceptTestResults(q, 2)
	expectDeferredResults(t, q, 2, 3)

	acceptTestResults(q, 6)
	expectDeferredResults(t, q, 2, 3, 6)

	acceptTestResults(q, 1)
	expectTestResults(t, q, 1, 2, 3)
	expectDeferredResults(t, q, 6)

	acceptTestResults(q, 5)
	expectDeferredResults(t, q, 5, 6)

	acceptTestResults(q, 4)
	expectTestResults(t, q, 4, 5, 6)
	expectDeferredResults(t, q) // empty
}

func TestResultSortingQueueCloseReleasesDeferredResults(t *testing.T) {
	q := NewResultSortingQueue(10)
	acceptTestResults(q, 2, 4)
	q.Close()

	var ids []string
	for r := range q.C {
		ids = append(ids, r.TestID.String())
	}
	assert.Equal(t, []string{"suite/test-2", "suite/test-4"}, ids)
}

func TestResultSortingQueueIgnoresCountersAlreadyReleased(t *testing.T) {
	q := NewResultSortingQueue(10)
	acceptTestResults(q, 1, 2)
	expectTestResults(t, q, 1, 2)

	q.Accept(2, TestResult{TestID: NewTestID("duplicate")})
	q.Accept(0, TestResult{TestID: NewTestID("zero")})
	expectDeferredResults(t, q)

	acceptTestResults(q, 3)
	expectTestResults(t, q, 3)
	q.Close()
	_, open := <-q.C
	assert.False(t, open)
}

type recordingTestLogger struct {
	events []string
}

func (r *recordingTestLogger) TestStarted(id TestID) {
	r.events = append(r.events, "start "+id.String())
}

func (r *recordingTestLogger) TestError(id TestID, err error) {
	r.events = append(r.events, "error "+id.String()+": "+err.Error())
}

func (r *recordingTestLogger) TestFinished(id TestID, failed bool, _ CapturedOutput) {
	r.events = append(r.events, fmt.Sprintf("finish %s failed=%t", id, failed))
}

func (r *recordingTestLogger) TestSkipped(id TestID, reason string) {
	r.events = append(r.events, "skip "+id.String()+" ("+reason+")")
}

func TestResultSortingQueuePumpReplaysEventsInDeclarationOrder(t *testing.T) {
	q := NewResultSortingQueue(10)
	logger := &recordingTestLogger{}
	done := q.Pump(logger)

	q.Accept(3, TestResult{TestID: NewTestID("c"), Status: StatusTodo})
	q.Accept(2, TestResult{TestID: NewTestID("b"), Status: StatusFailed,
		Errors: []error{&AssertionCountMismatchError{Expected: -1}}})
	q.Accept(1, TestResult{TestID: NewTestID("a"), Status: StatusSkipped, SkipReason: "excluded"})
	q.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "timed out waiting for pump to finish")
	}
	assert.Equal(t, []string{
		"skip a (excluded)",
		"start b",
		"error b: expected at least one assertion to be called but received none",
		"finish b failed=true",
		"skip c (todo)",
	}, logger.events)
}

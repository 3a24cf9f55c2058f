package framework

import (
	"sort"
	"sync"
)

// ResultSortingQueue releases test results in declaration order. Each result is tagged with
// the 1-based position of its test in the declared tree; a result that arrives before its
// predecessors is held back until they have all been accepted.
type ResultSortingQueue struct {
	C         chan TestResult
	released  int
	pending   map[int]TestResult
	lock      sync.Mutex
	closeOnce sync.Once
}

// NewResultSortingQueue creates a queue. Results are sent on C while the queue is locked,
// so channelSize should be at least the number of results the run will produce.
func NewResultSortingQueue(channelSize int) *ResultSortingQueue {
	return &ResultSortingQueue{
		C:       make(chan TestResult, channelSize),
		pending: make(map[int]TestResult),
	}
}

// Accept takes the result of the test at position counter. Counters start at 1 and each
// one is accepted once; the result is sent on C as soon as every lower counter has been
// sent. A counter that has already been sent is ignored.
func (q *ResultSortingQueue) Accept(counter int, result TestResult) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if counter <= q.released {
		return
	}
	q.pending[counter] = result
	for {
		next, ok := q.pending[q.released+1]
		if !ok {
			return
		}
		delete(q.pending, q.released+1)
		q.released++
		q.C <- next
	}
}

// Deferred returns the results that are still waiting for a predecessor, in counter order.
func (q *ResultSortingQueue) Deferred() []TestResult {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.sortedPending()
}

func (q *ResultSortingQueue) sortedPending() []TestResult {
	counters := make([]int, 0, len(q.pending))
	for c := range q.pending {
		counters = append(counters, c)
	}
	sort.Ints(counters)
	ret := make([]TestResult, 0, len(counters))
	for _, c := range counters {
		ret = append(ret, q.pending[c])
	}
	return ret
}

// Close closes the output channel. Any results that are still deferred are released first,
// in order, so that a consumer never loses a result because of a gap in the counters.
func (q *ResultSortingQueue) Close() {
	q.closeOnce.Do(func() {
		q.lock.Lock()
		for _, r := range q.sortedPending() {
			q.C <- r
		}
		q.pending = map[int]TestResult{}
		close(q.C)
		q.lock.Unlock()
	})
}

// Pump starts a goroutine that delivers every released result to the TestLogger. The
// returned channel is closed when the queue has been closed and drained.
func (q *ResultSortingQueue) Pump(logger TestLogger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range q.C {
			Replay(logger, r)
		}
	}()
	return done
}

package ldtest

import (
	"context"
	"runtime/debug"

	"github.com/launchdarkly/spec-runner/framework"
)

// Future is the eventual result of a computation running on its own goroutine. The runner
// uses it to wait for test bodies and hooks, and test bodies can use it for their own
// asynchronous work; it satisfies expect.Awaitable, so Resolves and Rejects accept it.
type Future struct {
	done  chan struct{}
	value interface{}
	err   error
}

// Async starts fn on a new goroutine. If fn panics, the future settles with a
// *framework.UncaughtBodyError.
func Async(fn func() (interface{}, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.value = nil
				f.err = &framework.UncaughtBodyError{Value: r, Stack: string(debug.Stack())}
			}
		}()
		f.value, f.err = fn()
	}()
	return f
}

// Resolved returns a future that has already settled with a value.
func Resolved(value interface{}) *Future {
	f := &Future{done: make(chan struct{}), value: value}
	close(f.done)
	return f
}

// Rejected returns a future that has already settled with an error.
func Rejected(err error) *Future {
	f := &Future{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// Done returns a channel that is closed when the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await waits for the future to settle, or for the context to be done, in which case it
// returns the context's error.
func (f *Future) Await(ctx context.Context) (interface{}, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AwaitAll waits for every future and returns their values in order. It returns the first
// error in order, after all of the futures have settled or the context is done.
func AwaitAll(ctx context.Context, futures ...*Future) ([]interface{}, error) {
	values := make([]interface{}, len(futures))
	var firstErr error
	for i, f := range futures {
		v, err := f.Await(ctx)
		values[i] = v
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return values, firstErr
}

package mock

import (
	"fmt"
	"sync"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"
)

// DefaultLoopLimit is the maximum number of timers that one call to a method like
// RunAllTimers will fire before deciding that the timers are rescheduling themselves forever.
const DefaultLoopLimit = 10000

// minInterval keeps a zero-length interval timer from firing forever at the same instant.
const minInterval = time.Millisecond

// Clock is the time source for test bodies. In real mode, timers are backed by the Go
// runtime. In fake mode, timers go into a virtual queue and only fire when the test
// advances virtual time.
//
// The mocked system time (SetSystemTime) is independent of the timer mode: it changes what
// Now reports without firing any timers.
type Clock struct {
	loggers   ldlog.Loggers
	fake      bool
	now       time.Time
	queue     *timerQueue
	real      map[TimerID]func()
	lastID    TimerID
	lastSeq   int64
	loopLimit int

	mockedTime *time.Time
	mockedAt   time.Time

	onError func(error)
	lock    sync.Mutex
}

// FakeTimersOption is an option for UseFakeTimers.
type FakeTimersOption func(*fakeTimersConfig)

type fakeTimersConfig struct {
	epoch     time.Time
	loopLimit int
}

// WithEpoch starts virtual time at the given instant instead of the current real time.
func WithEpoch(t time.Time) FakeTimersOption {
	return func(c *fakeTimersConfig) { c.epoch = t }
}

// WithLoopLimit changes the number of timers RunAllTimers may fire before giving up.
func WithLoopLimit(n int) FakeTimersOption {
	return func(c *fakeTimersConfig) { c.loopLimit = n }
}

// NewClock creates a Clock in real mode.
func NewClock(loggers ldlog.Loggers) *Clock {
	return &Clock{
		loggers:   loggers,
		queue:     newTimerQueue(),
		real:      make(map[TimerID]func()),
		loopLimit: DefaultLoopLimit,
	}
}

// SetErrorHandler sets the function that receives panics from real timer callbacks, which
// run on their own goroutines and so cannot fail the test that created them directly.
func (c *Clock) SetErrorHandler(handler func(error)) {
	c.lock.Lock()
	c.onError = handler
	c.lock.Unlock()
}

// UseFakeTimers switches to fake mode. Calling it while already in fake mode has no effect.
func (c *Clock) UseFakeTimers(options ...FakeTimersOption) *Clock {
	config := fakeTimersConfig{loopLimit: DefaultLoopLimit}
	for _, o := range options {
		o(&config)
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.fake {
		return c
	}
	c.fake = true
	c.now = config.epoch
	if c.now.IsZero() {
		c.now = time.Now()
	}
	c.loopLimit = config.loopLimit
	c.queue.clear()
	c.mockedAt = c.now
	c.loggers.Debugf("Fake timers enabled at %s", c.now.Format(time.RFC3339Nano))
	return c
}

// UseRealTimers switches back to real mode. Pending fake timers are discarded without
// firing, and the mocked system time is cleared.
func (c *Clock) UseRealTimers() *Clock {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.fake && c.queue.len() > 0 {
		c.loggers.Debugf("Discarding %d pending fake timers", c.queue.len())
	}
	c.fake = false
	c.queue.clear()
	c.mockedTime = nil
	return c
}

func (c *Clock) IsFakeTimers() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.fake
}

// SetTimeout schedules callback to run once after delay.
func (c *Clock) SetTimeout(callback func(), delay time.Duration) TimerID {
	return c.schedule(callback, delay, 0)
}

// SetInterval schedules callback to run every interval.
func (c *Clock) SetInterval(callback func(), interval time.Duration) TimerID {
	if interval < minInterval {
		interval = minInterval
	}
	return c.schedule(callback, interval, interval)
}

// ClearTimeout cancels a timer. It does nothing if the timer already fired or never existed.
func (c *Clock) ClearTimeout(id TimerID) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.queue.remove(id) {
		return
	}
	if stop, ok := c.real[id]; ok {
		stop()
		delete(c.real, id)
	}
}

// ClearInterval is the same as ClearTimeout.
func (c *Clock) ClearInterval(id TimerID) {
	c.ClearTimeout(id)
}

func (c *Clock) schedule(callback func(), delay, interval time.Duration) TimerID {
	if delay < 0 {
		delay = 0
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	c.lastID++
	id := c.lastID
	if c.fake {
		c.lastSeq++
		c.queue.insert(&timer{
			id:       id,
			seq:      c.lastSeq,
			fireAt:   c.now.Add(delay),
			interval: interval,
			callback: callback,
		})
		return id
	}
	c.real[id] = c.startRealTimer(id, callback, delay, interval)
	return id
}

// startRealTimer is called with the lock held.
func (c *Clock) startRealTimer(id TimerID, callback func(), delay, interval time.Duration) func() {
	if interval == 0 {
		t := time.AfterFunc(delay, func() {
			c.lock.Lock()
			delete(c.real, id)
			c.lock.Unlock()
			c.invokeReal(callback)
		})
		return func() { t.Stop() }
	}
	ticker := time.NewTicker(interval)
	stopCh := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				c.invokeReal(callback)
			case <-stopCh:
				ticker.Stop()
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(stopCh) }) }
}

func (c *Clock) invokeReal(callback func()) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic in timer callback: %v", r)
			c.loggers.Error(err)
			c.lock.Lock()
			handler := c.onError
			c.lock.Unlock()
			if handler != nil {
				handler(err)
			}
		}
	}()
	callback()
}

// AdvanceTimersByTime moves virtual time forward, firing every timer that comes due on the
// way in fire-time order. Interval timers are re-queued and may fire several times. Timers
// created by callbacks also fire if they come due within the window.
func (c *Clock) AdvanceTimersByTime(d time.Duration) *Clock {
	c.lock.Lock()
	if !c.requireFake("AdvanceTimersByTime") {
		c.lock.Unlock()
		return c
	}
	target := c.now.Add(d)
	c.lock.Unlock()
	c.fireUntil(target)
	return c
}

// AdvanceTimersToNextTimer moves virtual time to the next pending fire time and fires the
// timers that are due at that instant. It does nothing if no timers are pending.
func (c *Clock) AdvanceTimersToNextTimer() *Clock {
	c.lock.Lock()
	if !c.requireFake("AdvanceTimersToNextTimer") {
		c.lock.Unlock()
		return c
	}
	next := c.queue.peek()
	if next == nil {
		c.lock.Unlock()
		return c
	}
	target := next.fireAt
	c.lock.Unlock()
	c.fireUntil(target)
	return c
}

// RunAllTimers fires timers until none are left. It panics if timers keep rescheduling
// themselves past the loop limit; an interval timer therefore always ends up there.
func (c *Clock) RunAllTimers() *Clock {
	c.lock.Lock()
	if !c.requireFake("RunAllTimers") {
		c.lock.Unlock()
		return c
	}
	limit := c.loopLimit
	c.lock.Unlock()
	for i := 0; ; i++ {
		if i >= limit {
			panic(fmt.Errorf("aborting after running %d timers, assuming an infinite loop", limit))
		}
		c.lock.Lock()
		t := c.queue.popDue(farFuture)
		if t == nil {
			c.lock.Unlock()
			return c
		}
		c.fireLocked(t)
	}
}

// RunOnlyPendingTimers advances to the fire time of the last timer that is currently
// pending, so that every pending timer fires at least once.
func (c *Clock) RunOnlyPendingTimers() *Clock {
	c.lock.Lock()
	if !c.requireFake("RunOnlyPendingTimers") {
		c.lock.Unlock()
		return c
	}
	last := c.queue.last()
	if last == nil {
		c.lock.Unlock()
		return c
	}
	target := last.fireAt
	c.lock.Unlock()
	c.fireUntil(target)
	return c
}

var farFuture = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

func (c *Clock) fireUntil(target time.Time) {
	for fired := 0; ; fired++ {
		c.lock.Lock()
		if fired >= c.loopLimit {
			limit := c.loopLimit
			c.lock.Unlock()
			panic(fmt.Errorf("aborting after running %d timers, assuming an infinite loop", limit))
		}
		t := c.queue.popDue(target)
		if t == nil {
			if c.now.Before(target) {
				c.now = target
			}
			c.lock.Unlock()
			return
		}
		c.fireLocked(t)
	}
}

// fireLocked is called with the lock held, and releases it before running the callback so
// that the callback can use the clock.
func (c *Clock) fireLocked(t *timer) {
	c.now = t.fireAt
	if t.interval > 0 {
		t.fireAt = t.fireAt.Add(t.interval)
		c.queue.insert(t)
	}
	c.lock.Unlock()
	t.callback()
}

// requireFake is called with the lock held.
func (c *Clock) requireFake(method string) bool {
	if !c.fake {
		c.loggers.Warnf("%s was called without fake timers; call UseFakeTimers first", method)
	}
	return c.fake
}

// ClearAllTimers discards all pending fake timers without firing them.
func (c *Clock) ClearAllTimers() {
	c.lock.Lock()
	c.queue.clear()
	c.lock.Unlock()
}

// GetTimerCount returns the number of pending fake timers.
func (c *Clock) GetTimerCount() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.queue.len()
}

// SetSystemTime changes what Now reports. With fake timers, the mocked time moves forward
// as virtual time is advanced; with real timers, it stays where it was set.
func (c *Clock) SetSystemTime(t time.Time) {
	c.lock.Lock()
	c.mockedTime = &t
	c.mockedAt = c.now
	c.lock.Unlock()
}

// GetMockedSystemTime returns the mocked current time, or nil if SetSystemTime has not
// been called since the last UseRealTimers.
func (c *Clock) GetMockedSystemTime() *time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.mockedTime == nil {
		return nil
	}
	t := c.nowLocked()
	return &t
}

// GetRealSystemTime returns the real current time regardless of any mocking.
func (c *Clock) GetRealSystemTime() time.Time {
	return time.Now()
}

// Now returns the current time as seen by test code.
func (c *Clock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.nowLocked()
}

func (c *Clock) nowLocked() time.Time {
	if c.mockedTime != nil {
		if c.fake {
			return c.mockedTime.Add(c.now.Sub(c.mockedAt))
		}
		return *c.mockedTime
	}
	if c.fake {
		return c.now
	}
	return time.Now()
}

// Reset returns the clock to real mode and stops every timer, real or fake.
func (c *Clock) Reset() {
	c.UseRealTimers()
	c.stopRealTimers()
}

// Dispose stops every real timer. The clock should not be used afterward.
func (c *Clock) Dispose() {
	c.stopRealTimers()
	c.SetErrorHandler(nil)
}

func (c *Clock) stopRealTimers() {
	c.lock.Lock()
	defer c.lock.Unlock()
	for id, stop := range c.real {
		stop()
		delete(c.real, id)
	}
}

package vitests

import (
	"time"

	"github.com/launchdarkly/spec-runner/framework/expect"
	"github.com/launchdarkly/spec-runner/framework/ldtest"
	"github.com/launchdarkly/spec-runner/framework/mock"
)

// ViSpec exercises the fake timers, the mocked system time and spies.
func ViSpec() *ldtest.Tree {
	return ldtest.MustCollect(modulePrefix+"vi.spec", func(c *ldtest.Collector) {
		// The mocking context is shared by every test in the module.
		c.AfterEach(func(t *ldtest.T) {
			t.Vi().UseRealTimers()
		})

		c.Describe("vi.advanceTimersByTime", func() {
			c.It("Works just like runAllTimers, but will end after passed milliseconds. ", func(t *ldtest.T) {
				vi := t.Vi()
				vi.UseFakeTimers()
				i := 0
				vi.SetInterval(func() { i++ }, 50*time.Millisecond)
				vi.AdvanceTimersByTime(150 * time.Millisecond)
				expect.That(t, i).ToBe(3)
			})
		})

		c.Describe("vi.advanceTimersToNextTimer", func() {
			c.It("Will call next available timer. Useful to make assertions between each timer call. ", func(t *ldtest.T) {
				vi := t.Vi()
				vi.UseFakeTimers()
				i := 0
				vi.SetInterval(func() { i++ }, 50*time.Millisecond)
				vi.AdvanceTimersToNextTimer()
				expect.That(t, i).ToBe(1)
				vi.AdvanceTimersToNextTimer()
				expect.That(t, i).ToBe(2)
				vi.AdvanceTimersToNextTimer().
					AdvanceTimersToNextTimer()
				expect.That(t, i).ToBe(4)
			})
		})

		c.Describe("vi.clearAllTimers", func() {
			c.It("Removes all timers that are scheduled to run.", func(t *ldtest.T) {
				vi := t.Vi()
				vi.UseFakeTimers()
				i := 0
				vi.SetInterval(func() { i++ }, 50*time.Millisecond)
				vi.AdvanceTimersByTime(150 * time.Millisecond)
				expect.That(t, i).ToBe(3)
				vi.ClearAllTimers()
				vi.AdvanceTimersByTime(150 * time.Millisecond)
				expect.That(t, i).ToBe(3)
			})
		})

		c.Describe("vi.fn", func() {
			c.It("Create a spy on a function, though can be initated without one.", func(t *ldtest.T) {
				fn := t.Vi().Fn(func(args ...interface{}) (interface{}, error) { return 0, nil })
				_, _ = fn.Call()
				expect.That(t, fn).ToHaveBeenCalled()
				expect.That(t, fn).ToHaveReturnedWith(0)
				result, _ := fn.Call()
				expect.That(t, result).ToBe(0)
			})
		})

		c.Describe("vi.getMockedSystemTime", func() {
			c.It("Returns mocked current date that was set using setSystemTime", func(t *ldtest.T) {
				vi := t.Vi()
				expect.That(t, vi.GetMockedSystemTime()).ToBe(nil)

				date := time.Date(1997, time.December, 29, 0, 0, 0, 0, time.Local)
				vi.UseFakeTimers()
				vi.SetSystemTime(date)
				expect.That(t, *vi.GetMockedSystemTime()).ToBe(date)
				vi.UseRealTimers()
			})
		})

		c.Describe("vi.getRealSystemTime", func() {
			c.It("if you need to get real time in milliseconds, you can call this function", func(t *ldtest.T) {
				vi := t.Vi()
				date := time.Date(1997, time.December, 29, 0, 0, 0, 0, time.Local)
				vi.UseFakeTimers()
				vi.SetSystemTime(date)
				expect.That(t, vi.GetRealSystemTime()).Not().ToBe(vi.Now())
				expect.That(t, vi.GetRealSystemTime()).Not().ToBe(date)
				vi.UseRealTimers()
				// within half a second of the real clock
				expect.That(t, vi.GetRealSystemTime().UnixMilli()).ToBeCloseTo(time.Now().UnixMilli(), -3)
			})
		})

		c.Describe("vi.spyOn", func() {
			c.It("Wraps a function variable and restores it afterwards", func(t *ldtest.T) {
				greet := func(name string) string { return "hello " + name }
				spy := t.Vi().SpyOn(&greet)
				spy.MockName("greet")
				expect.That(t, greet("ann")).ToBe("hello ann")
				expect.That(t, spy).ToHaveBeenCalledWith("ann")
				expect.That(t, spy).ToHaveBeenCalledTimes(1)

				spy.MockReturnValueOnce("bonjour")
				expect.That(t, greet("bob")).ToBe("bonjour")
				expect.That(t, spy).ToHaveBeenLastCalledWith("bob")

				t.Vi().RestoreAllMocks()
				expect.That(t, greet("cy")).ToBe("hello cy")
				expect.That(t, spy).Not().ToHaveBeenCalled()
			})

			c.It("Records a thrown error", func(t *ldtest.T) {
				fn := mock.Fn(func(args ...interface{}) (interface{}, error) { panic("broken") })
				expect.That(t, func() { _, _ = fn.Call() }).ToThrow("broken")
				expect.That(t, fn).Not().ToHaveReturned()
			})
		})
	})
}

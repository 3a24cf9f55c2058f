package ldtest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlogtest"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/launchdarkly/spec-runner/framework"
	"github.com/launchdarkly/spec-runner/framework/expect"
)

type eventLog struct {
	events []string
	lock   sync.Mutex
}

func (l *eventLog) add(event string) {
	l.lock.Lock()
	l.events = append(l.events, event)
	l.lock.Unlock()
}

func (l *eventLog) get() []string {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]string(nil), l.events...)
}

func (l *eventLog) hook(event string) func(t *T) {
	return func(t *T) { l.add(event) }
}

type recordingTestLogger struct {
	eventLog
}

func (r *recordingTestLogger) TestStarted(id framework.TestID) { r.add("start " + id.String()) }
func (r *recordingTestLogger) TestError(id framework.TestID, err error) {
	r.add("error " + id.String())
}
func (r *recordingTestLogger) TestFinished(id framework.TestID, failed bool, debugOutput framework.CapturedOutput) {
	r.add("finish " + id.String())
}
func (r *recordingTestLogger) TestSkipped(id framework.TestID, reason string) {
	r.add("skip " + id.String() + ": " + reason)
}

func runModule(t *testing.T, config framework.RunConfig, body func(c *Collector)) framework.RunReport {
	tree, err := Collect("m", body)
	require.NoError(t, err)
	report, err := Run(context.Background(), tree, config)
	require.NoError(t, err)
	return report
}

func resultFor(t *testing.T, report framework.RunReport, path ...string) framework.TestResult {
	id := framework.NewTestID(append([]string{"m"}, path...)...).String()
	for _, r := range report.Tests {
		if r.TestID.String() == id {
			return r
		}
	}
	require.Fail(t, "no result", "no result for %s", id)
	return framework.TestResult{}
}

func errorKinds(errs []error) []framework.ErrorKind {
	var ret []framework.ErrorKind
	for _, err := range errs {
		ret = append(ret, framework.KindOf(err))
	}
	return ret
}

func TestHooksRunInLifecycleOrder(t *testing.T) {
	var log eventLog
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.BeforeAll(log.hook("beforeAll outer"))
		c.BeforeEach(log.hook("beforeEach outer"))
		c.AfterEach(log.hook("afterEach outer"))
		c.AfterAll(log.hook("afterAll outer"))
		c.Describe("inner", func() {
			c.BeforeAll(log.hook("beforeAll inner"))
			c.BeforeEach(log.hook("beforeEach inner"))
			c.AfterEach(log.hook("afterEach inner 1"))
			c.AfterEach(log.hook("afterEach inner 2"))
			c.AfterAll(log.hook("afterAll inner"))
			c.Test("test", log.hook("body"))
		})
	})
	assert.True(t, report.OK())
	assert.Equal(t, []string{
		"beforeAll outer",
		"beforeAll inner",
		"beforeEach outer",
		"beforeEach inner",
		"body",
		"afterEach inner 2",
		"afterEach inner 1",
		"afterEach outer",
		"afterAll inner",
		"afterAll outer",
	}, log.get())
}

func TestListHookSequenceRunsAfterHooksInRegistrationOrder(t *testing.T) {
	var log eventLog
	runModule(t, framework.RunConfig{HookSequence: framework.HookSequenceList}, func(c *Collector) {
		c.AfterEach(log.hook("afterEach 1"))
		c.AfterEach(log.hook("afterEach 2"))
		c.AfterAll(log.hook("afterAll 1"))
		c.AfterAll(log.hook("afterAll 2"))
		c.Test("test", noop)
	})
	assert.Equal(t, []string{"afterEach 1", "afterEach 2", "afterAll 1", "afterAll 2"}, log.get())
}

func TestEveryTestHasExactlyOneResult(t *testing.T) {
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Test("passes", noop)
		c.Test("fails", func(t *T) { t.Errorf("no") })
		c.Test("skipped", noop, Skip)
		c.Test("todo", nil)
		c.Describe("skipped suite", func() {
			c.Test("a", noop)
			c.Test("b", noop)
		}, Skip)
		c.Describe("todo suite", nil)
	})
	assert.Len(t, report.Tests, 6)
	assert.Equal(t, framework.Counts{Passed: 1, Failed: 1, Skipped: 3, Todo: 1}, report.Counts())
	assert.Len(t, report.Failures, 1)
	assert.Equal(t, "skipped", resultFor(t, report, "skipped").SkipReason)
	assert.Equal(t, framework.StatusTodo, resultFor(t, report, "todo").Status)

	suite := report.Find(framework.NewTestID("m", "todo suite"))
	require.NotNil(t, suite)
	assert.Equal(t, framework.StatusTodo, suite.Status)
	assert.Equal(t, framework.StatusFailed, report.Modules[0].Status)
}

func TestSkippedTestsRunNoEachHooks(t *testing.T) {
	var log eventLog
	runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.BeforeEach(log.hook("beforeEach"))
		c.AfterEach(log.hook("afterEach"))
		c.Test("skipped", log.hook("body"), Skip)
		c.Test("todo", nil)
	})
	assert.Empty(t, log.get())
}

func TestAllHooksRunOnceForSuiteWithNothingToRun(t *testing.T) {
	var log eventLog
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Describe("only skipped tests", func() {
			c.BeforeAll(log.hook("beforeAll skipped"))
			c.AfterAll(log.hook("afterAll skipped"))
			c.BeforeEach(log.hook("beforeEach skipped"))
			c.Test("skipped", noop, Skip)
			c.Test("todo", nil)
		})
		c.Describe("empty", func() {
			c.BeforeAll(log.hook("beforeAll empty"))
			c.AfterAll(log.hook("afterAll empty"))
		})
	})
	assert.Equal(t, []string{
		"beforeAll skipped",
		"afterAll skipped",
		"beforeAll empty",
		"afterAll empty",
	}, log.get())
	assert.True(t, report.OK())
	assert.Equal(t, framework.Counts{Skipped: 1, Todo: 1}, report.Counts())
}

func TestSuitesThatAreNotRunRunNoHooks(t *testing.T) {
	var log eventLog
	runModule(t, framework.RunConfig{TestNamePattern: "other"}, func(c *Collector) {
		c.Describe("skipped", func() {
			c.BeforeAll(log.hook("beforeAll skipped"))
			c.AfterAll(log.hook("afterAll skipped"))
			c.Test("a", noop)
		}, Skip)
		c.Describe("todo", func() {
			c.BeforeAll(log.hook("beforeAll todo"))
		}, Todo)
		c.Describe("filtered tests", func() {
			c.BeforeAll(log.hook("beforeAll filtered"))
			c.Test("b", noop)
		})
	})
	assert.Equal(t, []string{"beforeAll filtered"}, log.get())
}

func TestOnlyPrunesSiblingsWithoutOnly(t *testing.T) {
	var log eventLog
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Test("pruned", log.hook("pruned"))
		c.Describe("focused", func() {
			c.Test("a", log.hook("a"))
			c.Test("b", log.hook("b"))
		}, Only)
		c.Describe("contains only", func() {
			c.Test("c", log.hook("c"), Only)
			c.Test("d", log.hook("d"))
		})
	})
	assert.ElementsMatch(t, []string{"a", "b", "c"}, log.get())
	assert.Equal(t, "not selected by only", resultFor(t, report, "pruned").SkipReason)
	assert.Equal(t, framework.StatusSkipped, resultFor(t, report, "contains only", "d").Status)
	assert.Equal(t, framework.StatusPassed, resultFor(t, report, "focused", "b").Status)
}

func TestOnlyModePrunesModulesWithoutOnly(t *testing.T) {
	var log eventLog
	report := runModule(t, framework.RunConfig{OnlyMode: true}, func(c *Collector) {
		c.BeforeAll(log.hook("beforeAll"))
		c.Test("a", log.hook("a"))
	})
	assert.Empty(t, log.get())
	assert.Equal(t, framework.StatusSkipped, resultFor(t, report, "a").Status)
	assert.Equal(t, framework.StatusSkipped, report.Modules[0].Status)
}

func TestTestNamePatternFiltersTests(t *testing.T) {
	var log eventLog
	report := runModule(t, framework.RunConfig{TestNamePattern: "keep"}, func(c *Collector) {
		c.Test("keep me", log.hook("kept"))
		c.Test("drop me", log.hook("dropped"))
	})
	assert.Equal(t, []string{"kept"}, log.get())
	assert.Equal(t, "excluded by filter parameters", resultFor(t, report, "drop me").SkipReason)
}

func TestFailsInvertsTheBodyOutcome(t *testing.T) {
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Test("fails as expected", func(t *T) {
			expect.That(t, 1).ToBe(2)
		}, Fails)
		c.Test("passes unexpectedly", noop, Fails)
	})
	assert.Equal(t, framework.StatusPassed, resultFor(t, report, "fails as expected").Status)
	unexpected := resultFor(t, report, "passes unexpectedly")
	assert.Equal(t, framework.StatusFailed, unexpected.Status)
	assert.Equal(t, []framework.ErrorKind{framework.KindExpectedFailure}, errorKinds(unexpected.Errors))
}

func TestFailsDoesNotInvertHookFailures(t *testing.T) {
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.BeforeEach(func(t *T) { t.Errorf("setup failed") })
		c.Test("fails", noop, Fails)
	})
	r := resultFor(t, report, "fails")
	assert.Equal(t, framework.StatusFailed, r.Status)
	assert.Equal(t, []framework.ErrorKind{framework.KindHookFailure}, errorKinds(r.Errors))
}

func TestAssertionCounts(t *testing.T) {
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Test("exact", func(t *T) {
			t.Assertions(2)
			expect.That(t, 1).ToBe(1)
			expect.That(t, 2).ToBe(2)
		})
		c.Test("too few", func(t *T) {
			t.Assertions(2)
			expect.That(t, 1).ToBe(1)
		})
		c.Test("has assertions", func(t *T) {
			t.HasAssertions()
			expect.That(t, true).ToBeTruthy()
		})
		c.Test("has none", func(t *T) {
			t.HasAssertions()
		})
	})
	assert.Equal(t, framework.StatusPassed, resultFor(t, report, "exact").Status)
	assert.Equal(t, framework.StatusPassed, resultFor(t, report, "has assertions").Status)

	tooFew := resultFor(t, report, "too few")
	require.Len(t, tooFew.Errors, 1)
	assert.EqualError(t, tooFew.Errors[0], "expected number of assertions to be 2, but got 1")

	none := resultFor(t, report, "has none")
	require.Len(t, none.Errors, 1)
	assert.Equal(t, framework.KindAssertionCountMismatch, framework.KindOf(none.Errors[0]))
}

func TestMatcherFailureStopsBody(t *testing.T) {
	reached := false
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Test("fails", func(t *T) {
			expect.That(t, "a").ToBe("b")
			reached = true
		})
	})
	r := resultFor(t, report, "fails")
	assert.False(t, reached)
	assert.Equal(t, []framework.ErrorKind{framework.KindMatcherFailure}, errorKinds(r.Errors))
}

func TestPanicInBodyIsUncaughtBodyError(t *testing.T) {
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Test("panics", func(t *T) { panic("oops") })
		c.Test("FailNow without message", func(t *T) { t.FailNow() })
	})
	r := resultFor(t, report, "panics")
	require.Len(t, r.Errors, 1)
	assert.Equal(t, framework.KindUncaughtBodyError, framework.KindOf(r.Errors[0]))
	assert.Contains(t, r.Errors[0].Error(), "oops")

	r = resultFor(t, report, "FailNow without message")
	require.Len(t, r.Errors, 1)
	assert.EqualError(t, r.Errors[0], "test failed with no failure message")
}

func TestDeclarationInsideBodyFailsTheTest(t *testing.T) {
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Test("declares", func(t *T) {
			c.Test("nested", noop)
		})
	})
	r := resultFor(t, report, "declares")
	assert.Equal(t, []framework.ErrorKind{framework.KindDeclarationOutOfPhase}, errorKinds(r.Errors))
	assert.Len(t, report.Tests, 1)
}

func TestSkipAtRunTime(t *testing.T) {
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Test("skips", func(t *T) {
			t.SkipWithReason("not today")
			t.Errorf("unreachable")
		})
	})
	r := resultFor(t, report, "skips")
	assert.Equal(t, framework.StatusSkipped, r.Status)
	assert.Equal(t, "not today", r.SkipReason)
}

func TestBodyTimeout(t *testing.T) {
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Test("slow", func(t *T) {
			<-t.Context().Done()
			t.Errorf("reported after the timeout")
		}, Timeout(20*time.Millisecond))
		c.Describe("suite default", func() {
			c.Test("slow too", func(t *T) { <-t.Context().Done() })
		}, Timeout(20*time.Millisecond))
	})
	r := resultFor(t, report, "slow")
	assert.Equal(t, framework.StatusFailed, r.Status)
	require.Len(t, r.Errors, 1)
	var timeout *framework.TimeoutError
	require.ErrorAs(t, r.Errors[0], &timeout)
	assert.Equal(t, 20*time.Millisecond, timeout.Timeout)
	assert.Equal(t, framework.StatusFailed, resultFor(t, report, "suite default", "slow too").Status)
}

func TestConfiguredTimeout(t *testing.T) {
	config := framework.RunConfig{TimeoutMS: ldvalue.NewOptionalInt(20)}
	report := runModule(t, config, func(c *Collector) {
		c.Test("slow", func(t *T) { <-t.Context().Done() })
	})
	assert.Equal(t, []framework.ErrorKind{framework.KindTimeout}, errorKinds(resultFor(t, report, "slow").Errors))
}

func TestHookTimeout(t *testing.T) {
	config := framework.RunConfig{HookTimeoutMS: ldvalue.NewOptionalInt(20)}
	report := runModule(t, config, func(c *Collector) {
		c.BeforeEach(func(t *T) { <-t.Context().Done() })
		c.Test("blocked", noop)
	})
	r := resultFor(t, report, "blocked")
	require.Len(t, r.Errors, 1)
	var hook *framework.HookFailure
	require.ErrorAs(t, r.Errors[0], &hook)
	assert.Equal(t, framework.BeforeEach, hook.Phase)
	var timeout *framework.TimeoutError
	assert.ErrorAs(t, hook.Err, &timeout)
}

func TestBeforeEachFailureSkipsBodyButRunsAfterEach(t *testing.T) {
	var log eventLog
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.BeforeEach(func(t *T) { t.Errorf("first") })
		c.BeforeEach(func(t *T) { log.add("second beforeEach") })
		c.AfterEach(log.hook("afterEach"))
		c.Test("test", log.hook("body"))
	})
	assert.Equal(t, []string{"second beforeEach", "afterEach"}, log.get())
	r := resultFor(t, report, "test")
	require.Len(t, r.Errors, 1)
	var hook *framework.HookFailure
	require.ErrorAs(t, r.Errors[0], &hook)
	assert.Equal(t, 0, hook.Index)
	assert.Equal(t, "m", hook.Suite.String())
}

func TestBeforeAllFailureFailsTestsWithoutRunningThem(t *testing.T) {
	var log eventLog
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Describe("broken", func() {
			c.BeforeAll(func(t *T) { panic("no database") })
			c.BeforeEach(log.hook("beforeEach"))
			c.AfterAll(log.hook("afterAll"))
			c.Test("a", log.hook("a"))
			c.Describe("nested", func() {
				c.Test("b", log.hook("b"))
			})
			c.Test("skipped", noop, Skip)
		})
		c.Test("unaffected", log.hook("unaffected"))
	})
	assert.Equal(t, []string{"afterAll", "unaffected"}, log.get())
	for _, path := range [][]string{{"broken", "a"}, {"broken", "nested", "b"}} {
		r := resultFor(t, report, path...)
		assert.Equal(t, framework.StatusFailed, r.Status)
		assert.Equal(t, []framework.ErrorKind{framework.KindHookFailure}, errorKinds(r.Errors))
	}
	assert.Equal(t, framework.StatusSkipped, resultFor(t, report, "broken", "skipped").Status)
	assert.Equal(t, framework.StatusPassed, resultFor(t, report, "unaffected").Status)

	suite := report.Find(framework.NewTestID("m", "broken"))
	require.NotNil(t, suite)
	assert.Equal(t, framework.StatusFailed, suite.Status)
	assert.Len(t, suite.Errors, 1)
}

func TestAfterAllFailureIsRecordedOnSuite(t *testing.T) {
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Describe("suite", func() {
			c.AfterAll(func(t *T) { t.Errorf("cleanup failed") })
			c.Test("a", noop)
		})
	})
	assert.Equal(t, framework.StatusPassed, resultFor(t, report, "suite", "a").Status)
	assert.Empty(t, report.Failures)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, framework.KindHookFailure, framework.KindOf(report.Errors[0]))
	assert.False(t, report.OK())

	suite := report.Find(framework.NewTestID("m", "suite"))
	require.NotNil(t, suite)
	assert.Equal(t, framework.StatusFailed, suite.Status)
}

func TestAllHooksOfAPhaseRunEvenIfOneFails(t *testing.T) {
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.AfterEach(func(t *T) { t.Errorf("one") })
		c.AfterEach(func(t *T) { t.Errorf("two") })
		c.Test("test", noop)
	})
	r := resultFor(t, report, "test")
	require.Len(t, r.Errors, 2)
	assert.Contains(t, r.Errors[0].Error(), "two")
	assert.Contains(t, r.Errors[1].Error(), "one")
}

func TestConcurrentSiblingsRunTogether(t *testing.T) {
	var running int32
	allStarted := make(chan struct{})
	var once sync.Once
	body := func(t *T) {
		if atomic.AddInt32(&running, 1) == 3 {
			once.Do(func() { close(allStarted) })
		}
		select {
		case <-allStarted:
		case <-time.After(time.Second):
			t.Errorf("siblings did not start together")
		}
	}
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Test("a", body, Concurrent)
		c.Describe("concurrent suite", func() {
			c.Test("b", body)
			c.Test("c", body)
		}, Concurrent)
	})
	assert.True(t, report.OK(), "%+v", report.Failures)
}

func TestMaxConcurrencyLimitsGroup(t *testing.T) {
	var running, maxRunning int32
	body := func(t *T) {
		n := atomic.AddInt32(&running, 1)
		for {
			m := atomic.LoadInt32(&maxRunning)
			if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
	}
	config := framework.RunConfig{MaxConcurrency: ldvalue.NewOptionalInt(2)}
	report := runModule(t, config, func(c *Collector) {
		for _, name := range []string{"a", "b", "c", "d", "e"} {
			c.Test(name, body, Concurrent)
		}
	})
	assert.True(t, report.OK())
	assert.LessOrEqual(t, atomic.LoadInt32(&maxRunning), int32(2))
}

func TestNonConcurrentSiblingsWaitForGroup(t *testing.T) {
	var log eventLog
	runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Test("slow concurrent", func(t *T) {
			time.Sleep(20 * time.Millisecond)
			log.add("slow concurrent")
		}, Concurrent)
		c.Test("fast concurrent", log.hook("fast concurrent"), Concurrent)
		c.Test("sequential", log.hook("sequential"))
	})
	assert.Equal(t, []string{"fast concurrent", "slow concurrent", "sequential"}, log.get())
}

func TestEventsAreDeliveredInDeclarationOrder(t *testing.T) {
	tree := MustCollect("m", func(c *Collector) {
		c.Test("a", func(t *T) { time.Sleep(30 * time.Millisecond) }, Concurrent)
		c.Test("b", func(t *T) { time.Sleep(10 * time.Millisecond) }, Concurrent)
		c.Test("c", noop, Concurrent)
		c.Test("d", noop, Skip)
	})
	logger := &recordingTestLogger{}
	runner, err := NewRunner(framework.RunConfig{}, logger, ldlog.NewDisabledLoggers())
	require.NoError(t, err)
	runner.RegisterRoot(tree)
	report := runner.Run(context.Background())

	assert.Equal(t, []string{
		"start m/a", "finish m/a",
		"start m/b", "finish m/b",
		"start m/c", "finish m/c",
		"skip m/d: skipped",
	}, logger.get())

	var completion []string
	for _, r := range report.Tests[:3] {
		completion = append(completion, r.TestID.String())
	}
	assert.Equal(t, []string{"m/c", "m/b", "m/a"}, completion)

	var declared []string
	for _, n := range report.Modules[0].Children {
		declared = append(declared, n.ID.String())
	}
	assert.Equal(t, []string{"m/a", "m/b", "m/c", "m/d"}, declared)
}

func TestRunnerReportsAcrossModules(t *testing.T) {
	mockLog := ldlogtest.NewMockLog()
	config := framework.RunConfig{}
	require.NoError(t, config.Modules.Set("vitests/**"))
	runner, err := NewRunner(config, nil, mockLog.Loggers)
	require.NoError(t, err)

	runner.RegisterRoot(MustCollect("vitests/one.spec", func(c *Collector) { c.Test("a", noop) }))
	runner.RegisterRoot(MustCollect("other/two.spec", func(c *Collector) { c.Test("b", noop) }))
	runner.RegisterRoot(MustCollect("vitests/three.spec", func(c *Collector) {
		c.Test("c", func(t *T) { t.Errorf("bad") })
	}))
	runner.RegisterRoot(nil)
	report := runner.Run(context.Background())

	require.Len(t, report.Modules, 2)
	assert.Equal(t, "vitests/one.spec", report.Modules[0].ID.String())
	assert.Equal(t, "vitests/three.spec", report.Modules[1].ID.String())
	assert.Equal(t, framework.Counts{Passed: 1, Failed: 1}, report.Counts())
	assert.NotEmpty(t, report.RunID)
	assert.NotZero(t, report.StartTime)
	assert.True(t, mockLog.HasMessageMatch(ldlog.Debug, "other/two.spec is not selected"))
}

func TestNewRunnerRejectsInvalidConfig(t *testing.T) {
	_, err := NewRunner(framework.RunConfig{TestNamePattern: "("}, nil, ldlog.NewDisabledLoggers())
	assert.Error(t, err)
}

func TestFakeTimersConfig(t *testing.T) {
	report := runModule(t, framework.RunConfig{FakeTimers: true}, func(c *Collector) {
		c.Test("timers", func(t *T) {
			fired := 0
			t.Vi().SetTimeout(func() { fired++ }, time.Hour)
			t.Vi().AdvanceTimersByTime(time.Hour)
			expect.That(t, t.Vi().IsFakeTimers()).ToBe(true)
			expect.That(t, fired).ToBe(1)
		})
	})
	assert.True(t, report.OK(), "%+v", report.Failures)
}

func TestMockStateIsSharedWithinModule(t *testing.T) {
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Test("enables fake timers", func(t *T) { t.Vi().UseFakeTimers() })
		c.Test("sees fake timers", func(t *T) {
			expect.That(t, t.Vi().IsFakeTimers()).ToBe(true)
		})
	})
	assert.True(t, report.OK(), "%+v", report.Failures)
}

func TestDebugOutputIsCaptured(t *testing.T) {
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.BeforeEach(func(t *T) { t.Debug("from hook") })
		c.Test("logs", func(t *T) {
			t.Debug("value is %d", 3)
			t.DebugLogger().Printf("via logger")
		})
	})
	r := resultFor(t, report, "logs")
	assert.Equal(t, []string{"from hook", "value is 3", "via logger"}, r.DebugOutput.Messages())
}

func TestSoftExpectationsCollectAllFailures(t *testing.T) {
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Test("soft", func(t *T) {
			expect.Soft(t, 1).ToBe(2)
			expect.Soft(t, "a").ToBe("b")
		})
	})
	r := resultFor(t, report, "soft")
	require.Len(t, r.Errors, 2)
	assert.True(t, strings.HasPrefix(r.Errors[0].Error(), "expected 1 to be 2"), r.Errors[0].Error())
}

func TestResolvesAwaitsFuture(t *testing.T) {
	report := runModule(t, framework.RunConfig{}, func(c *Collector) {
		c.Test("resolves", func(t *T) {
			f := Async(func() (interface{}, error) { return 3, nil })
			expect.That(t, f).Resolves().ToBe(3)
		})
		c.Test("rejects", func(t *T) {
			expect.That(t, Rejected(errors.New("nope"))).Rejects().ToThrow("nope")
		})
	})
	assert.True(t, report.OK(), "%+v", report.Failures)
}

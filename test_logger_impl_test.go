package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/launchdarkly/spec-runner/framework"
)

func withNoColor(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })
}

func TestConsoleTestLoggerEvents(t *testing.T) {
	withNoColor(t)
	var buf bytes.Buffer
	logger := &ConsoleTestLogger{Out: &buf, DebugOutputOnFailure: true}
	id := framework.NewTestID("m", "a")
	output := framework.CapturedOutput{{Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), Message: "hello"}}

	logger.TestStarted(id)
	logger.TestError(id, errors.New("first line\nsecond line"))
	logger.TestFinished(id, true, output)
	logger.TestSkipped(framework.NewTestID("m", "b"), "todo")
	logger.TestSkipped(framework.NewTestID("m", "c"), "")

	s := buf.String()
	assert.Contains(t, s, "[m/a]\n")
	assert.Contains(t, s, "  first line\n  second line\n")
	assert.Contains(t, s, "  FAILED: m/a\n")
	assert.Contains(t, s, "    DEBUG [")
	assert.Contains(t, s, "] hello\n")
	assert.Contains(t, s, "  SKIPPED: m/b (todo)\n")
	assert.Contains(t, s, "  SKIPPED: m/c\n")
}

func TestConsoleTestLoggerHidesDebugOutputOfPassedTests(t *testing.T) {
	withNoColor(t)
	var buf bytes.Buffer
	logger := &ConsoleTestLogger{Out: &buf, DebugOutputOnFailure: true}
	output := framework.CapturedOutput{{Time: time.Now(), Message: "hello"}}

	logger.TestFinished(framework.NewTestID("m", "a"), false, output)
	assert.Equal(t, "", buf.String())

	logger.DebugOutputOnSuccess = true
	logger.TestFinished(framework.NewTestID("m", "a"), false, output)
	assert.Contains(t, buf.String(), "hello")
}

func TestPrintResults(t *testing.T) {
	withNoColor(t)
	var buf bytes.Buffer
	PrintResults(&buf, makeSampleReport(), "spec-runner")

	s := buf.String()
	assert.Contains(t, s, "FAILED TESTS:\n  m/b\n    rerun: spec-runner --run '^m/b$'\n")
	assert.Contains(t, s, "ERRORS:\n  afterAll hook #1 of m failed: cleanup\n")
	assert.Contains(t, s, "Tests: 1 passed, 1 failed, 1 skipped, 0 todo (3 total)\n")
	assert.Contains(t, s, "Duration: 1.5s\n")
	assert.NotContains(t, s, "All tests passed")
}

func TestPrintResultsWhenAllPassed(t *testing.T) {
	withNoColor(t)
	var buf bytes.Buffer
	report := framework.RunReport{
		Tests: []framework.TestResult{{TestID: framework.NewTestID("m", "a"), Status: framework.StatusPassed}},
	}
	PrintResults(&buf, report, "spec-runner")
	assert.Contains(t, buf.String(), "All tests passed\n")
	assert.NotContains(t, buf.String(), "FAILED TESTS")
	assert.NotContains(t, buf.String(), "ERRORS")
}

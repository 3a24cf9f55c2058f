package framework

// TestLogger receives progress events while a run is in progress. Events for tests are
// delivered in declaration order, even when concurrent tests finish in a different order;
// all events for one test are delivered together once the test has settled.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, failed bool, debugOutput CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                        {}
func (n nullTestLogger) TestError(TestID, error)                   {}
func (n nullTestLogger) TestFinished(TestID, bool, CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                {}

// NullTestLogger returns a TestLogger that discards all events.
func NullTestLogger() TestLogger { return nullTestLogger{} }

// Replay delivers the events for a finished test to a TestLogger.
func Replay(logger TestLogger, result TestResult) {
	switch result.Status {
	case StatusSkipped, StatusTodo:
		reason := result.SkipReason
		if result.Status == StatusTodo && reason == "" {
			reason = "todo"
		}
		logger.TestSkipped(result.TestID, reason)
		return
	}
	logger.TestStarted(result.TestID)
	for _, err := range result.Errors {
		logger.TestError(result.TestID, err)
	}
	logger.TestFinished(result.TestID, result.Failed(), result.DebugOutput)
}

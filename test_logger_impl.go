package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/launchdarkly/spec-runner/framework"
)

var (
	failedColor  = color.New(color.FgRed, color.Bold)
	skippedColor = color.New(color.FgYellow)
	passedColor  = color.New(color.FgGreen, color.Bold)
	debugColor   = color.New(color.Faint)
)

type ConsoleTestLogger struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	fmt.Fprintf(c.Out, "[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.Out, "  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, failed bool, debugOutput framework.CapturedOutput) {
	if failed {
		failedColor.Fprintf(c.Out, "  FAILED: %s\n", id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		var b strings.Builder
		debugOutput.Dump(&b, "    DEBUG ")
		debugColor.Fprint(c.Out, b.String())
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	if reason == "" {
		skippedColor.Fprintf(c.Out, "  SKIPPED: %s\n", id)
	} else {
		skippedColor.Fprintf(c.Out, "  SKIPPED: %s (%s)\n", id, reason)
	}
}

// PrintResults writes the summary of a run: the failed tests, with a command line to rerun
// each of them, any errors that do not belong to a test, and the counts.
func PrintResults(out io.Writer, report framework.RunReport, program string) {
	fmt.Fprintln(out)
	if len(report.Failures) > 0 {
		failedColor.Fprintln(out, "FAILED TESTS:")
		for _, f := range report.Failures {
			fmt.Fprintf(out, "  %s\n", f.TestID)
			fmt.Fprintf(out, "    rerun: %s\n", rerunCommand(program, f.TestID))
		}
		fmt.Fprintln(out)
	}
	if len(report.Errors) > 0 {
		failedColor.Fprintln(out, "ERRORS:")
		for _, err := range report.Errors {
			for i, line := range strings.Split(err.Error(), "\n") {
				if i == 0 {
					fmt.Fprintf(out, "  %s\n", line)
				} else {
					fmt.Fprintf(out, "    %s\n", line)
				}
			}
		}
		fmt.Fprintln(out)
	}
	if report.OK() {
		passedColor.Fprintln(out, "All tests passed")
	}
	fmt.Fprintf(out, "Tests: %s\n", report.Counts())
	fmt.Fprintf(out, "Duration: %s\n", report.Duration)
}

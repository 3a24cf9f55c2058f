package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/launchdarkly/spec-runner/framework"
	"github.com/launchdarkly/spec-runner/framework/ldtest"
	"github.com/launchdarkly/spec-runner/logging"
	"github.com/launchdarkly/spec-runner/vitests"
)

const programName = "spec-runner"

var errTestsFailed = errors.New("some tests failed")

func main() {
	cmd := newRootCommand(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var params commandParams
	cmd := &cobra.Command{
		Use:           programName,
		Short:         "Run the demonstration test modules",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := params.runConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), params, config, stdout, stderr)
		},
	}
	params.addFlags(cmd.Flags())
	return cmd
}

func run(
	ctx context.Context,
	params commandParams,
	config framework.RunConfig,
	stdout, stderr io.Writer,
) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if params.noColor {
		color.NoColor = true
	}
	loggers := logging.NewLoggers(stderr, params.debugAll)

	// stdout carries nothing but the report when it is the JSON target
	console := stdout
	if params.jsonOutput == "-" {
		console = stderr
	}

	fmt.Fprintln(console)
	framework.PrintFilterDescription(console, config)

	testLogger := &ConsoleTestLogger{
		Out:                  console,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	runner, err := ldtest.NewRunner(config, testLogger, loggers)
	if err != nil {
		return err
	}
	for _, module := range vitests.Modules() {
		runner.RegisterRoot(module)
	}

	fmt.Fprintln(console, "Running test modules")
	report := runner.Run(ctx)
	PrintResults(console, report, programName)

	if params.jsonOutput != "" {
		if err := writeJSONReportTo(params.jsonOutput, stdout, report); err != nil {
			return err
		}
	}
	if !report.OK() {
		return errTestsFailed
	}
	return nil
}

func writeJSONReportTo(path string, stdout io.Writer, report framework.RunReport) error {
	if path == "-" {
		return writeJSONReport(stdout, report)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create report file: %w", err)
	}
	if err := writeJSONReport(f, report); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

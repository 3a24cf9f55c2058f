package main

import (
	"regexp"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/spf13/pflag"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/launchdarkly/spec-runner/framework"
)

type commandParams struct {
	configFile     string
	filters        framework.RegexFilters
	modules        framework.GlobList
	timeoutMS      int
	hookTimeoutMS  int
	maxConcurrency int
	hookSequence   string
	onlyMode       bool
	fakeTimers     bool
	jsonOutput     string
	debug          bool
	debugAll       bool
	noColor        bool
}

func (c *commandParams) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.configFile, "config", "", "YAML file with the run configuration")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.Var(&c.modules, "modules", "glob pattern(s) to select modules to run")
	fs.IntVar(&c.timeoutMS, "timeout", 0, "default time limit for a test, in milliseconds")
	fs.IntVar(&c.hookTimeoutMS, "hook-timeout", 0, "default time limit for a hook, in milliseconds")
	fs.IntVar(&c.maxConcurrency, "max-concurrency", 0, "maximum number of concurrent tests in a group")
	fs.StringVar(&c.hookSequence, "hook-sequence", "", `order of after hooks: "stack" or "list"`)
	fs.BoolVar(&c.onlyMode, "only", false, "run only tests and suites marked only")
	fs.BoolVar(&c.fakeTimers, "fake-timers", false, "start every module with fake timers")
	fs.StringVar(&c.jsonOutput, "json", "", `write a JSON report to this file ("-" for standard output)`)
	fs.BoolVar(&c.debug, "debug", false, "show debug output for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "show debug output for all tests, and engine debug logging")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colored output")
}

// runConfig builds the run configuration from the configuration file, if any, and the
// flags. Filter and module patterns from both are combined; any other flag that was set
// overrides the file.
func (c *commandParams) runConfig(fs *pflag.FlagSet) (framework.RunConfig, error) {
	var config framework.RunConfig
	if c.configFile != "" {
		loaded, err := framework.LoadConfigFile(c.configFile)
		if err != nil {
			return config, err
		}
		config = loaded
	}
	config.Filters.MustMatch.Append(c.filters.MustMatch)
	config.Filters.MustNotMatch.Append(c.filters.MustNotMatch)
	config.Modules.Append(c.modules)
	if fs.Changed("timeout") {
		config.TimeoutMS = ldvalue.NewOptionalInt(c.timeoutMS)
	}
	if fs.Changed("hook-timeout") {
		config.HookTimeoutMS = ldvalue.NewOptionalInt(c.hookTimeoutMS)
	}
	if fs.Changed("max-concurrency") {
		config.MaxConcurrency = ldvalue.NewOptionalInt(c.maxConcurrency)
	}
	if c.hookSequence != "" {
		config.HookSequence = framework.HookSequence(c.hookSequence)
	}
	config.OnlyMode = config.OnlyMode || c.onlyMode
	config.FakeTimers = config.FakeTimers || c.fakeTimers
	return config, config.Validate()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// rerunCommand returns a command line that runs a single test again.
func rerunCommand(program string, id framework.TestID) string {
	var b commandBuilder
	b.add(program, "--run", "^"+regexp.QuoteMeta(id.String())+"$")
	return b.String()
}

package framework

import (
	"io"
	"os"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTestTimeout    = time.Second * 5
	DefaultHookTimeout    = time.Second * 10
	DefaultMaxConcurrency = 5
)

// HookSequence controls the order of after hooks within one suite.
type HookSequence string

const (
	// HookSequenceStack runs afterEach hooks in reverse registration order, mirroring the
	// order of the beforeEach hooks.
	HookSequenceStack HookSequence = "stack"

	// HookSequenceList runs afterEach hooks in registration order.
	HookSequenceList HookSequence = "list"
)

// RunConfig is the configuration for a test run. The zero value is a valid configuration
// that uses the defaults for everything.
type RunConfig struct {
	// TestNamePattern, if not empty, is a regex that a test's full ID must match for the
	// test to run. Tests that do not match are reported as skipped.
	TestNamePattern string

	// Filters are additional include/exclude patterns, typically from the command line.
	Filters RegexFilters

	// TimeoutMS is the default time limit for a test body.
	TimeoutMS ldvalue.OptionalInt

	// HookTimeoutMS is the default time limit for a lifecycle hook.
	HookTimeoutMS ldvalue.OptionalInt

	// MaxConcurrency limits how many concurrent tests of one group run at a time.
	MaxConcurrency ldvalue.OptionalInt

	// OnlyMode restricts the run to nodes marked only, even in modules that do not contain
	// any such nodes.
	OnlyMode bool

	// FakeTimers makes every module start with fake timers enabled.
	FakeTimers bool

	// HookSequence is the ordering of after hooks; the default is HookSequenceStack.
	HookSequence HookSequence

	// Modules selects root modules by ID.
	Modules GlobList
}

type configFile struct {
	TestNamePattern string   `yaml:"testNamePattern"`
	Skip            []string `yaml:"skip"`
	TimeoutMS       *int     `yaml:"timeoutMs"`
	HookTimeoutMS   *int     `yaml:"hookTimeoutMs"`
	MaxConcurrency  *int     `yaml:"maxConcurrency"`
	OnlyMode        bool     `yaml:"onlyMode"`
	FakeTimers      bool     `yaml:"fakeTimers"`
	HookSequence    string   `yaml:"hookSequence"`
	Modules         []string `yaml:"modules"`
}

// LoadConfig reads a YAML run configuration. Unknown fields are an error, so that a typo in
// an option name does not silently fall back to the default.
func LoadConfig(r io.Reader) (RunConfig, error) {
	var file configFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return RunConfig{}, errors.Wrap(err, "malformed run configuration")
	}

	config := RunConfig{
		TestNamePattern: file.TestNamePattern,
		TimeoutMS:       ldvalue.NewOptionalIntFromPointer(file.TimeoutMS),
		HookTimeoutMS:   ldvalue.NewOptionalIntFromPointer(file.HookTimeoutMS),
		MaxConcurrency:  ldvalue.NewOptionalIntFromPointer(file.MaxConcurrency),
		OnlyMode:        file.OnlyMode,
		FakeTimers:      file.FakeTimers,
		HookSequence:    HookSequence(file.HookSequence),
	}
	for _, s := range file.Skip {
		if err := config.Filters.MustNotMatch.Set(s); err != nil {
			return RunConfig{}, errors.Wrapf(err, "bad skip pattern %q", s)
		}
	}
	for _, m := range file.Modules {
		if err := config.Modules.Set(m); err != nil {
			return RunConfig{}, errors.Wrap(err, "bad module pattern")
		}
	}
	if err := config.Validate(); err != nil {
		return RunConfig{}, err
	}
	return config, nil
}

// LoadConfigFile reads a YAML run configuration from a file.
func LoadConfigFile(path string) (RunConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return RunConfig{}, errors.Wrap(err, "cannot read run configuration")
	}
	defer f.Close()
	config, err := LoadConfig(f)
	return config, errors.Wrapf(err, "error in %s", path)
}

// Validate checks the configuration for values that cannot be used.
func (c RunConfig) Validate() error {
	if c.TestNamePattern != "" {
		if _, err := regexp.Compile(c.TestNamePattern); err != nil {
			return errors.Wrap(err, "invalid testNamePattern")
		}
	}
	if c.TimeoutMS.IsDefined() && c.TimeoutMS.IntValue() <= 0 {
		return errors.Errorf("timeoutMs must be positive, was %d", c.TimeoutMS.IntValue())
	}
	if c.HookTimeoutMS.IsDefined() && c.HookTimeoutMS.IntValue() <= 0 {
		return errors.Errorf("hookTimeoutMs must be positive, was %d", c.HookTimeoutMS.IntValue())
	}
	if c.MaxConcurrency.IsDefined() && c.MaxConcurrency.IntValue() < 1 {
		return errors.Errorf("maxConcurrency must be at least 1, was %d", c.MaxConcurrency.IntValue())
	}
	switch c.HookSequence {
	case "", HookSequenceStack, HookSequenceList:
	default:
		return errors.Errorf("hookSequence must be %q or %q, was %q",
			HookSequenceStack, HookSequenceList, c.HookSequence)
	}
	return nil
}

// TestFilter combines TestNamePattern and Filters into one Filter: a test must match the
// pattern and also pass the filters. It assumes that the configuration has been validated.
func (c RunConfig) TestFilter() Filter {
	filters := c.Filters
	if c.TestNamePattern == "" {
		return filters.AsFilter
	}
	pattern, err := regexp.Compile(c.TestNamePattern)
	if err != nil {
		return func(TestID) bool { return false }
	}
	return func(id TestID) bool {
		return pattern.MatchString(id.String()) && filters.AsFilter(id)
	}
}

func (c RunConfig) TestTimeout() time.Duration {
	return millisOrDefault(c.TimeoutMS, DefaultTestTimeout)
}

func (c RunConfig) HookTimeout() time.Duration {
	return millisOrDefault(c.HookTimeoutMS, DefaultHookTimeout)
}

func (c RunConfig) Concurrency() int {
	return c.MaxConcurrency.OrElse(DefaultMaxConcurrency)
}

func (c RunConfig) AfterHookSequence() HookSequence {
	if c.HookSequence == "" {
		return HookSequenceStack
	}
	return c.HookSequence
}

func millisOrDefault(value ldvalue.OptionalInt, defaultValue time.Duration) time.Duration {
	if ms, ok := value.Get(); ok {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

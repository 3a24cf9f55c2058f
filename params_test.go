package main

import (
	"testing"
	"time"

	helpers "github.com/launchdarkly/go-test-helpers/v3"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/spec-runner/framework"
)

func parseParams(t *testing.T, args ...string) (framework.RunConfig, error) {
	var params commandParams
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	params.addFlags(fs)
	require.NoError(t, fs.Parse(args))
	return params.runConfig(fs)
}

func TestDefaultParams(t *testing.T) {
	config, err := parseParams(t)
	require.NoError(t, err)
	assert.Equal(t, framework.DefaultTestTimeout, config.TestTimeout())
	assert.Equal(t, framework.DefaultHookTimeout, config.HookTimeout())
	assert.Equal(t, framework.DefaultMaxConcurrency, config.Concurrency())
	assert.Equal(t, framework.HookSequenceStack, config.AfterHookSequence())
	assert.False(t, config.OnlyMode)
	assert.False(t, config.FakeTimers)
	assert.False(t, config.Filters.IsDefined())
	assert.False(t, config.Modules.IsDefined())
}

func TestParamsFromFlags(t *testing.T) {
	config, err := parseParams(t,
		"--run", "describe",
		"--skip", "slow",
		"--modules", "vitests/**",
		"--timeout", "250",
		"--hook-timeout", "500",
		"--max-concurrency", "2",
		"--hook-sequence", "list",
		"--only",
		"--fake-timers",
	)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, config.TestTimeout())
	assert.Equal(t, 500*time.Millisecond, config.HookTimeout())
	assert.Equal(t, 2, config.Concurrency())
	assert.Equal(t, framework.HookSequenceList, config.AfterHookSequence())
	assert.True(t, config.OnlyMode)
	assert.True(t, config.FakeTimers)

	filter := config.TestFilter()
	assert.True(t, filter(framework.NewTestID("m", "describe things")))
	assert.False(t, filter(framework.NewTestID("m", "describe slow things")))
	assert.False(t, filter(framework.NewTestID("m", "other")))
	assert.Equal(t, []string{"vitests/**"}, config.Modules.Patterns())
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	data := []byte(`
timeoutMs: 1000
maxConcurrency: 3
skip: ["from-file"]
modules: ["vitests/test.spec"]
`)
	helpers.WithTempFileData(data, func(path string) {
		config, err := parseParams(t, "--config", path, "--timeout", "20", "--skip", "from-flag", "--modules", "**/vi.spec")
		require.NoError(t, err)
		assert.Equal(t, 20*time.Millisecond, config.TestTimeout())
		assert.Equal(t, 3, config.Concurrency())
		assert.Equal(t, []string{"vitests/test.spec", "**/vi.spec"}, config.Modules.Patterns())

		filter := config.TestFilter()
		assert.False(t, filter(framework.NewTestID("m", "from-file")))
		assert.False(t, filter(framework.NewTestID("m", "from-flag")))
		assert.True(t, filter(framework.NewTestID("m", "other")))
	})
}

func TestInvalidParams(t *testing.T) {
	_, err := parseParams(t, "--hook-sequence", "queue")
	assert.Error(t, err)

	_, err = parseParams(t, "--timeout", "0")
	assert.Error(t, err)

	_, err = parseParams(t, "--config", "/no/such/file.yaml")
	assert.Error(t, err)

	var params commandParams
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	params.addFlags(fs)
	assert.Error(t, fs.Parse([]string{"--run", "("}))
	assert.Error(t, fs.Parse([]string{"--modules", "vitests/["}))
}

func TestRerunCommand(t *testing.T) {
	assert.Equal(t, "spec-runner --run '^m/a$'",
		rerunCommand("spec-runner", framework.NewTestID("m", "a")))
	assert.Equal(t, `spec-runner --run '^vitests/expect\.spec/0\.2 \+ 0\.1$'`,
		rerunCommand("spec-runner", framework.NewTestID("vitests/expect.spec", "0.2 + 0.1")))
	assert.Equal(t, `spec-runner --run '^m/it'"'"'s$'`,
		rerunCommand("spec-runner", framework.NewTestID("m", "it's")))
}

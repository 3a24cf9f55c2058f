package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggersFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	loggers := NewLoggers(&buf, false)
	loggers.Debug("hidden message")
	loggers.Info("shown message")
	assert.NotContains(t, buf.String(), "hidden message")
	assert.Contains(t, buf.String(), "shown message")
}

func TestNewLoggersWithDebug(t *testing.T) {
	var buf bytes.Buffer
	loggers := NewLoggers(&buf, true)
	loggers.Debugf("value is %d", 3)
	assert.Contains(t, buf.String(), "value is 3")
}

func TestQuiet(t *testing.T) {
	var buf bytes.Buffer
	loggers := Quiet(&buf)
	loggers.Info("progress")
	loggers.Warn("careful")
	assert.NotContains(t, buf.String(), "progress")
	assert.Contains(t, buf.String(), "careful")
}

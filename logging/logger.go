package logging

import (
	"io"
	"log"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"
)

// NewLoggers returns the loggers for engine diagnostics, writing to out. Debug messages are
// only written if debug is true.
func NewLoggers(out io.Writer, debug bool) ldlog.Loggers {
	var loggers ldlog.Loggers
	loggers.SetBaseLogger(log.New(out, "", log.LstdFlags))
	if debug {
		loggers.SetMinLevel(ldlog.Debug)
	} else {
		loggers.SetMinLevel(ldlog.Info)
	}
	return loggers
}

// Quiet returns loggers that only report warnings and errors.
func Quiet(out io.Writer) ldlog.Loggers {
	loggers := NewLoggers(out, false)
	loggers.SetMinLevel(ldlog.Warn)
	return loggers
}

package app

import (
	"errors"
	"io"
	"os"
	"syscall"

	"github.com/sirupsen/logrus"
)

// logConfig decides the verbosity and destination of logs for a run.
type logConfig struct {
	Verbose bool
	Quiet   bool
	Output  io.Writer
}

func (c logConfig) level() logrus.Level {
	switch {
	case c.Quiet:
		return logrus.WarnLevel
	case c.Verbose:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

func newLogger(c logConfig) *logrus.Entry {
	if c.Output == nil {
		c.Output = os.Stdout
	}

	nlog := logrus.New()
	nlog.SetOutput(c.Output)
	nlog.SetLevel(c.level())
	log := logrus.NewEntry(nlog)
	return log
}

// ExitCode returns the process exit code for the error returned by the
// command. A closed output pipe is not a failure.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, syscall.EPIPE) {
		return 0
	}
	return 1
}

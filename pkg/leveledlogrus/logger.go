// Package leveledlogrus adapts a logrus entry to the leveled logger interface
// of hashicorp/go-retryablehttp.
package leveledlogrus

import (
	"fmt"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

var _ retryablehttp.LeveledLogger = (*Logger)(nil)

type Logger struct {
	*logrus.Entry
}

func New(log *logrus.Entry) *Logger {
	return &Logger{Entry: log}
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Error(msg)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Warn(msg)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Info(msg)
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Debug(msg)
}

// with attaches the key/value pairs as fields. Keys that are not strings are
// formatted with fmt.Sprint, a trailing key without a value is kept as
// "(MISSING)".
func (l *Logger) with(keysAndValues []interface{}) *logrus.Entry {
	if len(keysAndValues) == 0 {
		return l.Entry
	}

	fields := make(logrus.Fields, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields[key] = "(MISSING)"
			break
		}

		fields[key] = keysAndValues[i+1]
	}

	return l.WithFields(fields)
}

// Package logrus adapts a logrus entry to mcpcache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	mcpcache "github.com/QuickenLoans/mcp-cache"
)

var _ mcpcache.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New wraps l under a "component" field. A nil l uses the standard logger.
func New(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return Logger{E: l.WithField("component", "mcp-cache")}
}

func (l Logger) Debug(msg string, f mcpcache.Fields) { l.with(f).Debug(msg) }
func (l Logger) Info(msg string, f mcpcache.Fields)  { l.with(f).Info(msg) }
func (l Logger) Warn(msg string, f mcpcache.Fields)  { l.with(f).Warn(msg) }
func (l Logger) Error(msg string, f mcpcache.Fields) { l.with(f).Error(msg) }

func (l Logger) with(f mcpcache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	if err, ok := f["err"].(error); ok {
		rest := make(logrus.Fields, len(f))
		for k, v := range f {
			if k != "err" {
				rest[k] = v
			}
		}
		return l.E.WithError(err).WithFields(rest)
	}
	return l.E.WithFields(logrus.Fields(f))
}

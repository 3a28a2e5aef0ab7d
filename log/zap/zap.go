// Package zap adapts a *zap.Logger to mcpcache.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"

	mcpcache "github.com/QuickenLoans/mcp-cache"
)

var _ mcpcache.Logger = Logger{}

type Logger struct{ L *zap.Logger }

// New wraps l; a nil l logs nowhere.
func New(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return Logger{L: l.WithOptions(zap.AddCallerSkip(1))}
}

func (z Logger) Debug(msg string, f mcpcache.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f mcpcache.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f mcpcache.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f mcpcache.Fields) { z.L.Error(msg, fields(f)...) }

// fields converts f in key order; errors become zap.NamedError.
func fields(f mcpcache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	ks := make([]string, 0, len(f))
	for k := range f {
		ks = append(ks, k)
	}
	sort.Strings(ks)

	out := make([]zap.Field, 0, len(f))
	for _, k := range ks {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}

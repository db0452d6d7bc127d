package observe

import (
	"context"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// logrusLogger adapts a logrus.Logger to the Logger interface for hosts
// that already log through logrus.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger wraps an existing logrus logger. A nil argument creates
// a standalone logger with the prefixed text formatter.
func NewLogrusLogger(base *logrus.Logger) Logger {
	if base == nil {
		base = logrus.New()
		base.SetFormatter(&prefixed.TextFormatter{
			FullTimestamp: true,
		})
	}
	return &logrusLogger{entry: logrus.NewEntry(base)}
}

func (l *logrusLogger) WithCache(name string) Logger {
	return &logrusLogger{entry: l.entry.WithField("cache.name", name)}
}

func (l *logrusLogger) Info(_ context.Context, msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Info(msg)
}

func (l *logrusLogger) Warn(_ context.Context, msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Warn(msg)
}

func (l *logrusLogger) Error(_ context.Context, msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Error(msg)
}

func (l *logrusLogger) Debug(_ context.Context, msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Debug(msg)
}

func toLogrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}

var _ Logger = (*logrusLogger)(nil)

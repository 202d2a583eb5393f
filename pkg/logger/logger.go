package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a thin wrapper around logrus that carries a pre-scoped entry,
// so every line emitted by a component shares the same structured fields.
type Logger struct {
	entry *logrus.Entry
}

// Init configures the global logrus instance. Output is JSON on stdout so
// log collectors can ingest it without extra parsing.
func Init(level logrus.Level) {
	logrus.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(level)
}

// ParseLevel converts a config string ("debug", "info", ...) into a logrus
// level, falling back to Info for unknown values.
func ParseLevel(s string) logrus.Level {
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// New creates a Logger scoped to a component of the service.
func New(component string) *Logger {
	return &Logger{
		entry: logrus.WithFields(logrus.Fields{
			"component": component,
		}),
	}
}

// WithField returns a Logger with one extra structured field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithPayload attaches a map of business data to the entry.
func (l *Logger) WithPayload(payload map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithField("payload", payload)}
}

// WithError attaches an error to the entry.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

func (l *Logger) Debug(message string) { l.entry.Debug(message) }

func (l *Logger) Info(message string) { l.entry.Info(message) }

func (l *Logger) Warn(message string) { l.entry.Warn(message) }

func (l *Logger) Error(message string) { l.entry.Error(message) }

func (l *Logger) Fatal(message string) { l.entry.Fatal(message) }

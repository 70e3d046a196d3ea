// Package log is a thin structured-logging facade over logrus. Call sites
// pass alternating key/value pairs after the message; odd trailing values
// are ignored.
package log

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger     *logrus.Logger
	loggerOnce sync.Once
)

func get() *logrus.Logger {
	loggerOnce.Do(func() {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	})
	return logger
}

// SetLevel adjusts the minimum level; unknown names fall back to info.
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	get().SetLevel(parsed)
}

func Debug(msg string, kv ...any) {
	get().WithFields(fields(kv...)).Debug(msg)
}

func Info(msg string, kv ...any) {
	get().WithFields(fields(kv...)).Info(msg)
}

func Warn(msg string, kv ...any) {
	get().WithFields(fields(kv...)).Warn(msg)
}

// Error logs msg with the error under the "err" field.
func Error(msg string, err error, kv ...any) {
	get().WithFields(fields(kv...)).WithError(err).Error(msg)
}

func fields(kv ...any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		f[key] = kv[i+1]
	}
	return f
}

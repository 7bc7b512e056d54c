package log

import (
	"github.com/anchore/go-logger"
	"github.com/anchore/go-logger/adapter/discard"
	"github.com/anchore/go-logger/adapter/redact"
)

// log is the singleton used in all logging calls.
var log = discard.New()

var store = redact.NewStore()

// Redactable can scrub sensitive values from itself before being logged.
type Redactable interface {
	Redact()
}

func Set(l logger.Logger) {
	log = redact.New(l, store)
}

func Get() logger.Logger {
	return log
}

func Redact(values ...string) {
	store.Add(values...)
}

func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

func Error(args ...interface{}) {
	log.Error(args...)
}

func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

func Warn(args ...interface{}) {
	log.Warn(args...)
}

func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func Info(args ...interface{}) {
	log.Info(args...)
}

func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

func Debug(args ...interface{}) {
	log.Debug(args...)
}

func Tracef(format string, args ...interface{}) {
	log.Tracef(format, args...)
}

func Trace(args ...interface{}) {
	log.Trace(args...)
}

func WithFields(fields ...interface{}) logger.MessageLogger {
	return log.WithFields(fields...)
}

func Nested(fields ...interface{}) logger.Logger {
	return log.Nested(fields...)
}

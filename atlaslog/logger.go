// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package atlaslog provides the leveled, printf-style logging interface
// the rest of this module depends on, matching the shape of the
// teacher's own utils/logging.Logger (consumed throughout indexer/
// and snow/engine/ as Info/Debug/Verbo/Warn/Error printf methods) but
// backed by go.uber.org/zap, this pack's logging library of record.
package atlaslog

import (
	"go.uber.org/zap"
)

// Logger is the printf-style leveled logging interface every Atlas
// component takes a dependency on, never a concrete *zap.Logger.
type Logger interface {
	Verbo(format string, args ...interface{})
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// zapLogger adapts a *zap.SugaredLogger to Logger. Verbo maps to zap's
// Debug level with no distinct level of its own, since zap does not
// define a level below Debug.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// New returns a production-configured Logger (JSON encoding, epoch-seconds
// timestamps, stack traces on Error).
func New() (Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: l.Sugar()}, nil
}

// NewNop returns a Logger that discards everything, for tests.
func NewNop() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

func (l *zapLogger) Verbo(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *zapLogger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *zapLogger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *zapLogger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *zapLogger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

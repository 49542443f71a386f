// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogger is a global logger configured to output messages at
// InfoLevel and above to os.Stderr. It is the logger new actors get when
// none is supplied explicitly.
var DefaultLogger Logger = NewZap(InfoLevel, os.Stderr)

// DiscardLogger is a no-op logger, handy for tests that do not want to
// assert on log output.
var DiscardLogger Logger = discardLogger{}

// Zap implements Logger on top of go.uber.org/zap.
type Zap struct {
	sugar *zap.SugaredLogger
	level Level
}

var _ Logger = (*Zap)(nil)

// NewZap builds a Zap logger writing to the given writers at the given
// level.
func NewZap(level Level, writers ...*os.File) *Zap {
	syncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, w := range writers {
		syncers = append(syncers, zapcore.AddSync(w))
	}
	if len(syncers) == 0 {
		syncers = append(syncers, zapcore.AddSync(os.Stderr))
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(syncers...), toZapLevel(level))
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Zap{sugar: logger.Sugar(), level: level}
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarningLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FatalLevel:
		return zapcore.FatalLevel
	case PanicLevel:
		return zapcore.PanicLevel
	case DisabledLevel:
		return zapcore.InvalidLevel
	default:
		return zapcore.InfoLevel
	}
}

func (z *Zap) Debug(v ...any)                  { z.sugar.Debug(v...) }
func (z *Zap) Debugf(format string, v ...any)  { z.sugar.Debugf(format, v...) }
func (z *Zap) Info(v ...any)                   { z.sugar.Info(v...) }
func (z *Zap) Infof(format string, v ...any)   { z.sugar.Infof(format, v...) }
func (z *Zap) Warn(v ...any)                   { z.sugar.Warn(v...) }
func (z *Zap) Warnf(format string, v ...any)   { z.sugar.Warnf(format, v...) }
func (z *Zap) Error(v ...any)                  { z.sugar.Error(v...) }
func (z *Zap) Errorf(format string, v ...any)  { z.sugar.Errorf(format, v...) }
func (z *Zap) Fatal(v ...any)                  { z.sugar.Fatal(v...) }
func (z *Zap) Fatalf(format string, v ...any)  { z.sugar.Fatalf(format, v...) }
func (z *Zap) Panic(v ...any)                  { z.sugar.Panic(v...) }
func (z *Zap) Panicf(format string, v ...any)  { z.sugar.Panicf(format, v...) }
func (z *Zap) LogLevel() Level                 { return z.level }

// With returns a child logger annotating every message with the given
// key/value pairs.
func (z *Zap) With(keyValues ...any) Logger {
	return &Zap{sugar: z.sugar.With(keyValues...), level: z.level}
}

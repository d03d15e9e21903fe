// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapSink adapts a *zap.Logger to the LogSink interface. Level 0 (Info, per
// DiffToInfo) maps to zap's Info level; anything greater is logged at Debug.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink builds a ZapSink writing JSON-encoded entries to w.
func NewZapSink(w io.Writer) *ZapSink {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return &ZapSink{logger: zap.New(core)}
}

// Info implements LogSink.
func (s *ZapSink) Info(level int, msg string, keysAndValues ...interface{}) {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}

	if level <= 0 {
		s.logger.Info(msg, fields...)
		return
	}
	s.logger.Debug(msg, fields...)
}

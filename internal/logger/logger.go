// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import (
	"os"
)

const jobBufferSize = 100
const logLevelEnvVarAll = componentEnvVarAll

// DefaultMaxDocumentLength is the default maximum length of a stringified
// BSON document in bytes before it is truncated in a log line.
const DefaultMaxDocumentLength = 1000

// TruncationSuffix is appended to a truncated message.
const TruncationSuffix = "..."

// LogSink receives formatted log entries. Implementations adapt this to a
// structured logging library; see ZapSink for the default one.
type LogSink interface {
	Info(level int, msg string, keysAndValues ...interface{})
}

type job struct {
	level Level
	msg   ComponentMessage
}

// Logger dispatches ComponentMessages to a LogSink, filtered by a
// per-component verbosity level, off the calling goroutine.
type Logger struct {
	ComponentLevels   map[Component]Level
	Sink              LogSink
	MaxDocumentLength uint

	jobs chan job
}

// New constructs a Logger. componentLevels, if non-nil, takes priority over
// the MONGODB_LOG_* environment variables; a nil sink logs to os.Stderr via
// ZapSink's production encoder.
func New(sink LogSink, maxDocumentLength uint, componentLevels map[Component]Level) *Logger {
	l := &Logger{
		ComponentLevels: selectComponentLevels(
			func() map[Component]Level { return componentLevels },
			getEnvComponentLevels,
		),
		MaxDocumentLength: selectMaxDocumentLength(
			func() uint { return maxDocumentLength },
			getEnvMaxDocumentLength,
		),
		Sink: sink,
		jobs: make(chan job, jobBufferSize),
	}
	if l.Sink == nil {
		l.Sink = NewZapSink(os.Stderr)
	}
	return l
}

// Close stops accepting new messages. The print goroutine started by
// StartPrintListener exits once it drains the channel.
func (logger *Logger) Close() {
	close(logger.jobs)
}

// Is reports whether level is enabled for component.
func (logger *Logger) Is(level Level, component Component) bool {
	return logger.ComponentLevels[component] >= level
}

// Print enqueues msg for asynchronous delivery to the sink. If the job
// buffer is full, a CommandMessageDropped is enqueued in its place instead
// of blocking the caller.
func (logger *Logger) Print(level Level, msg ComponentMessage) {
	select {
	case logger.jobs <- job{level, msg}:
	default:
		select {
		case logger.jobs <- job{level, CommandMessageDropped{}}:
		default:
		}
	}
}

// StartPrintListener starts the goroutine that drains logger.jobs into its
// Sink. Call Close to stop it.
func StartPrintListener(logger *Logger) {
	go func() {
		for j := range logger.jobs {
			if !logger.Is(j.level, j.msg.Component()) {
				continue
			}
			if logger.Sink == nil {
				continue
			}
			kv := formatMessage(j.msg.Serialize(), logger.MaxDocumentLength)
			logger.Sink.Info(int(j.level)-DiffToInfo, j.msg.Message(), kv...)
		}
	}()
}

func truncate(str string, width uint) string {
	if len(str) <= int(width) {
		return str
	}
	return str[:width] + TruncationSuffix
}

func formatMessage(keysAndValues []interface{}, commandWidth uint) []interface{} {
	out := make([]interface{}, len(keysAndValues))
	for i := 0; i < len(keysAndValues); i += 2 {
		key, _ := keysAndValues[i].(string)
		val := keysAndValues[i+1]
		if (key == "command" || key == "reply") && commandWidth > 0 {
			if s, ok := val.(string); ok {
				val = truncate(s, commandWidth)
			}
		}
		out[i] = key
		out[i+1] = val
	}
	return out
}

func getEnvMaxDocumentLength() uint {
	return 0
}

func selectMaxDocumentLength(getters ...func() uint) uint {
	for _, get := range getters {
		if l := get(); l != 0 {
			return l
		}
	}
	return DefaultMaxDocumentLength
}

func getEnvComponentLevels() map[Component]Level {
	levels := make(map[Component]Level)
	global := ParseLevel(os.Getenv(string(componentEnvVarAll)))

	for _, envVar := range allComponentEnvVars {
		if envVar == componentEnvVarAll {
			continue
		}
		level := global
		if level == LevelOff {
			level = ParseLevel(os.Getenv(string(envVar)))
		}
		levels[envVar.component()] = level
	}
	return levels
}

func selectComponentLevels(getters ...func() map[Component]Level) map[Component]Level {
	selected := make(map[Component]Level)
	set := make(map[Component]struct{})

	for _, get := range getters {
		for component, level := range get() {
			if _, ok := set[component]; !ok {
				selected[component] = level
			}
			set[component] = struct{}{}
		}
	}
	return selected
}

//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zapcore.Level
	}{
		{name: "debug", level: LevelDebug, want: zapcore.DebugLevel},
		{name: "info", level: LevelInfo, want: zapcore.InfoLevel},
		{name: "warn", level: LevelWarn, want: zapcore.WarnLevel},
		{name: "error", level: LevelError, want: zapcore.ErrorLevel},
		{name: "fatal", level: LevelFatal, want: zapcore.FatalLevel},
		{name: "unknown falls back to info", level: "verbose", want: zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetLevel(tt.level)
			assert.Equal(t, tt.want, zapLevel.Level())
		})
	}
	SetLevel(LevelInfo)
}

type capturingLogger struct {
	Logger
	messages []string
}

func (c *capturingLogger) Infof(format string, args ...any) {
	c.messages = append(c.messages, format)
}

func TestDefaultIsReplaceable(t *testing.T) {
	orig := Default
	defer func() { Default = orig }()

	capture := &capturingLogger{}
	Default = capture

	Infof("tool %s executed", "mouse_click")
	assert.Len(t, capture.messages, 1)
}

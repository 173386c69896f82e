// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.ErrorLevel},
		{0, zapcore.ErrorLevel},
		{1, zapcore.WarnLevel},
		{2, zapcore.InfoLevel},
		{3, zapcore.DebugLevel},
		{7, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		if got := Level(tt.verbosity); got != tt.want {
			t.Errorf("Level(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestNewDefaultVerbosityPrintsMessageOnly(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Verbosity: DefaultVerbosity, Writer: &buf})

	log.Info("hidden")
	log.Warn("cache miss")
	_ = log.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at default verbosity: %q", out)
	}
	if strings.TrimSpace(out) != "cache miss" {
		t.Errorf("got %q, want bare message", out)
	}
}

func TestNewDebugAddsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Verbosity: 3, Writer: &buf})

	log.Debug("rendered query")
	_ = log.Sync()

	out := buf.String()
	if !strings.Contains(out, "DEBUG") || !strings.Contains(out, "rendered query") {
		t.Errorf("got %q, want level and message", out)
	}
}

package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T, level string, fn func()) string {
	t.Helper()
	buf := &bytes.Buffer{}
	SetTestOutput(buf)
	defer UnsetTestOutput()

	// Reinitialize logger with test output
	logger = nil
	InitLogger(level)

	fn()

	return buf.String()
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		logFn    func()
		contains []string
		excludes []string
	}{
		{
			name:  "info log",
			level: "info",
			logFn: func() {
				Info("test info message")
			},
			contains: []string{"test info message"},
		},
		{
			name:  "warn log",
			level: "info",
			logFn: func() {
				Warnf("source '%s' failed", "https://mirror-a")
			},
			contains: []string{"source 'https://mirror-a' failed", "level=WARN"},
		},
		{
			name:  "debug log with debug level",
			level: "debug",
			logFn: func() {
				Debug("test debug message")
			},
			contains: []string{"test debug message", "level=DEBUG"},
		},
		{
			name:  "debug log with info level",
			level: "info",
			logFn: func() {
				Debug("test debug message")
			},
			excludes: []string{"test debug message"},
		},
		{
			name:  "error log with fields",
			level: "info",
			logFn: func() {
				Error("boom", Fields{"source": "https://mirror-b"})
			},
			contains: []string{"boom", "source=https://mirror-b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureOutput(t, tt.level, tt.logFn)
			for _, want := range tt.contains {
				assert.True(t, strings.Contains(output, want),
					"expected output to contain %q, got %q", want, output)
			}
			for _, unwanted := range tt.excludes {
				assert.False(t, strings.Contains(output, unwanted),
					"expected output to not contain %q, got %q", unwanted, output)
			}
		})
	}
}

func TestInitLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	output := captureOutput(t, "bogus", func() {
		Debug("hidden")
		Info("visible")
	})

	assert.NotContains(t, output, "hidden")
	assert.Contains(t, output, "visible")
}

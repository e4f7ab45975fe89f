package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetOutput(t *testing.T) {
	var buf bytes.Buffer

	original := Logger
	SetOutput(&buf)
	defer func() { Logger = original }()

	tests := []struct {
		name  string
		fn    func(msg string, args ...any)
		level string
	}{
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("hello", "key", "value")

			out := buf.String()
			if !strings.Contains(out, "hello") {
				t.Errorf("output %q missing message", out)
			}
			if !strings.Contains(out, "level="+tt.level) {
				t.Errorf("output %q missing level %s", out, tt.level)
			}
			if !strings.Contains(out, "key=value") {
				t.Errorf("output %q missing attributes", out)
			}
		})
	}
}

func TestInitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.log")

	original := Logger
	defer func() { Logger = original }()

	if err := InitFile(path); err != nil {
		t.Fatalf("InitFile() failed: %v", err)
	}

	Info("written to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file %q missing message", string(data))
	}
}

func TestDefaultLogger(t *testing.T) {
	if Logger == nil {
		t.Error("Logger should be initialized")
	}
}

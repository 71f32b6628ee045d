package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/vex-labs/ticket-view/internal/config"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"nonsense", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		logger, err := NewLogger(config.LoggerConfig{Level: tt.level, Output: "stderr"})
		if err != nil {
			t.Fatalf("%s: %v", tt.level, err)
		}
		if !logger.Core().Enabled(tt.want) {
			t.Fatalf("%s: level %s should be enabled", tt.level, tt.want)
		}
		if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
			t.Fatalf("%s: level %s should be disabled", tt.level, tt.want-1)
		}
	}
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vex.log")
	logger, err := NewLogger(config.LoggerConfig{Level: "info", Output: path})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"message":"hello"`) {
		t.Fatalf("unexpected log %q", data)
	}
}

package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInit(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")

	err := Init(Config{LogDir: logDir})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}

	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

func TestInitLevels(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantLvl string
	}{
		{name: "file only", cfg: Config{}, wantLvl: "warn"},
		{name: "console", cfg: Config{Console: true}, wantLvl: "info"},
		{name: "debug", cfg: Config{Debug: true}, wantLvl: "debug"},
		{name: "debug wins over console", cfg: Config{Debug: true, Console: true}, wantLvl: "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.LogDir = filepath.Join(t.TempDir(), "logs")
			if err := Init(tt.cfg); err != nil {
				t.Fatalf("Init() error = %v", err)
			}
			if got := Logger.GetLevel().String(); got != tt.wantLvl {
				t.Errorf("level = %q, want %q", got, tt.wantLvl)
			}
		})
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

func TestLogFileWritten(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")
	if err := Init(Config{LogDir: logDir}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	Warn("disk check", "free", 42)

	data, err := os.ReadFile(filepath.Join(logDir, "feedlog.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty after Warn()")
	}
}

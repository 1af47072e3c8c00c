package logging

import (
	"log/slog"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(tt.level)
			if l == nil || l.Logger == nil {
				t.Fatal("expected logger")
			}
			if !l.Enabled(nil, tt.want) {
				t.Errorf("level %q should enable %v", tt.level, tt.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	l := Default()
	if l == nil {
		t.Fatal("expected default logger")
	}
	if l.Enabled(nil, slog.LevelDebug) {
		t.Error("default logger should not enable debug")
	}
}

func TestComponent(t *testing.T) {
	l := Default().Component("pricing")
	if l == nil || l.Logger == nil {
		t.Fatal("expected component logger")
	}
}

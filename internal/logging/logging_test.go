package logging

import (
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
)

func withTempState(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { xdg.Reload() })
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	xdg.Reload()
}

func TestSetupLevels(t *testing.T) {
	withTempState(t)

	tests := []struct {
		verbosity int
		want      zerolog.Level
	}{
		{0, zerolog.WarnLevel},
		{1, zerolog.InfoLevel},
		{2, zerolog.DebugLevel},
		{3, zerolog.TraceLevel},
		{7, zerolog.TraceLevel},
	}
	for _, tt := range tests {
		Setup(tt.verbosity)
		if got := zerolog.GlobalLevel(); got != tt.want {
			t.Errorf("Setup(%d) level = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestLogFilePath(t *testing.T) {
	withTempState(t)
	p := LogFilePath()
	if filepath.Base(p) != "dotdot.log" {
		t.Errorf("LogFilePath() basename = %q", filepath.Base(p))
	}
}

func TestGetLogger(t *testing.T) {
	withTempState(t)
	Setup(0)
	log := GetLogger("test")
	log.Debug().Msg("suppressed at warn level")
}

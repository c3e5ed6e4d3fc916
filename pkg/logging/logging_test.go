package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLoggerWithOutput(tt.verbosity, &bytes.Buffer{})

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			logPath := filepath.Join(tempDir, "stowman", "stowman.log")
			_, err := os.Stat(logPath)
			assert.NoError(t, err, "debug log should be created at %s", logPath)
		})
	}
}

func TestDebugLogPath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	assert.Equal(t, "/custom/state/stowman/stowman.log", DebugLogPath())
}

func TestSetupLogger_ConsoleRespectsLevel(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	var console bytes.Buffer

	SetupLoggerWithOutput(1, &console)
	logger := GetLogger("test")
	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")

	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "shown")
}

func TestAudit_LineFormat(t *testing.T) {
	var buf bytes.Buffer
	clock := func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC) }
	audit := NewAudit(&buf, clock)

	audit.Info("Starting install operation for: %s", "zsh, vim")
	audit.Success("Package '%s' installed successfully", "zsh")
	audit.Warning("Uninstall had errors")
	audit.Error("Failed to install '%s': %s", "vim", "conflict")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "[2024-03-05 14:07:09] INFO: Starting install operation for: zsh, vim", lines[0])
	assert.Equal(t, "[2024-03-05 14:07:09] SUCCESS: Package 'zsh' installed successfully", lines[1])
	assert.Equal(t, "[2024-03-05 14:07:09] WARNING: Uninstall had errors", lines[2])
	assert.Equal(t, "[2024-03-05 14:07:09] ERROR: Failed to install 'vim': conflict", lines[3])
}

func TestOpenAudit_DailyFile(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), ".logs")
	clock := func() time.Time { return time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC) }

	audit, err := OpenAudit(logDir, clock)
	require.NoError(t, err)
	audit.Success("first")
	require.NoError(t, audit.Close())

	// A second invocation on the same day appends.
	audit, err = OpenAudit(logDir, clock)
	require.NoError(t, err)
	audit.Info("second")
	require.NoError(t, audit.Close())

	data, err := os.ReadFile(filepath.Join(logDir, "stow-manager-20241231.log"))
	require.NoError(t, err)
	assert.Equal(t,
		"[2024-12-31 23:59:00] SUCCESS: first\n[2024-12-31 23:59:00] INFO: second\n",
		string(data))
}

func TestNopAudit(t *testing.T) {
	audit := NopAudit()
	assert.NotPanics(t, func() {
		audit.Error("nothing happens")
	})
	assert.NoError(t, audit.Close())
}

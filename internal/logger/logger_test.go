package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{" error ", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"warn", log.WarnLevel},
		{"", log.WarnLevel},
		{"verbose", log.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestConfigure_FlagOverridesEnv(t *testing.T) {
	t.Setenv(LevelEnvVar, "error")

	require.NoError(t, Configure("debug", ""))
	assert.Equal(t, log.DebugLevel, Logger.GetLevel())

	require.NoError(t, Configure("", ""))
	assert.Equal(t, log.ErrorLevel, Logger.GetLevel())
}

func TestConfigure_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.log")

	require.NoError(t, Configure("info", path))
	Info("written to file", "key", "value")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")

	SetOutput(os.Stderr)
}

func TestNewStyledLogger_InheritsLevel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Configure("info", ""))
	SetOutput(&buf)

	component := NewStyledLogger("Advisor")
	assert.Equal(t, log.InfoLevel, component.GetLevel())

	component.Info("hello")
	assert.Contains(t, buf.String(), "Advisor")

	SetOutput(os.Stderr)
}

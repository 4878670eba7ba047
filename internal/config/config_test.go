package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorageoss/p256/testdata"
)

func TestDefault(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, LogTypeConsole, s.Logger.LogType)
	assert.Equal(t, FormatText, s.Output.Format)
}

func TestParse(t *testing.T) {
	t.Run("full file", func(t *testing.T) {
		s, err := Parse(testdata.ConfigYAML)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/p256-keys", s.KeyDir)
		assert.Equal(t, LogLevelDebug, s.Logger.LogLevel)
		assert.Equal(t, LogTypeFile, s.Logger.LogType)
		assert.Equal(t, "/tmp/p256.log", s.Logger.FilePath)
		assert.Equal(t, 10, s.Logger.MaxSize)
		assert.Equal(t, FormatJSON, s.Output.Format)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		s, err := Parse([]byte("keyDir: ./keys\n"))
		require.NoError(t, err)
		assert.Equal(t, "./keys", s.KeyDir)
		assert.Equal(t, LogLevelWarning, s.Logger.LogLevel)
	})

	tests := []struct {
		name string
		yaml string
	}{
		{"bad level", "logger:\n  logLevel: loud\n"},
		{"bad type", "logger:\n  logType: syslog\n"},
		{"file without path", "logger:\n  logType: file\n"},
		{"oversized rotation", "logger:\n  logType: file\n  filePath: /tmp/x.log\n  maxSizeMB: 1000\n"},
		{"bad format", "output:\n  format: xml\n"},
		{"not yaml", "logger: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		s, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), s)
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "p256.yaml")
		require.NoError(t, os.WriteFile(path, testdata.ConfigYAML, 0o600))
		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, FormatJSON, s.Output.Format)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

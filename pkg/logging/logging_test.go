package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		// Lowercase
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},

		// Uppercase
		{"DEBUG", LevelDebug},
		{"INFO", LevelInfo},
		{"WARN", LevelWarn},
		{"WARNING", LevelWarn},
		{"ERROR", LevelError},

		// Mixed case
		{"Debug", LevelDebug},
		{"Info", LevelInfo},
		{"Warn", LevelWarn},
		{"Warning", LevelWarn},
		{"Error", LevelError},
		{"dEbUg", LevelDebug},

		// Empty string defaults to Info
		{"", LevelInfo},

		// Unrecognized defaults to Info
		{"trace", LevelInfo},
		{"fatal", LevelInfo},
		{"unknown", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"Json", FormatJSON},
		{"text", FormatText},
		{"TEXT", FormatText},
		{"", FormatText},
		{"yaml", FormatText}, // unrecognized defaults to text
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseFormat(tt.input)
			if result != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestOpen_WritesToOutputAndFile(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "fishem.log")

	logger, closeLog, err := Open(Config{
		Level:  LevelInfo,
		Format: FormatJSON,
		Output: &out,
		File:   path,
	})
	require.NoError(t, err)

	logger.Info("exported mockup", "dir", "/tmp/m")
	logger.Debug("filtered out")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, out.String(), `"msg":"exported mockup"`)
	assert.Contains(t, string(data), `"msg":"exported mockup"`)
	assert.NotContains(t, string(data), "filtered out")
}

func TestOpen_WithoutFile(t *testing.T) {
	var out bytes.Buffer
	logger, closeLog, err := Open(Config{Output: &out})
	require.NoError(t, err)
	logger.Info("hello")
	assert.NoError(t, closeLog())
	assert.Contains(t, out.String(), "hello")
}

func TestOpen_BadFile(t *testing.T) {
	_, _, err := Open(Config{File: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	assert.Error(t, err)
}

func TestOpen_WithAttrsReachesBothOutputs(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "fishem.log")

	logger, closeLog, err := Open(Config{Level: LevelDebug, Format: FormatText, Output: &out, File: path})
	require.NoError(t, err)

	logger.With("component", "mockup").WithGroup("export").Debug("wrote file", "key", "/redfish/v1")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, got := range []string{out.String(), string(data)} {
		assert.Contains(t, got, "component=mockup")
		assert.Contains(t, got, "export.key=/redfish/v1")
	}
}

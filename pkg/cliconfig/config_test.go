package cliconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  CLIConfig
		wantErr string
	}{
		{
			name:    "valid defaults",
			config:  *NewDefault(),
			wantErr: "",
		},
		{
			name:    "valid custom ports",
			config:  CLIConfig{Port: 8080, HTTPS: true, HTTPSPort: 8443, ReadTimeout: 60, WriteTimeout: 60},
			wantErr: "",
		},
		{
			name:    "port too high",
			config:  CLIConfig{Port: 70000},
			wantErr: "port 70000 is out of range",
		},
		{
			name:    "port negative",
			config:  CLIConfig{Port: -1},
			wantErr: "port -1 is out of range",
		},
		{
			name:    "https port negative",
			config:  CLIConfig{Port: 5000, HTTPSPort: -5},
			wantErr: "httpsPort -5 is out of range",
		},
		{
			name:    "read timeout too high",
			config:  CLIConfig{Port: 5000, ReadTimeout: 9999},
			wantErr: "readTimeout 9999 is out of range",
		},
		{
			name:    "write timeout negative",
			config:  CLIConfig{Port: 5000, WriteTimeout: -1},
			wantErr: "writeTimeout -1 is out of range",
		},
		{
			name:    "https on same port",
			config:  CLIConfig{Port: 5000, HTTPS: true, HTTPSPort: 5000},
			wantErr: "port and httpsPort cannot be the same",
		},
		{
			name:    "same port ignored when https off",
			config:  CLIConfig{Port: 5000, HTTPSPort: 5000},
			wantErr: "",
		},
		{
			name:    "cert without key",
			config:  CLIConfig{CertFile: "cert.pem"},
			wantErr: "certFile and keyFile must be given together",
		},
		{
			name:    "key without cert",
			config:  CLIConfig{KeyFile: "key.pem"},
			wantErr: "certFile and keyFile must be given together",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, 5443, cfg.HTTPSPort)
	assert.False(t, cfg.HTTPS)
	assert.Equal(t, "lastfish.json", cfg.LastFish)
	assert.Empty(t, cfg.IFish)
	assert.Equal(t, SourceDefault, cfg.Sources["port"])
}

func TestMergeConfig(t *testing.T) {
	t.Run("merges non-zero values", func(t *testing.T) {
		target := NewDefault()
		source := &CLIConfig{Port: 9000, IFish: "in.json"}

		MergeConfig(target, source, SourceFile)

		assert.Equal(t, 9000, target.Port)
		assert.Equal(t, "in.json", target.IFish)
		assert.Equal(t, SourceFile, target.Sources["port"])
		assert.Equal(t, SourceFile, target.Sources["ifish"])
	})

	t.Run("does not overwrite with zero values", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, &CLIConfig{}, SourceFile)

		assert.Equal(t, DefaultPort, target.Port)
		assert.Equal(t, DefaultLastFish, target.LastFish)
		assert.Equal(t, SourceDefault, target.Sources["port"])
	})

	t.Run("SetFields applies explicit zero values", func(t *testing.T) {
		target := NewDefault()
		target.HTTPS = true

		source := &CLIConfig{
			SetFields: map[string]bool{"https": true, "lastfish": true},
		}
		MergeConfig(target, source, SourceFile)

		assert.False(t, target.HTTPS)
		assert.Empty(t, target.LastFish)
		assert.Equal(t, SourceFile, target.Sources["lastfish"])
		assert.Equal(t, DefaultPort, target.Port, "keys not listed are kept")
	})

	t.Run("boolean false without SetFields is ignored", func(t *testing.T) {
		target := NewDefault()
		target.HTTPS = true

		MergeConfig(target, &CLIConfig{HTTPS: false}, SourceFile)

		assert.True(t, target.HTTPS)
	})

	t.Run("nil source is no-op", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, nil, SourceFile)
		assert.Equal(t, DefaultPort, target.Port)
	})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFile_JSON(t *testing.T) {
	// Null values are accepted and mean unset.
	path := writeFile(t, t.TempDir(), "fishem_config.json", `{
	"ifish": "start.json",
	"ofish": null,
	"imockup": null,
	"omockup": "out",
	"port": 5050,
	"https": false
}`)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "start.json", cfg.IFish)
	assert.Equal(t, "out", cfg.OMockup)
	assert.Equal(t, 5050, cfg.Port)
	assert.True(t, cfg.SetFields["https"])
	assert.True(t, cfg.SetFields["ofish"])
	assert.False(t, cfg.SetFields["lastfish"])
}

func TestLoadConfigFile_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fishem_config.yaml", `
imockup: ./mockups/public-rackmount
port: 5001
https: true
httpsPort: 5444
lastfish: ""
logLevel: debug
`)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "./mockups/public-rackmount", cfg.IMockup)
	assert.Equal(t, 5001, cfg.Port)
	assert.True(t, cfg.HTTPS)
	assert.Equal(t, 5444, cfg.HTTPSPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.SetFields["lastfish"])
}

func TestLoadConfigFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantLine int
	}{
		{name: "json syntax", file: "c.json", content: "{\n  \"port\": ,\n}", wantLine: 2},
		{name: "json wrong type", file: "c.json", content: "{\n  \"port\": \"abc\"\n}", wantLine: 2},
		{name: "yaml syntax", file: "c.yaml", content: "port: 5000\n  bad: [\n", wantLine: 0},
		{name: "yaml not a mapping", file: "c.yaml", content: "- a\n- b\n", wantLine: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)

			_, err := LoadConfigFile(path)
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "want *ConfigError, got %T", err)
			assert.Equal(t, path, cfgErr.Path)
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, cfgErr.Line)
			}
		})
	}
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()

	path, err := FindConfigFile(dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	yml := writeFile(t, dir, "fishem_config.yml", "port: 1")
	path, err = FindConfigFile(dir)
	require.NoError(t, err)
	assert.Equal(t, yml, path)

	js := writeFile(t, dir, "fishem_config.json", `{"port": 2}`)
	path, err = FindConfigFile(dir)
	require.NoError(t, err)
	assert.Equal(t, js, path, "json is searched first")

	assert.Len(t, GetConfigSearchPaths(dir), len(ConfigFileNames))
}

func TestFindLineColumn(t *testing.T) {
	data := []byte("ab\ncd\nef")
	line, col := FindLineColumn(data, 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)
}

func TestConfigError_Error(t *testing.T) {
	assert.Equal(t, "c.json: bad", (&ConfigError{Path: "c.json", Message: "bad"}).Error())
	assert.Equal(t, "c.json (line 3, column 4): bad", (&ConfigError{Path: "c.json", Line: 3, Column: 4, Message: "bad"}).Error())
	assert.Equal(t, "c.yaml (line 3): bad", (&ConfigError{Path: "c.yaml", Line: 3, Message: "bad"}).Error())
}

package cliconfig

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileNames are the names searched for in the working directory (in order).
var ConfigFileNames = []string{"fishem_config.json", "fishem_config.yaml", "fishem_config.yml"}

// FindConfigFile returns the first config file found in dir, or "" if none.
func FindConfigFile(dir string) (string, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", nil
}

// GetConfigSearchPaths returns the paths that will be searched in dir.
func GetConfigSearchPaths(dir string) []string {
	paths := make([]string, len(ConfigFileNames))
	for i, name := range ConfigFileNames {
		paths[i] = filepath.Join(dir, name)
	}
	return paths
}

// LoadConfigFile loads a CLIConfig from a JSON or YAML file. The keys present
// in the file are recorded in SetFields.
func LoadConfigFile(path string) (*CLIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg *CLIConfig
	if strings.EqualFold(filepath.Ext(path), ".json") {
		cfg, err = parseJSON(path, data)
	} else {
		cfg, err = parseYAML(path, data)
	}
	if err != nil {
		return nil, err
	}

	cfg.Sources = make(map[string]string)
	return cfg, nil
}

func parseJSON(path string, data []byte) (*CLIConfig, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			line, col := FindLineColumn(data, syntaxErr.Offset)
			return nil, &ConfigError{Path: path, Line: line, Column: col, Message: syntaxErr.Error()}
		}
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}

	var cfg CLIConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			line, col := FindLineColumn(data, typeErr.Offset)
			return nil, &ConfigError{Path: path, Line: line, Column: col, Message: typeErr.Error()}
		}
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}

	cfg.SetFields = make(map[string]bool, len(keys))
	for k := range keys {
		cfg.SetFields[k] = true
	}
	return &cfg, nil
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func parseYAML(path string, data []byte) (*CLIConfig, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, yamlError(path, err)
	}

	var cfg CLIConfig
	if len(root.Content) == 0 {
		cfg.SetFields = map[string]bool{}
		return &cfg, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, &ConfigError{Path: path, Line: doc.Line, Column: doc.Column, Message: "config must be a mapping"}
	}
	if err := doc.Decode(&cfg); err != nil {
		return nil, yamlError(path, err)
	}

	cfg.SetFields = make(map[string]bool, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		cfg.SetFields[doc.Content[i].Value] = true
	}
	return &cfg, nil
}

func yamlError(path string, err error) *ConfigError {
	cerr := &ConfigError{Path: path, Message: err.Error()}
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		cerr.Line, _ = strconv.Atoi(m[1])
	}
	return cerr
}

// ConfigError represents a configuration file error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return e.Path + " (line " + strconv.Itoa(e.Line) + ", column " + strconv.Itoa(e.Column) + "): " + e.Message
	case e.Line > 0:
		return e.Path + " (line " + strconv.Itoa(e.Line) + "): " + e.Message
	}
	return e.Path + ": " + e.Message
}

// FindLineColumn finds the line and column number for a byte offset.
func FindLineColumn(data []byte, offset int64) (line, col int) {
	line = 1
	col = 1
	for i := int64(0); i < offset && int(i) < len(data); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// LoadAll loads configuration from defaults, the config file and the
// environment, in increasing precedence. configPath names an explicit
// config file; when empty, dir is searched. Flags are applied by the caller.
func LoadAll(configPath, dir string) (*CLIConfig, error) {
	cfg := NewDefault()

	path := configPath
	if path == "" {
		found, err := FindConfigFile(dir)
		if err != nil {
			return nil, err
		}
		path = found
	}

	if path != "" {
		fileCfg, err := LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		MergeConfig(cfg, fileCfg, SourceFile)
		cfg.ConfigFile = path
		cfg.Sources["configFile"] = SourceFile
	}

	if err := LoadEnvConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

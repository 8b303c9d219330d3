// Package cliconfig provides configuration types and loading for the fishem CLI.
package cliconfig

// CLIConfig represents the complete configuration for the fishem CLI.
// Configuration values can come from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Config file (fishem_config.json/.yaml/.yml in the working directory, or --config)
// 4. Default values (lowest priority)
type CLIConfig struct {
	// Resource tree persistence
	IFish    string `yaml:"ifish,omitempty" json:"ifish,omitempty"`
	OFish    string `yaml:"ofish,omitempty" json:"ofish,omitempty"`
	IMockup  string `yaml:"imockup,omitempty" json:"imockup,omitempty"`
	OMockup  string `yaml:"omockup,omitempty" json:"omockup,omitempty"`
	LastFish string `yaml:"lastfish" json:"lastfish"`

	// Server settings
	Port         int    `yaml:"port" json:"port"`
	HTTPS        bool   `yaml:"https" json:"https"`
	HTTPSPort    int    `yaml:"httpsPort" json:"httpsPort"`
	ConfigFile   string `yaml:"configFile,omitempty" json:"configFile,omitempty"`
	ReadTimeout  int    `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout" json:"writeTimeout"`

	// TLS settings
	CertFile string `yaml:"certFile,omitempty" json:"certFile,omitempty"`
	KeyFile  string `yaml:"keyFile,omitempty" json:"keyFile,omitempty"`

	// Logging settings
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`
	LogFile   string `yaml:"logFile,omitempty" json:"logFile,omitempty"`

	// Source tracks where each value came from (for debugging)
	Sources map[string]string `yaml:"-" json:"-"`

	// SetFields records which keys were present in a loaded file, so an
	// explicit false or empty string still overrides the default.
	SetFields map[string]bool `yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

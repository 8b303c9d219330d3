package cliconfig

// DefaultPort is the default HTTP port.
const DefaultPort = 5000

// DefaultHTTPSPort is the default HTTPS port, used only when HTTPS is on.
const DefaultHTTPSPort = 5443

// DefaultLastFish is the snapshot written on every shutdown.
const DefaultLastFish = "lastfish.json"

// DefaultReadTimeout is the default read timeout in seconds.
const DefaultReadTimeout = 30

// DefaultWriteTimeout is the default write timeout in seconds.
const DefaultWriteTimeout = 30

// DefaultLogLevel is the default log level.
const DefaultLogLevel = "info"

// DefaultLogFormat is the default log format.
const DefaultLogFormat = "text"

// NewDefault creates a new CLIConfig with default values.
func NewDefault() *CLIConfig {
	cfg := &CLIConfig{
		LastFish:     DefaultLastFish,
		Port:         DefaultPort,
		HTTPSPort:    DefaultHTTPSPort,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
		Sources:      make(map[string]string),
	}

	for _, key := range []string{
		"lastfish", "port", "https", "httpsPort", "readTimeout",
		"writeTimeout", "logLevel", "logFormat",
	} {
		cfg.Sources[key] = SourceDefault
	}

	return cfg
}

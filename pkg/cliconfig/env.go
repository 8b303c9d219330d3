package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variable names
const (
	EnvIFish     = "FISHEM_IFISH"
	EnvOFish     = "FISHEM_OFISH"
	EnvIMockup   = "FISHEM_IMOCKUP"
	EnvOMockup   = "FISHEM_OMOCKUP"
	EnvLastFish  = "FISHEM_LASTFISH"
	EnvPort      = "FISHEM_PORT"
	EnvHTTPS     = "FISHEM_HTTPS"
	EnvHTTPSPort = "FISHEM_HTTPS_PORT"
	EnvLogLevel  = "FISHEM_LOG_LEVEL"
	EnvLogFormat = "FISHEM_LOG_FORMAT"
)

// LoadEnvConfig loads configuration from environment variables.
// It only sets values that are present in the environment. A variable that
// is set but empty counts as present, so FISHEM_LASTFISH= disables the
// shutdown snapshot.
func LoadEnvConfig(cfg *CLIConfig) error {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	strs := []struct {
		env string
		key string
		dst *string
	}{
		{EnvIFish, "ifish", &cfg.IFish},
		{EnvOFish, "ofish", &cfg.OFish},
		{EnvIMockup, "imockup", &cfg.IMockup},
		{EnvOMockup, "omockup", &cfg.OMockup},
		{EnvLastFish, "lastfish", &cfg.LastFish},
		{EnvLogLevel, "logLevel", &cfg.LogLevel},
		{EnvLogFormat, "logFormat", &cfg.LogFormat},
	}
	for _, s := range strs {
		if v, ok := os.LookupEnv(s.env); ok {
			*s.dst = v
			cfg.Sources[s.key] = SourceEnv
		}
	}

	ints := []struct {
		env string
		key string
		dst *int
	}{
		{EnvPort, "port", &cfg.Port},
		{EnvHTTPSPort, "httpsPort", &cfg.HTTPSPort},
	}
	for _, n := range ints {
		v := os.Getenv(n.env)
		if v == "" {
			continue
		}
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", n.env, v)
		}
		*n.dst = port
		cfg.Sources[n.key] = SourceEnv
	}

	if v := os.Getenv(EnvHTTPS); v != "" {
		enabled, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHTTPS, err)
		}
		cfg.HTTPS = enabled
		cfg.Sources["https"] = SourceEnv
	}

	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}

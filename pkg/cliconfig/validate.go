package cliconfig

import (
	"errors"
	"fmt"
)

const maxTimeoutSeconds = 3600

// Validate checks value ranges. A zero port asks the OS for a free one.
func (c *CLIConfig) Validate() error {
	var errs []error

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range (0-65535)", c.Port))
	}
	if c.HTTPSPort < 0 || c.HTTPSPort > 65535 {
		errs = append(errs, fmt.Errorf("httpsPort %d is out of range (0-65535)", c.HTTPSPort))
	}
	if c.ReadTimeout < 0 || c.ReadTimeout > maxTimeoutSeconds {
		errs = append(errs, fmt.Errorf("readTimeout %d is out of range (0-%d)", c.ReadTimeout, maxTimeoutSeconds))
	}
	if c.WriteTimeout < 0 || c.WriteTimeout > maxTimeoutSeconds {
		errs = append(errs, fmt.Errorf("writeTimeout %d is out of range (0-%d)", c.WriteTimeout, maxTimeoutSeconds))
	}
	if c.HTTPS && c.Port != 0 && c.Port == c.HTTPSPort {
		errs = append(errs, errors.New("port and httpsPort cannot be the same"))
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		errs = append(errs, errors.New("certFile and keyFile must be given together"))
	}

	return errors.Join(errs...)
}

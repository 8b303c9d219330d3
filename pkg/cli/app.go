package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/getmockd/fishem/pkg/cliconfig"
	"github.com/getmockd/fishem/pkg/engine"
	"github.com/getmockd/fishem/pkg/fish"
	"github.com/getmockd/fishem/pkg/logging"
	"github.com/getmockd/fishem/pkg/mockup"
	"github.com/getmockd/fishem/pkg/redfish"
	"github.com/getmockd/fishem/pkg/snapshot"
	fishtls "github.com/getmockd/fishem/pkg/tls"
	"github.com/spf13/cobra"
)

// App owns one emulator session: the store, its listeners, and the files
// it is loaded from and saved to.
type App struct {
	cfg    *cliconfig.CLIConfig
	log    *slog.Logger
	store  *fish.Store
	codec  *mockup.Codec
	server *engine.Server

	// serveErrs reports listener failures from server; nil before Start.
	serveErrs <-chan error
}

// NewApp creates an App with an empty store.
func NewApp(cfg *cliconfig.CLIConfig, log *slog.Logger) *App {
	if log == nil {
		log = logging.Nop()
	}
	return &App{
		cfg:   cfg,
		log:   log,
		store: fish.NewStore(),
		codec: mockup.New(mockup.WithLogger(log)),
	}
}

// Store returns the session's resource store.
func (a *App) Store() *fish.Store {
	return a.store
}

// Server returns the running server, or nil before Start.
func (a *App) Server() *engine.Server {
	return a.server
}

// Load seeds the store, then imports the input fish file and the input
// mockup. Any import failure is returned; the caller must not serve.
func (a *App) Load() error {
	redfish.Seed(a.store)

	if a.cfg.IFish != "" {
		if err := snapshot.ReadFile(a.cfg.IFish, a.store); err != nil {
			return fmt.Errorf("loading fish file: %w", err)
		}
		a.log.Info("loaded fish file", "path", a.cfg.IFish, "resources", a.store.Len())
	}

	if a.cfg.IMockup != "" {
		if err := a.codec.Import(a.cfg.IMockup, a.store); err != nil {
			return fmt.Errorf("loading mockup: %w", err)
		}
		a.log.Info("loaded mockup", "dir", a.cfg.IMockup, "resources", a.store.Len())
	}

	return nil
}

// Start binds the HTTP listener, and the HTTPS one when enabled.
func (a *App) Start() error {
	registry, err := redfish.DefaultRegistry()
	if err != nil {
		return err
	}
	handler := redfish.NewHandler(a.store, registry, redfish.WithLogger(a.log))

	cfg := engine.Config{
		HTTPAddr:     listenAddr(a.cfg.Port),
		ReadTimeout:  time.Duration(a.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.cfg.WriteTimeout) * time.Second,
	}
	opts := []engine.ServerOption{engine.WithLogger(a.log)}

	if a.cfg.HTTPS {
		tlsConfig, err := fishtls.ServerConfig(a.cfg.CertFile, a.cfg.KeyFile)
		if err != nil {
			return fmt.Errorf("configuring TLS: %w", err)
		}
		if a.cfg.CertFile == "" {
			a.log.Warn("serving HTTPS with a generated self-signed certificate")
		}
		cfg.HTTPSAddr = listenAddr(a.cfg.HTTPSPort)
		opts = append(opts, engine.WithTLS(tlsConfig))
	}

	a.server = engine.NewServer(cfg, handler, opts...)
	a.serveErrs = a.server.Errors()
	return a.server.Start()
}

// Run blocks until ctx is done or a listener fails, then shuts down. A
// listener failure is returned together with any shutdown error.
func (a *App) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
		return a.Shutdown()
	case err := <-a.serveErrs:
		a.log.Error("server failed, shutting down", "error", err)
		return errors.Join(err, a.Shutdown())
	}
}

// Shutdown stops the listeners and saves the tree. Every step runs even
// when an earlier one fails; the failures are joined.
func (a *App) Shutdown() error {
	var errs []error
	if a.server != nil {
		if err := a.server.Stop(); err != nil {
			a.log.Error("server shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}
	if err := a.Save(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Save writes the last-fish snapshot, the output fish file and the output
// mockup, in that order, skipping any that are not configured.
func (a *App) Save() error {
	var errs []error

	if a.cfg.LastFish != "" {
		if err := snapshot.WriteFile(a.cfg.LastFish, a.store); err != nil {
			a.log.Error("failed to write last fish file", "path", a.cfg.LastFish, "error", err)
			errs = append(errs, fmt.Errorf("writing last fish file: %w", err))
		} else {
			a.log.Info("wrote last fish file", "path", a.cfg.LastFish)
		}
	}

	if a.cfg.OFish != "" {
		if err := snapshot.WriteFile(a.cfg.OFish, a.store); err != nil {
			a.log.Error("failed to write fish file", "path", a.cfg.OFish, "error", err)
			errs = append(errs, fmt.Errorf("writing fish file: %w", err))
		} else {
			a.log.Info("wrote fish file", "path", a.cfg.OFish)
		}
	}

	if a.cfg.OMockup != "" {
		if err := a.codec.Export(a.cfg.OMockup, a.store); err != nil {
			a.log.Error("failed to write mockup", "dir", a.cfg.OMockup, "error", err)
			errs = append(errs, fmt.Errorf("writing mockup: %w", err))
		} else {
			a.log.Info("wrote mockup", "dir", a.cfg.OMockup)
		}
	}

	return errors.Join(errs...)
}

func listenAddr(port int) string {
	return net.JoinHostPort("", strconv.Itoa(port))
}

// openLogger builds the session logger from the resolved config.
func openLogger(cmd *cobra.Command, cfg *cliconfig.CLIConfig) (*slog.Logger, func() error, error) {
	return logging.Open(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: cmd.ErrOrStderr(),
		File:   cfg.LogFile,
	})
}

package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/getmockd/fishem/pkg/cliconfig"
	"github.com/spf13/cobra"
)

// serveFlagVals is the package-level instance bound to cobra flags.
var serveFlagVals serveFlags

// serveCmd represents the serve command, the emulator itself.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the emulator (default command)",
	Long: `Run the emulator in the foreground until interrupted.

Startup order: built-in seed, then the input fish file, then the input
mockup. Either input failing to load stops startup.

On SIGINT or SIGTERM the listeners are stopped and the tree is written to
the last-fish file, the output fish file and the output mockup directory.
A failed write is logged and the remaining ones still run.`,
	Example: `  # Serve a DMTF mockup on the default port
  fishem serve --imockup ./public-rackmount1

  # Resume from the previous session and save a mockup on exit
  fishem serve --ifish lastfish.json --omockup ./out

  # Serve HTTPS with a generated self-signed certificate
  fishem serve --https --https-port 5443

  # Serve HTTPS with your own certificate
  fishem serve --https --tls-cert server.crt --tls-key server.key`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, &serveFlagVals)
	},
}

// serveFlags holds all parsed command-line flags for the serve command.
type serveFlags struct {
	ifish        string
	ofish        string
	imockup      string
	omockup      string
	lastFish     string
	port         int
	https        bool
	httpsPort    int
	tlsCert      string
	tlsKey       string
	readTimeout  int
	writeTimeout int
}

// serveFlagKeys maps serve flag names to config keys.
var serveFlagKeys = map[string]string{
	"ifish":         "ifish",
	"ofish":         "ofish",
	"imockup":       "imockup",
	"omockup":       "omockup",
	"last-fish":     "lastfish",
	"port":          "port",
	"https":         "https",
	"https-port":    "httpsPort",
	"tls-cert":      "certFile",
	"tls-key":       "keyFile",
	"read-timeout":  "readTimeout",
	"write-timeout": "writeTimeout",
}

// globalFlagKeys maps persistent flag names to config keys.
var globalFlagKeys = map[string]string{
	"log-level":  "logLevel",
	"log-format": "logFormat",
	"log-file":   "logFile",
}

func registerServeFlags(cmd *cobra.Command, f *serveFlags) {
	// Resource tree flags
	cmd.Flags().StringVar(&f.ifish, "ifish", "", "Input fish file (JSON snapshot) loaded at startup")
	cmd.Flags().StringVar(&f.ofish, "ofish", "", "Output fish file written on shutdown")
	cmd.Flags().StringVar(&f.imockup, "imockup", "", "Input mockup directory loaded at startup")
	cmd.Flags().StringVar(&f.omockup, "omockup", "", "Output mockup directory written on shutdown (replaced)")
	cmd.Flags().StringVar(&f.lastFish, "last-fish", cliconfig.DefaultLastFish, `Snapshot written on every shutdown ("" disables)`)

	// Server flags
	cmd.Flags().IntVarP(&f.port, "port", "p", cliconfig.DefaultPort, "HTTP server port")
	cmd.Flags().IntVar(&f.readTimeout, "read-timeout", cliconfig.DefaultReadTimeout, "Read timeout in seconds")
	cmd.Flags().IntVar(&f.writeTimeout, "write-timeout", cliconfig.DefaultWriteTimeout, "Write timeout in seconds")

	// TLS flags
	cmd.Flags().BoolVar(&f.https, "https", false, "Also serve HTTPS")
	cmd.Flags().IntVar(&f.httpsPort, "https-port", cliconfig.DefaultHTTPSPort, "HTTPS server port")
	cmd.Flags().StringVar(&f.tlsCert, "tls-cert", "", "Path to TLS certificate file (default: self-signed)")
	cmd.Flags().StringVar(&f.tlsKey, "tls-key", "", "Path to TLS private key file")
}

func init() {
	registerServeFlags(serveCmd, &serveFlagVals)
	rootCmd.AddCommand(serveCmd)
}

// toConfig returns the flag values as a config layer.
func (f *serveFlags) toConfig() *cliconfig.CLIConfig {
	return &cliconfig.CLIConfig{
		IFish:        f.ifish,
		OFish:        f.ofish,
		IMockup:      f.imockup,
		OMockup:      f.omockup,
		LastFish:     f.lastFish,
		Port:         f.port,
		HTTPS:        f.https,
		HTTPSPort:    f.httpsPort,
		CertFile:     f.tlsCert,
		KeyFile:      f.tlsKey,
		ReadTimeout:  f.readTimeout,
		WriteTimeout: f.writeTimeout,
	}
}

// resolveConfig layers defaults, config file, environment and the flags the
// user actually set. serve may be nil for commands without serve flags.
func resolveConfig(cmd *cobra.Command, g *globalFlags, serve *serveFlags) (*cliconfig.CLIConfig, error) {
	cfg, err := cliconfig.LoadAll(g.configFile, ".")
	if err != nil {
		return nil, err
	}

	layer := &cliconfig.CLIConfig{
		LogLevel:  g.logLevel,
		LogFormat: g.logFormat,
		LogFile:   g.logFile,
	}
	keys := globalFlagKeys
	if serve != nil {
		layer = serve.toConfig()
		layer.LogLevel, layer.LogFormat, layer.LogFile = g.logLevel, g.logFormat, g.logFile
		keys = mergeKeys(globalFlagKeys, serveFlagKeys)
	}

	layer.SetFields = make(map[string]bool)
	for name, key := range keys {
		if cmd.Flags().Changed(name) {
			layer.SetFields[key] = true
		}
	}
	cliconfig.MergeConfig(cfg, layer, cliconfig.SourceFlag)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeKeys(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func runServe(cmd *cobra.Command, f *serveFlags) error {
	cfg, err := resolveConfig(cmd, &globalFlagVals, f)
	if err != nil {
		return err
	}

	log, closeLog, err := openLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	app := NewApp(cfg, log)
	if err := app.Load(); err != nil {
		return err
	}
	if err := app.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}

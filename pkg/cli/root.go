package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	globalFlagVals globalFlags

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// globalFlags holds the flags shared by every command.
type globalFlags struct {
	configFile string
	logLevel   string
	logFormat  string
	logFile    string
}

// rootCmd represents the base command when called without any subcommands.
// With no subcommand it behaves like 'fishem serve'.
var rootCmd = &cobra.Command{
	Use:   "fishem",
	Short: "fishem is a Redfish and Swordfish API emulator",
	Long: `fishem serves an in-memory Redfish/Swordfish resource tree over HTTP.

The tree can be loaded from a fish file (a JSON snapshot) or a mockup
directory, changed through the API, and written back out on shutdown.

Configuration can be provided via flags, environment variables (FISHEM_*),
or a fishem_config.json / fishem_config.yaml file in the working directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, &serveFlagVals)
	},
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	os.Exit(Main())
}

// Main runs the root command with os.Args and returns the exit code.
func Main() int {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func init() {
	f := &globalFlagVals
	rootCmd.PersistentFlags().StringVarP(&f.configFile, "config", "c", "", "Path to fishem config file (default: fishem_config.{json,yaml,yml})")
	rootCmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&f.logFormat, "log-format", "", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&f.logFile, "log-file", "", "Also write logs to this file")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("fishem {{.Version}}\n")

	registerServeFlags(rootCmd, &serveFlagVals)
}

package cli

import (
	"io"

	"github.com/getmockd/fishem/pkg/cli/internal/output"
	"github.com/getmockd/fishem/pkg/cliconfig"
	"github.com/spf13/cobra"
)

var configJSON bool

// ConfigOutput is the document printed by 'fishem config'.
type ConfigOutput struct {
	Config  *cliconfig.CLIConfig `json:"config" yaml:"config"`
	Sources map[string]string    `json:"sources" yaml:"sources"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration and where each value came from",
	Long: `Show the configuration 'fishem serve' would run with after applying
defaults, the config file, FISHEM_* environment variables and flags.

Serve-only flags are not accepted here; pass them to 'fishem serve'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd, &globalFlagVals, nil)
		if err != nil {
			return err
		}
		return writeConfig(cmd.OutOrStdout(), cfg, configJSON)
	},
}

func init() {
	configCmd.Flags().BoolVar(&configJSON, "json", false, "Output in JSON format (default: YAML)")
	rootCmd.AddCommand(configCmd)
}

func writeConfig(w io.Writer, cfg *cliconfig.CLIConfig, asJSON bool) error {
	out := ConfigOutput{Config: cfg, Sources: cfg.Sources}
	if asJSON {
		return output.JSON(w, out)
	}
	return output.YAML(w, out)
}

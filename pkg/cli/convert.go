package cli

import (
	"errors"

	"github.com/getmockd/fishem/pkg/cliconfig"
	"github.com/spf13/cobra"
)

var convertFlagVals convertFlags

type convertFlags struct {
	ifish   string
	imockup string
	ofish   string
	omockup string
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert between fish files and mockup directories",
	Long: `Load a fish file and/or a mockup directory and write the resulting tree
as a fish file and/or a mockup directory, without starting a server.

Inputs load in the same order as 'fishem serve': the fish file first,
then the mockup. No last-fish snapshot is written.`,
	Example: `  # Turn a DMTF mockup into a fish file
  fishem convert --imockup ./public-rackmount1 --ofish rackmount.json

  # Turn a fish file back into a mockup tree
  fishem convert --ifish lastfish.json --omockup ./out`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd, &globalFlagVals, nil)
		if err != nil {
			return err
		}
		log, closeLog, err := openLogger(cmd, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeLog() }()

		convertCfg, err := convertFlagVals.toConfig(cfg)
		if err != nil {
			return err
		}
		return runConvert(NewApp(convertCfg, log))
	},
}

func init() {
	f := &convertFlagVals
	convertCmd.Flags().StringVar(&f.ifish, "ifish", "", "Input fish file")
	convertCmd.Flags().StringVar(&f.imockup, "imockup", "", "Input mockup directory")
	convertCmd.Flags().StringVar(&f.ofish, "ofish", "", "Output fish file")
	convertCmd.Flags().StringVar(&f.omockup, "omockup", "", "Output mockup directory (replaced)")
	rootCmd.AddCommand(convertCmd)
}

// toConfig builds the conversion config. Only the flags of this command
// choose files; the config file and environment never add outputs here.
func (f *convertFlags) toConfig(base *cliconfig.CLIConfig) (*cliconfig.CLIConfig, error) {
	if f.ifish == "" && f.imockup == "" {
		return nil, errors.New("convert needs --ifish or --imockup")
	}
	if f.ofish == "" && f.omockup == "" {
		return nil, errors.New("convert needs --ofish or --omockup")
	}
	cfg := *base
	cfg.IFish, cfg.IMockup = f.ifish, f.imockup
	cfg.OFish, cfg.OMockup = f.ofish, f.omockup
	cfg.LastFish = ""
	return &cfg, nil
}

func runConvert(app *App) error {
	if err := app.Load(); err != nil {
		return err
	}
	return app.Save()
}

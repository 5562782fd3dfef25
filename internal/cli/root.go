package cli

import (
	"fmt"

	"github.com/mgpai22/tiergrid/internal/config"
	"github.com/mgpai22/tiergrid/internal/logging"
	"github.com/spf13/cobra"
)

// state shared by every subcommand of one invocation
type app struct {
	verbose    bool
	configPath string
	logger     *logging.Logger
	config     *config.Config
}

func (a *app) close() {
	if a.logger != nil {
		a.logger.Close()
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tiergrid",
		Short: "Convert annotations between ELAN EAF and Praat TextGrid",
		Long: `Tiergrid converts time-aligned annotation files between the ELAN
EAF format and Praat TextGrid files, in either direction.

TextGrids can be read and written in the short or long text syntax.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.logger = logging.NewLogger(a.verbose)
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.config = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().
		BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&a.configPath, "config", "", "YAML file with default options")

	rootCmd.AddCommand(newEAF2TGCmd(a), newTG2EAFCmd(a), newConvertCmd(a))
	return rootCmd
}

func Execute() error {
	a := &app{}
	defer a.close()

	rootCmd := newRootCmd(a)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

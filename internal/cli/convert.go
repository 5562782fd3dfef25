package cli

import (
	"github.com/mgpai22/tiergrid/internal/convert"
	"github.com/spf13/cobra"
)

func newConvertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert a file, picking the direction from its extension",
		Long: `Convert a file, picking the direction from its extension.

.eaf and .xml inputs are converted to TextGrid; .TextGrid and .tg inputs
are converted to EAF. Without an output path the result is written next
to the input with the target extension. Other options come from the
--config file.

Examples:
  tiergrid convert session.eaf
  tiergrid convert session.eaf session.TextGrid
  tiergrid convert session.TextGrid session.eaf --variant long`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := convert.DirectionFor(args[0])
			if err != nil {
				return err
			}
			return a.convert(cmd, dir, args)
		},
	}

	addVariantFlag(cmd)
	return cmd
}

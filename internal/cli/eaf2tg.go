package cli

import (
	"github.com/mgpai22/tiergrid/internal/convert"
	"github.com/spf13/cobra"
)

func newEAF2TGCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eaf2tg [input.eaf] [output.TextGrid]",
		Short: "Convert an ELAN EAF file to a Praat TextGrid",
		Long: `Convert an ELAN EAF file to a Praat TextGrid.

Every EAF tier becomes an interval tier. Annotations whose time slots
cannot be resolved are skipped and reported as warnings. When the output
path is omitted, the input path is reused with a .TextGrid extension.

Tiers keep only the annotated intervals by default, bounded by their first
and last annotation. Praat itself expects each interval tier to cover the
whole grid without holes; pass --fill-gaps (or set fill_gaps in the config
file) to pad tiers with empty intervals.

Examples:
  tiergrid eaf2tg session.eaf
  tiergrid eaf2tg session.eaf session.TextGrid
  tiergrid eaf2tg session.eaf session.TextGrid --variant long
  tiergrid eaf2tg session.xml out/session.TextGrid --fill-gaps`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.convert(cmd, convert.ToTextGrid, args)
		},
	}

	addVariantFlag(cmd)
	cmd.Flags().
		Bool("fill-gaps", false, "Pad tiers with empty intervals so each covers the whole grid, as Praat expects (off by default)")
	return cmd
}

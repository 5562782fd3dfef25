package cli

import (
	"github.com/mgpai22/tiergrid/internal/convert"
	"github.com/spf13/cobra"
)

func newTG2EAFCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tg2eaf [input.TextGrid] [output.eaf]",
		Short: "Convert a Praat TextGrid to an ELAN EAF file",
		Long: `Convert a Praat TextGrid to an ELAN EAF file.

Every interval tier becomes an EAF tier with time-aligned annotations.
Point tiers have no EAF counterpart and are skipped. When the output path
is omitted, the input path is reused with an .eaf extension.

Examples:
  tiergrid tg2eaf session.TextGrid
  tiergrid tg2eaf session.TextGrid session.eaf
  tiergrid tg2eaf session.TextGrid session.eaf --variant long
  tiergrid tg2eaf session.tg session.eaf --drop-empty --author "Field Team"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.convert(cmd, convert.ToEAF, args)
		},
	}

	addVariantFlag(cmd)
	cmd.Flags().
		Bool("drop-empty", false, "Leave intervals with blank labels out of the EAF")
	cmd.Flags().
		String("author", "", "AUTHOR attribute of the EAF document")
	return cmd
}

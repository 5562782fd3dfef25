package cli

import (
	"fmt"
	"path/filepath"

	"github.com/mgpai22/tiergrid/internal/convert"
	"github.com/mgpai22/tiergrid/internal/eaf"
	"github.com/mgpai22/tiergrid/internal/textgrid"
	"github.com/spf13/cobra"
)

// conversion settings after config defaults and explicit flags are merged
type settings struct {
	variant   textgrid.Syntax
	author    string
	fillGaps  bool
	dropEmpty bool
}

func (a *app) settings(cmd *cobra.Command) (settings, error) {
	s := settings{
		author:    a.config.Author,
		fillGaps:  a.config.FillGaps,
		dropEmpty: a.config.DropEmpty,
	}

	variant := a.config.Variant
	flags := cmd.Flags()
	if flags.Changed("variant") {
		variant, _ = flags.GetString("variant")
	}
	if flags.Changed("author") {
		s.author, _ = flags.GetString("author")
	}
	if flags.Changed("fill-gaps") {
		s.fillGaps, _ = flags.GetBool("fill-gaps")
	}
	if flags.Changed("drop-empty") {
		s.dropEmpty, _ = flags.GetBool("drop-empty")
	}

	syntax, err := textgrid.ParseSyntax(variant)
	if err != nil {
		return settings{}, err
	}
	s.variant = syntax
	return s, nil
}

func (a *app) convert(cmd *cobra.Command, dir convert.Direction, args []string) error {
	input := args[0]
	if err := convert.CheckInputExtension(dir, input); err != nil {
		return err
	}
	output := convert.OutputPathFor(dir, input)
	if len(args) > 1 {
		output = args[1]
	}

	s, err := a.settings(cmd)
	if err != nil {
		return err
	}

	encoder := eaf.DefaultEncoder()
	encoder.Author = s.author
	opts := convert.Options{
		Map: convert.MapOptions{
			FillGaps:  s.fillGaps,
			DropEmpty: s.dropEmpty,
		},
		Encoder: encoder,
		Logger:  a.logger,
	}

	var report *convert.Report
	var kind, items string
	switch dir {
	case convert.ToTextGrid:
		kind, items = "TextGrid", "Intervals"
		report, err = convert.EAFToTextGridFile(input, output, s.variant, opts)
	default:
		kind, items = "EAF", "Annotations"
		report, err = convert.TextGridToEAFFile(input, output, s.variant, opts)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	absOutput, _ := filepath.Abs(output)
	fmt.Fprintf(out, "%s written successfully: %s\n", kind, absOutput)
	fmt.Fprintf(out, "  Tiers: %d\n", report.Tiers)
	fmt.Fprintf(out, "  %s: %d\n", items, report.Items)
	if n := len(report.Skipped); n > 0 {
		fmt.Fprintf(out, "  Skipped annotations: %d\n", n)
	}
	if n := len(report.SkippedTiers); n > 0 {
		fmt.Fprintf(out, "  Skipped point tiers: %d\n", n)
	}
	return nil
}

func addVariantFlag(cmd *cobra.Command) {
	cmd.Flags().
		String("variant", "short", "TextGrid syntax (short, long)")
}

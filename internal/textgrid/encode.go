package textgrid

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// writes tg in the given syntax
func Encode(w io.Writer, tg *TextGrid, syntax Syntax) error {
	switch syntax {
	case SyntaxShort:
		return EncodeShort(w, tg)
	case SyntaxLong:
		return EncodeLong(w, tg)
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedSyntax, syntax)
	}
}

const preamble = "File type = \"ooTextFile\"\nObject class = \"TextGrid\"\n\n"

func EncodeShort(w io.Writer, tg *TextGrid) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(preamble)
	fmt.Fprintf(bw, "%s\n%s\n", formatNumber(tg.XMin), formatNumber(tg.XMax))

	if len(tg.Tiers) == 0 {
		bw.WriteString("<absent>\n")
		return bw.Flush()
	}
	fmt.Fprintf(bw, "<exists>\n%d\n", len(tg.Tiers))

	for _, tier := range tg.Tiers {
		xmin, xmax := tier.Bounds()
		fmt.Fprintf(bw, "%s\n%s\n%s\n%s\n%d\n",
			quote(tier.class()),
			quote(tier.TierName()),
			formatNumber(xmin),
			formatNumber(xmax),
			tier.Len(),
		)
		switch t := tier.(type) {
		case *IntervalTier:
			for _, iv := range t.Intervals {
				fmt.Fprintf(bw, "%s\n%s\n%s\n",
					formatNumber(iv.Start),
					formatNumber(iv.End),
					quote(iv.Label),
				)
			}
		case *TextTier:
			for _, p := range t.Points {
				fmt.Fprintf(bw, "%s\n%s\n", formatNumber(p.Time), quote(p.Label))
			}
		}
	}
	return bw.Flush()
}

// long syntax, laid out the way Praat itself writes it
func EncodeLong(w io.Writer, tg *TextGrid) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(preamble)
	fmt.Fprintf(bw, "xmin = %s \nxmax = %s \n", formatNumber(tg.XMin), formatNumber(tg.XMax))

	if len(tg.Tiers) == 0 {
		bw.WriteString("tiers? <absent> \n")
		return bw.Flush()
	}
	fmt.Fprintf(bw, "tiers? <exists> \nsize = %d \nitem []: \n", len(tg.Tiers))

	for i, tier := range tg.Tiers {
		xmin, xmax := tier.Bounds()
		fmt.Fprintf(bw, "    item [%d]:\n", i+1)
		fmt.Fprintf(bw, "        class = %s \n", quote(tier.class()))
		fmt.Fprintf(bw, "        name = %s \n", quote(tier.TierName()))
		fmt.Fprintf(bw, "        xmin = %s \n", formatNumber(xmin))
		fmt.Fprintf(bw, "        xmax = %s \n", formatNumber(xmax))

		switch t := tier.(type) {
		case *IntervalTier:
			fmt.Fprintf(bw, "        intervals: size = %d \n", len(t.Intervals))
			for j, iv := range t.Intervals {
				fmt.Fprintf(bw, "        intervals [%d]:\n", j+1)
				fmt.Fprintf(bw, "            xmin = %s \n", formatNumber(iv.Start))
				fmt.Fprintf(bw, "            xmax = %s \n", formatNumber(iv.End))
				fmt.Fprintf(bw, "            text = %s \n", quote(iv.Label))
			}
		case *TextTier:
			fmt.Fprintf(bw, "        points: size = %d \n", len(t.Points))
			for j, p := range t.Points {
				fmt.Fprintf(bw, "        points [%d]:\n", j+1)
				fmt.Fprintf(bw, "            number = %s \n", formatNumber(p.Time))
				fmt.Fprintf(bw, "            mark = %s \n", quote(p.Label))
			}
		}
	}
	return bw.Flush()
}

// shortest decimal form that parses back to v
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

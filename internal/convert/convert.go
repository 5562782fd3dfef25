package convert

import (
	"fmt"
	"io"

	"github.com/mgpai22/tiergrid/internal/eaf"
	"github.com/mgpai22/tiergrid/internal/logging"
	"github.com/mgpai22/tiergrid/internal/textgrid"
)

type Options struct {
	Map MapOptions
	// EAF writer; DefaultEncoder when nil
	Encoder *eaf.Encoder
	Logger  *logging.Logger
}

func (o Options) logger() *logging.Logger {
	if o.Logger == nil {
		return logging.Nop()
	}
	return o.Logger
}

func (o Options) encoder() *eaf.Encoder {
	if o.Encoder == nil {
		return eaf.DefaultEncoder()
	}
	return o.Encoder
}

// converts an EAF file into a TextGrid written in the given syntax
func EAFToTextGridFile(input, output string, variant textgrid.Syntax, opts Options) (*Report, error) {
	report, err := eafToTextGridFile(input, output, variant, opts)
	return report, wrap(ToTextGrid, err)
}

func eafToTextGridFile(input, output string, variant textgrid.Syntax, opts Options) (*Report, error) {
	logger := opts.logger()
	if err := checkVariant(variant); err != nil {
		return nil, err
	}

	logger.Infow("Converting EAF to TextGrid",
		"input", input,
		"output", output,
		"variant", variant,
	)

	doc, err := eaf.ReadFile(input)
	if err != nil {
		return nil, err
	}

	logger.Debugw("Parsed EAF",
		"date", doc.Date,
		"media_file", doc.MediaFile,
		"tiers", len(doc.Tiers),
		"time_slots", len(doc.TimeSlots),
		"annotations", doc.AnnotationCount(),
	)
	for _, tier := range doc.Tiers {
		logger.Debugw("EAF tier",
			"tier", tier.ID,
			"participant", tier.Participant,
			"parent", tier.ParentRef,
			"annotations", len(tier.Annotations),
		)
	}

	tg, report, err := EAFToTextGrid(doc, opts.Map)
	if err != nil {
		return nil, err
	}
	logSkipped(logger, report)

	if err := writeAtomic(output, func(w io.Writer) error {
		return textgrid.Encode(w, tg, variant)
	}); err != nil {
		return nil, err
	}

	logger.Infow("Conversion complete",
		"tiers", report.Tiers,
		"intervals", report.Items,
		"skipped", len(report.Skipped),
	)
	return report, nil
}

// converts a TextGrid written in the given syntax into an EAF file
func TextGridToEAFFile(input, output string, variant textgrid.Syntax, opts Options) (*Report, error) {
	report, err := textGridToEAFFile(input, output, variant, opts)
	return report, wrap(ToEAF, err)
}

func textGridToEAFFile(input, output string, variant textgrid.Syntax, opts Options) (*Report, error) {
	logger := opts.logger()
	if err := checkVariant(variant); err != nil {
		return nil, err
	}

	logger.Infow("Converting TextGrid to EAF",
		"input", input,
		"output", output,
		"variant", variant,
	)

	tg, err := textgrid.ReadFile(input, variant)
	if err != nil {
		return nil, err
	}

	logger.Debugw("Parsed TextGrid",
		"tiers", len(tg.Tiers),
		"xmin", tg.XMin,
		"xmax", tg.XMax,
	)

	doc, report, err := TextGridToEAF(tg, opts.Map)
	if err != nil {
		return nil, err
	}
	logSkipped(logger, report)

	encoder := opts.encoder()
	if err := writeAtomic(output, func(w io.Writer) error {
		return encoder.Encode(w, doc)
	}); err != nil {
		return nil, err
	}

	logger.Infow("Conversion complete",
		"tiers", report.Tiers,
		"annotations", report.Items,
		"time_slots", len(doc.TimeSlots),
	)
	return report, nil
}

func checkVariant(variant textgrid.Syntax) error {
	switch variant {
	case textgrid.SyntaxShort, textgrid.SyntaxLong:
		return nil
	default:
		return fmt.Errorf("%w %q: use short or long", ErrUnsupportedVariant, variant)
	}
}

func logSkipped(logger *logging.Logger, report *Report) {
	for _, s := range report.Skipped {
		logger.Warnw("Skipping annotation",
			"tier", s.Tier,
			"annotation", s.AnnotationID,
			"ref", s.Ref,
			"reason", s.Reason,
		)
	}
	for _, name := range report.SkippedTiers {
		logger.Warnw("Skipping point tier", "tier", name)
	}
}

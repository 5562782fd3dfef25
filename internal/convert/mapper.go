// Package convert maps EAF and TextGrid documents onto each other and
// exposes the file-to-file conversions used by the CLI.
package convert

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mgpai22/tiergrid/internal/eaf"
	"github.com/mgpai22/tiergrid/internal/textgrid"
	"github.com/mgpai22/tiergrid/internal/timeslot"
)

// absorbs float error such as 0.29*1000 = 289.99999999999997
const msEpsilon = 1e-6

// 2^63; the first float64 that no longer converts to int64
const maxMillis = 1 << 63

type MapOptions struct {
	// pad interval tiers with empty intervals so each covers the whole grid
	FillGaps bool
	// leave intervals with blank labels out of the EAF output
	DropEmpty bool
}

// what a mapping produced and what it had to leave out
type Report struct {
	Tiers        int
	Items        int
	Skipped      []timeslot.Skipped
	SkippedTiers []string
}

// builds one interval tier per EAF tier
func EAFToTextGrid(doc *eaf.Document, opts MapOptions) (*textgrid.TextGrid, *Report, error) {
	resolver := timeslot.NewResolver(doc.SlotTable())
	index := doc.AnnotationIndex()
	report := &Report{}

	type resolved struct {
		name  string
		spans []timeslot.Span
	}
	tiers := make([]resolved, 0, len(doc.Tiers))
	xmin, xmax := math.Inf(1), math.Inf(-1)

	for _, tier := range doc.Tiers {
		c := resolver.Collect(tier.ID)
		for _, a := range tier.Annotations {
			label := strings.TrimSpace(a.Text())
			switch a := a.(type) {
			case *eaf.AlignedAnnotation:
				c.Add(a.ID, a.StartRef, a.EndRef, label)
			case *eaf.RefAnnotation:
				parent, ok := index[a.ParentRef].(*eaf.AlignedAnnotation)
				if !ok {
					return nil, nil, fmt.Errorf(
						"%w: reference annotation %q on tier %q has no time-aligned parent",
						ErrUnsupportedInput,
						a.ID,
						tier.ID,
					)
				}
				c.Add(a.ID, parent.StartRef, parent.EndRef, label)
			default:
				return nil, nil, fmt.Errorf("%w: annotation type %T", ErrUnsupportedInput, a)
			}
		}

		spans := c.Sorted()
		report.Skipped = append(report.Skipped, c.Skipped()...)
		for _, s := range spans {
			xmin = math.Min(xmin, s.Start)
			xmax = math.Max(xmax, s.End)
		}
		tiers = append(tiers, resolved{name: tier.ID, spans: spans})
	}

	// tiers without intervals contribute no bound
	if math.IsInf(xmin, 1) {
		xmin, xmax = 0, 0
	}

	tg := textgrid.New(xmin, xmax)
	for _, t := range tiers {
		out := &textgrid.IntervalTier{Name: t.name, XMin: xmin, XMax: xmax}
		if len(t.spans) > 0 && !opts.FillGaps {
			out.XMin, out.XMax = math.Inf(1), math.Inf(-1)
			for _, s := range t.spans {
				out.XMin = math.Min(out.XMin, s.Start)
				out.XMax = math.Max(out.XMax, s.End)
			}
		}

		if opts.FillGaps {
			out.Intervals = fillGaps(t.spans, xmin, xmax)
		} else {
			out.Intervals = make([]textgrid.Interval, 0, len(t.spans))
			for _, s := range t.spans {
				out.Intervals = append(out.Intervals, textgrid.Interval{Start: s.Start, End: s.End, Label: s.Label})
			}
		}

		tg.AddTier(out)
		report.Tiers++
		report.Items += len(out.Intervals)
	}

	return tg, report, nil
}

// sorted spans plus empty intervals for every stretch of [xmin, xmax]
// none of them covers
func fillGaps(spans []timeslot.Span, xmin, xmax float64) []textgrid.Interval {
	out := make([]textgrid.Interval, 0, 2*len(spans)+1)
	cursor := xmin
	for _, s := range spans {
		if s.Start > cursor {
			out = append(out, textgrid.Interval{Start: cursor, End: s.Start})
		}
		out = append(out, textgrid.Interval{Start: s.Start, End: s.End, Label: s.Label})
		if s.End > cursor {
			cursor = s.End
		}
	}
	if cursor < xmax {
		out = append(out, textgrid.Interval{Start: cursor, End: xmax})
	}
	return out
}

// builds one EAF tier per interval tier; point tiers have no EAF
// counterpart and are skipped
func TextGridToEAF(tg *textgrid.TextGrid, opts MapOptions) (*eaf.Document, *Report, error) {
	doc := eaf.NewDocument()
	report := &Report{}
	ids := newIDAllocator(doc)

	for _, tier := range tg.Tiers {
		it, ok := tier.(*textgrid.IntervalTier)
		if !ok {
			report.SkippedTiers = append(report.SkippedTiers, tier.TierName())
			continue
		}

		out := doc.AddTier(uniqueName(doc, it.Name))
		for i, iv := range it.Intervals {
			if opts.DropEmpty && strings.TrimSpace(iv.Label) == "" {
				continue
			}
			startMs, err := toMillis(iv.Start)
			if err != nil {
				return nil, nil, fmt.Errorf("tier %q interval %d xmin: %w", it.Name, i+1, err)
			}
			endMs, err := toMillis(iv.End)
			if err != nil {
				return nil, nil, fmt.Errorf("tier %q interval %d xmax: %w", it.Name, i+1, err)
			}
			start := ids.slot(startMs)
			end := ids.slot(endMs)
			out.Add(&eaf.AlignedAnnotation{
				ID:       ids.annotation(),
				Value:    iv.Label,
				StartRef: start,
				EndRef:   end,
			})
		}
		report.Tiers++
		report.Items += len(out.Annotations)
	}

	return doc, report, nil
}

// truncates seconds to whole milliseconds; values that do not fit an
// int64 millisecond offset are malformed
func toMillis(sec float64) (int64, error) {
	v := sec * 1000
	if !(math.Abs(v) < maxMillis) {
		return 0, fmt.Errorf("%w: time %v s is out of range", ErrMalformedInput, sec)
	}
	if v < 0 {
		return int64(v - msEpsilon), nil
	}
	return int64(v + msEpsilon), nil
}

// hands out ts<N> and a<N> ids for one conversion; offsets that coincide
// share a slot
type idAllocator struct {
	doc            *eaf.Document
	slots          map[int64]string
	nextSlot       int
	nextAnnotation int
}

func newIDAllocator(doc *eaf.Document) *idAllocator {
	return &idAllocator{
		doc:            doc,
		slots:          make(map[int64]string),
		nextSlot:       1,
		nextAnnotation: 1,
	}
}

func (a *idAllocator) slot(ms int64) string {
	if id, ok := a.slots[ms]; ok {
		return id
	}
	id := "ts" + strconv.Itoa(a.nextSlot)
	a.nextSlot++
	value := ms
	a.doc.AddTimeSlot(id, &value)
	a.slots[ms] = id
	return id
}

func (a *idAllocator) annotation() string {
	id := "a" + strconv.Itoa(a.nextAnnotation)
	a.nextAnnotation++
	return id
}

// EAF tier ids must be unique; repeated TextGrid names get -2, -3, ...
func uniqueName(doc *eaf.Document, name string) string {
	candidate := name
	for n := 2; doc.Tier(candidate) != nil; n++ {
		candidate = name + "-" + strconv.Itoa(n)
	}
	return candidate
}

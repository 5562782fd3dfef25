package convert

import (
	"errors"
	"math"
	"testing"

	"github.com/mgpai22/tiergrid/internal/eaf"
	"github.com/mgpai22/tiergrid/internal/textgrid"
)

func ms(v int64) *int64 { return &v }

func helloWorldEAF() *eaf.Document {
	doc := eaf.NewDocument()
	doc.AddTimeSlot("ts1", ms(0))
	doc.AddTimeSlot("ts2", ms(1500))
	doc.AddTimeSlot("ts3", ms(3000))
	words := doc.AddTier("words")
	words.Add(&eaf.AlignedAnnotation{ID: "a1", Value: "hello", StartRef: "ts1", EndRef: "ts2"})
	words.Add(&eaf.AlignedAnnotation{ID: "a2", Value: "world", StartRef: "ts2", EndRef: "ts3"})
	return doc
}

func TestEAFToTextGrid(t *testing.T) {
	tg, report, err := EAFToTextGrid(helloWorldEAF(), MapOptions{})
	if err != nil {
		t.Fatalf("EAFToTextGrid failed: %v", err)
	}

	if tg.XMin != 0 || tg.XMax != 3 {
		t.Errorf("bounds = [%v, %v], want [0, 3]", tg.XMin, tg.XMax)
	}
	if len(tg.Tiers) != 1 {
		t.Fatalf("expected 1 tier, got %d", len(tg.Tiers))
	}
	tier, ok := tg.Tiers[0].(*textgrid.IntervalTier)
	if !ok {
		t.Fatalf("expected *IntervalTier, got %T", tg.Tiers[0])
	}
	want := []textgrid.Interval{
		{Start: 0, End: 1.5, Label: "hello"},
		{Start: 1.5, End: 3, Label: "world"},
	}
	if len(tier.Intervals) != len(want) {
		t.Fatalf("expected %d intervals, got %d", len(want), len(tier.Intervals))
	}
	for i := range want {
		if tier.Intervals[i] != want[i] {
			t.Errorf("interval %d: got %+v, want %+v", i, tier.Intervals[i], want[i])
		}
	}
	if report.Tiers != 1 || report.Items != 2 || len(report.Skipped) != 0 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestEAFToTextGridSortsSwapsAndTrims(t *testing.T) {
	doc := eaf.NewDocument()
	doc.AddTimeSlot("ts1", ms(2000))
	doc.AddTimeSlot("ts2", ms(4000))
	doc.AddTimeSlot("ts3", ms(500))
	doc.AddTimeSlot("ts4", ms(1000))
	tier := doc.AddTier("t")
	tier.Add(&eaf.AlignedAnnotation{ID: "a1", Value: "  late ", StartRef: "ts2", EndRef: "ts1"})
	tier.Add(&eaf.AlignedAnnotation{ID: "a2", Value: "early", StartRef: "ts3", EndRef: "ts4"})

	tg, _, err := EAFToTextGrid(doc, MapOptions{})
	if err != nil {
		t.Fatalf("EAFToTextGrid failed: %v", err)
	}
	intervals := tg.Tiers[0].(*textgrid.IntervalTier).Intervals
	if intervals[0].Label != "early" || intervals[1].Label != "late" {
		t.Errorf("expected intervals sorted by start and trimmed, got %+v", intervals)
	}
	for i, iv := range intervals {
		if iv.Start > iv.End {
			t.Errorf("interval %d: start %v > end %v", i, iv.Start, iv.End)
		}
	}
	if intervals[1].Start != 2 || intervals[1].End != 4 {
		t.Errorf("expected reversed span to be swapped, got %+v", intervals[1])
	}
	if tg.XMin != 0.5 || tg.XMax != 4 {
		t.Errorf("bounds = [%v, %v], want [0.5, 4]", tg.XMin, tg.XMax)
	}
}

func TestEAFToTextGridSkipsDanglingRefs(t *testing.T) {
	doc := helloWorldEAF()
	doc.Tiers[0].Add(&eaf.AlignedAnnotation{ID: "a3", Value: "lost", StartRef: "ts3", EndRef: "ts99"})

	tg, report, err := EAFToTextGrid(doc, MapOptions{})
	if err != nil {
		t.Fatalf("EAFToTextGrid failed: %v", err)
	}
	if n := tg.Tiers[0].Len(); n != 2 {
		t.Errorf("expected 2 intervals, got %d", n)
	}
	if len(report.Skipped) != 1 {
		t.Fatalf("expected 1 skipped annotation, got %d", len(report.Skipped))
	}
	if report.Skipped[0].AnnotationID != "a3" || report.Skipped[0].Tier != "words" {
		t.Errorf("unexpected skipped record %+v", report.Skipped[0])
	}
}

func TestEAFToTextGridEmptyTierBounds(t *testing.T) {
	doc := helloWorldEAF()
	doc.AddTier("empty")

	tg, _, err := EAFToTextGrid(doc, MapOptions{})
	if err != nil {
		t.Fatalf("EAFToTextGrid failed: %v", err)
	}
	xmin, xmax := tg.Tiers[1].Bounds()
	if xmin != 0 || xmax != 3 {
		t.Errorf("empty tier bounds = [%v, %v], want document bounds [0, 3]", xmin, xmax)
	}

	tg, _, err = EAFToTextGrid(&eaf.Document{Tiers: []*eaf.Tier{{ID: "only"}}}, MapOptions{})
	if err != nil {
		t.Fatalf("EAFToTextGrid failed: %v", err)
	}
	if tg.XMin != 0 || tg.XMax != 0 {
		t.Errorf("bounds = [%v, %v], want [0, 0]", tg.XMin, tg.XMax)
	}
	if xmin, xmax := tg.Tiers[0].Bounds(); xmin != 0 || xmax != 0 {
		t.Errorf("tier bounds = [%v, %v], want [0, 0]", xmin, xmax)
	}
}

func TestEAFToTextGridRefAnnotations(t *testing.T) {
	doc := helloWorldEAF()
	gloss := doc.AddTier("gloss")
	gloss.Add(&eaf.RefAnnotation{ID: "a3", Value: "greeting", ParentRef: "a1"})

	tg, _, err := EAFToTextGrid(doc, MapOptions{})
	if err != nil {
		t.Fatalf("EAFToTextGrid failed: %v", err)
	}
	got := tg.Tiers[1].(*textgrid.IntervalTier).Intervals
	if len(got) != 1 || got[0] != (textgrid.Interval{Start: 0, End: 1.5, Label: "greeting"}) {
		t.Errorf("expected ref annotation to take its parent's span, got %+v", got)
	}

	gloss.Add(&eaf.RefAnnotation{ID: "a4", Value: "nested", ParentRef: "a3"})
	if _, _, err := EAFToTextGrid(doc, MapOptions{}); !errors.Is(err, ErrUnsupportedInput) {
		t.Errorf("expected ErrUnsupportedInput for ref-to-ref chain, got %v", err)
	}
}

func TestEAFToTextGridFillGaps(t *testing.T) {
	doc := eaf.NewDocument()
	doc.AddTimeSlot("ts1", ms(0))
	doc.AddTimeSlot("ts2", ms(1000))
	doc.AddTimeSlot("ts3", ms(2000))
	doc.AddTimeSlot("ts4", ms(3000))
	doc.AddTier("a").Add(&eaf.AlignedAnnotation{ID: "a1", Value: "x", StartRef: "ts2", EndRef: "ts3"})
	doc.AddTier("b").Add(&eaf.AlignedAnnotation{ID: "a2", Value: "y", StartRef: "ts1", EndRef: "ts4"})

	tg, report, err := EAFToTextGrid(doc, MapOptions{FillGaps: true})
	if err != nil {
		t.Fatalf("EAFToTextGrid failed: %v", err)
	}
	want := []textgrid.Interval{
		{Start: 0, End: 1},
		{Start: 1, End: 2, Label: "x"},
		{Start: 2, End: 3},
	}
	got := tg.Tiers[0].(*textgrid.IntervalTier)
	if len(got.Intervals) != len(want) {
		t.Fatalf("expected %d intervals, got %+v", len(want), got.Intervals)
	}
	for i := range want {
		if got.Intervals[i] != want[i] {
			t.Errorf("interval %d: got %+v, want %+v", i, got.Intervals[i], want[i])
		}
	}
	if got.XMin != 0 || got.XMax != 3 {
		t.Errorf("filled tier bounds = [%v, %v], want [0, 3]", got.XMin, got.XMax)
	}
	if report.Items != 4 {
		t.Errorf("expected 4 intervals in report, got %d", report.Items)
	}
}

func TestTextGridToEAFSharesBoundaries(t *testing.T) {
	tg := textgrid.New(0, 3)
	tg.AddTier(&textgrid.IntervalTier{
		Name: "words",
		XMax: 3,
		Intervals: []textgrid.Interval{
			{Start: 0, End: 1.23, Label: "a"},
			{Start: 1.23, End: 3, Label: "b"},
		},
	})
	tg.AddTier(&textgrid.IntervalTier{
		Name:      "phones",
		XMax:      3,
		Intervals: []textgrid.Interval{{Start: 1.23, End: 2, Label: "c"}},
	})
	tg.AddTier(&textgrid.TextTier{Name: "events", Points: []textgrid.Point{{Time: 1, Label: "p"}}})

	doc, report, err := TextGridToEAF(tg, MapOptions{})
	if err != nil {
		t.Fatalf("TextGridToEAF failed: %v", err)
	}

	if len(doc.TimeSlots) != 4 {
		t.Fatalf("expected 4 time slots, got %d: %+v", len(doc.TimeSlots), doc.TimeSlots)
	}
	index := doc.AnnotationIndex()
	first := index["a1"].(*eaf.AlignedAnnotation)
	second := index["a2"].(*eaf.AlignedAnnotation)
	third := index["a3"].(*eaf.AlignedAnnotation)
	if first.EndRef != second.StartRef {
		t.Errorf("coincident boundary got two slots: %q and %q", first.EndRef, second.StartRef)
	}
	if third.StartRef != first.EndRef {
		t.Errorf("boundary shared across tiers got two slots: %q and %q", third.StartRef, first.EndRef)
	}
	if first.StartRef != "ts1" || first.EndRef != "ts2" || second.EndRef != "ts3" || third.EndRef != "ts4" {
		t.Errorf("unexpected slot numbering: %+v %+v %+v", first, second, third)
	}
	if *doc.SlotTable()["ts2"] != 1230 {
		t.Errorf("expected ts2 = 1230ms, got %d", *doc.SlotTable()["ts2"])
	}

	if len(doc.Tiers) != 2 || doc.Tier("events") != nil {
		t.Errorf("expected point tier to be skipped, got tiers %+v", doc.Tiers)
	}
	if len(report.SkippedTiers) != 1 || report.SkippedTiers[0] != "events" {
		t.Errorf("expected events in skipped tiers, got %v", report.SkippedTiers)
	}
}

func TestTextGridToEAFDropEmptyAndDuplicateNames(t *testing.T) {
	tg := textgrid.New(0, 2)
	for i := 0; i < 3; i++ {
		tg.AddTier(&textgrid.IntervalTier{
			Name: "tier",
			Intervals: []textgrid.Interval{
				{Start: 0, End: 1, Label: " "},
				{Start: 1, End: 2, Label: "word"},
			},
		})
	}

	doc, report, err := TextGridToEAF(tg, MapOptions{DropEmpty: true})
	if err != nil {
		t.Fatalf("TextGridToEAF failed: %v", err)
	}
	var names []string
	for _, tier := range doc.Tiers {
		names = append(names, tier.ID)
		if len(tier.Annotations) != 1 {
			t.Errorf("tier %q: expected blank interval dropped, got %d annotations", tier.ID, len(tier.Annotations))
		}
	}
	if len(names) != 3 || names[0] != "tier" || names[1] != "tier-2" || names[2] != "tier-3" {
		t.Errorf("unexpected tier ids %v", names)
	}
	if report.Items != 3 {
		t.Errorf("expected 3 annotations in report, got %d", report.Items)
	}
}

func TestToMillis(t *testing.T) {
	tests := []struct {
		sec  float64
		want int64
	}{
		{0, 0},
		{1.5, 1500},
		{0.29, 290},
		{1.2345, 1234},
		{1.9999, 1999},
		{-0.5, -500},
	}
	for _, tt := range tests {
		got, err := toMillis(tt.sec)
		if err != nil || got != tt.want {
			t.Errorf("toMillis(%v) = %d, %v; want %d", tt.sec, got, err, tt.want)
		}
	}

	for _, sec := range []float64{1e300, -1e300, 9.3e15, math.Inf(1), math.NaN()} {
		if _, err := toMillis(sec); !errors.Is(err, ErrMalformedInput) {
			t.Errorf("toMillis(%v): expected ErrMalformedInput, got %v", sec, err)
		}
	}
}

func TestTextGridToEAFRejectsOutOfRangeTimes(t *testing.T) {
	tg := textgrid.New(0, 1e300)
	tg.AddTier(&textgrid.IntervalTier{
		Name:      "words",
		XMax:      1e300,
		Intervals: []textgrid.Interval{{Start: 0, End: 1e300, Label: "far"}},
	})

	if _, _, err := TextGridToEAF(tg, MapOptions{}); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("expected ErrMalformedInput, got %v", err)
	}
}

func TestRoundTripPreservesTriples(t *testing.T) {
	doc := eaf.NewDocument()
	values := []int64{0, 290, 1230, 2001, 3333, 10007}
	for i, v := range values {
		doc.AddTimeSlot("slot"+string(rune('A'+i)), ms(v))
	}
	tier := doc.AddTier("words")
	for i := 0; i+1 < len(values); i++ {
		tier.Add(&eaf.AlignedAnnotation{
			ID:       "x" + string(rune('a'+i)),
			Value:    "w" + string(rune('a'+i)),
			StartRef: "slot" + string(rune('A'+i)),
			EndRef:   "slot" + string(rune('A'+i+1)),
		})
	}

	tg, _, err := EAFToTextGrid(doc, MapOptions{})
	if err != nil {
		t.Fatalf("EAFToTextGrid failed: %v", err)
	}
	back, _, err := TextGridToEAF(tg, MapOptions{})
	if err != nil {
		t.Fatalf("TextGridToEAF failed: %v", err)
	}

	slots := back.SlotTable()
	got := back.Tiers[0].Annotations
	if len(got) != len(values)-1 {
		t.Fatalf("expected %d annotations, got %d", len(values)-1, len(got))
	}
	for i, a := range got {
		aligned := a.(*eaf.AlignedAnnotation)
		start, end := *slots[aligned.StartRef], *slots[aligned.EndRef]
		if aligned.Value != "w"+string(rune('a'+i)) {
			t.Errorf("annotation %d: label %q", i, aligned.Value)
		}
		if start != values[i] || end != values[i+1] {
			t.Errorf("annotation %d: got [%d, %d], want [%d, %d]", i, start, end, values[i], values[i+1])
		}
	}
	if len(back.TimeSlots) != len(values) {
		t.Errorf("expected shared boundaries to collapse into %d slots, got %d", len(values), len(back.TimeSlots))
	}
}

// Package eaf reads and writes ELAN Annotation Format documents.
package eaf

import (
	"github.com/mgpai22/tiergrid/internal/faults"
)

var (
	ErrNotFound       = faults.ErrNotFound
	ErrMalformedInput = faults.ErrMalformedInput
	ErrStructural     = faults.ErrStructural
)

// linguistic type every encoded tier points at; real types are not modeled
const DefaultLinguisticType = "default-lt"

// named anchor on the time line; nil Value means declared but unaligned
type TimeSlot struct {
	ID    string
	Value *int64
}

// one of AlignedAnnotation or RefAnnotation
type Annotation interface {
	AnnotationID() string
	Text() string
	annotation()
}

// annotation anchored directly to two time slots
type AlignedAnnotation struct {
	ID       string
	Value    string
	StartRef string
	EndRef   string
	SVGRef   string
}

// annotation anchored through another annotation
type RefAnnotation struct {
	ID          string
	Value       string
	ParentRef   string
	PreviousRef string
}

func (a *AlignedAnnotation) AnnotationID() string { return a.ID }
func (a *AlignedAnnotation) Text() string         { return a.Value }
func (*AlignedAnnotation) annotation()            {}

func (a *RefAnnotation) AnnotationID() string { return a.ID }
func (a *RefAnnotation) Text() string         { return a.Value }
func (*RefAnnotation) annotation()            {}

type Tier struct {
	ID             string
	LinguisticType string
	Participant    string
	ParentRef      string
	Annotations    []Annotation
}

type Document struct {
	Author    string
	Date      string
	MediaFile string
	TimeSlots []TimeSlot
	Tiers     []*Tier
}

func NewDocument() *Document {
	return &Document{}
}

// appends a slot and returns its id
func (d *Document) AddTimeSlot(id string, value *int64) string {
	d.TimeSlots = append(d.TimeSlots, TimeSlot{ID: id, Value: value})
	return id
}

// appends an empty tier
func (d *Document) AddTier(id string) *Tier {
	tier := &Tier{ID: id, LinguisticType: DefaultLinguisticType}
	d.Tiers = append(d.Tiers, tier)
	return tier
}

func (t *Tier) Add(a Annotation) {
	t.Annotations = append(t.Annotations, a)
}

// slot id to millisecond value
func (d *Document) SlotTable() map[string]*int64 {
	table := make(map[string]*int64, len(d.TimeSlots))
	for _, ts := range d.TimeSlots {
		table[ts.ID] = ts.Value
	}
	return table
}

func (d *Document) Tier(id string) *Tier {
	for _, t := range d.Tiers {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// annotation id to annotation across all tiers
func (d *Document) AnnotationIndex() map[string]Annotation {
	index := make(map[string]Annotation, d.AnnotationCount())
	for _, t := range d.Tiers {
		for _, a := range t.Annotations {
			index[a.AnnotationID()] = a
		}
	}
	return index
}

func (d *Document) AnnotationCount() int {
	n := 0
	for _, t := range d.Tiers {
		n += len(t.Annotations)
	}
	return n
}
